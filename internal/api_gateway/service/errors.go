package service

import "errors"

var (
	ErrUnverifiedUser  = errors.New("user is not verified")
	ErrAmountTooSmall  = errors.New("amount is below the funding minimum")
	ErrInvalidWebhook  = errors.New("webhook body has no reference")
	ErrPublishRejected = errors.New("failed to queue webhook")
)
