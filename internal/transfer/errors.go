package transfer

import (
	"errors"
	"fmt"
)

// Validation outcomes. None of them mutate anything.
var (
	ErrInvalidAmount       = errors.New("transfer amount must be a positive value with at most two decimal places")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnverifiedSender    = errors.New("sender account is not verified")
	ErrPinNotSet           = errors.New("withdrawal pin has not been set")
	ErrIncorrectPin        = errors.New("incorrect withdrawal pin")
	ErrReceiverNotVerified = errors.New("receiver account is not verified")
	ErrSenderHasNoWallet   = errors.New("sender has no wallet")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrReceiverHasNoWallet = errors.New("receiver has no wallet")
	ErrSameWallet          = fmt.Errorf("%w: sender and receiver share a wallet", ErrSelfTransfer)
)

// ErrPersistenceFailure wraps every storage failure, including exhausted conflict retries.
var ErrPersistenceFailure = errors.New("transfer could not be persisted")

func isValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrSelfTransfer,
		ErrUserNotFound,
		ErrUnverifiedSender,
		ErrPinNotSet,
		ErrIncorrectPin,
		ErrReceiverNotVerified,
		ErrSenderHasNoWallet,
		ErrInsufficientFunds,
		ErrReceiverHasNoWallet,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
