package shared

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrMissingReference = errors.New("funding event has no reference")

// FundingEvent is the Kafka message the gateway publishes for every authenticated provider webhook.
// Payload is the webhook body exactly as received.
type FundingEvent struct {
	Reference     string          `json:"reference"`
	Event         string          `json:"event"`
	Payload       json.RawMessage `json:"payload"`
	CorrelationID string          `json:"correlation_id"`
	ReceivedAt    time.Time       `json:"received_at"`
}

func (e *FundingEvent) Validate() error {
	if e.Reference == "" {
		return ErrMissingReference
	}
	return nil
}
