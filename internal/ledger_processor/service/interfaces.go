package service

import "context"

// FundingProcessor applies one provider webhook body to the ledger.
type FundingProcessor interface {
	ProcessFundingEvent(ctx context.Context, rawEvent []byte) (bool, error)
}
