package transaction

// Direction is the side of the wallet a record moves money on
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Status is the lifecycle state of a record. The ledger only ever writes StatusSuccessful;
// the other states exist for records produced by external flows.
type Status string

const (
	StatusSuccessful Status = "successful"
	StatusPending    Status = "pending"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSuccessful, StatusPending, StatusFailed:
		return true
	}
	return false
}

// Category classifies why money moved
type Category string

const (
	CategoryP2P     Category = "p2p"
	CategoryFunding Category = "funding"
	CategoryOutward Category = "outward"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryP2P, CategoryFunding, CategoryOutward:
		return true
	}
	return false
}

// Providers recorded on transaction records
const (
	ProviderInternal = "money-transfer"
	ProviderPaystack = "paystack"
)

// ProviderReferenceConstraint is the unique index that makes provider callbacks idempotent
const ProviderReferenceConstraint = "transactions_provider_reference_key"
