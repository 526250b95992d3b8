package model

import "time"

// CreditEntry is one ledger period for a contract: Allocated credits for the
// period starting at PeriodStart, of which Consumed have been spent. The
// remaining balance is always derived, never stored.
type CreditEntry struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CompanyID   string    `json:"company_id" bson:"company_id" validate:"required,mongodb"`
	ContractID  string    `json:"contract_id" bson:"contract_id" validate:"required,mongodb"`
	PeriodStart time.Time `json:"period_start" bson:"period_start" validate:"required"`
	Allocated   int       `json:"allocated" bson:"allocated" validate:"min=0"`
	Consumed    int       `json:"consumed" bson:"consumed" validate:"min=0"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CreditBalance reports a company's standing for a reference date: the most
// recent ledger period at or before that date on an active contract.
type CreditBalance struct {
	EntryID     string    `json:"entry_id"`
	ContractID  string    `json:"contract_id"`
	PeriodStart time.Time `json:"period_start"`
	Allocated   int       `json:"allocated"`
	Remaining   int       `json:"remaining"`
}

// CreditAdjustment is an administrative add/remove of allocated credits on
// the current ledger period.
type CreditAdjustment struct {
	CompanyID string `json:"company_id" validate:"required,mongodb"`
	Amount    int    `json:"amount" validate:"required"`
	Reason    string `json:"reason" validate:"required,min=2,max=200"`
}
