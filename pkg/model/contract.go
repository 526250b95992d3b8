package model

import "time"

const (
	ContractStatusActive     = "active"
	ContractStatusSuspended  = "suspended"
	ContractStatusTerminated = "terminated"
)

type Company struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	BillingEmail string    `json:"billing_email" bson:"billing_email" validate:"required,email"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Contract links a company to a plan with a seat allotment and a validity
// window. An open-ended contract has a nil EndDate.
type Contract struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CompanyID      string     `json:"company_id" bson:"company_id" validate:"required,mongodb"`
	PlanName       string     `json:"plan_name" bson:"plan_name" validate:"required,min=2,max=100"`
	Seats          int        `json:"seats" bson:"seats" validate:"required,min=1"`
	MonthlyCredits int        `json:"monthly_credits" bson:"monthly_credits" validate:"min=0"`
	StartDate      time.Time  `json:"start_date" bson:"start_date" validate:"required"`
	EndDate        *time.Time `json:"end_date,omitempty" bson:"end_date,omitempty" validate:"omitempty,gtfield=StartDate"`
	Status         string     `json:"status" bson:"status" validate:"required,oneof=active suspended terminated"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ContractUpdate struct {
	PlanName       string     `json:"plan_name,omitempty" validate:"omitempty,min=2,max=100"`
	Seats          *int       `json:"seats,omitempty" validate:"omitempty,min=1"`
	MonthlyCredits *int       `json:"monthly_credits,omitempty" validate:"omitempty,min=0"`
	EndDate        *time.Time `json:"end_date,omitempty" validate:"omitempty"`
	Status         string     `json:"status,omitempty" validate:"omitempty,oneof=active suspended terminated"`
}
