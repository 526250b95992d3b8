package model

import "time"

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CompanyID  string    `json:"company_id" bson:"company_id" validate:"required,mongodb"`
	ContractID string    `json:"contract_id,omitempty" bson:"contract_id,omitempty" validate:"omitempty,mongodb"`
	Email      string    `json:"email" bson:"email" validate:"required,email"`
	FirstName  string    `json:"first_name" bson:"first_name" validate:"required,min=1,max=60"`
	LastName   string    `json:"last_name" bson:"last_name" validate:"required,min=1,max=60"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=active inactive"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
