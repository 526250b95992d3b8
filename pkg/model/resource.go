package model

import "time"

const (
	ResourceTypeMeetingRoom = "meeting_room"
	ResourceTypeFlexDesk    = "flex_desk"

	ResourceStatusAvailable   = "available"
	ResourceStatusUnavailable = "unavailable"
	ResourceStatusMaintenance = "maintenance"
)

type Site struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City      string    `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Address   string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	TimeZone  string    `json:"time_zone,omitempty" bson:"time_zone" validate:"omitempty,timezone"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Resource is a bookable unit belonging to one site. Capacity applies to
// flex desks (seats per day); meeting rooms are booked whole.
type Resource struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SiteID           string    `json:"site_id" bson:"site_id" validate:"required,mongodb"`
	Name             string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Type             string    `json:"type" bson:"type" validate:"required,oneof=meeting_room flex_desk"`
	Capacity         *int      `json:"capacity,omitempty" bson:"capacity,omitempty" validate:"omitempty,min=0"`
	HourlyCreditRate int       `json:"hourly_credit_rate" bson:"hourly_credit_rate" validate:"min=0"`
	DailyCreditRate  int       `json:"daily_credit_rate" bson:"daily_credit_rate" validate:"min=0"`
	Status           string    `json:"status" bson:"status" validate:"required,oneof=available unavailable maintenance"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ResourceUpdate struct {
	Name             string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Capacity         *int   `json:"capacity,omitempty" validate:"omitempty,min=0"`
	HourlyCreditRate *int   `json:"hourly_credit_rate,omitempty" validate:"omitempty,min=0"`
	DailyCreditRate  *int   `json:"daily_credit_rate,omitempty" validate:"omitempty,min=0"`
	Status           string `json:"status,omitempty" validate:"omitempty,oneof=available unavailable maintenance"`
}
