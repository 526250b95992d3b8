package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking reserves one resource for the half-open interval [StartTime,
// EndTime). Flex-desk bookings span a whole day bucket and carry SeatsCount;
// meeting rooms always hold exactly one confirmed booking per overlapping
// window. Bookings are never deleted, only cancelled.
type Booking struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID  string     `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	UserID      string     `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	CompanyID   string     `json:"company_id" bson:"company_id" validate:"required,mongodb"`
	StartTime   time.Time  `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time  `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	SeatsCount  int        `json:"seats_count" bson:"seats_count" validate:"required,min=1"`
	CreditsUsed int        `json:"credits_used" bson:"credits_used" validate:"min=0"`
	Status      string     `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty" validate:"omitempty"`
}

// MeetingRoomReservation is the admission request for an hourly room slot.
type MeetingRoomReservation struct {
	UserID     string    `json:"user_id" validate:"required,mongodb"`
	ResourceID string    `json:"resource_id" validate:"required,mongodb"`
	CompanyID  string    `json:"company_id" validate:"required,mongodb"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// FlexDeskReservation is the admission request for seats on a flex desk for
// a single day. Date uses the 2006-01-02 layout.
type FlexDeskReservation struct {
	UserID     string `json:"user_id" validate:"required,mongodb"`
	ResourceID string `json:"resource_id" validate:"required,mongodb"`
	CompanyID  string `json:"company_id" validate:"required,mongodb"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Seats      int    `json:"seats" validate:"required,min=1"`
}
