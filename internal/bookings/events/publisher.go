package events

import (
	"context"
	"time"

	"hopper/pkg/kafka"
	"hopper/pkg/model"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"

	sourceService = "bookings"
)

// BookingEvent is the payload published for booking lifecycle changes.
// CreditsRefunded is always zero for now; cancellations do not refund.
type BookingEvent struct {
	BookingID       string     `json:"booking_id"`
	ResourceID      string     `json:"resource_id"`
	UserID          string     `json:"user_id"`
	CompanyID       string     `json:"company_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	SeatsCount      int        `json:"seats_count"`
	CreditsUsed     int        `json:"credits_used"`
	CreditsRefunded int        `json:"credits_refunded"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher emits booking lifecycle events keyed by resource ID, so all
// events for one resource land on the same partition in order.
type Publisher struct {
	producer publisher
}

func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{producer: producer}
}

func (p *Publisher) BookingConfirmed(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, EventBookingConfirmed, booking)
}

func (p *Publisher) BookingCancelled(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, EventBookingCancelled, booking)
}

func (p *Publisher) publish(ctx context.Context, eventType string, booking *model.Booking) error {
	event := BookingEvent{
		BookingID:   booking.ID,
		ResourceID:  booking.ResourceID,
		UserID:      booking.UserID,
		CompanyID:   booking.CompanyID,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		SeatsCount:  booking.SeatsCount,
		CreditsUsed: booking.CreditsUsed,
		CancelledAt: booking.CancelledAt,
	}

	msg := kafka.NewMessage().
		WithKey(booking.ResourceID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(sourceService).
		Build()

	return p.producer.Publish(ctx, msg)
}
