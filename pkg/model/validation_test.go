package model

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func TestBooking_RequiredFields(t *testing.T) {
	v := validator.New()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		booking     *Booking
		expectValid bool
	}{
		{
			name: "valid confirmed booking",
			booking: &Booking{
				ResourceID:  "66a1f0c2e4b0a1b2c3d4e5f6",
				UserID:      "66a1f0c2e4b0a1b2c3d4e5f7",
				CompanyID:   "66a1f0c2e4b0a1b2c3d4e5f8",
				StartTime:   start,
				EndTime:     start.Add(time.Hour),
				SeatsCount:  1,
				CreditsUsed: 2,
				Status:      BookingStatusConfirmed,
			},
			expectValid: true,
		},
		{
			name: "end before start",
			booking: &Booking{
				ResourceID: "66a1f0c2e4b0a1b2c3d4e5f6",
				UserID:     "66a1f0c2e4b0a1b2c3d4e5f7",
				CompanyID:  "66a1f0c2e4b0a1b2c3d4e5f8",
				StartTime:  start,
				EndTime:    start.Add(-time.Hour),
				SeatsCount: 1,
				Status:     BookingStatusConfirmed,
			},
			expectValid: false,
		},
		{
			name: "zero seats",
			booking: &Booking{
				ResourceID: "66a1f0c2e4b0a1b2c3d4e5f6",
				UserID:     "66a1f0c2e4b0a1b2c3d4e5f7",
				CompanyID:  "66a1f0c2e4b0a1b2c3d4e5f8",
				StartTime:  start,
				EndTime:    start.Add(time.Hour),
				SeatsCount: 0,
				Status:     BookingStatusConfirmed,
			},
			expectValid: false,
		},
		{
			name: "unknown status",
			booking: &Booking{
				ResourceID: "66a1f0c2e4b0a1b2c3d4e5f6",
				UserID:     "66a1f0c2e4b0a1b2c3d4e5f7",
				CompanyID:  "66a1f0c2e4b0a1b2c3d4e5f8",
				StartTime:  start,
				EndTime:    start.Add(time.Hour),
				SeatsCount: 1,
				Status:     "no_show",
			},
			expectValid: false,
		},
		{
			name: "malformed resource id",
			booking: &Booking{
				ResourceID: "not-an-object-id",
				UserID:     "66a1f0c2e4b0a1b2c3d4e5f7",
				CompanyID:  "66a1f0c2e4b0a1b2c3d4e5f8",
				StartTime:  start,
				EndTime:    start.Add(time.Hour),
				SeatsCount: 1,
				Status:     BookingStatusConfirmed,
			},
			expectValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.booking)
			if tt.expectValid && err != nil {
				t.Errorf("expected valid booking, got error: %v", err)
			}
			if !tt.expectValid && err == nil {
				t.Errorf("expected validation error, got none")
			}
		})
	}
}

func TestResource_Validation(t *testing.T) {
	v := validator.New()
	capacity := 5
	negative := -1

	tests := []struct {
		name        string
		resource    *Resource
		expectValid bool
	}{
		{
			name: "valid flex desk",
			resource: &Resource{
				SiteID:          "66a1f0c2e4b0a1b2c3d4e5f6",
				Name:            "Open space 2F",
				Type:            ResourceTypeFlexDesk,
				Capacity:        &capacity,
				DailyCreditRate: 1,
				Status:          ResourceStatusAvailable,
			},
			expectValid: true,
		},
		{
			name: "valid meeting room without capacity",
			resource: &Resource{
				SiteID:           "66a1f0c2e4b0a1b2c3d4e5f6",
				Name:             "Salle Opera",
				Type:             ResourceTypeMeetingRoom,
				HourlyCreditRate: 2,
				Status:           ResourceStatusAvailable,
			},
			expectValid: true,
		},
		{
			name: "negative capacity",
			resource: &Resource{
				SiteID:   "66a1f0c2e4b0a1b2c3d4e5f6",
				Name:     "Open space 2F",
				Type:     ResourceTypeFlexDesk,
				Capacity: &negative,
				Status:   ResourceStatusAvailable,
			},
			expectValid: false,
		},
		{
			name: "unknown type",
			resource: &Resource{
				SiteID: "66a1f0c2e4b0a1b2c3d4e5f6",
				Name:   "Phone booth",
				Type:   "phone_booth",
				Status: ResourceStatusAvailable,
			},
			expectValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.resource)
			if tt.expectValid && err != nil {
				t.Errorf("expected valid resource, got error: %v", err)
			}
			if !tt.expectValid && err == nil {
				t.Errorf("expected validation error, got none")
			}
		})
	}
}
