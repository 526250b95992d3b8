package pricing

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func TestMeetingRoomCost(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		hourlyRate int
		expected   int
	}{
		{"exactly one hour", at(10, 0), at(11, 0), 2, 2},
		{"two hours at rate 2", at(10, 0), at(12, 0), 2, 4},
		{"half hour rounds up to one hour", at(10, 0), at(10, 30), 2, 2},
		{"ninety minutes rounds up to two hours", at(10, 0), at(11, 30), 2, 4},
		{"one minute over rounds up", at(10, 0), at(12, 1), 3, 9},
		{"rate of one", at(9, 0), at(18, 0), 1, 9},
		{"zero duration", at(10, 0), at(10, 0), 2, 0},
		{"negative duration", at(11, 0), at(10, 0), 2, 0},
		{"zero rate", at(10, 0), at(12, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeetingRoomCost(tt.start, tt.end, tt.hourlyRate)
			if got != tt.expected {
				t.Errorf("MeetingRoomCost(%v, %v, %d) = %d, want %d",
					tt.start, tt.end, tt.hourlyRate, got, tt.expected)
			}
		})
	}
}

func TestFlexDeskCost(t *testing.T) {
	tests := []struct {
		name      string
		seats     int
		dailyRate int
		expected  int
	}{
		{"one seat", 1, 1, 1},
		{"three seats at rate 2", 3, 2, 6},
		{"zero seats", 0, 2, 0},
		{"negative seats", -1, 2, 0},
		{"zero rate", 3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexDeskCost(tt.seats, tt.dailyRate)
			if got != tt.expected {
				t.Errorf("FlexDeskCost(%d, %d) = %d, want %d", tt.seats, tt.dailyRate, got, tt.expected)
			}
		})
	}
}
