// Package pricing computes the credit cost of reservations. The rounding
// rule lives here and nowhere else: partial hours always round up.
package pricing

import "time"

// MeetingRoomCost returns the credits consumed by a room reservation over
// [start, end) at hourlyRate credits per hour. Duration is rounded up to
// whole hours, so 10:00-11:30 at rate 2 costs 4 credits. Non-positive
// durations cost zero; callers reject them during validation.
func MeetingRoomCost(start, end time.Time, hourlyRate int) int {
	d := end.Sub(start)
	if d <= 0 || hourlyRate <= 0 {
		return 0
	}

	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours * hourlyRate
}

// FlexDeskCost returns the credits consumed by reserving seats on a flex
// desk for one day at dailyRate credits per seat.
func FlexDeskCost(seats, dailyRate int) int {
	if seats <= 0 || dailyRate <= 0 {
		return 0
	}
	return seats * dailyRate
}
