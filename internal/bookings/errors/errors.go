package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
