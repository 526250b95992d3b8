package errors

import "errors"

var (
	ErrNotFound = errors.New("contract not found")

	ErrCompanyNotFound = errors.New("company not found")

	ErrUserNotFound = errors.New("user not found")

	ErrInvalidID = errors.New("invalid contract ID format")

	ErrDuplicateEmail = errors.New("a user with this email already exists")
)
