package errors

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	ErrSiteNotFound = errors.New("site not found")

	ErrInvalidID = errors.New("invalid resource ID format")
)
