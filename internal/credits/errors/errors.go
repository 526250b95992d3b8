package errors

import "errors"

var (
	ErrNotFound = errors.New("credit entry not found")

	ErrInvalidID = errors.New("invalid credit entry ID format")

	ErrNoActiveContract = errors.New("no active contract for company at date")

	ErrNoLedgerPeriod = errors.New("no ledger period covers the requested date")

	// ErrBalanceGuard fires when a debit or adjustment would break the
	// consumed <= allocated invariant at write time.
	ErrBalanceGuard = errors.New("ledger balance guard rejected the write")
)
