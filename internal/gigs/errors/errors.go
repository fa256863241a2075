package errors

import "errors"

var (
	ErrNotFound = errors.New("gig not found")

	ErrInvalidID = errors.New("invalid gig ID format")

	// ErrConditionFailed means a conditional update matched no document:
	// the optimistic precondition (open slot, version, pending payment)
	// no longer held at commit time. Callers re-fetch to classify it.
	ErrConditionFailed = errors.New("conditional update matched no document")

	ErrLedgerNotFound = errors.New("no booking history for gig")
)
