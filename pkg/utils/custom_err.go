package utils

import "errors"

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrSiteUnsupported    = errors.New("site not supported")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderFinished      = errors.New("order already finished")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidEntryType   = errors.New("invalid points entry type")

	// ErrStaleTransition signals that another worker already advanced the
	// order. Internal concurrency outcome, never shown to callers.
	ErrStaleTransition = errors.New("stale order transition")

	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
)
