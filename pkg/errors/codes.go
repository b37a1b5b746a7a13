package errors

// Common error codes shared across the service.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrNotImplemented  = "NOT_IMPLEMENTED"

	// Payment domain codes.
	ErrInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrConfiguration     = "CONFIGURATION"
	ErrUpstream          = "UPSTREAM"
)
