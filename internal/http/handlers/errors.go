// HTTP-layer error codes. Codes are lowercase snake_case and stable: clients
// branch on them, so renaming one is a breaking change. Handlers pick the most
// specific matching code and pass it to fail() with the HTTP status.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidationFailed  = "validation_failed"
	ErrCodeInvalidStatus     = "invalid_status"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeAIUnavailable     = "ai_unavailable"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
