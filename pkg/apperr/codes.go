package apperr

// Code identifies the category of an application error. Codes are stable
// strings so they can be returned to API clients unchanged.
type Code string

const (
	CodeUnknown                Code = "UNKNOWN"
	CodeInvalidArgument        Code = "INVALID_ARGUMENT"
	CodeNotFound               Code = "NOT_FOUND"
	CodeUnauthenticated        Code = "UNAUTHENTICATED"
	CodeUnauthorized           Code = "UNAUTHORIZED"
	CodeAlreadyInActiveSession Code = "ALREADY_IN_ACTIVE_SESSION"
	CodeInvalidPhase           Code = "INVALID_PHASE"
	CodeRateLimited            Code = "RATE_LIMITED"
	CodeRequestPending         Code = "REQUEST_PENDING"
	CodeInternal               Code = "INTERNAL"
)
