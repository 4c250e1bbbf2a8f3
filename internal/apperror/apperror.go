package apperror

import (
	"errors"
	"net/http"
)

// Kind identifies the class of an API error. The set is closed: every
// error crossing the service boundary is one of these.
type Kind string

const (
	KindBadRequest   Kind = "BadRequestError"
	KindAuthFailure  Kind = "AuthFailureError"
	KindForbidden    Kind = "ForbiddenError"
	KindNotFound     Kind = "NotFoundError"
	KindConflict     Kind = "ConflictError"
	KindBadToken     Kind = "BadTokenError"
	KindTokenExpired Kind = "TokenExpiredError"
	KindAccessToken  Kind = "AccessTokenError"
	KindInternal     Kind = "InternalServerError"
)

// Error is a typed API error carrying the HTTP status the handler
// layer should respond with.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

// Is makes errors.Is match on Kind, so sentinel-style comparisons like
// errors.Is(err, apperror.AuthFailure("")) work regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, message, fallback string, status int) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{Kind: kind, Message: message, StatusCode: status}
}

// BadRequest reports malformed or ambiguous caller input.
func BadRequest(message string) *Error {
	return newError(KindBadRequest, message, "Bad Request", http.StatusBadRequest)
}

// AuthFailure reports semantically invalid credentials or tokens.
func AuthFailure(message string) *Error {
	return newError(KindAuthFailure, message, "Invalid Credentials", http.StatusUnauthorized)
}

// Forbidden reports a failed authorization precondition.
func Forbidden(message string) *Error {
	return newError(KindForbidden, message, "Permission Denied", http.StatusForbidden)
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return newError(KindNotFound, message, "Not Found", http.StatusNotFound)
}

// Conflict reports a uniqueness conflict.
func Conflict(message string) *Error {
	return newError(KindConflict, message, "Conflict", http.StatusConflict)
}

// BadToken reports a token whose signature or shape is invalid.
func BadToken(message string) *Error {
	return newError(KindBadToken, message, "Token Is Not Valid", http.StatusUnauthorized)
}

// TokenExpired reports a token past its expiry.
func TokenExpired(message string) *Error {
	return newError(KindTokenExpired, message, "Token Expired", http.StatusUnauthorized)
}

// AccessToken reports an access token that failed verification.
// Distinct from AuthFailure so clients know to attempt a refresh
// rather than a re-login.
func AccessToken(message string) *Error {
	return newError(KindAccessToken, message, "Invalid Access Token", http.StatusUnauthorized)
}

// Internal reports an unexpected invariant violation.
func Internal(message string) *Error {
	return newError(KindInternal, message, "Internal Server Error", http.StatusInternalServerError)
}

// From returns err as a typed *Error when it already is one, and wraps
// anything else as Internal. Recognized errors pass through unchanged
// so they are never double-wrapped.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("")
}

// IsKind reports whether err is a typed error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
