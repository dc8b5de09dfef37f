package model

// Kind classifies an outcome error so callers can decide whether to retry.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindConflict              Kind = "conflict"
	KindDependencyUnavailable Kind = "dependency_unavailable"
	KindNotFound              Kind = "not_found"
	KindInternal              Kind = "internal"
)

// Error is the reason carried by reject_proposal and failure replies.
type Error struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
	Cause  error  `json:"-"`
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrConflict              = &Error{Kind: KindConflict}
	ErrDependencyUnavailable = &Error{Kind: KindDependencyUnavailable}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrInternal              = &Error{Kind: KindInternal}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return e.Reason
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// NewError creates an outcome error.
func NewError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// WrapError creates an outcome error that keeps the underlying cause.
func WrapError(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// ErrorResponse is the JSON body of a failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  Kind   `json:"kind,omitempty"`
}
