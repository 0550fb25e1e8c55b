package common

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConfigured is returned by every store operation when no connection
// parameters were supplied.
var ErrNotConfigured = errors.New("database connection is not configured")

// ErrForbidden is returned when the caller asks to act in an organization
// they are not a member of.
var ErrForbidden = errors.New("not a member of this organization")

// QueryKind classifies a store failure for callers that need to branch on it.
type QueryKind int

const (
	QueryKindUnknown QueryKind = iota
	QueryKindNotFound
	QueryKindConflict
	QueryKindInvalid
	QueryKindUnavailable
)

func (k QueryKind) String() string {
	switch k {
	case QueryKindNotFound:
		return "not_found"
	case QueryKindConflict:
		return "conflict"
	case QueryKindInvalid:
		return "invalid"
	case QueryKindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// QueryError carries the backend's message verbatim.
type QueryError struct {
	Op      string
	Message string
	Code    string
	Kind    QueryKind
	Err     error
}

func (e *QueryError) Error() string {
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError builds a QueryError for failures that did not come from the
// database driver, such as an organization that could not be resolved.
func NewQueryError(op string, kind QueryKind, format string, args ...any) *QueryError {
	return &QueryError{
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
	}
}

// AsQueryError unwraps err into a QueryError when possible.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// IsNotFound reports whether err is a QueryError for a missing row.
func IsNotFound(err error) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Kind == QueryKindNotFound
}

// TimeoutError is returned when an operation with an explicit deadline did
// not finish in time.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
