package recommend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingUserID is returned before any I/O when the identifier is empty
	ErrMissingUserID = errors.New("missing user id")

	// ErrUnknownAlgorithm is returned for labels outside the fixed set
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// ErrorKind categorizes a failed fetch
type ErrorKind string

const (
	// ErrKindStatus indicates a non-2xx response
	ErrKindStatus ErrorKind = "status"

	// ErrKindNetwork indicates the request never produced a response
	ErrKindNetwork ErrorKind = "network"

	// ErrKindDecode indicates a body that is not a JSON array of records
	ErrKindDecode ErrorKind = "decode"

	// ErrKindUnavailable indicates the circuit breaker rejected the call
	ErrKindUnavailable ErrorKind = "unavailable"

	// ErrKindTimeout indicates the client's own request timeout expired
	ErrKindTimeout ErrorKind = "timeout"

	// ErrKindCanceled indicates the caller's context ended first
	ErrKindCanceled ErrorKind = "canceled"
)

// FetchError describes why a recommendation request failed
type FetchError struct {
	Kind ErrorKind

	// StatusCode is set for ErrKindStatus
	StatusCode int

	// ServerMessage carries the server's {"error": ...} text, if any
	ServerMessage string

	Cause error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	parts := []string{fmt.Sprintf("type=%s", e.Kind)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.ServerMessage != "" {
		parts = append(parts, e.ServerMessage)
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return "recommend: " + strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is matches another *FetchError of the same kind
func (e *FetchError) Is(target error) bool {
	if fe, ok := target.(*FetchError); ok {
		return e.Kind == fe.Kind
	}
	return false
}

// countsAsFailure reports whether the breaker should record this error
func (e *FetchError) countsAsFailure() bool {
	switch e.Kind {
	case ErrKindNetwork, ErrKindTimeout:
		return true
	case ErrKindStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// excludedFromBreaker reports whether the outcome says nothing about the
// backend at all, so the breaker neither counts it nor lets it close a
// half-open circuit
func (e *FetchError) excludedFromBreaker() bool {
	return e.Kind == ErrKindCanceled
}

func newFetchError(kind ErrorKind, cause error) *FetchError {
	return &FetchError{Kind: kind, Cause: cause}
}

// KindOf extracts the failure kind from err, or "" when err is not a fetch failure
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
