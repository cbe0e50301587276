package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrDecode matches every DecodeError.
	ErrDecode = errors.New("decode error")
	// ErrNetwork matches every NetworkError.
	ErrNetwork = errors.New("network error")
	// ErrNotFound reports an out-of-range item lookup.
	ErrNotFound = errors.New("not found")
)

// DecodeError reports a malformed API payload.
type DecodeError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decoding payload"
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets errors.Is(err, ErrDecode) match.
func (*DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NetworkKind classifies a NetworkError.
type NetworkKind int

// Network error kinds.
const (
	// NetworkOther covers server errors, rejected requests, and quota
	// exhaustion.
	NetworkOther NetworkKind = iota
	// NetworkNoConnectivity means the request never reached the server.
	NetworkNoConnectivity
)

func (k NetworkKind) String() string {
	if k == NetworkNoConnectivity {
		return "no_connectivity"
	}
	return "other"
}

// NetworkError reports a failed request, preserving whether the device was
// offline or the server answered with an error.
type NetworkError struct {
	Kind       NetworkKind
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("network error (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("network error (%s, status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("network error (%s): %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("network error (%s)", e.Kind)
	}
}

// Is lets errors.Is(err, ErrNetwork) match.
func (*NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNoConnectivity reports whether err is a NetworkError of kind
// NetworkNoConnectivity.
func IsNoConnectivity(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Kind == NetworkNoConnectivity
}

// ErrorKind returns a stable label for err: "decode", "no_connectivity",
// "other", or "unknown".
func ErrorKind(err error) string {
	var ne *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ne):
		return ne.Kind.String()
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "unknown"
	}
}
