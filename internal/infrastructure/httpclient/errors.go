package httpclient

import (
	"errors"
	"fmt"
)

// FailureKind classifies where a fetch failed.
type FailureKind string

const (
	// FailureRequest marks an invalid request shape, detected before any network I/O.
	FailureRequest FailureKind = "request"
	// FailureTransport marks a network-level failure or an error status from the remote.
	FailureTransport FailureKind = "transport"
	// FailureDecode marks a JSON parse failure on an otherwise successful response.
	FailureDecode FailureKind = "decode"
	// FailureCallbackTimeout marks a script-injection read that never saw its callback fire.
	FailureCallbackTimeout FailureKind = "callback_timeout"
)

// FetchError is the single failure type surfaced by the fetch layer.
type FetchError struct {
	Kind       FailureKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch failed (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch failed (%s): %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError unwraps err into a *FetchError when the chain contains one.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind FailureKind) bool {
	fe, ok := AsFetchError(err)
	return ok && fe.Kind == kind
}
