// Package resolve implements the fallback resolution cascade for shopper
// chat turns.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNotConfigured reports that no delegation endpoint is set. It is
// non-fatal: the resolver skips straight to the local stages.
var ErrNotConfigured = errors.New("delegation endpoint not configured")

// FailureClass tags a delegation failure for diagnostics.
type FailureClass string

const (
	FailureTimeout    FailureClass = "timeout"
	FailureConnection FailureClass = "connection"
	FailureNotFound   FailureClass = "not_found"
	FailureAuth       FailureClass = "auth"
	FailureServer     FailureClass = "server_error"
	FailureProtocol   FailureClass = "protocol"
)

// DelegateError wraps a delegation failure with its classification.
// Endpoint is pre-masked and safe to log.
type DelegateError struct {
	Class      FailureClass
	StatusCode int
	Endpoint   string
	Err        error
}

func (e *DelegateError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("delegate %s (status %d): %v", e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("delegate %s: %v", e.Class, e.Err)
}

func (e *DelegateError) Unwrap() error {
	return e.Err
}

// classifyTransport maps a transport-level error to a failure class.
func classifyTransport(err error) FailureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureConnection
}

// classifyStatus maps a non-2xx HTTP status to a failure class.
func classifyStatus(status int) FailureClass {
	switch {
	case status == http.StatusNotFound:
		return FailureNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return FailureAuth
	case status >= 500:
		return FailureServer
	default:
		return FailureProtocol
	}
}
