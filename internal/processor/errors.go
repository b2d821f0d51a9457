package processor

import (
	"errors"
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/platform"
)

var (
	// ErrUnexpected is returned when the platform fails in a way the caller cannot act on
	ErrUnexpected = errors.New("unexpected platform error")
	// ErrNotAuthorized is returned when the platform rejects the credentials
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotImplemented is returned by operations the platform integration does not support yet
	ErrNotImplemented = errors.New("not yet implemented")
)

// Error reports a failed lifecycle operation on a deployment
type Error struct {
	Op         string
	Deployment string
	Err        error
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Deployment, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Deployment, e.Err)
}

// Unwrap returns the lifecycle sentinel
func (e *Error) Unwrap() error {
	return e.Err
}

// apiError maps a platform error to a lifecycle error. NotFound is only
// passed here by operations that treat it as unexpected.
func apiError(op, deployment string, err error) error {
	if errors.Is(err, platform.ErrNotAuthorized) {
		return &Error{Op: op, Deployment: deployment, Err: ErrNotAuthorized, Cause: err}
	}
	return &Error{Op: op, Deployment: deployment, Err: ErrUnexpected, Cause: err}
}
