// Package platform is the boundary to the DSH platform: the API used to
// create, inspect and delete deployments, a REST implementation and an
// in-memory implementation.
package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

// API creates, inspects and deletes deployments on the platform
type API interface {
	Create(ctx context.Context, name string, d descriptor.Descriptor) error
	Delete(ctx context.Context, kind model.ProcessorKind, name string) error
	AllocationStatus(ctx context.Context, kind model.ProcessorKind, name string) (*AllocationStatus, error)
}

// Notification is a message the platform attaches to an allocation
type Notification struct {
	Message string            `json:"message"`
	Remove  bool              `json:"remove"`
	Args    map[string]string `json:"args,omitempty"`
}

// AllocationStatus is the provisioning state of a deployment
type AllocationStatus struct {
	Provisioned   bool           `json:"provisioned"`
	Notifications []Notification `json:"notifications"`
}

// ErrorKind classifies API errors
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindNotFound
	KindNotAuthorized
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindNotAuthorized:
		return "not authorized"
	}
	return "unexpected"
}

var (
	// ErrNotFound matches APIErrors of kind KindNotFound
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized matches APIErrors of kind KindNotAuthorized
	ErrNotAuthorized = errors.New("not authorized")
	// ErrUnexpected matches APIErrors of kind KindUnexpected
	ErrUnexpected = errors.New("unexpected error")
)

// APIError is returned by API implementations
type APIError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches the sentinel of the error kind
func (e *APIError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindNotAuthorized:
		return target == ErrNotAuthorized
	}
	return target == ErrUnexpected
}

// NotFound returns an APIError of kind KindNotFound
func NotFound(message string) *APIError {
	return &APIError{Kind: KindNotFound, Message: message}
}

// NotAuthorized returns an APIError of kind KindNotAuthorized
func NotAuthorized(message string) *APIError {
	return &APIError{Kind: KindNotAuthorized, Message: message}
}

// Unexpected returns an APIError of kind KindUnexpected
func Unexpected(message string) *APIError {
	return &APIError{Kind: KindUnexpected, Message: message}
}
