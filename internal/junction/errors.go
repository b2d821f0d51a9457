package junction

import (
	"errors"
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

var (
	// ErrWrongResourceType is returned when a bound resource type is not allowed by the junction
	ErrWrongResourceType = errors.New("wrong resource type")
	// ErrCardinalityViolation is returned when the number of bound resources is out of bounds
	ErrCardinalityViolation = errors.New("cardinality violation")
	// ErrMissingRequiredJunction is returned when a junction that needs resources is not bound
	ErrMissingRequiredJunction = errors.New("missing required junction")
	// ErrUnresolvableResource is returned when the registry has no name for a bound resource
	ErrUnresolvableResource = errors.New("unresolvable resource")
	// ErrUnknownJunction is returned when resources are bound to a junction the processor does not declare
	ErrUnknownJunction = errors.New("unknown junction")
)

// Error reports a junction binding failure. Err is one of the package sentinels.
type Error struct {
	Err         error
	Direction   model.Direction
	Junction    ids.JunctionID
	Resource    model.ResourceIdentifier
	Count       int
	Cardinality model.Cardinality
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Err {
	case ErrWrongResourceType:
		return fmt.Sprintf("%s junction '%s': resource '%s' has a type that is not allowed", e.Direction, e.Junction, e.Resource)
	case ErrCardinalityViolation:
		return fmt.Sprintf("%s junction '%s': %d resource(s) bound, expected %s", e.Direction, e.Junction, e.Count, e.Cardinality)
	case ErrMissingRequiredJunction:
		return fmt.Sprintf("%s junction '%s' is not bound, expected %s resource(s)", e.Direction, e.Junction, e.Cardinality)
	case ErrUnresolvableResource:
		return fmt.Sprintf("%s junction '%s': resource '%s' could not be resolved", e.Direction, e.Junction, e.Resource)
	case ErrUnknownJunction:
		return fmt.Sprintf("%s junction '%s' is not declared by the processor", e.Direction, e.Junction)
	}
	return fmt.Sprintf("%s junction '%s': %v", e.Direction, e.Junction, e.Err)
}

// Unwrap returns the sentinel
func (e *Error) Unwrap() error {
	return e.Err
}
