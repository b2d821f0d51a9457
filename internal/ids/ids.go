// Package ids provides the validated identifier types used throughout the
// deployment engine. Every identifier kind has a fixed grammar that is
// enforced at construction, so a value of one of these types always holds a
// well-formed identifier.
package ids

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier is matched by every identifier validation error
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ValidationError is returned when a string does not match the grammar of
// an identifier kind
type ValidationError struct {
	Kind    string
	Value   string
	Pattern string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s '%s' (must match %s)", e.Kind, e.Value, e.Pattern)
}

// Is reports whether target is ErrInvalidIdentifier
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// kind describes the grammar of one identifier type
type kind interface {
	name() string
	pattern() *regexp.Regexp
}

// ID is an immutable identifier whose value always satisfies the grammar of K
type ID[K kind] struct {
	value string
}

func parse[K kind](s string) (ID[K], error) {
	var k K
	if !k.pattern().MatchString(s) {
		return ID[K]{}, &ValidationError{Kind: k.name(), Value: s, Pattern: k.pattern().String()}
	}
	return ID[K]{value: s}, nil
}

func mustParse[K kind](s string) ID[K] {
	id, err := parse[K](s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the identifier value
func (id ID[K]) String() string {
	return id.value
}

// IsZero reports whether the identifier was never set
func (id ID[K]) IsZero() bool {
	return id.value == ""
}

// MarshalText implements encoding.TextMarshaler
func (id ID[K]) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and validates the value
func (id *ID[K]) UnmarshalText(text []byte) error {
	parsed, err := parse[K](string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
