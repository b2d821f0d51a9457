// Package parameter resolves the deployment parameters of a processor from
// the values supplied by the caller and the declared defaults.
package parameter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

var (
	// ErrMissingMandatoryParameter is returned when a mandatory parameter has no value
	ErrMissingMandatoryParameter = errors.New("missing mandatory parameter")
	// ErrInvalidParameterValue is returned when a value does not fit the parameter type
	ErrInvalidParameterValue = errors.New("invalid parameter value")
)

// Error reports a parameter that could not be resolved
type Error struct {
	Err       error
	Parameter ids.ParameterID
	Value     string
	Allowed   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err == ErrInvalidParameterValue {
		return fmt.Sprintf("invalid value '%s' for deployment parameter '%s' (allowed: %s)", e.Value, e.Parameter, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("deployment parameter '%s' is mandatory and has no value", e.Parameter)
}

// Unwrap returns the sentinel
func (e *Error) Unwrap() error {
	return e.Err
}

// Resolve returns the value of every declared parameter that has one,
// keyed by parameter id. Supplied values win over defaults. Supplied values
// for undeclared parameters are ignored.
func Resolve(declared []model.DeploymentParameterConfig, supplied map[ids.ParameterID]string) (map[string]string, error) {
	resolved := make(map[string]string, len(declared))
	for _, p := range declared {
		value, ok := supplied[p.ID]
		switch {
		case ok:
		case p.Default != nil:
			value = *p.Default
		case !p.Optional:
			return nil, &Error{Err: ErrMissingMandatoryParameter, Parameter: p.ID}
		default:
			continue
		}
		if err := check(p, value); err != nil {
			return nil, err
		}
		resolved[p.ID.String()] = value
	}
	return resolved, nil
}

func check(p model.DeploymentParameterConfig, value string) error {
	switch p.Type {
	case model.ParameterBoolean:
		if value != "true" && value != "false" {
			return &Error{Err: ErrInvalidParameterValue, Parameter: p.ID, Value: value, Allowed: []string{"true", "false"}}
		}
	case model.ParameterSelection:
		if !p.HasOption(value) {
			allowed := make([]string, len(p.Options))
			for i, o := range p.Options {
				allowed[i] = o.ID
			}
			return &Error{Err: ErrInvalidParameterValue, Parameter: p.ID, Value: value, Allowed: allowed}
		}
	}
	return nil
}

// Undeclared returns the supplied parameter ids that are not declared, in
// sorted order
func Undeclared(declared []model.DeploymentParameterConfig, supplied map[ids.ParameterID]string) []ids.ParameterID {
	known := make(map[ids.ParameterID]bool, len(declared))
	for _, p := range declared {
		known[p.ID] = true
	}
	var out []ids.ParameterID
	for _, id := range ids.SortedKeys(supplied) {
		if !known[id] {
			out = append(out, id)
		}
	}
	return out
}

// ParseAssignments parses "key=value" pairs into supplied parameter values
func ParseAssignments(pairs []string) (map[ids.ParameterID]string, error) {
	out := make(map[ids.ParameterID]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter '%s' (expected <id>=<value>)", pair)
		}
		id, err := ids.ParseParameterID(strings.TrimSpace(key))
		if err != nil {
			return nil, err
		}
		out[id] = value
	}
	return out, nil
}
