// Package envbind computes the environment of a deployment from the
// variable bindings of a processor and the resolved junctions, parameters
// and template mapping.
package envbind

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/template"
)

// Fixed variables set on every deployment
const (
	EnvProcessorID         = "PIPELINE_PROCESSOR_ID"
	EnvProcessorTechnology = "PIPELINE_PROCESSOR_TECHNOLOGY"
	EnvDeploymentName      = "PIPELINE_DEPLOYMENT_NAME"
	EnvPipelineID          = "PIPELINE_ID"
)

var (
	// ErrMissingJunctionBinding is returned when a variable refers to a junction without a resolved value
	ErrMissingJunctionBinding = errors.New("missing junction binding")
	// ErrMissingParameterBinding is returned when a variable refers to a parameter without a resolved value
	ErrMissingParameterBinding = errors.New("missing parameter binding")
	// ErrInvalidBinding is returned for a binding that lacks its reference or value
	ErrInvalidBinding = errors.New("invalid binding")
)

// Error reports the environment variable that could not be bound
type Error struct {
	Env string
	Ref string
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("environment variable %s: %v '%s'", e.Env, e.Err, e.Ref)
	}
	return fmt.Sprintf("environment variable %s: %v", e.Env, e.Err)
}

// Unwrap returns the cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Input holds everything a deployment environment is computed from
type Input struct {
	ProcessorID    ids.ProcessorID
	Kind           model.ProcessorKind
	PipelineID     ids.PipelineID
	DeploymentName string

	// Bindings is the processor table, ProfileBindings the table of the
	// selected profile which is applied after it
	Bindings        map[string]model.VariableBinding
	ProfileBindings map[string]model.VariableBinding

	Inbound    map[ids.JunctionID]string
	Outbound   map[ids.JunctionID]string
	Parameters map[string]string
	Mapping    template.Mapping
}

// Bind returns the environment of the deployment. The fixed variables are
// set first, then the processor table and then the profile table, so later
// entries overwrite earlier ones.
func Bind(in Input) (map[string]string, error) {
	env := map[string]string{
		EnvProcessorID:         in.ProcessorID.String(),
		EnvProcessorTechnology: string(in.Kind),
		EnvDeploymentName:      in.DeploymentName,
	}
	if !in.PipelineID.IsZero() {
		env[EnvPipelineID] = in.PipelineID.String()
	}

	for _, table := range []map[string]model.VariableBinding{in.Bindings, in.ProfileBindings} {
		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value, err := in.value(name, table[name])
			if err != nil {
				return nil, err
			}
			env[name] = value
		}
	}
	return env, nil
}

func (in Input) value(name string, b model.VariableBinding) (string, error) {
	switch b.Type {
	case model.VariableInboundJunction, model.VariableOutboundJunction:
		junctions := in.Inbound
		if b.Type == model.VariableOutboundJunction {
			junctions = in.Outbound
		}
		id, err := ids.ParseJunctionID(b.RefID)
		if err != nil {
			return "", &Error{Env: name, Ref: b.RefID, Err: ErrMissingJunctionBinding}
		}
		value, ok := junctions[id]
		if !ok {
			return "", &Error{Env: name, Ref: b.RefID, Err: ErrMissingJunctionBinding}
		}
		return value, nil
	case model.VariableDeploymentParameter:
		value, ok := in.Parameters[b.RefID]
		if !ok {
			return "", &Error{Env: name, Ref: b.RefID, Err: ErrMissingParameterBinding}
		}
		return value, nil
	case model.VariableTemplate:
		if b.Value == nil {
			return "", &Error{Env: name, Err: ErrInvalidBinding}
		}
		value, err := template.Resolve(*b.Value, in.Mapping)
		if err != nil {
			return "", &Error{Env: name, Err: err}
		}
		return value, nil
	case model.VariableValue:
		if b.Value == nil {
			return "", &Error{Env: name, Err: ErrInvalidBinding}
		}
		return *b.Value, nil
	}
	return "", &Error{Env: name, Err: fmt.Errorf("%w: unknown type '%s'", ErrInvalidBinding, b.Type)}
}
