package model

import (
	"fmt"
	"regexp"
)

// VariableType tells where the value of an environment variable comes from
type VariableType string

const (
	VariableInboundJunction     VariableType = "inbound-junction"
	VariableOutboundJunction    VariableType = "outbound-junction"
	VariableDeploymentParameter VariableType = "deployment-parameter"
	VariableTemplate            VariableType = "template"
	VariableValue               VariableType = "value"
)

// VariableTypes lists all variable binding types
var VariableTypes = []VariableType{
	VariableInboundJunction, VariableOutboundJunction, VariableDeploymentParameter, VariableTemplate, VariableValue,
}

// ParseVariableType validates s as a variable binding type
func ParseVariableType(s string) (VariableType, error) {
	for _, t := range VariableTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown environment variable type '%s'", s)
}

// IsReference reports whether the type refers to a junction or parameter by id
func (t VariableType) IsReference() bool {
	return t == VariableInboundJunction || t == VariableOutboundJunction || t == VariableDeploymentParameter
}

// VariableBinding declares how one environment variable gets its value.
// Reference types use RefID, template and value types use Value.
type VariableBinding struct {
	Type  VariableType `json:"type" yaml:"type"`
	RefID string       `json:"id,omitempty" yaml:"id,omitempty"`
	Value *string      `json:"value,omitempty" yaml:"value,omitempty"`
}

var envNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidEnvName checks if an environment variable name is valid
func IsValidEnvName(name string) bool {
	return envNameRegex.MatchString(name)
}
