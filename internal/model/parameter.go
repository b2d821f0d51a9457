package model

import (
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
)

// DeploymentParameterType is the input type of a deployment parameter
type DeploymentParameterType string

const (
	ParameterBoolean     DeploymentParameterType = "boolean"
	ParameterFreeText    DeploymentParameterType = "free-text"
	ParameterSelection   DeploymentParameterType = "selection"
	ParameterSinkTopic   DeploymentParameterType = "sink-topic"
	ParameterSourceTopic DeploymentParameterType = "source-topic"
)

// ParameterTypes lists all deployment parameter types
var ParameterTypes = []DeploymentParameterType{
	ParameterBoolean, ParameterFreeText, ParameterSelection, ParameterSinkTopic, ParameterSourceTopic,
}

// ParseDeploymentParameterType validates s as a parameter type
func ParseDeploymentParameterType(s string) (DeploymentParameterType, error) {
	for _, t := range ParameterTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown deployment parameter type '%s'", s)
}

// Option is one choice of a selection parameter
type Option struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DeploymentParameterConfig declares a parameter that is supplied at deploy time
type DeploymentParameterConfig struct {
	Type         DeploymentParameterType `json:"type" yaml:"type"`
	ID           ids.ParameterID         `json:"id" yaml:"id"`
	Label        string                  `json:"label" yaml:"label"`
	Description  string                  `json:"description" yaml:"description"`
	InitialValue *string                 `json:"initialValue,omitempty" yaml:"initial-value,omitempty"`
	Options      []Option                `json:"options,omitempty" yaml:"options,omitempty"`
	Optional     bool                    `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default      *string                 `json:"default,omitempty" yaml:"default,omitempty"`
}

// HasOption reports whether id is one of the parameter's options
func (p DeploymentParameterConfig) HasOption(id string) bool {
	for _, o := range p.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}
