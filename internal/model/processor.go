package model

import (
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
)

// ProcessorKind is the platform technology a processor is deployed with
type ProcessorKind string

const (
	KindService ProcessorKind = "dsh-service"
	KindApp     ProcessorKind = "dsh-app"
)

// ProcessorKinds lists all supported kinds
var ProcessorKinds = []ProcessorKind{KindService, KindApp}

// ParseProcessorKind validates s as a processor kind
func ParseProcessorKind(s string) (ProcessorKind, error) {
	for _, k := range ProcessorKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown processor kind '%s'", s)
}

// ProcessorConfig is the static description of a processor type, loaded
// from a configuration file and read-only afterwards.
//
// Exactly one of Service and App is set, matching Kind.
type ProcessorConfig struct {
	ID                   ids.ProcessorID                   `json:"id" yaml:"id"`
	Label                string                            `json:"label" yaml:"label"`
	Description          string                            `json:"description" yaml:"description"`
	Version              string                            `json:"version,omitempty" yaml:"version,omitempty"`
	Kind                 ProcessorKind                     `json:"kind" yaml:"kind"`
	InboundJunctions     map[ids.JunctionID]JunctionConfig `json:"inboundJunctions,omitempty" yaml:"inbound-junctions,omitempty"`
	OutboundJunctions    map[ids.JunctionID]JunctionConfig `json:"outboundJunctions,omitempty" yaml:"outbound-junctions,omitempty"`
	DeploymentParameters []DeploymentParameterConfig       `json:"deploymentParameters,omitempty" yaml:"deployment-parameters,omitempty"`
	Service              *ServiceConfig                    `json:"service,omitempty" yaml:"service,omitempty"`
	App                  *AppConfig                        `json:"app,omitempty" yaml:"app,omitempty"`
}

// Profiles returns the kind specific profiles
func (p *ProcessorConfig) Profiles() []ProfileConfig {
	switch {
	case p.Service != nil:
		return p.Service.Profiles
	case p.App != nil:
		return p.App.Profiles
	}
	return nil
}

// EnvironmentVariables returns the kind specific environment variable bindings
func (p *ProcessorConfig) EnvironmentVariables() map[string]VariableBinding {
	switch {
	case p.Service != nil:
		return p.Service.EnvironmentVariables
	case p.App != nil:
		return p.App.EnvironmentVariables
	}
	return nil
}

// Junctions returns the junction declarations for a direction
func (p *ProcessorConfig) Junctions(d Direction) map[ids.JunctionID]JunctionConfig {
	if d == Outbound {
		return p.OutboundJunctions
	}
	return p.InboundJunctions
}

// Parameter returns the declared parameter with the given id
func (p *ProcessorConfig) Parameter(id ids.ParameterID) (DeploymentParameterConfig, bool) {
	for _, dp := range p.DeploymentParameters {
		if dp.ID == id {
			return dp, true
		}
	}
	return DeploymentParameterConfig{}, false
}
