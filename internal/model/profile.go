package model

import "github.com/kpn-dsh/dsh-cli-sub001/internal/ids"

// MinimumCPUs is the smallest cpu share a profile may request
const MinimumCPUs = 0.1

// ProfileConfig is a named sizing choice for a deployment
type ProfileConfig struct {
	ID                   ids.ProfileID              `json:"id" yaml:"id"`
	Label                string                     `json:"label" yaml:"label"`
	Description          string                     `json:"description" yaml:"description"`
	CPUs                 float64                    `json:"cpus" yaml:"cpus"`
	Instances            uint64                     `json:"instances" yaml:"instances"`
	Mem                  uint64                     `json:"mem" yaml:"mem"`
	EnvironmentVariables map[string]VariableBinding `json:"environmentVariables,omitempty" yaml:"environment-variables,omitempty"`
}
