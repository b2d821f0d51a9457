package model

// PortMapping describes how a container port is exposed
type PortMapping struct {
	Auth         string   `json:"auth,omitempty" yaml:"auth,omitempty"`
	Mode         string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Paths        []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	ServiceGroup string   `json:"serviceGroup,omitempty" yaml:"service-group,omitempty"`
	TLS          string   `json:"tls,omitempty" yaml:"tls,omitempty"`
	VHost        string   `json:"vhost,omitempty" yaml:"vhost,omitempty"`
	Whitelist    string   `json:"whitelist,omitempty" yaml:"whitelist,omitempty"`
}

// HealthCheck is the http probe the platform runs against a service
type HealthCheck struct {
	Path     string `json:"path" yaml:"path"`
	Port     int    `json:"port" yaml:"port"`
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// Metrics is the endpoint the platform scrapes
type Metrics struct {
	Path string `json:"path" yaml:"path"`
	Port int    `json:"port" yaml:"port"`
}

// Injection places a secret into the container
type Injection struct {
	Env string `json:"env" yaml:"env"`
}

// Secret references a tenant secret and where it is injected
type Secret struct {
	Name       string      `json:"name" yaml:"name"`
	Injections []Injection `json:"injections" yaml:"injections"`
}

// Volume mounts a tenant volume at a path
type Volume struct {
	Name string `json:"name" yaml:"name"`
}

// ServiceConfig is the dsh-service specific part of a processor
type ServiceConfig struct {
	Image                string                     `json:"image" yaml:"image"`
	ExposedPorts         map[string]PortMapping     `json:"exposedPorts,omitempty" yaml:"exposed-ports,omitempty"`
	HealthCheck          *HealthCheck               `json:"healthCheck,omitempty" yaml:"health-check,omitempty"`
	Metrics              *Metrics                   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Secrets              []Secret                   `json:"secrets,omitempty" yaml:"secrets,omitempty"`
	Volumes              map[string]Volume          `json:"volumes,omitempty" yaml:"volumes,omitempty"`
	SingleInstance       bool                       `json:"singleInstance" yaml:"single-instance"`
	NeedsToken           bool                       `json:"needsToken" yaml:"needs-token"`
	SpreadGroup          string                     `json:"spreadGroup,omitempty" yaml:"spread-group,omitempty"`
	EnvironmentVariables map[string]VariableBinding `json:"environmentVariables,omitempty" yaml:"environment-variables,omitempty"`
	Profiles             []ProfileConfig            `json:"profiles" yaml:"profiles"`
}

// AppConfig is the dsh-app specific part of a processor: an app catalog manifest
type AppConfig struct {
	ManifestID           string                     `json:"manifestId" yaml:"manifest-id"`
	ManifestVersion      string                     `json:"manifestVersion" yaml:"manifest-version"`
	EnvironmentVariables map[string]VariableBinding `json:"environmentVariables,omitempty" yaml:"environment-variables,omitempty"`
	Profiles             []ProfileConfig            `json:"profiles,omitempty" yaml:"profiles,omitempty"`
}

// ManifestURN is the app catalog reference "<manifest-id>:<version>"
func (a AppConfig) ManifestURN() string {
	return a.ManifestID + ":" + a.ManifestVersion
}
