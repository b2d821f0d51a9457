package loader

// The types in this file mirror the TOML layout of a processor file. They
// are decoded strictly and then converted into the model types.

type fileConfig struct {
	Processor         fileProcessor           `toml:"processor"`
	InboundJunctions  map[string]fileJunction `toml:"inbound-junctions"`
	OutboundJunctions map[string]fileJunction `toml:"outbound-junctions"`
	Deploy            fileDeploy              `toml:"deploy"`
	Service           *fileService            `toml:"dsh-service"`
	App               *fileApp                `toml:"dsh-app"`
}

type fileProcessor struct {
	ID          string `toml:"id"`
	Kind        string `toml:"kind"`
	Label       string `toml:"label"`
	Description string `toml:"description"`
	Version     string `toml:"version"`
}

type fileJunction struct {
	Label                string   `toml:"label"`
	Description          string   `toml:"description"`
	Min                  *int     `toml:"min"`
	Max                  *int     `toml:"max"`
	AllowedResourceTypes []string `toml:"allowed-resource-types"`
}

type fileDeploy struct {
	Parameters []fileParameter `toml:"parameters"`
}

type fileParameter struct {
	Type         string       `toml:"type"`
	ID           string       `toml:"id"`
	Label        string       `toml:"label"`
	Description  string       `toml:"description"`
	InitialValue *string      `toml:"initial-value"`
	Options      []fileOption `toml:"options"`
	Optional     bool         `toml:"optional"`
	Default      *string      `toml:"default"`
}

type fileOption struct {
	ID          string `toml:"id"`
	Label       string `toml:"label"`
	Description string `toml:"description"`
}

type fileBinding struct {
	Type  string  `toml:"type"`
	ID    string  `toml:"id"`
	Value *string `toml:"value"`
}

type fileProfile struct {
	ID                   string                 `toml:"id"`
	Label                string                 `toml:"label"`
	Description          string                 `toml:"description"`
	CPUs                 float64                `toml:"cpus"`
	Instances            int64                  `toml:"instances"`
	Mem                  int64                  `toml:"mem"`
	EnvironmentVariables map[string]fileBinding `toml:"environment-variables"`
}

type filePort struct {
	Auth         string   `toml:"auth"`
	Mode         string   `toml:"mode"`
	Paths        []string `toml:"paths"`
	ServiceGroup string   `toml:"service-group"`
	TLS          string   `toml:"tls"`
	VHost        string   `toml:"vhost"`
	Whitelist    string   `toml:"whitelist"`
}

type fileEndpoint struct {
	Path     string `toml:"path"`
	Port     int    `toml:"port"`
	Protocol string `toml:"protocol"`
}

type fileSecret struct {
	Name       string          `toml:"name"`
	Injections []fileInjection `toml:"injections"`
}

type fileInjection struct {
	Env string `toml:"env"`
}

type fileVolume struct {
	Name string `toml:"name"`
}

type fileService struct {
	Image                string                 `toml:"image"`
	ExposedPorts         map[string]filePort    `toml:"exposed-ports"`
	HealthCheck          *fileEndpoint          `toml:"health-check"`
	Metrics              *fileEndpoint          `toml:"metrics"`
	Secrets              []fileSecret           `toml:"secrets"`
	Volumes              map[string]fileVolume  `toml:"volumes"`
	SingleInstance       bool                   `toml:"single-instance"`
	NeedsToken           bool                   `toml:"needs-token"`
	SpreadGroup          string                 `toml:"spread-group"`
	EnvironmentVariables map[string]fileBinding `toml:"environment-variables"`
	Profiles             []fileProfile          `toml:"profiles"`
}

type fileApp struct {
	ManifestID           string                 `toml:"manifest-id"`
	ManifestVersion      string                 `toml:"manifest-version"`
	EnvironmentVariables map[string]fileBinding `toml:"environment-variables"`
	Profiles             []fileProfile          `toml:"profiles"`
}
