// Package descriptor assembles the payloads that are submitted to the DSH
// platform to create or update a deployment.
package descriptor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/template"
)

var (
	// ErrInvalidImage is returned when the resolved image is not a valid reference
	ErrInvalidImage = errors.New("invalid image")
	// ErrMissingProfile is returned when a service is built without a profile
	ErrMissingProfile = errors.New("missing profile")
	// ErrUnsupportedKind is returned for a processor without a known kind block
	ErrUnsupportedKind = errors.New("unsupported processor kind")
)

// Descriptor is a fully resolved deployment payload
type Descriptor interface {
	Kind() model.ProcessorKind
}

// Application is the payload of a dsh-service deployment
type Application struct {
	CPUs           float64                      `json:"cpus" yaml:"cpus"`
	Env            map[string]string            `json:"env" yaml:"env"`
	ExposedPorts   map[string]model.PortMapping `json:"exposedPorts,omitempty" yaml:"exposedPorts,omitempty"`
	HealthCheck    *model.HealthCheck           `json:"healthCheck,omitempty" yaml:"healthCheck,omitempty"`
	Image          string                       `json:"image" yaml:"image"`
	Instances      uint64                       `json:"instances" yaml:"instances"`
	Mem            uint64                       `json:"mem" yaml:"mem"`
	Metrics        *model.Metrics               `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	NeedsToken     bool                         `json:"needsToken" yaml:"needsToken"`
	Secrets        []model.Secret               `json:"secrets,omitempty" yaml:"secrets,omitempty"`
	SingleInstance bool                         `json:"singleInstance" yaml:"singleInstance"`
	SpreadGroup    string                       `json:"spreadGroup,omitempty" yaml:"spreadGroup,omitempty"`
	User           string                       `json:"user" yaml:"user"`
	Volumes        map[string]model.Volume      `json:"volumes,omitempty" yaml:"volumes,omitempty"`
}

// Kind implements Descriptor
func (*Application) Kind() model.ProcessorKind { return model.KindService }

// AppCatalogApp is the payload of a dsh-app deployment
type AppCatalogApp struct {
	Configuration map[string]string `json:"configuration" yaml:"configuration"`
	ManifestURN   string            `json:"manifestUrn" yaml:"manifestUrn"`
	Name          string            `json:"name" yaml:"name"`
	Stopped       bool              `json:"stopped" yaml:"stopped"`
}

// Kind implements Descriptor
func (*AppCatalogApp) Kind() model.ProcessorKind { return model.KindApp }

// Keys of an app configuration that carry the profile. They take precedence
// over environment variables of the same name.
const (
	AppConfigCPUs      = "cpus"
	AppConfigMem       = "mem"
	AppConfigInstances = "instances"
)

// AppConfigKeys are the configuration keys reserved for the profile
var AppConfigKeys = []string{AppConfigCPUs, AppConfigMem, AppConfigInstances}

// Input holds everything a descriptor is built from
type Input struct {
	Config  *model.ProcessorConfig
	Profile *model.ProfileConfig
	Env     map[string]string
	User    string
	Name    string
	Mapping template.Mapping
}

// Build assembles the descriptor for the kind of the processor. It has no
// side effects.
func Build(in Input) (Descriptor, error) {
	switch {
	case in.Config.Kind == model.KindService && in.Config.Service != nil:
		return buildApplication(in)
	case in.Config.Kind == model.KindApp && in.Config.App != nil:
		return buildAppCatalogApp(in), nil
	}
	return nil, fmt.Errorf("%w '%s'", ErrUnsupportedKind, in.Config.Kind)
}

func buildApplication(in Input) (*Application, error) {
	if in.Profile == nil {
		return nil, ErrMissingProfile
	}
	svc := in.Config.Service
	image, err := ResolveImage(svc.Image, in.Mapping)
	if err != nil {
		return nil, err
	}
	return &Application{
		CPUs:           in.Profile.CPUs,
		Env:            copyEnv(in.Env),
		ExposedPorts:   copyPorts(svc.ExposedPorts),
		HealthCheck:    clone(svc.HealthCheck),
		Image:          image,
		Instances:      in.Profile.Instances,
		Mem:            in.Profile.Mem,
		Metrics:        clone(svc.Metrics),
		NeedsToken:     svc.NeedsToken,
		Secrets:        copySecrets(svc.Secrets),
		SingleInstance: svc.SingleInstance,
		SpreadGroup:    svc.SpreadGroup,
		User:           in.User,
		Volumes:        maps.Clone(svc.Volumes),
	}, nil
}

func buildAppCatalogApp(in Input) *AppCatalogApp {
	configuration := copyEnv(in.Env)
	if in.Profile != nil {
		configuration[AppConfigCPUs] = strconv.FormatFloat(in.Profile.CPUs, 'f', -1, 64)
		configuration[AppConfigMem] = strconv.FormatUint(in.Profile.Mem, 10)
		configuration[AppConfigInstances] = strconv.FormatUint(in.Profile.Instances, 10)
	}
	return &AppCatalogApp{
		Configuration: configuration,
		ManifestURN:   in.Config.App.ManifestURN(),
		Name:          in.Name,
		Stopped:       false,
	}
}

// ResolveImage resolves the placeholders in an image template and checks the
// result is a valid image reference
func ResolveImage(image string, mapping template.Mapping) (string, error) {
	resolved, err := template.Resolve(image, mapping)
	if err != nil {
		return "", fmt.Errorf("image: %w", err)
	}
	if _, err := name.ParseReference(resolved); err != nil {
		return "", fmt.Errorf("%w '%s': %v", ErrInvalidImage, resolved, err)
	}
	return resolved, nil
}

func copyEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env)+3)
	for k, v := range env {
		out[k] = v
	}
	return out
}

// copyPorts deep copies ports so a descriptor shares nothing with the loaded
// configuration
func copyPorts(ports map[string]model.PortMapping) map[string]model.PortMapping {
	if ports == nil {
		return nil
	}
	out := make(map[string]model.PortMapping, len(ports))
	for k, p := range ports {
		p.Paths = slices.Clone(p.Paths)
		out[k] = p
	}
	return out
}

func copySecrets(secrets []model.Secret) []model.Secret {
	if secrets == nil {
		return nil
	}
	out := make([]model.Secret, len(secrets))
	for i, s := range secrets {
		s.Injections = slices.Clone(s.Injections)
		out[i] = s
	}
	return out
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
