// Package resource maps resource identifiers to the connection strings
// (topic names) that are handed to deployed processors.
package resource

import (
	"github.com/kpn-dsh/dsh-cli-sub001/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

// Registry resolves a resource to its connection string
type Registry interface {
	ResolveTopic(id model.ResourceIdentifier) (string, bool)
}

// StaticRegistry resolves from fixed tables per resource type
type StaticRegistry struct {
	topics  map[string]string
	streams map[string]string
}

// NewStaticRegistry returns a registry backed by the given tables, keyed by
// resource id
func NewStaticRegistry(topics, streams map[string]string) *StaticRegistry {
	return &StaticRegistry{topics: topics, streams: streams}
}

// ResolveTopic implements Registry
func (r *StaticRegistry) ResolveTopic(id model.ResourceIdentifier) (string, bool) {
	var table map[string]string
	switch id.Type {
	case model.ResourceTypeTopic:
		table = r.topics
	case model.ResourceTypeStream:
		table = r.streams
	}
	value, ok := table[id.ID.String()]
	return value, ok
}

// TopicNamingRegistry derives names with the DSH naming scheme:
// "scratch.<id>.<tenant>" for topics and "stream.<id>.<tenant>" for streams
type TopicNamingRegistry struct {
	Tenant string
}

// ResolveTopic implements Registry
func (r TopicNamingRegistry) ResolveTopic(id model.ResourceIdentifier) (string, bool) {
	if r.Tenant == "" {
		return "", false
	}
	switch id.Type {
	case model.ResourceTypeTopic:
		return "scratch." + id.ID.String() + "." + r.Tenant, true
	case model.ResourceTypeStream:
		return "stream." + id.ID.String() + "." + r.Tenant, true
	}
	return "", false
}

type chain []Registry

// Chain returns a registry that asks each registry in turn and returns the first hit
func Chain(registries ...Registry) Registry {
	return chain(registries)
}

func (c chain) ResolveTopic(id model.ResourceIdentifier) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if value, ok := r.ResolveTopic(id); ok {
			return value, true
		}
	}
	return "", false
}

// FromSettings builds the registry described by the resources settings
func FromSettings(settings *config.Settings) Registry {
	static := NewStaticRegistry(settings.Resources.Topics, settings.Resources.Streams)
	if !settings.Resources.Naming {
		return static
	}
	return Chain(static, TopicNamingRegistry{Tenant: settings.Target.Tenant})
}
