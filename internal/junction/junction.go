// Package junction binds the junctions of a processor to concrete
// resources. Every bound junction is reduced to a single string, the joined
// connection strings of its resources, which can be handed to the
// environment variable binder.
package junction

import (
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/resource"
)

// DefaultSeparator joins the resources of one junction
const DefaultSeparator = ","

// Bindings maps junctions to the resources bound to them
type Bindings map[ids.JunctionID][]model.ResourceIdentifier

// Resolver resolves junction bindings against a resource registry
type Resolver struct {
	Registry  resource.Registry
	Separator string
}

// NewResolver returns a resolver using the default separator
func NewResolver(registry resource.Registry) *Resolver {
	return &Resolver{Registry: registry, Separator: DefaultSeparator}
}

// Resolve checks the bindings of one direction against the declared
// junctions and returns the joined value per junction.
//
// A junction that is absent from bindings is only accepted when both its
// bounds are zero; a junction bound to an empty list is checked against its
// cardinality like any other count. Bound junctions that are not declared
// are ignored here, see UnknownJunctions.
func (r *Resolver) Resolve(direction model.Direction, bindings Bindings, configs map[ids.JunctionID]model.JunctionConfig) (map[ids.JunctionID]string, error) {
	sep := r.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	resolved := make(map[ids.JunctionID]string, len(configs))
	for _, id := range ids.SortedKeys(configs) {
		config := configs[id]
		resources, bound := bindings[id]
		if !bound {
			if !config.AllowsAbsence() {
				return nil, &Error{Err: ErrMissingRequiredJunction, Direction: direction, Junction: id, Cardinality: config.Cardinality}
			}
			continue
		}

		for _, res := range resources {
			if !config.Allows(res.Type) {
				return nil, &Error{Err: ErrWrongResourceType, Direction: direction, Junction: id, Resource: res}
			}
		}
		if !config.Cardinality.Allows(len(resources)) {
			return nil, &Error{Err: ErrCardinalityViolation, Direction: direction, Junction: id, Count: len(resources), Cardinality: config.Cardinality}
		}

		values := make([]string, 0, len(resources))
		for _, res := range resources {
			value, ok := r.lookup(res)
			if !ok {
				return nil, &Error{Err: ErrUnresolvableResource, Direction: direction, Junction: id, Resource: res}
			}
			values = append(values, value)
		}
		resolved[id] = strings.Join(values, sep)
	}
	return resolved, nil
}

func (r *Resolver) lookup(res model.ResourceIdentifier) (string, bool) {
	if r.Registry == nil {
		return "", false
	}
	return r.Registry.ResolveTopic(res)
}

// UnknownJunctions returns the bound junctions that are not declared, in
// sorted order
func UnknownJunctions(bindings Bindings, configs map[ids.JunctionID]model.JunctionConfig) []ids.JunctionID {
	var unknown []ids.JunctionID
	for _, id := range ids.SortedKeys(bindings) {
		if _, ok := configs[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}
