package model

import (
	"fmt"
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
)

// ResourceType is the type of an external resource that can be bound to a junction
type ResourceType string

const (
	// ResourceTypeTopic is a DSH kafka topic
	ResourceTypeTopic ResourceType = "dsh-topic"
	// ResourceTypeStream is a DSH internal or public stream
	ResourceTypeStream ResourceType = "dsh-stream"
)

// ResourceTypes lists all supported resource types
var ResourceTypes = []ResourceType{ResourceTypeTopic, ResourceTypeStream}

// ParseResourceType validates s as a resource type
func ParseResourceType(s string) (ResourceType, error) {
	for _, rt := range ResourceTypes {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown resource type '%s'", s)
}

// ResourceIdentifier refers to a concrete external resource
type ResourceIdentifier struct {
	Type ResourceType   `json:"type" yaml:"type"`
	ID   ids.ResourceID `json:"id" yaml:"id"`
}

// ParseResourceIdentifier parses the "<type>:<id>" notation
func ParseResourceIdentifier(s string) (ResourceIdentifier, error) {
	typePart, idPart, ok := strings.Cut(s, ":")
	if !ok {
		return ResourceIdentifier{}, fmt.Errorf("invalid resource identifier '%s' (expected <type>:<id>)", s)
	}
	rt, err := ParseResourceType(typePart)
	if err != nil {
		return ResourceIdentifier{}, err
	}
	id, err := ids.ParseResourceID(idPart)
	if err != nil {
		return ResourceIdentifier{}, err
	}
	return ResourceIdentifier{Type: rt, ID: id}, nil
}

// String returns the "<type>:<id>" notation
func (r ResourceIdentifier) String() string {
	return string(r.Type) + ":" + r.ID.String()
}
