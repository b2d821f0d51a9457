package model

import "fmt"

// Direction tells whether a junction receives or emits data
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Cardinality bounds the number of resources bound to a junction. Nil bounds
// default to one.
type Cardinality struct {
	Min *int `json:"min,omitempty" yaml:"min,omitempty"`
	Max *int `json:"max,omitempty" yaml:"max,omitempty"`
}

// Bounds returns the effective minimum and maximum
func (c Cardinality) Bounds() (min, max int) {
	min, max = 1, 1
	if c.Min != nil {
		min = *c.Min
	}
	if c.Max != nil {
		max = *c.Max
	}
	return min, max
}

// Allows reports whether count resources satisfy the cardinality
func (c Cardinality) Allows(count int) bool {
	min, max := c.Bounds()
	return count >= min && count <= max
}

// String formats the cardinality as "min..max"
func (c Cardinality) String() string {
	min, max := c.Bounds()
	return fmt.Sprintf("%d..%d", min, max)
}

// NewCardinality returns a cardinality with both bounds set
func NewCardinality(min, max int) Cardinality {
	return Cardinality{Min: &min, Max: &max}
}

// JunctionConfig describes one connection point of a processor
type JunctionConfig struct {
	Label                string         `json:"label" yaml:"label"`
	Description          string         `json:"description" yaml:"description"`
	Cardinality          Cardinality    `json:"cardinality" yaml:"cardinality"`
	AllowedResourceTypes []ResourceType `json:"allowedResourceTypes" yaml:"allowed-resource-types"`
}

// Allows reports whether a resource of type rt may be bound to the junction
func (j JunctionConfig) Allows(rt ResourceType) bool {
	for _, allowed := range j.AllowedResourceTypes {
		if allowed == rt {
			return true
		}
	}
	return false
}

// AllowsAbsence reports whether the junction may be left out of the bindings
// altogether, which requires both bounds to be zero
func (j JunctionConfig) AllowsAbsence() bool {
	min, max := j.Cardinality.Bounds()
	return min == 0 && max == 0
}
