package ids

import (
	"regexp"
	"sort"
)

var (
	processorPattern = regexp.MustCompile(`^[a-z][a-z0-9]{0,19}$`)
	pipelinePattern  = regexp.MustCompile(`^[a-z][a-z0-9]{0,19}$`)
	junctionPattern  = regexp.MustCompile(`^[a-z][a-z0-9-]{0,49}$`)
	parameterPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,49}$`)
	profilePattern   = regexp.MustCompile(`^[a-z][a-z0-9-]{0,19}$`)
	resourcePattern  = regexp.MustCompile(`^[a-z][a-z0-9._-]{0,99}$`)
)

type processor struct{}

func (processor) name() string            { return "processor id" }
func (processor) pattern() *regexp.Regexp { return processorPattern }

type pipeline struct{}

func (pipeline) name() string            { return "pipeline id" }
func (pipeline) pattern() *regexp.Regexp { return pipelinePattern }

type junction struct{}

func (junction) name() string            { return "junction id" }
func (junction) pattern() *regexp.Regexp { return junctionPattern }

type parameter struct{}

func (parameter) name() string            { return "parameter id" }
func (parameter) pattern() *regexp.Regexp { return parameterPattern }

type profile struct{}

func (profile) name() string            { return "profile id" }
func (profile) pattern() *regexp.Regexp { return profilePattern }

type resource struct{}

func (resource) name() string            { return "resource id" }
func (resource) pattern() *regexp.Regexp { return resourcePattern }

// Identifier types
type (
	ProcessorID = ID[processor]
	PipelineID  = ID[pipeline]
	JunctionID  = ID[junction]
	ParameterID = ID[parameter]
	ProfileID   = ID[profile]
	ResourceID  = ID[resource]
)

// ParseProcessorID validates s as a processor id
func ParseProcessorID(s string) (ProcessorID, error) { return parse[processor](s) }

// ParsePipelineID validates s as a pipeline id
func ParsePipelineID(s string) (PipelineID, error) { return parse[pipeline](s) }

// ParseJunctionID validates s as a junction id
func ParseJunctionID(s string) (JunctionID, error) { return parse[junction](s) }

// ParseParameterID validates s as a deployment parameter id
func ParseParameterID(s string) (ParameterID, error) { return parse[parameter](s) }

// ParseProfileID validates s as a profile id
func ParseProfileID(s string) (ProfileID, error) { return parse[profile](s) }

// ParseResourceID validates s as a resource id
func ParseResourceID(s string) (ResourceID, error) { return parse[resource](s) }

// The Must variants are meant for literals known to be valid and panic otherwise.

func MustProcessorID(s string) ProcessorID { return mustParse[processor](s) }
func MustPipelineID(s string) PipelineID   { return mustParse[pipeline](s) }
func MustJunctionID(s string) JunctionID   { return mustParse[junction](s) }
func MustParameterID(s string) ParameterID { return mustParse[parameter](s) }
func MustProfileID(s string) ProfileID     { return mustParse[profile](s) }
func MustResourceID(s string) ResourceID   { return mustParse[resource](s) }

// SortedKeys returns the keys of an identifier keyed map in lexical order
func SortedKeys[K kind, V any](m map[ID[K]]V) []ID[K] {
	keys := make([]ID[K], 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].value < keys[j].value })
	return keys
}
