// Package template resolves ${NAME} placeholders in configuration strings
// against a closed set of named values describing the deployment target and
// the deployment itself.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Placeholder names one of the values a template may refer to
type Placeholder string

// Placeholders known to the resolver
const (
	AppDomain          Placeholder = "APP_DOMAIN"
	ConsoleURL         Placeholder = "CONSOLE_URL"
	DeploymentName     Placeholder = "DEPLOYMENT_NAME"
	DshInternalDomain  Placeholder = "DSH_INTERNAL_DOMAIN"
	MonitoringURL      Placeholder = "MONITORING_URL"
	PipelineID         Placeholder = "PIPELINE_ID"
	Platform           Placeholder = "PLATFORM"
	ProcessorID        Placeholder = "PROCESSOR_ID"
	PublicVhostsDomain Placeholder = "PUBLIC_VHOSTS_DOMAIN"
	Random             Placeholder = "RANDOM"
	RandomUUID         Placeholder = "RANDOM_UUID"
	Realm              Placeholder = "REALM"
	RestAccessTokenURL Placeholder = "REST_ACCESS_TOKEN_URL"
	RestAPIURL         Placeholder = "REST_API_URL"
	Tenant             Placeholder = "TENANT"
	User               Placeholder = "USER"
)

// All lists every known placeholder
var All = []Placeholder{
	AppDomain, ConsoleURL, DeploymentName, DshInternalDomain, MonitoringURL,
	PipelineID, Platform, ProcessorID, PublicVhostsDomain, Random, RandomUUID,
	Realm, RestAccessTokenURL, RestAPIURL, Tenant, User,
}

// placeholderRegex matches ${NAME} tokens, group 1 is the name
var placeholderRegex = regexp.MustCompile(`\$\{([A-Z][A-Z0-9_]*)\}`)

// ErrUnresolvedPlaceholder is matched by UnresolvedPlaceholderError
var ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

// UnresolvedPlaceholderError reports a token whose name has no value or is
// not allowed
type UnresolvedPlaceholderError struct {
	Name     string
	Template string
}

// Error implements the error interface
func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder ${%s} in template '%s'", e.Name, e.Template)
}

// Is reports whether target is ErrUnresolvedPlaceholder
func (e *UnresolvedPlaceholderError) Is(target error) bool {
	return target == ErrUnresolvedPlaceholder
}

// Resolve substitutes every ${NAME} token in template with its value from
// mapping. Values are inserted verbatim and never resolved again. The first
// token without a value fails the whole resolution.
func Resolve(template string, mapping Mapping) (string, error) {
	matches := placeholderRegex.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := template[m[2]:m[3]]
		value, ok := mapping[Placeholder(name)]
		if !ok {
			return "", &UnresolvedPlaceholderError{Name: name, Template: template}
		}
		b.WriteString(template[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(template[last:])
	return b.String(), nil
}

// Validate checks that every token in template names an allowed placeholder,
// without requiring values
func Validate(template string, allowed []Placeholder) error {
	set := make(map[Placeholder]struct{}, len(allowed))
	for _, p := range allowed {
		set[p] = struct{}{}
	}
	for _, name := range Names(template) {
		if _, ok := set[Placeholder(name)]; !ok {
			return &UnresolvedPlaceholderError{Name: name, Template: template}
		}
	}
	return nil
}

// Names returns the placeholder names in template in order of appearance
func Names(template string) []string {
	matches := placeholderRegex.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
