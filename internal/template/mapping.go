package template

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/config"
)

// Mapping holds the values placeholders resolve to. A Mapping is treated as
// immutable once built; the With methods return copies.
type Mapping map[Placeholder]string

// TargetMapping builds the mapping part that is fixed for a deployment target.
// Empty target fields are left out so that templates referring to them fail.
func TargetMapping(target config.Target) Mapping {
	m := Mapping{}
	set := func(p Placeholder, value string) {
		if value != "" {
			m[p] = value
		}
	}
	set(AppDomain, target.AppDomain)
	set(ConsoleURL, target.ConsoleURL)
	set(DshInternalDomain, target.InternalDomain)
	set(MonitoringURL, target.MonitoringURL)
	set(Platform, target.Platform)
	set(PublicVhostsDomain, target.PublicVhostsDomain)
	set(Realm, target.Realm)
	set(RestAccessTokenURL, target.RestAccessTokenURL)
	set(RestAPIURL, target.RestAPIURL)
	set(Tenant, target.Tenant)
	set(User, target.User)
	return m
}

// WithDeployment returns a copy of m extended with the values of a single
// deployment and freshly generated random values
func (m Mapping) WithDeployment(pipelineID, processorID, deploymentName string) Mapping {
	out := m.clone()
	out[PipelineID] = pipelineID
	out[ProcessorID] = processorID
	out[DeploymentName] = deploymentName
	id := uuid.New().String()
	out[RandomUUID] = id
	out[Random] = strings.ReplaceAll(id, "-", "")[:8]
	return out
}

// With returns a copy of m with one value set
func (m Mapping) With(p Placeholder, value string) Mapping {
	out := m.clone()
	out[p] = value
	return out
}

func (m Mapping) clone() Mapping {
	out := make(Mapping, len(m)+6)
	for k, v := range m {
		out[k] = v
	}
	return out
}
