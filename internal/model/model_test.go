package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestCardinality(t *testing.T) {
	tests := []struct {
		name     string
		c        Cardinality
		count    int
		allowed  bool
		absence  bool
		rendered string
	}{
		{name: "defaults to exactly one", c: Cardinality{}, count: 1, allowed: true, rendered: "1..1"},
		{name: "defaults reject zero", c: Cardinality{}, count: 0, allowed: false, rendered: "1..1"},
		{name: "optional list", c: NewCardinality(0, 3), count: 0, allowed: true, rendered: "0..3"},
		{name: "above max", c: NewCardinality(0, 3), count: 4, allowed: false, rendered: "0..3"},
		{name: "only min set", c: Cardinality{Min: intPtr(0)}, count: 1, allowed: true, rendered: "0..1"},
		{name: "unused junction", c: NewCardinality(0, 0), count: 0, allowed: true, absence: true, rendered: "0..0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.c.Allows(tt.count))
			assert.Equal(t, tt.rendered, tt.c.String())
			assert.Equal(t, tt.absence, JunctionConfig{Cardinality: tt.c}.AllowsAbsence())
		})
	}
}

func TestJunctionConfig_Allows(t *testing.T) {
	j := JunctionConfig{AllowedResourceTypes: []ResourceType{ResourceTypeTopic}}
	assert.True(t, j.Allows(ResourceTypeTopic))
	assert.False(t, j.Allows(ResourceTypeStream))
}

func TestParseResourceIdentifier(t *testing.T) {
	r, err := ParseResourceIdentifier("dsh-topic:observations")
	require.NoError(t, err)
	assert.Equal(t, ResourceTypeTopic, r.Type)
	assert.Equal(t, "observations", r.ID.String())
	assert.Equal(t, "dsh-topic:observations", r.String())

	for _, bad := range []string{"observations", "kafka:observations", "dsh-topic:Bad Id"} {
		_, err := ParseResourceIdentifier(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsValidEnvName(t *testing.T) {
	for _, name := range []string{"INPUT_TOPIC", "_HIDDEN", "a1"} {
		assert.True(t, IsValidEnvName(name), name)
	}
	for _, name := range []string{"", "1ST", "WITH-DASH", "WITH SPACE"} {
		assert.False(t, IsValidEnvName(name), name)
	}
}

func TestParseEnums(t *testing.T) {
	k, err := ParseProcessorKind("dsh-app")
	require.NoError(t, err)
	assert.Equal(t, KindApp, k)
	_, err = ParseProcessorKind("dsh-job")
	assert.Error(t, err)

	v, err := ParseVariableType("outbound-junction")
	require.NoError(t, err)
	assert.True(t, v.IsReference())
	assert.False(t, VariableTemplate.IsReference())

	p, err := ParseDeploymentParameterType("selection")
	require.NoError(t, err)
	assert.Equal(t, ParameterSelection, p)
	_, err = ParseDeploymentParameterType("number")
	assert.Error(t, err)
}

func TestProcessorConfig_KindAccessors(t *testing.T) {
	svc := &ProcessorConfig{Kind: KindService, Service: &ServiceConfig{
		Profiles:             []ProfileConfig{{CPUs: 0.5}},
		EnvironmentVariables: map[string]VariableBinding{"A": {Type: VariableValue}},
	}}
	assert.Len(t, svc.Profiles(), 1)
	assert.Len(t, svc.EnvironmentVariables(), 1)

	app := &ProcessorConfig{Kind: KindApp, App: &AppConfig{ManifestID: "kpn/eavesdropper", ManifestVersion: "0.9.3"}}
	assert.Empty(t, app.Profiles())
	assert.Equal(t, "kpn/eavesdropper:0.9.3", app.App.ManifestURN())
}
