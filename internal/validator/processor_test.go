package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

func strPtr(s string) *string { return &s }

func validService() *model.ProcessorConfig {
	return &model.ProcessorConfig{
		ID:    ids.MustProcessorID("greenbox"),
		Label: "Greenbox",
		Kind:  model.KindService,
		InboundJunctions: map[ids.JunctionID]model.JunctionConfig{
			ids.MustJunctionID("inbound-topic"): {
				Label:                "Inbound topic",
				Cardinality:          model.NewCardinality(1, 1),
				AllowedResourceTypes: []model.ResourceType{model.ResourceTypeTopic},
			},
		},
		DeploymentParameters: []model.DeploymentParameterConfig{
			{Type: model.ParameterFreeText, ID: ids.MustParameterID("retries"), Label: "Retries", Optional: true, Default: strPtr("3")},
		},
		Service: &model.ServiceConfig{
			Image: "registry.cp.kpn-dsh.com/${TENANT}/greenbox:0.1.0",
			EnvironmentVariables: map[string]model.VariableBinding{
				"RETRIES": {Type: model.VariableDeploymentParameter, RefID: "retries"},
				"INPUT":   {Type: model.VariableInboundJunction, RefID: "inbound-topic"},
				"GROUP":   {Type: model.VariableTemplate, Value: strPtr("${TENANT}_${PROCESSOR_ID}")},
			},
			HealthCheck: &model.HealthCheck{Path: "/health", Port: 8080},
			Profiles: []model.ProfileConfig{
				{ID: ids.MustProfileID("default"), Label: "Default", CPUs: 0.5, Instances: 1, Mem: 512},
			},
		},
	}
}

func fields(r *ValidationResult) []string {
	var out []string
	for _, e := range r.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateProcessorValid(t *testing.T) {
	result := ValidateProcessor(validService())
	assert.True(t, result.Valid, result.Format("greenbox"))
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateProcessorErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.ProcessorConfig)
		field  string
	}{
		{
			name:   "missing label",
			mutate: func(c *model.ProcessorConfig) { c.Label = "" },
			field:  "processor.label",
		},
		{
			name:   "unknown kind",
			mutate: func(c *model.ProcessorConfig) { c.Kind = "dsh-lambda" },
			field:  "processor.kind",
		},
		{
			name:   "missing service block",
			mutate: func(c *model.ProcessorConfig) { c.Service = nil },
			field:  "dsh-service",
		},
		{
			name: "min greater than max",
			mutate: func(c *model.ProcessorConfig) {
				c.InboundJunctions[ids.MustJunctionID("inbound-topic")] = model.JunctionConfig{
					Label:                "Inbound",
					Cardinality:          model.NewCardinality(2, 1),
					AllowedResourceTypes: []model.ResourceType{model.ResourceTypeTopic},
				}
			},
			field: "inbound-junctions.inbound-topic",
		},
		{
			name: "no allowed resource types",
			mutate: func(c *model.ProcessorConfig) {
				c.InboundJunctions[ids.MustJunctionID("inbound-topic")] = model.JunctionConfig{Label: "Inbound"}
			},
			field: "inbound-junctions.inbound-topic.allowed-resource-types",
		},
		{
			name: "junction in both directions",
			mutate: func(c *model.ProcessorConfig) {
				c.OutboundJunctions = map[ids.JunctionID]model.JunctionConfig{
					ids.MustJunctionID("inbound-topic"): {
						Label:                "Outbound",
						AllowedResourceTypes: []model.ResourceType{model.ResourceTypeTopic},
					},
				}
			},
			field: "junctions",
		},
		{
			name:   "optional parameter without default",
			mutate: func(c *model.ProcessorConfig) { c.DeploymentParameters[0].Default = nil },
			field:  "deploy.parameters.retries.default",
		},
		{
			name: "selection without options",
			mutate: func(c *model.ProcessorConfig) {
				c.DeploymentParameters[0].Type = model.ParameterSelection
				c.DeploymentParameters[0].Default = nil
				c.DeploymentParameters[0].Optional = false
			},
			field: "deploy.parameters.retries.options",
		},
		{
			name: "boolean default not a boolean",
			mutate: func(c *model.ProcessorConfig) {
				c.DeploymentParameters[0].Type = model.ParameterBoolean
			},
			field: "deploy.parameters.retries.default",
		},
		{
			name: "duplicate parameter",
			mutate: func(c *model.ProcessorConfig) {
				c.DeploymentParameters = append(c.DeploymentParameters, c.DeploymentParameters[0])
			},
			field: "deploy.parameters.retries",
		},
		{
			name: "binding to undeclared parameter",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.EnvironmentVariables["RETRIES"] = model.VariableBinding{Type: model.VariableDeploymentParameter, RefID: "timeout"}
			},
			field: "dsh-service.environment-variables.RETRIES.id",
		},
		{
			name: "binding to junction of wrong direction",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.EnvironmentVariables["INPUT"] = model.VariableBinding{Type: model.VariableOutboundJunction, RefID: "inbound-topic"}
			},
			field: "dsh-service.environment-variables.INPUT.id",
		},
		{
			name: "junction binding without ref",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.EnvironmentVariables["INPUT"] = model.VariableBinding{Type: model.VariableInboundJunction}
			},
			field: "dsh-service.environment-variables.INPUT.id",
		},
		{
			name: "value binding without value",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.EnvironmentVariables["MODE"] = model.VariableBinding{Type: model.VariableValue}
			},
			field: "dsh-service.environment-variables.MODE.value",
		},
		{
			name: "template with unknown placeholder",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.EnvironmentVariables["GROUP"] = model.VariableBinding{Type: model.VariableTemplate, Value: strPtr("${HOSTNAME}")}
			},
			field: "dsh-service.environment-variables.GROUP.value",
		},
		{
			name: "invalid env name",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.EnvironmentVariables["1ST"] = model.VariableBinding{Type: model.VariableValue, Value: strPtr("x")}
			},
			field: "dsh-service.environment-variables.1ST",
		},
		{
			name:   "image with unknown placeholder",
			mutate: func(c *model.ProcessorConfig) { c.Service.Image = "registry/${IMAGE}:1" },
			field:  "dsh-service.image",
		},
		{
			name:   "malformed image",
			mutate: func(c *model.ProcessorConfig) { c.Service.Image = "registry/Greenbox::1" },
			field:  "dsh-service.image",
		},
		{
			name:   "no profiles",
			mutate: func(c *model.ProcessorConfig) { c.Service.Profiles = nil },
			field:  "dsh-service.profiles",
		},
		{
			name:   "too few cpus",
			mutate: func(c *model.ProcessorConfig) { c.Service.Profiles[0].CPUs = 0.05 },
			field:  "dsh-service.profiles.default.cpus",
		},
		{
			name:   "no instances",
			mutate: func(c *model.ProcessorConfig) { c.Service.Profiles[0].Instances = 0 },
			field:  "dsh-service.profiles.default.instances",
		},
		{
			name:   "no memory",
			mutate: func(c *model.ProcessorConfig) { c.Service.Profiles[0].Mem = 0 },
			field:  "dsh-service.profiles.default.mem",
		},
		{
			name: "profile binding to undeclared parameter",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.Profiles[0].EnvironmentVariables = map[string]model.VariableBinding{
					"LEVEL": {Type: model.VariableDeploymentParameter, RefID: "level"},
				}
			},
			field: "dsh-service.profiles.default.environment-variables.LEVEL.id",
		},
		{
			name: "health check port out of range",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.HealthCheck.Port = 70000
			},
			field: "dsh-service.health-check.port",
		},
		{
			name: "exposed port not a number",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.ExposedPorts = map[string]model.PortMapping{"http": {}}
			},
			field: "dsh-service.exposed-ports.http",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validService()
			tt.mutate(config)
			result := ValidateProcessor(config)
			require.False(t, result.Valid)
			assert.Contains(t, fields(result), tt.field)
		})
	}
}

func TestValidateProcessorDefaultProfileWarning(t *testing.T) {
	config := validService()
	config.Service.Profiles = []model.ProfileConfig{
		{ID: ids.MustProfileID("small"), Label: "Small", CPUs: 0.1, Instances: 1, Mem: 256},
		{ID: ids.MustProfileID("large"), Label: "Large", CPUs: 1, Instances: 3, Mem: 2048},
	}

	result := ValidateProcessor(config)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "dsh-service.profiles", result.Warnings[0].Field)
}

func TestValidateAppProcessor(t *testing.T) {
	config := &model.ProcessorConfig{
		ID:    ids.MustProcessorID("eavesdropper"),
		Label: "Eavesdropper",
		Kind:  model.KindApp,
		App:   &model.AppConfig{ManifestID: "kpn/eavesdropper", ManifestVersion: "0.9.3"},
	}
	assert.True(t, ValidateProcessor(config).Valid)

	config.App.ManifestVersion = ""
	result := ValidateProcessor(config)
	assert.False(t, result.Valid)
	assert.Contains(t, fields(result), "dsh-app.manifest-version")
}

func TestValidateAppReservedEnvironmentVariables(t *testing.T) {
	value := strPtr("2")
	config := &model.ProcessorConfig{
		ID:    ids.MustProcessorID("eavesdropper"),
		Label: "Eavesdropper",
		Kind:  model.KindApp,
		App: &model.AppConfig{
			ManifestID:      "kpn/eavesdropper",
			ManifestVersion: "0.9.3",
			EnvironmentVariables: map[string]model.VariableBinding{
				"instances": {Type: model.VariableValue, Value: value},
				"TOPICS":    {Type: model.VariableValue, Value: value},
			},
		},
	}

	result := ValidateProcessor(config)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"dsh-app.environment-variables.instances"}, fields(result))

	service := validService()
	service.Service.EnvironmentVariables["instances"] = model.VariableBinding{Type: model.VariableValue, Value: value}
	assert.True(t, ValidateProcessor(service).Valid)
}

func TestResultFormat(t *testing.T) {
	result := NewResult()
	result.AddError("processor.id", "Processor id is required", "Add an id")
	result.AddWarning("dsh-service.profiles", "Multiple profiles", "Name one default")

	out := result.Format("greenbox.toml")
	assert.True(t, strings.HasPrefix(out, "✗ greenbox.toml: validation failed with 1 error(s)"))
	assert.Contains(t, out, "ERROR: Processor id is required")
	assert.Contains(t, out, "Fix: Add an id")
	assert.Contains(t, out, "WARNING: Multiple profiles")
}

func TestResultMerge(t *testing.T) {
	a := NewResult()
	b := NewResult()
	b.AddError("x", "broken", "")
	a.Merge(b)
	assert.False(t, a.Valid)
	assert.Len(t, a.Errors, 1)

	a.Merge(nil)
	assert.Len(t, a.Errors, 1)
}
