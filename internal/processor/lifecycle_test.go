package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/envbind"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/junction"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/parameter"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/platform"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/profile"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/resource"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/storage"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/template"
)

func strPtr(s string) *string { return &s }

var (
	inboundTopic = ids.MustJunctionID("inbound-topic")
	topicA       = model.ResourceIdentifier{Type: model.ResourceTypeTopic, ID: ids.MustResourceID("topic-a")}
)

// scenarioConfig is a processor with one required inbound topic junction, an
// optional retries parameter and a single default profile
func scenarioConfig() *model.ProcessorConfig {
	return &model.ProcessorConfig{
		ID:    ids.MustProcessorID("greenbox"),
		Label: "Greenbox",
		Kind:  model.KindService,
		InboundJunctions: map[ids.JunctionID]model.JunctionConfig{
			inboundTopic: {
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
			},
			Profiles: []model.ProfileConfig{
				{ID: ids.MustProfileID("default"), Label: "Default", CPUs: 0.5, Instances: 1, Mem: 512},
			},
		},
	}
}

type fixture struct {
	api      *platform.MemoryAPI
	history  *storage.MemoryStore
	instance *Instance
}

func newFixture(config *model.ProcessorConfig) *fixture {
	f := &fixture{api: platform.NewMemoryAPI(), history: storage.NewMemoryStore()}
	f.instance = NewRealization(config).Instance(ids.MustPipelineID("weather"), Dependencies{
		API:      f.api,
		Registry: resource.TopicNamingRegistry{Tenant: "greenbox-dev"},
		Mapping:  template.Mapping{template.Tenant: "greenbox-dev", template.User: "1903:1903"},
		User:     "1903:1903",
		History:  f.history,
	})
	return f
}

func TestDeploymentName(t *testing.T) {
	f := newFixture(scenarioConfig())
	assert.Equal(t, "weather-greenbox", f.instance.DeploymentName())
}

func TestDeployScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(scenarioConfig())

	d, err := f.instance.Deploy(ctx, DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}})
	require.NoError(t, err)

	app, ok := d.(*descriptor.Application)
	require.True(t, ok)
	assert.Equal(t, "3", app.Env["RETRIES"])
	assert.Equal(t, 0.5, app.CPUs)
	assert.Equal(t, uint64(512), app.Mem)
	assert.Equal(t, uint64(1), app.Instances)
	assert.Equal(t, "registry.cp.kpn-dsh.com/greenbox-dev/greenbox:0.1.0", app.Image)
	assert.Equal(t, "1903:1903", app.User)
	assert.Equal(t, map[string]string{
		"RETRIES":                      "3",
		envbind.EnvProcessorID:         "greenbox",
		envbind.EnvProcessorTechnology: "dsh-service",
		envbind.EnvDeploymentName:      "weather-greenbox",
		envbind.EnvPipelineID:          "weather",
	}, app.Env)

	stored, ok := f.api.Descriptor(model.KindService, "weather-greenbox")
	require.True(t, ok)
	assert.Same(t, d, stored)

	records, err := f.history.List(ctx, "weather-greenbox", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, storage.ActionDeploy, records[0].Action)
	assert.True(t, records[0].Succeeded())
	var payload map[string]any
	require.NoError(t, json.Unmarshal(records[0].Descriptor, &payload))
	assert.Equal(t, 0.5, payload["cpus"])
}

func TestDeployMissingRequiredJunction(t *testing.T) {
	f := newFixture(scenarioConfig())
	_, err := f.instance.Deploy(context.Background(), DeployRequest{})
	require.ErrorIs(t, err, junction.ErrMissingRequiredJunction)
	assert.Empty(t, f.api.Names(model.KindService))

	records, _ := f.history.List(context.Background(), "", 0)
	assert.Empty(t, records)
}

func TestPlanErrors(t *testing.T) {
	otherProfile := ids.MustProfileID("large")

	tests := []struct {
		name    string
		mutate  func(c *model.ProcessorConfig)
		req     DeployRequest
		wantErr error
	}{
		{
			name:    "unknown inbound junction",
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}, ids.MustJunctionID("extra"): {topicA}}},
			wantErr: junction.ErrUnknownJunction,
		},
		{
			name:    "unknown outbound junction",
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}, Outbound: junction.Bindings{inboundTopic: {topicA}}},
			wantErr: junction.ErrUnknownJunction,
		},
		{
			name: "wrong resource type",
			req: DeployRequest{Inbound: junction.Bindings{inboundTopic: {
				{Type: model.ResourceTypeStream, ID: ids.MustResourceID("weather")},
			}}},
			wantErr: junction.ErrWrongResourceType,
		},
		{
			name:    "too many resources",
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA, topicA}}},
			wantErr: junction.ErrCardinalityViolation,
		},
		{
			name: "missing mandatory parameter",
			mutate: func(c *model.ProcessorConfig) {
				c.DeploymentParameters[0].Optional = false
				c.DeploymentParameters[0].Default = nil
			},
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}},
			wantErr: parameter.ErrMissingMandatoryParameter,
		},
		{
			name:    "profile not found",
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}, Profile: &otherProfile},
			wantErr: profile.ErrProfileNotFound,
		},
		{
			name: "ambiguous profile",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.Profiles = append(c.Service.Profiles, model.ProfileConfig{ID: otherProfile, CPUs: 1, Instances: 2, Mem: 1024})
			},
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}},
			wantErr: profile.ErrAmbiguousDefaultProfile,
		},
		{
			name: "unresolved template",
			mutate: func(c *model.ProcessorConfig) {
				c.Service.EnvironmentVariables["URL"] = model.VariableBinding{Type: model.VariableTemplate, Value: strPtr("${CONSOLE_URL}")}
			},
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}},
			wantErr: template.ErrUnresolvedPlaceholder,
		},
		{
			name: "binding to unbound junction",
			mutate: func(c *model.ProcessorConfig) {
				c.OutboundJunctions = map[ids.JunctionID]model.JunctionConfig{
					ids.MustJunctionID("dead-letter"): {Label: "Dead letter", Cardinality: model.NewCardinality(0, 0), AllowedResourceTypes: []model.ResourceType{model.ResourceTypeTopic}},
				}
				c.Service.EnvironmentVariables["DEAD_LETTER"] = model.VariableBinding{Type: model.VariableOutboundJunction, RefID: "dead-letter"}
			},
			req:     DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}},
			wantErr: envbind.ErrMissingJunctionBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := scenarioConfig()
			if tt.mutate != nil {
				tt.mutate(config)
			}
			f := newFixture(config)
			d, err := f.instance.Plan(context.Background(), tt.req)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlanProfileOverrides(t *testing.T) {
	config := scenarioConfig()
	large := ids.MustProfileID("large")
	config.Service.Profiles = append(config.Service.Profiles, model.ProfileConfig{
		ID: large, CPUs: 2, Instances: 3, Mem: 4096,
		EnvironmentVariables: map[string]model.VariableBinding{"RETRIES": {Type: model.VariableValue, Value: strPtr("10")}},
	})
	f := newFixture(config)

	d, err := f.instance.Plan(context.Background(), DeployRequest{
		Inbound:    junction.Bindings{inboundTopic: {topicA}},
		Parameters: map[ids.ParameterID]string{ids.MustParameterID("retries"): "5", ids.MustParameterID("unknown"): "x"},
		Profile:    &large,
	})
	require.NoError(t, err)
	app := d.(*descriptor.Application)
	assert.Equal(t, "10", app.Env["RETRIES"])
	assert.Equal(t, uint64(3), app.Instances)
	assert.Equal(t, 2.0, app.CPUs)
	assert.Empty(t, f.api.Names(model.KindService))
}

func TestPlanSeparator(t *testing.T) {
	config := scenarioConfig()
	config.InboundJunctions[inboundTopic] = model.JunctionConfig{
		Cardinality:          model.NewCardinality(1, 2),
		AllowedResourceTypes: []model.ResourceType{model.ResourceTypeTopic},
	}
	config.Service.EnvironmentVariables["INPUT"] = model.VariableBinding{Type: model.VariableInboundJunction, RefID: "inbound-topic"}
	f := newFixture(config)
	f.instance.Separator = ";"

	topicB := model.ResourceIdentifier{Type: model.ResourceTypeTopic, ID: ids.MustResourceID("topic-b")}
	d, err := f.instance.Plan(context.Background(), DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA, topicB}}})
	require.NoError(t, err)
	assert.Equal(t, "scratch.topic-a.greenbox-dev;scratch.topic-b.greenbox-dev", d.(*descriptor.Application).Env["INPUT"])
}

func TestDeployApp(t *testing.T) {
	config := &model.ProcessorConfig{
		ID:    ids.MustProcessorID("eavesdropper"),
		Label: "Eavesdropper",
		Kind:  model.KindApp,
		InboundJunctions: map[ids.JunctionID]model.JunctionConfig{
			inboundTopic: {Cardinality: model.NewCardinality(1, 1), AllowedResourceTypes: []model.ResourceType{model.ResourceTypeTopic}},
		},
		App: &model.AppConfig{
			ManifestID:      "kpn/eavesdropper",
			ManifestVersion: "0.9.3",
			EnvironmentVariables: map[string]model.VariableBinding{
				"TOPIC": {Type: model.VariableInboundJunction, RefID: "inbound-topic"},
			},
		},
	}
	f := newFixture(config)

	d, err := f.instance.Deploy(context.Background(), DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}})
	require.NoError(t, err)
	app, ok := d.(*descriptor.AppCatalogApp)
	require.True(t, ok)
	assert.Equal(t, "weather-eavesdropper", app.Name)
	assert.Equal(t, "kpn/eavesdropper:0.9.3", app.ManifestURN)
	assert.Equal(t, "scratch.topic-a.greenbox-dev", app.Configuration["TOPIC"])
	assert.Equal(t, []string{"weather-eavesdropper"}, f.api.Names(model.KindApp))
}

func TestDeployAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		apiErr  error
		wantErr error
	}{
		{name: "not found is unexpected", apiErr: platform.NotFound("tenant"), wantErr: ErrUnexpected},
		{name: "not authorized", apiErr: platform.NotAuthorized("expired token"), wantErr: ErrNotAuthorized},
		{name: "unexpected", apiErr: platform.Unexpected("bad gateway"), wantErr: ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(scenarioConfig())
			f.api.Err = tt.apiErr

			_, err := f.instance.Deploy(context.Background(), DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}})
			require.ErrorIs(t, err, tt.wantErr)
			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "deploy", perr.Op)
			assert.Equal(t, tt.apiErr, perr.Cause)
			assert.Contains(t, err.Error(), tt.apiErr.Error())

			records, _ := f.history.List(context.Background(), "", 0)
			require.Len(t, records, 1)
			assert.False(t, records[0].Succeeded())
		})
	}
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(scenarioConfig())

	status, err := f.instance.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{Deployed: false}, status)
	assert.Equal(t, "undeployed", status.String())

	f.api.Provision = false
	_, err = f.instance.Deploy(ctx, DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}})
	require.NoError(t, err)
	status, err = f.instance.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Deployed)
	require.NotNil(t, status.Up)
	assert.False(t, *status.Up)
	assert.Equal(t, "down", status.String())

	f.api.Provision = true
	_, err = f.instance.Deploy(ctx, DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}})
	require.NoError(t, err)
	status, err = f.instance.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "up", status.String())

	f.api.Err = platform.NotAuthorized("")
	_, err = f.instance.Status(ctx)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUndeploy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(scenarioConfig())

	deleted, err := f.instance.Undeploy(ctx)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = f.instance.Deploy(ctx, DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}})
	require.NoError(t, err)
	deleted, err = f.instance.Undeploy(ctx)
	require.NoError(t, err)
	assert.True(t, deleted)

	status, err := f.instance.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Deployed)

	records, err := f.history.List(ctx, "weather-greenbox", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	actions := []storage.Action{records[0].Action, records[1].Action}
	assert.ElementsMatch(t, []storage.Action{storage.ActionDeploy, storage.ActionUndeploy}, actions)

	f.api.Err = platform.Unexpected("boom")
	deleted, err = f.instance.Undeploy(ctx)
	assert.False(t, deleted)
	assert.ErrorIs(t, err, ErrUnexpected)
}

func TestStartStopNotImplemented(t *testing.T) {
	f := newFixture(scenarioConfig())
	assert.ErrorIs(t, f.instance.Start(context.Background()), ErrNotImplemented)
	assert.ErrorIs(t, f.instance.Stop(context.Background()), ErrNotImplemented)
}

func TestSubmitPlannedDescriptor(t *testing.T) {
	ctx := context.Background()
	config := scenarioConfig()
	group := "grp-${RANDOM}"
	config.Service.EnvironmentVariables["GROUP"] = model.VariableBinding{Type: model.VariableTemplate, Value: &group}
	f := newFixture(config)
	req := DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}}

	planned, err := f.instance.Plan(ctx, req)
	require.NoError(t, err)
	again, err := f.instance.Plan(ctx, req)
	require.NoError(t, err)
	require.NotEqual(t, planned.(*descriptor.Application).Env["GROUP"], again.(*descriptor.Application).Env["GROUP"])

	require.NoError(t, f.instance.Submit(ctx, planned))

	stored, ok := f.api.Descriptor(model.KindService, "weather-greenbox")
	require.True(t, ok)
	assert.Same(t, planned, stored)
	assert.Regexp(t, `^grp-[0-9a-f]{8}$`, stored.(*descriptor.Application).Env["GROUP"])

	records, err := f.history.List(ctx, "weather-greenbox", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Succeeded())
}

func TestSubmitPlatformError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(scenarioConfig())
	planned, err := f.instance.Plan(ctx, DeployRequest{Inbound: junction.Bindings{inboundTopic: {topicA}}})
	require.NoError(t, err)

	f.api.Err = platform.NotAuthorized("token expired")
	err = f.instance.Submit(ctx, planned)
	require.ErrorIs(t, err, ErrNotAuthorized)

	records, err := f.history.List(ctx, "weather-greenbox", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Succeeded())
}
