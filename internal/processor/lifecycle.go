package processor

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/envbind"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/junction"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/parameter"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/platform"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/profile"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/storage"
)

// DeployRequest holds the caller supplied part of a deployment
type DeployRequest struct {
	Inbound    junction.Bindings
	Outbound   junction.Bindings
	Parameters map[ids.ParameterID]string
	Profile    *ids.ProfileID
}

// Status is the deployment state as reported by the platform. Up is only
// set for deployed instances.
type Status struct {
	Deployed bool  `json:"deployed" yaml:"deployed"`
	Up       *bool `json:"up,omitempty" yaml:"up,omitempty"`
}

// String returns "undeployed", "up" or "down"
func (s Status) String() string {
	switch {
	case !s.Deployed:
		return "undeployed"
	case s.Up != nil && *s.Up:
		return "up"
	}
	return "down"
}

// Plan resolves a request into the descriptor that would be deployed. It
// stops at the first failure and has no side effects.
func (i *Instance) Plan(ctx context.Context, req DeployRequest) (descriptor.Descriptor, error) {
	config := i.Realization.Config

	for _, dir := range []struct {
		direction model.Direction
		bindings  junction.Bindings
	}{{model.Inbound, req.Inbound}, {model.Outbound, req.Outbound}} {
		if unknown := junction.UnknownJunctions(dir.bindings, config.Junctions(dir.direction)); len(unknown) > 0 {
			return nil, &junction.Error{Err: junction.ErrUnknownJunction, Direction: dir.direction, Junction: unknown[0]}
		}
	}

	resolver := &junction.Resolver{Registry: i.Registry, Separator: i.Separator}
	inbound, err := resolver.Resolve(model.Inbound, req.Inbound, config.InboundJunctions)
	if err != nil {
		return nil, err
	}
	outbound, err := resolver.Resolve(model.Outbound, req.Outbound, config.OutboundJunctions)
	if err != nil {
		return nil, err
	}

	for _, id := range parameter.Undeclared(config.DeploymentParameters, req.Parameters) {
		i.Logger.Warn("ignoring undeclared deployment parameter", zap.String("parameter", id.String()))
	}
	parameters, err := parameter.Resolve(config.DeploymentParameters, req.Parameters)
	if err != nil {
		return nil, err
	}

	selected, err := i.selectProfile(req.Profile)
	if err != nil {
		return nil, err
	}

	name := i.DeploymentName()
	mapping := i.Mapping.WithDeployment(i.Pipeline.String(), config.ID.String(), name)
	in := envbind.Input{
		ProcessorID:    config.ID,
		Kind:           config.Kind,
		PipelineID:     i.Pipeline,
		DeploymentName: name,
		Bindings:       config.EnvironmentVariables(),
		Inbound:        inbound,
		Outbound:       outbound,
		Parameters:     parameters,
		Mapping:        mapping,
	}
	if selected != nil {
		in.ProfileBindings = selected.EnvironmentVariables
	}
	env, err := envbind.Bind(in)
	if err != nil {
		return nil, err
	}

	return descriptor.Build(descriptor.Input{
		Config:  config,
		Profile: selected,
		Env:     env,
		User:    i.User,
		Name:    name,
		Mapping: mapping,
	})
}

// selectProfile picks the profile of the deployment. App catalog apps may
// be deployed without one.
func (i *Instance) selectProfile(requested *ids.ProfileID) (*model.ProfileConfig, error) {
	profiles := i.Realization.Config.Profiles()
	if i.Kind() == model.KindApp && requested == nil && len(profiles) == 0 {
		return nil, nil
	}
	p, err := profile.Select(profiles, requested)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Deploy plans the deployment and submits it to the platform
func (i *Instance) Deploy(ctx context.Context, req DeployRequest) (descriptor.Descriptor, error) {
	d, err := i.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := i.Submit(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Submit creates the deployment from a planned descriptor. The descriptor is
// sent as given and not planned again.
func (i *Instance) Submit(ctx context.Context, d descriptor.Descriptor) error {
	name := i.DeploymentName()
	i.Logger.Info("deploying", zap.String("kind", string(i.Kind())))
	if err := i.API.Create(ctx, name, d); err != nil {
		err = apiError("deploy", name, err)
		i.record(ctx, storage.ActionDeploy, d, err)
		return err
	}
	i.record(ctx, storage.ActionDeploy, d, nil)
	return nil
}

// Status returns the deployment state. A deployment the platform does not
// know is reported as undeployed.
func (i *Instance) Status(ctx context.Context) (Status, error) {
	name := i.DeploymentName()
	status, err := i.API.AllocationStatus(ctx, i.Kind(), name)
	if errors.Is(err, platform.ErrNotFound) {
		return Status{Deployed: false}, nil
	}
	if err != nil {
		return Status{}, apiError("status", name, err)
	}
	up := status.Provisioned
	return Status{Deployed: true, Up: &up}, nil
}

// Undeploy deletes the deployment. It returns false when there was nothing
// to delete.
func (i *Instance) Undeploy(ctx context.Context) (bool, error) {
	name := i.DeploymentName()
	err := i.API.Delete(ctx, i.Kind(), name)
	if errors.Is(err, platform.ErrNotFound) {
		i.Logger.Debug("nothing to undeploy")
		return false, nil
	}
	if err != nil {
		err = apiError("undeploy", name, err)
		i.record(ctx, storage.ActionUndeploy, nil, err)
		return false, err
	}
	i.Logger.Info("undeployed")
	i.record(ctx, storage.ActionUndeploy, nil, nil)
	return true, nil
}

// Start is not supported by the platform integration
func (i *Instance) Start(ctx context.Context) error {
	return &Error{Op: "start", Deployment: i.DeploymentName(), Err: ErrNotImplemented}
}

// Stop is not supported by the platform integration
func (i *Instance) Stop(ctx context.Context) error {
	return &Error{Op: "stop", Deployment: i.DeploymentName(), Err: ErrNotImplemented}
}

// record writes the outcome of an operation to the history, if any. History
// failures are logged and do not fail the operation.
func (i *Instance) record(ctx context.Context, action storage.Action, d descriptor.Descriptor, opErr error) {
	if i.History == nil {
		return
	}
	rec := &storage.DeploymentRecord{
		Name:        i.DeploymentName(),
		ProcessorID: i.Realization.Config.ID.String(),
		PipelineID:  i.Pipeline.String(),
		Kind:        string(i.Kind()),
		Action:      action,
	}
	if d != nil {
		data, err := json.Marshal(d)
		if err == nil {
			rec.Descriptor = data
		}
	}
	if opErr != nil {
		rec.Error = opErr.Error()
	}
	if err := i.History.Record(ctx, rec); err != nil {
		i.Logger.Warn("failed to record deployment history", zap.Error(err))
	}
}
