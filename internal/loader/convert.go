package loader

import (
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/validator"
)

// converter turns the decoded file into model types, recording identifier
// and range problems in result
type converter struct {
	result *validator.ValidationResult
}

func (c *converter) processor(f *fileConfig) *model.ProcessorConfig {
	config := &model.ProcessorConfig{
		Label:       f.Processor.Label,
		Description: f.Processor.Description,
		Version:     f.Processor.Version,
		Kind:        model.ProcessorKind(f.Processor.Kind),
	}
	if f.Processor.ID != "" {
		id, err := ids.ParseProcessorID(f.Processor.ID)
		if err != nil {
			c.result.AddError("processor.id", err.Error(), "Use lowercase letters and digits, starting with a letter")
		}
		config.ID = id
	}

	config.InboundJunctions = c.junctions("inbound-junctions", f.InboundJunctions)
	config.OutboundJunctions = c.junctions("outbound-junctions", f.OutboundJunctions)

	for i, p := range f.Deploy.Parameters {
		if param, ok := c.parameter(i, p); ok {
			config.DeploymentParameters = append(config.DeploymentParameters, param)
		}
	}

	if f.Service != nil {
		config.Service = c.service(f.Service)
	}
	if f.App != nil {
		config.App = &model.AppConfig{
			ManifestID:           f.App.ManifestID,
			ManifestVersion:      f.App.ManifestVersion,
			EnvironmentVariables: bindings(f.App.EnvironmentVariables),
			Profiles:             c.profiles("dsh-app.profiles", f.App.Profiles),
		}
	}
	return config
}

func (c *converter) junctions(section string, in map[string]fileJunction) map[ids.JunctionID]model.JunctionConfig {
	if len(in) == 0 {
		return nil
	}
	out := make(map[ids.JunctionID]model.JunctionConfig, len(in))
	for key, j := range in {
		id, err := ids.ParseJunctionID(key)
		if err != nil {
			c.result.AddError(section+"."+key, err.Error(), "Use lowercase letters, digits and dashes, starting with a letter")
			continue
		}
		types := make([]model.ResourceType, 0, len(j.AllowedResourceTypes))
		for _, rt := range j.AllowedResourceTypes {
			types = append(types, model.ResourceType(rt))
		}
		out[id] = model.JunctionConfig{
			Label:                j.Label,
			Description:          j.Description,
			Cardinality:          model.Cardinality{Min: j.Min, Max: j.Max},
			AllowedResourceTypes: types,
		}
	}
	return out
}

func (c *converter) parameter(index int, p fileParameter) (model.DeploymentParameterConfig, bool) {
	out := model.DeploymentParameterConfig{
		Type:         model.DeploymentParameterType(p.Type),
		Label:        p.Label,
		Description:  p.Description,
		InitialValue: p.InitialValue,
		Optional:     p.Optional,
		Default:      p.Default,
	}
	for _, o := range p.Options {
		out.Options = append(out.Options, model.Option{ID: o.ID, Label: o.Label, Description: o.Description})
	}
	if p.ID != "" {
		id, err := ids.ParseParameterID(p.ID)
		if err != nil {
			c.result.AddError(fmt.Sprintf("deploy.parameters[%d].id", index), err.Error(), "Use lowercase letters, digits and dashes, starting with a letter")
			return out, false
		}
		out.ID = id
	}
	return out, true
}

func (c *converter) service(s *fileService) *model.ServiceConfig {
	out := &model.ServiceConfig{
		Image:                s.Image,
		SingleInstance:       s.SingleInstance,
		NeedsToken:           s.NeedsToken,
		SpreadGroup:          s.SpreadGroup,
		EnvironmentVariables: bindings(s.EnvironmentVariables),
		Profiles:             c.profiles("dsh-service.profiles", s.Profiles),
	}
	if len(s.ExposedPorts) > 0 {
		out.ExposedPorts = make(map[string]model.PortMapping, len(s.ExposedPorts))
		for port, p := range s.ExposedPorts {
			out.ExposedPorts[port] = model.PortMapping{
				Auth:         p.Auth,
				Mode:         p.Mode,
				Paths:        p.Paths,
				ServiceGroup: p.ServiceGroup,
				TLS:          p.TLS,
				VHost:        p.VHost,
				Whitelist:    p.Whitelist,
			}
		}
	}
	if s.HealthCheck != nil {
		out.HealthCheck = &model.HealthCheck{Path: s.HealthCheck.Path, Port: s.HealthCheck.Port, Protocol: s.HealthCheck.Protocol}
	}
	if s.Metrics != nil {
		out.Metrics = &model.Metrics{Path: s.Metrics.Path, Port: s.Metrics.Port}
	}
	for _, secret := range s.Secrets {
		injections := make([]model.Injection, 0, len(secret.Injections))
		for _, inj := range secret.Injections {
			injections = append(injections, model.Injection{Env: inj.Env})
		}
		out.Secrets = append(out.Secrets, model.Secret{Name: secret.Name, Injections: injections})
	}
	if len(s.Volumes) > 0 {
		out.Volumes = make(map[string]model.Volume, len(s.Volumes))
		for path, v := range s.Volumes {
			out.Volumes[path] = model.Volume{Name: v.Name}
		}
	}
	return out
}

func (c *converter) profiles(section string, in []fileProfile) []model.ProfileConfig {
	var out []model.ProfileConfig
	for i, p := range in {
		field := fmt.Sprintf("%s[%d]", section, i)
		profile := model.ProfileConfig{
			Label:                p.Label,
			Description:          p.Description,
			CPUs:                 p.CPUs,
			EnvironmentVariables: bindings(p.EnvironmentVariables),
		}
		if p.ID != "" {
			id, err := ids.ParseProfileID(p.ID)
			if err != nil {
				c.result.AddError(field+".id", err.Error(), "Use lowercase letters, digits and dashes, starting with a letter")
				continue
			}
			profile.ID = id
		}
		if p.Instances < 0 {
			c.result.AddError(field+".instances", fmt.Sprintf("Negative number of instances %d", p.Instances), "Request at least one instance")
		} else {
			profile.Instances = uint64(p.Instances)
		}
		if p.Mem < 0 {
			c.result.AddError(field+".mem", fmt.Sprintf("Negative memory %d", p.Mem), "Set mem to the memory in MiB")
		} else {
			profile.Mem = uint64(p.Mem)
		}
		out = append(out, profile)
	}
	return out
}

func bindings(in map[string]fileBinding) map[string]model.VariableBinding {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]model.VariableBinding, len(in))
	for env, b := range in {
		out[env] = model.VariableBinding{Type: model.VariableType(b.Type), RefID: b.ID, Value: b.Value}
	}
	return out
}
