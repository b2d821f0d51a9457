package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/junction"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/output"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/parameter"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/processor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/validator"
)

// deployFlags are the flags shared by render and deploy
type deployFlags struct {
	pipeline string
	inbound  []string
	outbound []string
	params   []string
	profile  string
	// checkImage looks the service image up in its registry after planning
	checkImage bool
}

func (f *deployFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pipeline, "pipeline", "", "pipeline to deploy the processor in (required)")
	cmd.Flags().StringArrayVar(&f.inbound, "inbound", nil, "inbound junction binding <junction>=<type>:<id>[,<type>:<id>...] (repeatable)")
	cmd.Flags().StringArrayVar(&f.outbound, "outbound", nil, "outbound junction binding <junction>=<type>:<id>[,<type>:<id>...] (repeatable)")
	cmd.Flags().StringArrayVar(&f.params, "param", nil, "deployment parameter <id>=<value> (repeatable)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "profile to deploy with (default: the 'default' profile, or the only one)")
	cmd.Flags().BoolVar(&f.checkImage, "check-image", false, "verify that the service image exists in its registry")
	_ = cmd.MarkFlagRequired("pipeline")
}

// request builds the deploy request for config from the flags. Without
// --profile the profile named "default" is used when config declares one.
func (f *deployFlags) request(config *model.ProcessorConfig) (processor.DeployRequest, error) {
	var req processor.DeployRequest
	var err error
	if req.Inbound, err = parseBindings(f.inbound); err != nil {
		return req, fmt.Errorf("invalid --inbound: %w", err)
	}
	if req.Outbound, err = parseBindings(f.outbound); err != nil {
		return req, fmt.Errorf("invalid --outbound: %w", err)
	}
	if req.Parameters, err = parameter.ParseAssignments(f.params); err != nil {
		return req, fmt.Errorf("invalid --param: %w", err)
	}
	if f.profile != "" {
		id, err := ids.ParseProfileID(f.profile)
		if err != nil {
			return req, fmt.Errorf("invalid --profile: %w", err)
		}
		req.Profile = &id
	} else if id, ok := defaultProfile(config); ok {
		req.Profile = &id
	}
	return req, nil
}

// defaultProfile returns the profile named "default", if config declares one
func defaultProfile(config *model.ProcessorConfig) (ids.ProfileID, bool) {
	for _, p := range config.Profiles() {
		if p.ID.String() == validator.DefaultProfileID {
			return p.ID, true
		}
	}
	return ids.ProfileID{}, false
}

// parseBindings parses "<junction>=<type>:<id>,..." values. Repeating a
// junction adds to its resources. An empty resource list binds the junction
// to no resources.
func parseBindings(values []string) (junction.Bindings, error) {
	bindings := make(junction.Bindings, len(values))
	for _, v := range values {
		key, list, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("'%s' (expected <junction>=<type>:<id>[,...])", v)
		}
		id, err := ids.ParseJunctionID(strings.TrimSpace(key))
		if err != nil {
			return nil, err
		}
		resources := bindings[id]
		if resources == nil {
			resources = []model.ResourceIdentifier{}
		}
		for _, item := range strings.Split(list, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			res, err := model.ParseResourceIdentifier(item)
			if err != nil {
				return nil, err
			}
			resources = append(resources, res)
		}
		bindings[id] = resources
	}
	return bindings, nil
}

func newRenderCommand(opts *Options) *cobra.Command {
	flags := &deployFlags{}
	cmd := &cobra.Command{
		Use:   "render <processor-id>",
		Short: "Print the descriptor a deployment would submit",
		Long: `Resolve junctions, parameters, profile and environment variables into the
descriptor that 'processor deploy' would submit, without contacting the platform.`,
		Example: `  # Render a greenbox deployment
  dshctl processor render greenbox --pipeline weather \
    --inbound inbound-topic=dsh-topic:observations \
    --param retries=5 --profile large`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := plan(cmd.Context(), opts, args[0], flags)
			if err != nil {
				return err
			}
			if err := checkImage(cmd.Context(), opts, flags, d); err != nil {
				return err
			}
			return printDescriptor(opts.Printer, d)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeployCommand(opts *Options) *cobra.Command {
	flags := &deployFlags{}
	cmd := &cobra.Command{
		Use:   "deploy <processor-id>",
		Short: "Deploy a processor into a pipeline",
		Long: `Deploy a processor into a pipeline on the target platform.

The deployment is named <pipeline>-<processor>. The resolved descriptor is
shown and confirmation is asked unless --yes is given.`,
		Example: `  # Deploy greenbox into the weather pipeline
  dshctl processor deploy greenbox --pipeline weather \
    --inbound inbound-topic=dsh-topic:observations \
    --outbound outbound-topics=dsh-topic:enriched,dsh-stream:public-weather

  # Deploy without confirmation
  dshctl processor deploy greenbox --pipeline weather --inbound inbound-topic=dsh-topic:observations -y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd.Context(), opts, args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func plan(ctx context.Context, opts *Options, id string, flags *deployFlags) (descriptor.Descriptor, error) {
	inst, err := opts.planner(id, flags.pipeline)
	if err != nil {
		return nil, err
	}
	req, err := flags.request(inst.Realization.Config)
	if err != nil {
		return nil, err
	}
	return inst.Plan(ctx, req)
}

func runDeploy(ctx context.Context, opts *Options, id string, flags *deployFlags) error {
	inst, closeHistory, err := opts.instance(id, flags.pipeline)
	if err != nil {
		return err
	}
	defer closeHistory()
	req, err := flags.request(inst.Realization.Config)
	if err != nil {
		return err
	}

	// the descriptor shown for confirmation is the one submitted
	planned, err := inst.Plan(ctx, req)
	if err != nil {
		return err
	}
	if err := checkImage(ctx, opts, flags, planned); err != nil {
		return err
	}

	p := opts.Printer
	name := inst.DeploymentName()
	if !opts.Yes {
		p.Section(fmt.Sprintf("Deployment: %s (%s)", name, inst.Kind()))
		if err := printDescriptor(&output.Printer{Format: output.FormatYAML, Out: p.Out}, planned); err != nil {
			return err
		}
		ok, err := opts.confirm(fmt.Sprintf("Deploy %s to tenant %s?", name, opts.Settings.Target.Tenant))
		if err != nil {
			return err
		}
		if !ok {
			p.Line("Deployment cancelled")
			return nil
		}
	}

	if err := inst.Submit(ctx, planned); err != nil {
		return err
	}
	if p.Structured() {
		return p.Print(deployResult{Name: name, Kind: string(inst.Kind()), Descriptor: planned})
	}
	p.Line("Deployment %s %s", name, output.Status("deployed"))
	return nil
}

// checkImage verifies the image of a service descriptor when --check-image
// is set. App catalog apps have no image of their own.
func checkImage(ctx context.Context, opts *Options, flags *deployFlags, d descriptor.Descriptor) error {
	app, ok := d.(*descriptor.Application)
	if !flags.checkImage || !ok {
		return nil
	}
	img, err := opts.images().Head(ctx, app.Image)
	if err != nil {
		return err
	}
	opts.logger().Info("image found", zap.String("image", img.Reference), zap.String("digest", img.Digest))
	return nil
}

// deployResult is the structured output of a deploy
type deployResult struct {
	Name       string                `json:"name" yaml:"name"`
	Kind       string                `json:"kind" yaml:"kind"`
	Descriptor descriptor.Descriptor `json:"descriptor" yaml:"descriptor"`
}

// printDescriptor prints the descriptor, as JSON in table mode
func printDescriptor(p *output.Printer, d descriptor.Descriptor) error {
	if p.Format == output.FormatTable {
		return (&output.Printer{Format: output.FormatJSON, Out: p.Out}).Print(d)
	}
	return p.Print(d)
}
