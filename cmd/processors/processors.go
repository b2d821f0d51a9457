package processors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/loader"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/output"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/platform"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/processor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/registry"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/resource"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/storage"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/template"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/utils/logger"
)

// Options carries what the processor commands share. The root command fills
// it in before any subcommand runs.
type Options struct {
	Settings *config.Settings
	Printer  *output.Printer
	Logger   *zap.Logger
	// Yes skips confirmation prompts
	Yes bool
	// In is read for confirmations, stdin when nil
	In io.Reader

	// API replaces the REST client built from the settings
	API platform.API
	// History replaces the bbolt history store
	History storage.DeploymentStore
	// Images replaces the registry client used by --check-image
	Images ImageChecker
}

// ImageChecker looks up an image in its registry
type ImageChecker interface {
	Head(ctx context.Context, image string) (*registry.Image, error)
}

// NewCommand creates the processor command group
func NewCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "processor",
		Aliases: []string{"processors", "proc"},
		Short:   "Inspect, validate and deploy processors",
		Long: `Inspect, validate and deploy processors on the DSH platform.

Processors are described by TOML files in the processors directory. A processor
is deployed into a pipeline by binding its junctions to topics or streams,
supplying its deployment parameters and choosing a profile.`,
	}

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newDeployCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newUndeployCommand(opts))
	cmd.AddCommand(newStartCommand(opts))
	cmd.AddCommand(newStopCommand(opts))

	return cmd
}

func (o *Options) logger() *zap.Logger {
	return logger.Or(o.Logger)
}

func (o *Options) images() ImageChecker {
	if o.Images != nil {
		return o.Images
	}
	return registry.NewClient(registry.Options{}, o.logger().Named("registry"))
}

func (o *Options) registry() (*loader.Registry, error) {
	return loader.LoadDir(o.Settings.ProcessorsDir, o.logger())
}

func (o *Options) realization(id string) (*processor.Realization, error) {
	processorID, err := ids.ParseProcessorID(id)
	if err != nil {
		return nil, err
	}
	reg, err := o.registry()
	if err != nil {
		return nil, err
	}
	config, ok := reg.Get(processorID)
	if !ok {
		return nil, fmt.Errorf("processor '%s' not found\nHint: Use 'dshctl processor list' to see available processors", id)
	}
	return processor.NewRealization(config), nil
}

func (o *Options) platformAPI() (platform.API, error) {
	if o.API != nil {
		return o.API, nil
	}
	if err := o.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}
	tlsConfig, err := o.Settings.TLS.ClientConfig()
	if err != nil {
		return nil, err
	}
	return platform.NewRESTClient(platform.RESTConfig{
		BaseURL: o.Settings.Target.RestAPIURL,
		Tenant:  o.Settings.Target.Tenant,
		Token:   platform.StaticToken(o.Settings.Target.Token),
		TLS:     tlsConfig,
	}, o.logger().Named("platform")), nil
}

// OpenHistory opens the deployment history. The returned close function is
// never nil.
func (o *Options) OpenHistory() (storage.DeploymentStore, func(), error) {
	if o.History != nil {
		return o.History, func() {}, nil
	}
	store := storage.NewBoltStore(&storage.BoltOptions{Path: o.Settings.HistoryPath})
	if err := store.Open(); err != nil {
		return nil, func() {}, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			o.logger().Warn("failed to close deployment history", zap.Error(err))
		}
	}, nil
}

// instances returns the instances of processor id in each pipeline. History
// is optional: when it cannot be opened the instances run without it.
func (o *Options) instances(id string, pipelines []string) ([]*processor.Instance, func(), error) {
	api, err := o.platformAPI()
	if err != nil {
		return nil, nil, err
	}
	history, closeHistory, err := o.OpenHistory()
	if err != nil {
		o.logger().Warn("deployment history unavailable", zap.Error(err))
		history = nil
	}
	instances, err := o.newInstances(id, pipelines, api, history)
	if err != nil {
		closeHistory()
		return nil, nil, err
	}
	return instances, closeHistory, nil
}

// planner returns an instance that can only plan: it has no platform API
// and no history
func (o *Options) planner(id, pipeline string) (*processor.Instance, error) {
	instances, err := o.newInstances(id, []string{pipeline}, nil, nil)
	if err != nil {
		return nil, err
	}
	return instances[0], nil
}

func (o *Options) newInstances(id string, pipelines []string, api platform.API, history storage.DeploymentStore) ([]*processor.Instance, error) {
	if len(pipelines) == 0 {
		return nil, fmt.Errorf("at least one --pipeline is required")
	}
	realization, err := o.realization(id)
	if err != nil {
		return nil, err
	}

	deps := processor.Dependencies{
		API:       api,
		Registry:  resource.FromSettings(o.Settings),
		Mapping:   template.TargetMapping(o.Settings.Target),
		User:      o.Settings.Target.User,
		Separator: o.Settings.Separator,
		Logger:    o.logger(),
		History:   history,
	}
	out := make([]*processor.Instance, 0, len(pipelines))
	for _, p := range pipelines {
		pipeline, err := ids.ParsePipelineID(p)
		if err != nil {
			return nil, err
		}
		out = append(out, realization.Instance(pipeline, deps))
	}
	return out, nil
}

func (o *Options) instance(id, pipeline string) (*processor.Instance, func(), error) {
	instances, closeFn, err := o.instances(id, []string{pipeline})
	if err != nil {
		return nil, nil, err
	}
	return instances[0], closeFn, nil
}

// confirm asks a yes/no question unless --yes was given
func (o *Options) confirm(question string) (bool, error) {
	if o.Yes {
		return true, nil
	}
	in := o.In
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprintf(o.Printer.Out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
