package processors

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/output"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/processor"
)

// statusEntry is the structured form of a status row
type statusEntry struct {
	Deployment string           `json:"deployment" yaml:"deployment"`
	Pipeline   string           `json:"pipeline" yaml:"pipeline"`
	Status     string           `json:"status" yaml:"status"`
	Detail     processor.Status `json:"detail" yaml:"detail"`
}

func newStatusCommand(opts *Options) *cobra.Command {
	var pipelines []string
	var concurrency int
	cmd := &cobra.Command{
		Use:   "status <processor-id>",
		Short: "Show the deployment status of a processor",
		Long: `Show whether a processor is deployed in one or more pipelines, and whether
the deployment is up. Pipelines are queried concurrently.`,
		Example: `  # Status in one pipeline
  dshctl processor status greenbox --pipeline weather

  # Status in several pipelines
  dshctl processor status greenbox --pipeline weather --pipeline traffic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, closeHistory, err := opts.instances(args[0], pipelines)
			if err != nil {
				return err
			}
			defer closeHistory()

			results, err := processor.StatusMany(cmd.Context(), instances, concurrency)
			if err != nil {
				return err
			}

			entries := make([]statusEntry, len(results))
			for i, r := range results {
				entries[i] = statusEntry{
					Deployment: r.Instance.DeploymentName(),
					Pipeline:   r.Instance.Pipeline.String(),
					Status:     r.Status.String(),
					Detail:     r.Status,
				}
			}

			p := opts.Printer
			if p.Structured() {
				return p.Print(entries)
			}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Deployment, e.Pipeline, output.Status(e.Status)}
			}
			return p.Table([]string{"DEPLOYMENT", "PIPELINE", "STATUS"}, rows)
		},
	}
	cmd.Flags().StringArrayVar(&pipelines, "pipeline", nil, "pipeline to query (repeatable, required)")
	cmd.Flags().IntVar(&concurrency, "concurrency", processor.DefaultConcurrency, "maximum number of concurrent platform calls")
	_ = cmd.MarkFlagRequired("pipeline")
	return cmd
}

func newUndeployCommand(opts *Options) *cobra.Command {
	var pipeline string
	cmd := &cobra.Command{
		Use:   "undeploy <processor-id>",
		Short: "Remove a processor deployment from a pipeline",
		Example: `  # Undeploy greenbox from the weather pipeline
  dshctl processor undeploy greenbox --pipeline weather -y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, closeHistory, err := opts.instance(args[0], pipeline)
			if err != nil {
				return err
			}
			defer closeHistory()

			p := opts.Printer
			name := inst.DeploymentName()
			ok, err := opts.confirm(fmt.Sprintf("Undeploy %s from tenant %s?", name, opts.Settings.Target.Tenant))
			if err != nil {
				return err
			}
			if !ok {
				p.Line("Undeploy cancelled")
				return nil
			}

			removed, err := inst.Undeploy(cmd.Context())
			if err != nil {
				return err
			}
			if p.Structured() {
				return p.Print(map[string]any{"deployment": name, "removed": removed})
			}
			if !removed {
				p.Line("%s was not deployed", name)
				return nil
			}
			p.Line("%s undeployed", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "pipeline the processor is deployed in (required)")
	_ = cmd.MarkFlagRequired("pipeline")
	return cmd
}

func newStartCommand(opts *Options) *cobra.Command {
	return newToggleCommand(opts, "start", "Start a stopped processor deployment", (*processor.Instance).Start)
}

func newStopCommand(opts *Options) *cobra.Command {
	return newToggleCommand(opts, "stop", "Stop a running processor deployment", (*processor.Instance).Stop)
}

func newToggleCommand(opts *Options, use, short string, op func(*processor.Instance, context.Context) error) *cobra.Command {
	var pipeline string
	cmd := &cobra.Command{
		Use:   use + " <processor-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, closeHistory, err := opts.instance(args[0], pipeline)
			if err != nil {
				return err
			}
			defer closeHistory()
			return op(inst, cmd.Context())
		},
	}
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "pipeline the processor is deployed in (required)")
	_ = cmd.MarkFlagRequired("pipeline")
	return cmd
}
