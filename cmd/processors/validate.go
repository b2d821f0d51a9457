package processors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/loader"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/output"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/validator"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/watcher"
)

// fileReport is the validation outcome of one processor file
type fileReport struct {
	File   string                      `json:"file" yaml:"file"`
	ID     string                      `json:"id,omitempty" yaml:"id,omitempty"`
	Result *validator.ValidationResult `json:"result" yaml:"result"`
}

func newValidateCommand(opts *Options) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate [processor-file...]",
		Short: "Validate processor configuration files",
		Long: `Validate processor TOML files before deploying them.

This command checks for common configuration errors including:
- TOML syntax and unknown keys
- Identifier grammar and duplicate ids
- Junction cardinality and resource types
- Deployment parameters, defaults and selection options
- Environment variable bindings and template placeholders
- Profiles, image references and ports

Without arguments every file in the processors directory is validated.
With --watch the files are validated again whenever they change.`,
		Example: `  # Validate all processors
  dshctl processor validate

  # Validate one file
  dshctl processor validate processors/greenbox.toml

  # Validate on every change
  dshctl processor validate --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runValidate(opts, args)
			if !watch {
				return err
			}
			if err != nil {
				opts.logger().Warn("validation failed", zap.Error(err))
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchValidate(ctx, opts, args)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "validate again when files change")
	return cmd
}

func runValidate(opts *Options, paths []string) error {
	if len(paths) == 0 {
		var err error
		paths, err = filepath.Glob(filepath.Join(opts.Settings.ProcessorsDir, "*.toml"))
		if err != nil {
			return fmt.Errorf("failed to list processor files: %w", err)
		}
		sort.Strings(paths)
		if len(paths) == 0 {
			return fmt.Errorf("no processor files found in %s", opts.Settings.ProcessorsDir)
		}
	}

	reports := make([]fileReport, 0, len(paths))
	seen := make(map[string]string)
	failed := 0
	for _, path := range paths {
		report := validateFile(path)
		if report.ID != "" {
			if other, ok := seen[report.ID]; ok {
				report.Result.AddError("processor.id",
					fmt.Sprintf("duplicate processor id '%s', also defined in %s", report.ID, other),
					"Give every processor a unique id")
			} else {
				seen[report.ID] = path
			}
		}
		if !report.Result.Valid {
			failed++
		}
		reports = append(reports, report)
	}

	p := opts.Printer
	if p.Structured() {
		if err := p.Print(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			p.Line("%s", r.Result.Format(r.File))
		}
	}

	if failed > 0 {
		return fmt.Errorf("validation failed for %d of %d file(s)", failed, len(reports))
	}
	return nil
}

func validateFile(path string) fileReport {
	config, result, err := loader.LoadFile(path)
	report := fileReport{File: path, Result: result}
	if config != nil {
		report.ID = config.ID.String()
	}
	if err != nil && !errors.Is(err, loader.ErrInvalidConfig) {
		report.Result = validator.NewResult()
		report.Result.AddError("", err.Error(), "")
	}
	return report
}

// watchValidate validates files again as they change until ctx is done
func watchValidate(ctx context.Context, opts *Options, paths []string) error {
	dirs := []string{opts.Settings.ProcessorsDir}
	if len(paths) > 0 {
		dirs = dirs[:0]
		seen := make(map[string]bool)
		for _, path := range paths {
			if dir := filepath.Dir(path); !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	wanted := make(map[string]bool, len(paths))
	for _, path := range paths {
		wanted[filepath.Clean(path)] = true
	}

	w, err := watcher.New(func(path string) {
		if len(wanted) > 0 && !wanted[filepath.Clean(path)] {
			return
		}
		report := validateFile(path)
		if opts.Printer.Structured() {
			if err := opts.Printer.Print(report); err != nil {
				opts.logger().Warn("failed to print validation report", zap.Error(err))
			}
			return
		}
		opts.Printer.Line("%s", report.Result.Format(report.File))
	}, watcher.Options{Logger: opts.logger()})
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dirs...); err != nil {
		return err
	}

	opts.Printer.Line("%s", output.Dim("Watching for changes, press Ctrl+C to stop"))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
