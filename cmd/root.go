package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/cmd/processors"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/output"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/utils/logger"
)

var (
	cfgFile        string
	outputFormat   string
	logLevel       string
	nonInteractive bool

	// opts is shared with the subcommands and filled in before they run
	opts = &processors.Options{}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dshctl",
	Short: "Deploy and manage processors on the DSH platform",
	Long: `dshctl is a command-line tool for tenants of the KPN Data Services Hub.
It validates processor configurations, resolves them into service or app
catalog descriptors and deploys them into pipelines on the tenant's platform.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dshctl/dshctl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table|json|yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error), overrides log.level")
	rootCmd.PersistentFlags().BoolVarP(&nonInteractive, "yes", "y", false, "non-interactive confirmations")

	rootCmd.AddCommand(processors.NewCommand(opts))
}

// setup loads the settings and initializes the logger and printer
func setup(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	level := settings.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.Init(level, settings.Log.Encoding); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	opts.Settings = settings
	opts.Printer = output.New(format, cmd.OutOrStdout())
	opts.Logger = logger.Named("processor")
	opts.Yes = nonInteractive
	opts.In = cmd.InOrStdin()

	logger.Debug("Loaded settings",
		zap.String("platform", settings.Target.Platform),
		zap.String("tenant", settings.Target.Tenant),
		zap.String("processors-dir", settings.ProcessorsDir))
	if _, err := os.Stat(settings.ProcessorsDir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Processors directory does not exist", zap.String("path", settings.ProcessorsDir))
	}
	return nil
}
