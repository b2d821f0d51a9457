package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// versionInfo is the structured form of the version output
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"build-time"`
	Go        string `json:"go" yaml:"go"`
	Platform  string `json:"platform" yaml:"platform"`
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for dshctl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   version,
			Commit:    commit,
			BuildTime: buildTime,
			Go:        runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		if opts.Printer != nil && opts.Printer.Structured() {
			return opts.Printer.Print(info)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dshctl version %s\n", info.Version)
		fmt.Fprintf(out, "  commit: %s\n", info.Commit)
		fmt.Fprintf(out, "  built: %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go: %s\n", info.Go)
		fmt.Fprintf(out, "  os/arch: %s\n", info.Platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
