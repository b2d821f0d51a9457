package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/config"
)

// targetContext is the structured form of the context output
type targetContext struct {
	Target        config.Target `json:"target" yaml:"target"`
	ProcessorsDir string        `json:"processorsDir" yaml:"processors-dir"`
	HistoryPath   string        `json:"historyPath" yaml:"history-path"`
}

// contextCmd represents the context command
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the configured target platform and tenant",
	Long: `Show the target that platform calls go to. The target is read from the
config file and DSHCTL_ environment variables; known platforms fill in
their endpoints and domains.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := opts.Settings
		p := opts.Printer
		if p.Structured() {
			return p.Print(targetContext{Target: s.Target, ProcessorsDir: s.ProcessorsDir, HistoryPath: s.HistoryPath})
		}

		t := s.Target
		p.Section("Target")
		rows := [][]string{
			{"platform", t.Platform},
			{"tenant", t.Tenant},
			{"user", t.User},
			{"realm", t.Realm},
			{"rest-api-url", t.RestAPIURL},
			{"console-url", t.ConsoleURL},
			{"monitoring-url", t.MonitoringURL},
			{"app-domain", t.AppDomain},
			{"public-vhosts-domain", t.PublicVhostsDomain},
			{"internal-domain", t.InternalDomain},
			{"token", tokenState(t.Token)},
			{"processors-dir", s.ProcessorsDir},
			{"history-path", s.HistoryPath},
		}
		if err := p.Table([]string{"SETTING", "VALUE"}, rows); err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			p.Line("\nTarget is incomplete: %v", err)
		}
		return nil
	},
}

func tokenState(token string) string {
	if token == "" {
		return "not set"
	}
	return "set"
}

func init() {
	rootCmd.AddCommand(contextCmd)
}
