package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/output"
)

var (
	historyLimit      int
	historyDeployment string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the deployment history",
	Long: `Show deploy and undeploy operations performed from this machine, newest first.
The history is kept in a local database at history-path.`,
	Example: `  # Last 20 operations
  dshctl history

  # All operations on one deployment
  dshctl history --deployment weather-greenbox --limit 0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := opts.OpenHistory()
		if err != nil {
			return err
		}
		defer closeStore()

		records, err := store.List(cmd.Context(), historyDeployment, historyLimit)
		if err != nil {
			return err
		}

		p := opts.Printer
		if p.Structured() {
			return p.Print(records)
		}
		if len(records) == 0 {
			p.Line("No deployments recorded")
			return nil
		}

		rows := make([][]string, len(records))
		for i, r := range records {
			result := "succeeded"
			if !r.Succeeded() {
				result = "failed"
			}
			rows[i] = []string{
				r.Time.Local().Format("2006-01-02 15:04:05"),
				string(r.Action),
				r.Name,
				r.Kind,
				output.Status(result),
				r.Error,
			}
		}
		return p.Table([]string{"TIME", "ACTION", "DEPLOYMENT", "KIND", "RESULT", "ERROR"}, rows)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records, 0 for all")
	historyCmd.Flags().StringVar(&historyDeployment, "deployment", "", "only show records of this deployment")
}
