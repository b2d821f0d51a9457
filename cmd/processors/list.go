package processors

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/output"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/profile"
)

// listEntry is the structured form of a list row
type listEntry struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     string   `json:"kind" yaml:"kind"`
	Version  string   `json:"version,omitempty" yaml:"version,omitempty"`
	Label    string   `json:"label" yaml:"label"`
	Inbound  []string `json:"inbound" yaml:"inbound"`
	Outbound []string `json:"outbound" yaml:"outbound"`
	Profiles []string `json:"profiles" yaml:"profiles"`
	File     string   `json:"file" yaml:"file"`
}

func newListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the processors in the processors directory",
		Long: `List all processor configurations found in the processors directory.

The table shows the kind, the junctions and the profiles of every processor.`,
		Example: `  # List all processors
  dshctl processor list

  # List processors as json
  dshctl processor list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts)
		},
	}
}

func runList(opts *Options) error {
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	configs := reg.List()
	entries := make([]listEntry, 0, len(configs))
	for _, c := range configs {
		e, _ := reg.Entry(c.ID)
		entries = append(entries, listEntry{
			ID:       c.ID.String(),
			Kind:     string(c.Kind),
			Version:  c.Version,
			Label:    c.Label,
			Inbound:  junctionNames(c.InboundJunctions),
			Outbound: junctionNames(c.OutboundJunctions),
			Profiles: profile.IDs(c.Profiles()),
			File:     e.Path,
		})
	}

	p := opts.Printer
	if p.Structured() {
		return p.Print(entries)
	}

	if len(entries) == 0 {
		p.Line("No processors found in %s", opts.Settings.ProcessorsDir)
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			e.Kind,
			e.Version,
			formatNames(e.Inbound),
			formatNames(e.Outbound),
			formatNames(e.Profiles),
			e.Label,
		})
	}
	if err := p.Table([]string{"ID", "KIND", "VERSION", "INBOUND", "OUTBOUND", "PROFILES", "LABEL"}, rows); err != nil {
		return err
	}
	p.Line("\n%s", output.Dim(fmt.Sprintf("Total: %d processor(s)", len(entries))))
	return nil
}

func junctionNames(junctions map[ids.JunctionID]model.JunctionConfig) []string {
	names := make([]string, 0, len(junctions))
	for _, id := range ids.SortedKeys(junctions) {
		names = append(names, id.String())
	}
	return names
}

// formatNames shows the first name and the number of others
func formatNames(names []string) string {
	switch len(names) {
	case 0:
		return "-"
	case 1:
		return names[0]
	}
	return fmt.Sprintf("%s (+%d)", names[0], len(names)-1)
}
