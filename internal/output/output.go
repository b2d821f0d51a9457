// Package output prints command results as tables, JSON or YAML.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format selects how results are printed
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates s as an output format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format '%s' (use table, json or yaml)", s)
}

var (
	primaryColor = lipgloss.Color("#7D56F4")

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	pendingColor = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

// Printer writes results in one format
type Printer struct {
	Format Format
	Out    io.Writer
}

// New returns a printer
func New(format Format, out io.Writer) *Printer {
	return &Printer{Format: format, Out: out}
}

// Structured reports whether results are printed as JSON or YAML
func (p *Printer) Structured() bool {
	return p.Format == FormatJSON || p.Format == FormatYAML
}

// Print writes v as JSON or YAML. In table format it falls back to YAML.
func (p *Printer) Print(v any) error {
	if p.Format == FormatJSON {
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
	enc := yaml.NewEncoder(p.Out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// Table writes rows under headers, aligned in columns. The header line is
// colored after alignment so escape codes do not skew the column widths.
func (p *Printer) Table(headers []string, rows [][]string) error {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	underline := make([]string, len(headers))
	for i, h := range headers {
		underline[i] = strings.Repeat("─", len([]rune(h)))
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	fmt.Fprintln(w, strings.Join(underline, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			if c == "" {
				c = "-"
			}
			cells[i] = c
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	header, rest, _ := strings.Cut(buf.String(), "\n")
	if _, err := fmt.Fprintln(p.Out, headerColor.Sprint(header)); err != nil {
		return err
	}
	_, err := io.WriteString(p.Out, rest)
	return err
}

// Section writes a styled section title
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.Out, sectionTitleStyle.Render(title))
}

// Line writes a line of text
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Dim renders s faint, for hints and totals
func Dim(s string) string {
	return dimColor.Sprint(s)
}

// Status colors a status word: green for healthy states, red for failures
// and yellow for anything in between
func Status(s string) string {
	switch strings.ToLower(s) {
	case "up", "deployed", "ok", "valid", "succeeded", "true":
		return successColor.Sprint(s)
	case "down", "failed", "invalid", "error", "false":
		return failureColor.Sprint(s)
	}
	return pendingColor.Sprint(s)
}
