package processors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

func newShowCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <processor-id>",
		Short: "Show detailed information about a processor",
		Long: `Show the configuration of a processor.

This command displays:
- Processor metadata (label, kind, version, description)
- Inbound and outbound junctions with their cardinality
- Deployment parameters
- Profiles
- Environment variable bindings`,
		Example: `  # Show details for a processor
  dshctl processor show greenbox

  # Show the full configuration as yaml
  dshctl processor show greenbox -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0])
		},
	}
}

func runShow(opts *Options, id string) error {
	realization, err := opts.realization(id)
	if err != nil {
		return err
	}
	config := realization.Config

	p := opts.Printer
	if p.Structured() {
		return p.Print(config)
	}

	p.Section(fmt.Sprintf("Processor: %s", config.ID))
	p.Line("Label:       %s", config.Label)
	p.Line("Kind:        %s", config.Kind)
	if config.Version != "" {
		p.Line("Version:     %s", config.Version)
	}
	if config.Description != "" {
		p.Line("Description: %s", config.Description)
	}
	switch {
	case config.Service != nil:
		p.Line("Image:       %s", config.Service.Image)
	case config.App != nil:
		p.Line("Manifest:    %s", config.App.ManifestURN())
	}

	for _, dir := range []model.Direction{model.Inbound, model.Outbound} {
		junctions := config.Junctions(dir)
		if len(junctions) == 0 {
			continue
		}
		p.Line("")
		p.Section(fmt.Sprintf("%s junctions", titleCase(string(dir))))
		rows := make([][]string, 0, len(junctions))
		for _, jid := range ids.SortedKeys(junctions) {
			j := junctions[jid]
			rows = append(rows, []string{jid.String(), j.Cardinality.String(), formatResourceTypes(j.AllowedResourceTypes), j.Label})
		}
		if err := p.Table([]string{"ID", "CARDINALITY", "RESOURCE TYPES", "LABEL"}, rows); err != nil {
			return err
		}
	}

	if len(config.DeploymentParameters) > 0 {
		p.Line("")
		p.Section("Deployment parameters")
		rows := make([][]string, 0, len(config.DeploymentParameters))
		for _, dp := range config.DeploymentParameters {
			rows = append(rows, []string{dp.ID.String(), string(dp.Type), formatRequired(dp), deref(dp.Default), formatOptions(dp.Options)})
		}
		if err := p.Table([]string{"ID", "TYPE", "REQUIRED", "DEFAULT", "OPTIONS"}, rows); err != nil {
			return err
		}
	}

	if profiles := config.Profiles(); len(profiles) > 0 {
		p.Line("")
		p.Section("Profiles")
		rows := make([][]string, 0, len(profiles))
		for _, pr := range profiles {
			rows = append(rows, []string{
				pr.ID.String(),
				fmt.Sprintf("%g", pr.CPUs),
				fmt.Sprintf("%d", pr.Instances),
				fmt.Sprintf("%d MiB", pr.Mem),
				pr.Label,
			})
		}
		if err := p.Table([]string{"ID", "CPUS", "INSTANCES", "MEM", "LABEL"}, rows); err != nil {
			return err
		}
	}

	if env := config.EnvironmentVariables(); len(env) > 0 {
		p.Line("")
		p.Section("Environment variables")
		names := make([]string, 0, len(env))
		for name := range env {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, string(env[name].Type), formatBinding(env[name])})
		}
		if err := p.Table([]string{"NAME", "TYPE", "BINDING"}, rows); err != nil {
			return err
		}
	}

	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatResourceTypes(types []model.ResourceType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func formatRequired(dp model.DeploymentParameterConfig) string {
	if dp.Optional {
		return "no"
	}
	return "yes"
}

func formatOptions(options []model.Option) string {
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = o.ID
	}
	return strings.Join(names, ", ")
}

func formatBinding(b model.VariableBinding) string {
	if b.Type.IsReference() {
		return b.RefID
	}
	return deref(b.Value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
