package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stringpuller/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			if ctx.configSeen {
				lines = append(lines, renderStatusLine("Config file", statusOK, ctx.configPath, colorize))
			} else {
				lines = append(lines, renderStatusLine("Config file", statusInfo, "defaults (no file at "+ctx.configPath+")", colorize))
			}
			output := cfg.Paths.OutputDir
			if output == "" {
				output = "next to each input"
			}
			lines = append(lines, renderStatusLine("Output directory", statusInfo, output, colorize))
			historyMsg := "disabled"
			if cfg.History.Enabled {
				historyMsg = cfg.HistoryPath()
			}
			lines = append(lines, renderStatusLine("History", statusInfo, historyMsg, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			dirResults := preflight.RunAll(cfg)
			lines = append(lines, directoryLines(dirResults, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			depStatuses := preflight.CheckSystemDeps(cfg)
			lines = append(lines, dependencyLines(depStatuses, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))

			for _, r := range dirResults {
				if !r.Passed {
					return fmt.Errorf("%s check failed", strings.ToLower(r.Name))
				}
			}
			for _, st := range depStatuses {
				if !st.Available && !st.Optional {
					return fmt.Errorf("required dependency %s is missing", st.Name)
				}
			}
			return nil
		},
	}
}
