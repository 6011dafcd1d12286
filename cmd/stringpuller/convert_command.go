package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"stringpuller/internal/transcode"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "convert <dir>",
		Short: "Convert extracted .ac3 files in a directory to WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			inputs, err := transcode.ListAC3(args[0])
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no .ac3 files in %s", args[0])
			}

			converter := transcode.NewFromConfig(cfg.Transcode, logger)
			if err := converter.Available(cmd.Context()); err != nil {
				return err
			}
			results := converter.ConvertAll(cmd.Context(), inputs)
			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := "ok"
					if r.Err != nil {
						status = r.Err.Error()
					}
					rows = append(rows, []string{filepath.Base(r.Input), formatBytes(r.Bytes), status})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable("WAV conversion",
					[]string{"File", "WAV size", "Status"}, rows,
					[]columnAlignment{alignLeft, alignRight}))
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", failed, len(results))
			}
			fmt.Fprintf(cmd.OutOrStderr(), "Converted %d files into %s\n",
				len(results), filepath.Join(args[0], transcode.WAVSubdir))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit conversion results as JSON")
	return cmd
}
