package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"stringpuller/internal/batch"
	"stringpuller/internal/services"
	"stringpuller/internal/transcode"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var wav bool
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract <path>...",
		Short: "Detect and extract AC3 streams from container files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			files, err := batch.CollectInputs(cfg, args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no container files found (extensions: %v)", cfg.Extraction.Extensions)
			}

			opts := []batch.Option{batch.WithLogger(logger)}
			if dryRun {
				opts = append(opts, batch.WithDryRun())
			} else {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
					opts = append(opts, batch.WithRecorder(store))
				}
			}
			if wav || cfg.Transcode.Enabled {
				opts = append(opts, batch.WithConverter(transcode.NewFromConfig(cfg.Transcode, logger)))
			}

			summary, runErr := batch.New(cfg, opts...).Run(cmd.Context(), files)
			if jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				printExtractSummary(cmd.OutOrStdout(), summary)
			}
			if runErr != nil {
				return runErr
			}
			if n := countOutcome(summary, services.OutcomeFailed); n > 0 {
				return fmt.Errorf("%d of %d files failed", n, len(summary.Files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wav, "wav", false, "Convert extracted streams to WAV with ffmpeg")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report planned outputs without writing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	return cmd
}

func printExtractSummary(out io.Writer, summary batch.Summary) {
	rows := make([][]string, 0, len(summary.Files))
	for _, f := range summary.Files {
		dir := f.Report.Dir
		if dir == "" {
			dir = "-"
		}
		rows = append(rows, []string{
			filepath.Base(f.Source),
			formatBytes(int64(f.Bytes)),
			strconv.Itoa(f.Raw),
			strconv.Itoa(f.Streams()),
			f.Outcome,
			dir,
		})
	}
	title := "Extraction"
	if summary.DryRun {
		title = "Extraction (dry run)"
	}
	fmt.Fprintln(out, renderTable(title,
		[]string{"File", "Size", "Candidates", "Streams", "Outcome", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))

	for _, f := range summary.Files {
		if f.Detail != "" {
			fmt.Fprintf(out, "%s: %s\n", filepath.Base(f.Source), f.Detail)
		}
		for _, w := range f.WAV {
			if w.Err != nil {
				fmt.Fprintf(out, "%s: wav conversion failed: %v\n", filepath.Base(w.Input), w.Err)
			}
		}
	}

	verb := "Extracted"
	if summary.DryRun {
		verb = "Would extract"
	}
	fmt.Fprintf(out, "%s %d streams from %d files in %s (run %s)\n",
		verb, summary.Streams(), len(summary.Files),
		formatDuration(summary.FinishedAt.Sub(summary.StartedAt)), shortID(summary.RunID))
}

func countOutcome(summary batch.Summary, outcome string) int {
	n := 0
	for _, f := range summary.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}
