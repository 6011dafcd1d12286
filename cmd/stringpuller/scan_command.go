package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"stringpuller/internal/detect"
)

type scanReport struct {
	Source string                `json:"source"`
	Bytes  int                   `json:"bytes"`
	Counts map[detect.Method]int `json:"counts"`
	detect.Result
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var noGaps bool
	var methods []string

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Report detected AC3 candidates without writing anything",
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

			selected := make([]detect.Method, 0, len(methods))
			for _, name := range methods {
				m, err := detect.ParseScannerMethod(name)
				if err != nil {
					return fmt.Errorf("invalid --method: %w", err)
				}
				selected = append(selected, m)
			}

			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read container: %w", err)
			}

			opts := []detect.Option{detect.WithLogger(logger)}
			if noGaps || !cfg.Extraction.GapRecovery {
				opts = append(opts, detect.WithoutGapRecovery())
			}
			if len(selected) > 0 {
				opts = append(opts, detect.WithScanners(selected...))
			}

			res, err := detect.New(opts...).Detect(cmd.Context(), buf)
			if err != nil {
				return err
			}
			report := scanReport{Source: args[0], Bytes: len(buf), Counts: res.Counts(), Result: res}
			if jsonOutput {
				return writeJSON(cmd, report)
			}
			printScanReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit candidates as JSON")
	cmd.Flags().BoolVar(&noGaps, "no-gaps", false, "Skip gap recovery")
	cmd.Flags().StringSliceVar(&methods, "method", nil, "Restrict primary scanners (sync, offset, frame-pattern, structural)")
	return cmd
}

func printScanReport(out io.Writer, report scanReport) {
	kept := make(map[detect.Candidate]bool, len(report.Streams))
	for _, c := range report.Streams {
		kept[c] = true
	}

	fmt.Fprintln(out, renderTable(
		fmt.Sprintf("Candidates in %s (%s)", report.Source, formatBytes(int64(report.Bytes))),
		[]string{"Start", "End", "Length", "Method", "Confidence", "Kept"},
		candidateRows(report.Raw, kept),
		[]columnAlignment{alignRight, alignRight, alignRight},
	))
	fmt.Fprintln(out, renderTable(
		"Resolved streams",
		[]string{"Start", "End", "Length", "Method", "Confidence", "Kept"},
		candidateRows(report.Sorted(), kept),
		[]columnAlignment{alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "%d candidates, %d streams\n", len(report.Raw), len(report.Streams))
}

func candidateRows(cands []detect.Candidate, kept map[detect.Candidate]bool) [][]string {
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		mark := ""
		if kept[c] {
			mark = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Start),
			strconv.Itoa(c.End()),
			strconv.Itoa(c.Length),
			string(c.Method),
			c.Confidence.String(),
			mark,
		})
	}
	return rows
}
