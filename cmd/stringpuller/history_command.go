package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stringpuller/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent extraction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled (set [history] enabled = true)")
			}
			defer store.Close()

			if runID != "" {
				streams, err := store.RunStreams(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, streams)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStreamsTable(runID, streams))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRunsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the streams written by one run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit history as JSON")
	return cmd
}

func renderRunsTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "running"
		if r.FinishedAt != nil {
			duration = formatDuration(r.FinishedAt.Sub(r.StartedAt))
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			strconv.Itoa(r.Files),
			strconv.Itoa(r.Streams),
			strconv.Itoa(r.Failures),
		})
	}
	return renderTable("Recent runs",
		[]string{"Run", "Started", "Duration", "Files", "Streams", "Failures"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderStreamsTable(runID string, streams []history.Stream) string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, []string{
			s.FileName,
			strconv.Itoa(s.Start),
			formatBytes(int64(s.Length)),
			string(s.Method),
			s.Confidence.String(),
		})
	}
	return renderTable("Streams for run "+shortID(runID),
		[]string{"File", "Start", "Size", "Method", "Confidence"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}
