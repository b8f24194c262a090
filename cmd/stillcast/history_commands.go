package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stillcast/internal/ffmpeg"
	"stillcast/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and replay past renders",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRerunCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				records, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No jobs recorded")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						shortID(record.ID),
						stateLabel(record.State),
						strconv.Itoa(record.Progress) + "%",
						rangeLabel(record.Spec.Range.Start, record.Spec.Range.End),
						record.Spec.OutputPath,
						record.CreatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "State", "Progress", "Range", "Output", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job, matched by id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				record, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return historyLookupError(args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(recordPairs(record)))
				return nil
			})
		},
	}
}

func newHistoryRerunCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rerun <id>",
		Short: "Render a recorded job again from its engine arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record history.Record
			err := ctx.withHistory(func(store *history.Store) error {
				var err error
				record, err = store.Get(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return historyLookupError(args[0], err)
			}
			spec, err := record.ReplaySpec()
			if err != nil {
				return fmt.Errorf("replay job %s: %w", shortID(record.ID), err)
			}
			if strings.TrimSpace(output) != "" {
				spec.OutputPath = strings.TrimSpace(output)
			}
			return runRender(cmd, ctx, spec, false)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a different output path")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished jobs older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 0 {
				return errors.New("--older-than must not be negative")
			}
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age of finished jobs to delete")
	return cmd
}

func historyLookupError(prefix string, err error) error {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return fmt.Errorf("no job matches %q", prefix)
	case errors.Is(err, history.ErrAmbiguous):
		return fmt.Errorf("job id %q matches more than one job; use more characters", prefix)
	default:
		return err
	}
}

func recordPairs(record history.Record) [][2]string {
	exitCode := ""
	if record.ExitCode != nil {
		exitCode = strconv.Itoa(*record.ExitCode)
	}
	finished := ""
	if record.FinishedAt != nil {
		finished = record.FinishedAt.Local().Format(time.DateTime)
	}
	reason := ""
	if record.Reason != "" {
		reason = stateLabel(record.Reason)
	}
	return [][2]string{
		{"ID", record.ID},
		{"State", stateLabel(record.State)},
		{"Progress", strconv.Itoa(record.Progress) + "%"},
		{"Image", record.Spec.ImagePath},
		{"Audio", record.Spec.AudioPath},
		{"Range", rangeLabel(record.Spec.Range.Start, record.Spec.Range.End)},
		{"Output", record.Spec.OutputPath},
		{"Wobble", yesNo(record.Spec.Wobble)},
		{"Dim", yesNo(record.Spec.Dim)},
		{"Exit code", exitCode},
		{"Reason", reason},
		{"Error", record.Error},
		{"Created", record.CreatedAt.Local().Format(time.DateTime)},
		{"Finished", finished},
		{"Command", shellJoin(record.Args)},
	}
}

func rangeLabel(start, end int) string {
	return ffmpeg.FormatClock(start) + "-" + ffmpeg.FormatClock(end)
}
