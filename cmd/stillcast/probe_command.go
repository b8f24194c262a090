package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stillcast/internal/probe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>...",
		Short: "Report the duration the engine sees for each file",
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
			prober := probe.New(cfg, logger)

			rows := make([][]string, 0, len(args))
			var firstErr error
			for _, path := range args {
				duration, err := prober.Probe(cmd.Context(), path)
				seconds := "-"
				if duration.Known {
					seconds = fmt.Sprintf("%d", duration.Seconds)
				}
				note := ""
				switch {
				case err == nil:
				case errors.Is(err, probe.ErrUnparsableOutput):
					note = "no duration reported"
				default:
					note = err.Error()
					if firstErr == nil {
						firstErr = err
					}
				}
				rows = append(rows, []string{path, duration.String(), seconds, note})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Duration", "Seconds", "Note"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return firstErr
		},
	}
}
