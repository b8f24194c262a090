package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"stillcast/internal/config"
	"stillcast/internal/deps"
	"stillcast/internal/logging"
	"stillcast/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify engine binaries and state directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			lines := renderSectionHeader("Preflight", colorize)
			for _, result := range results {
				kind := statusOK
				switch {
				case !result.Passed:
					kind = statusError
				case strings.HasPrefix(result.Detail, "optional: "):
					kind = statusWarn
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}
}

// warnMissingEngine logs when a required engine binary cannot be resolved.
// The command carries on so the failure is recorded against the job.
func warnMissingEngine(cfg *config.Config, logger *slog.Logger) {
	missing := deps.MissingRequired(preflight.CheckSystemDeps(cfg))
	if len(missing) == 0 {
		return
	}
	logging.WarnWithContext(logger, "engine binaries missing", "preflight_warning",
		logging.Strings("missing", missing),
		logging.String(logging.FieldErrorHint, "run `stillcast check`"),
		logging.String(logging.FieldImpact, "probes and renders will fail"),
	)
}
