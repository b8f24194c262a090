package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stillcast/internal/encoding"
	"stillcast/internal/ffmpeg"
	"stillcast/internal/history"
	"stillcast/internal/jobspec"
	"stillcast/internal/logging"
	"stillcast/internal/preflight"
	"stillcast/internal/probe"
)

type renderFlags struct {
	image  string
	audio  string
	output string
	start  string
	end    string
	wobble bool
	dim    bool
	dryRun bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the image over a trimmed section of the audio",
		Long: "Render loops the image for the length of the trimmed audio range.\n" +
			"Times are whole seconds or HH:MM:SS. Without --end the full audio length is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := resolveRenderSpec(cmd.Context(), ctx, flags)
			if err != nil {
				return err
			}
			return runRender(cmd, ctx, spec, flags.dryRun)
		},
	}

	cmd.Flags().StringVarP(&flags.image, "image", "i", "", "Still image to loop")
	cmd.Flags().StringVarP(&flags.audio, "audio", "a", "", "Audio track to trim")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output video path")
	cmd.Flags().StringVar(&flags.start, "start", "0", "Range start (seconds or HH:MM:SS)")
	cmd.Flags().StringVar(&flags.end, "end", "", "Range end (seconds or HH:MM:SS); defaults to the audio length")
	cmd.Flags().BoolVar(&flags.wobble, "wobble", false, "Apply the slow zoom wobble effect")
	cmd.Flags().BoolVar(&flags.dim, "dim", false, "Darken the image")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the engine command without running it")
	return cmd
}

func resolveRenderSpec(ctx context.Context, cc *commandContext, flags renderFlags) (jobspec.JobSpec, error) {
	start, err := parseSeconds(flags.start)
	if err != nil {
		return jobspec.JobSpec{}, fmt.Errorf("--start: %w", err)
	}
	spec := jobspec.JobSpec{
		ImagePath:  strings.TrimSpace(flags.image),
		AudioPath:  strings.TrimSpace(flags.audio),
		OutputPath: strings.TrimSpace(flags.output),
		Range:      jobspec.TrimRange{Start: start},
		Wobble:     flags.wobble,
		Dim:        flags.dim,
	}

	explicitEnd := strings.TrimSpace(flags.end) != ""
	if explicitEnd {
		end, err := parseSeconds(flags.end)
		if err != nil {
			return jobspec.JobSpec{}, fmt.Errorf("--end: %w", err)
		}
		spec.Range.End = end
	}
	if spec.AudioPath == "" {
		// Validation reports the missing audio.
		return spec, nil
	}

	cfg, err := cc.ensureConfig()
	if err != nil {
		return jobspec.JobSpec{}, err
	}
	logger, err := cc.ensureLogger()
	if err != nil {
		return jobspec.JobSpec{}, err
	}
	duration, err := probe.New(cfg, logger).Probe(ctx, spec.AudioPath)
	if !explicitEnd {
		if err != nil {
			return jobspec.JobSpec{}, fmt.Errorf("determine audio length (pass --end to skip): %w", err)
		}
		spec.Range.End = duration.Seconds
		return spec, nil
	}

	switch {
	case err != nil:
		logger.Debug("audio length unavailable; range not checked", logging.Error(err))
	case duration.Known && spec.Range.End > duration.Seconds:
		logging.WarnWithContext(logging.NewComponentLogger(logger, "render"), "trim range extends past the end of the audio", "range_exceeds_audio",
			logging.String("audio_path", spec.AudioPath),
			logging.Int("range_end_seconds", spec.Range.End),
			logging.Int("audio_seconds", duration.Seconds),
			logging.String(logging.FieldErrorHint, "lower --end or omit it to render to the end of the audio"),
			logging.String(logging.FieldImpact, "video stops when the audio runs out"),
		)
	}
	return spec, nil
}

// parseSeconds accepts whole seconds or HH:MM:SS[.ss]; fractions are floored.
func parseSeconds(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if strings.Contains(value, ":") {
		secs, err := ffmpeg.ParseClock(value)
		if err != nil {
			return 0, err
		}
		return int(math.Floor(secs)), nil
	}
	secs, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	if secs < 0 {
		return 0, fmt.Errorf("time %q is negative", value)
	}
	return secs, nil
}

// runRender executes one job to completion and records it in history.
func runRender(cmd *cobra.Command, cc *commandContext, spec jobspec.JobSpec, dryRun bool) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cc.ensureLogger()
	if err != nil {
		return err
	}
	logger = logging.NewComponentLogger(logger, "render")
	out := cmd.OutOrStdout()

	if dryRun {
		if err := spec.Validate(); err != nil {
			return err
		}
		opts, err := ffmpeg.OptionsFromConfig(cfg)
		if err != nil {
			return err
		}
		argv := append([]string{cfg.FFmpegBinary()}, ffmpeg.Build(spec, opts)...)
		fmt.Fprintln(out, shellJoin(argv))
		return nil
	}

	warnMissingEngine(cfg, logger)
	for _, warning := range spec.FormatWarnings() {
		logging.WarnWithContext(logger, "unexpected file format", "format_hint",
			logging.String("detail", warning),
			logging.String(logging.FieldErrorHint, "the engine decides whether it can read this file"),
		)
	}
	if spec.OutputPath != "" {
		for _, result := range preflight.Failed(preflight.CheckOutputDirectory(spec.OutputPath, cfg.Preflight.MinFreeMiB)) {
			logging.WarnWithContext(logger, "output preflight failed", "preflight_warning",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
				logging.String(logging.FieldImpact, "render may fail or be truncated"),
			)
		}
	}

	return cc.withHistory(func(store *history.Store) error {
		ctx := cmd.Context()
		persistCtx := context.WithoutCancel(ctx)

		sinks := []encoding.Sink{store.Sink(persistCtx)}
		errOut := cmd.ErrOrStderr()
		live := isTerminal(errOut)
		if live {
			sinks = append(sinks, liveProgressSink(errOut))
		}

		controller, err := encoding.NewController(cfg, logger, encoding.WithSink(encoding.FanOut(sinks...)))
		if err != nil {
			return err
		}
		id, err := controller.Submit(ctx, spec)
		if err != nil {
			return err
		}
		job, err := controller.Wait(persistCtx)
		if err != nil {
			return err
		}
		if live {
			fmt.Fprintln(errOut)
		}
		return reportJob(out, id, job)
	})
}

func liveProgressSink(w io.Writer) encoding.Sink {
	return func(event encoding.Event) {
		switch event.Type {
		case encoding.EventSubmitted, encoding.EventProgress:
			fmt.Fprintf(w, "\rRendering %s %3d%%", shortID(event.JobID), event.Percent)
		case encoding.EventSucceeded:
			fmt.Fprintf(w, "\rRendering %s 100%%", shortID(event.JobID))
		}
	}
}

func reportJob(w io.Writer, id string, job encoding.Job) error {
	switch job.State {
	case encoding.StateSucceeded:
		fmt.Fprintf(w, "Job %s succeeded: %s\n", shortID(id), job.Spec.OutputPath)
		return nil
	case encoding.StateCancelled:
		fmt.Fprintf(w, "Job %s cancelled at %d%%\n", shortID(id), job.Progress)
		return fmt.Errorf("render cancelled: %w", context.Canceled)
	default:
		fmt.Fprintf(w, "Job %s %s\n", shortID(id), strings.ToLower(jobOutcome(job)))
		if job.Err != nil {
			return job.Err
		}
		return errors.New("render failed")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// shellJoin quotes argv for copy and paste into a POSIX shell.
func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		if arg != "" && !strings.ContainsAny(arg, " \t\n'\"\\$`*?[]{}()<>|&;#~!") {
			quoted[i] = arg
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
