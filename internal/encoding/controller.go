package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stillcast/internal/config"
	"stillcast/internal/ffmpeg"
	"stillcast/internal/jobspec"
	"stillcast/internal/logging"
	"stillcast/internal/services"
)

const defaultCancelGrace = 3 * time.Second

// Controller owns at most one engine job and the only handle to its process.
type Controller struct {
	binary        string
	options       ffmpeg.Options
	grace         time.Duration
	removePartial bool
	launcher      Launcher
	logger        *slog.Logger

	mu      sync.Mutex
	sinks   []Sink
	job     Job
	current *run
}

// run is the per-job bookkeeping shared with the monitor goroutine.
type run struct {
	id       string
	spec     jobspec.JobSpec
	args     []string
	total    int
	proc     Process
	lock     *outputLock
	spawnErr error
	seq      int64
	logger   *slog.Logger
	prevDone <-chan struct{}
	exited   chan struct{}
	done     chan struct{}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLauncher replaces the os/exec launcher.
func WithLauncher(l Launcher) Option {
	return func(c *Controller) {
		if l != nil {
			c.launcher = l
		}
	}
}

// WithSink registers a sink at construction time.
func WithSink(s Sink) Option {
	return func(c *Controller) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// NewController builds a controller from configuration. The config is read
// once here; the controller holds no reference to process-wide state.
func NewController(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "encoding", "new controller", "config is required", nil)
	}
	options, err := ffmpeg.OptionsFromConfig(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "encoding", "new controller", "builder options", err)
	}
	grace := cfg.CancelGrace()
	if grace <= 0 {
		grace = defaultCancelGrace
	}
	c := &Controller{
		binary:        cfg.FFmpegBinary(),
		options:       options,
		grace:         grace,
		removePartial: cfg.Encode.RemovePartialOnCancel,
		launcher:      ExecLauncher{},
		logger:        logging.NewComponentLogger(logger, "encoding"),
		job:           Job{State: StateIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AddSink registers an additional event sink. Sinks added while a job is
// running receive only that job's later events.
func (c *Controller) AddSink(s Sink) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Current returns a snapshot of the current job.
func (c *Controller) Current() Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	job := c.job
	job.Args = append([]string(nil), c.job.Args...)
	return job
}

// Submit starts spec asynchronously and returns once the engine has been
// launched. A launch failure is not returned: the job moves straight to
// Failed with ReasonSpawn and the failure arrives as a terminal event.
func (c *Controller) Submit(ctx context.Context, spec jobspec.JobSpec) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.job.State.Active():
		return "", ErrAlreadyRunning
	case c.job.State.Terminal():
		return "", ErrNotReset
	}
	if err := spec.Validate(); err != nil {
		return "", err
	}

	lock, err := lockOutput(spec.OutputPath)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	args := ffmpeg.Build(spec, c.options)
	r := &run{
		id:     id,
		spec:   spec,
		args:   args,
		total:  spec.Range.Length(),
		lock:   lock,
		logger: c.logger.With(logging.String(logging.FieldJobID, id)),
		exited: make(chan struct{}),
		done:   make(chan struct{}),
	}
	if c.current != nil {
		r.prevDone = c.current.done
	}

	r.logger.Info("launching encode",
		logging.String(logging.FieldEventType, "encode_submitted"),
		logging.String("command", c.binary+" "+strings.Join(args, " ")),
		logging.String("audio_path", spec.AudioPath),
		logging.String("output_path", spec.OutputPath),
		logging.Int("total_seconds", r.total),
	)

	proc, err := c.launcher.Launch(ctx, c.binary, args)
	if err != nil {
		r.spawnErr = fmt.Errorf("%w: %s: %w", ErrProcessSpawn, c.binary, err)
	} else {
		r.proc = proc
	}

	c.current = r
	c.job = Job{
		ID:            id,
		State:         StateRunning,
		Spec:          spec,
		Args:          args,
		TotalDuration: r.total,
		StartedAt:     time.Now(),
	}
	sinks := append([]Sink(nil), c.sinks...)

	go c.monitor(ctx, r, sinks)
	return id, nil
}

// Cancel stops the running job. The state flips to Cancelling before Cancel
// returns; the engine is interrupted, then killed if it outlives the grace
// period. Cancel never waits for the engine to exit.
func (c *Controller) Cancel() error {
	return c.cancelRun(nil)
}

// cancelRun cancels target, or whatever job is current when target is nil.
func (c *Controller) cancelRun(target *run) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if target != nil && c.current != target {
		return ErrNoRunningJob
	}
	switch c.job.State {
	case StateCancelling:
		return nil
	case StateRunning:
	default:
		return ErrNoRunningJob
	}
	c.job.State = StateCancelling
	r := c.current
	r.logger.Info("cancelling encode", logging.String(logging.FieldEventType, "encode_cancel_requested"))
	if r.proc != nil {
		go c.terminate(r)
	}
	return nil
}

// Reset returns a finished controller to Idle.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.job.State == StateIdle:
		return nil
	case !c.job.State.Terminal():
		return ErrAlreadyRunning
	}
	c.job = Job{State: StateIdle}
	return nil
}

// Wait blocks until the current job's terminal event has been delivered to
// every sink, then returns the job snapshot.
func (c *Controller) Wait(ctx context.Context) (Job, error) {
	c.mu.Lock()
	r := c.current
	c.mu.Unlock()
	if r == nil {
		return c.Current(), ErrNoRunningJob
	}
	select {
	case <-r.done:
		return c.Current(), nil
	case <-ctx.Done():
		return c.Current(), ctx.Err()
	}
}

func (c *Controller) terminate(r *run) {
	if err := r.proc.Interrupt(); err != nil {
		r.logger.Debug("interrupt engine failed", logging.Error(err))
	}
	timer := time.NewTimer(c.grace)
	defer timer.Stop()
	select {
	case <-r.exited:
	case <-timer.C:
		logging.WarnWithContext(r.logger, "engine ignored interrupt; killing", "encode_cancel_kill",
			logging.Duration("grace", c.grace),
			logging.String(logging.FieldErrorHint, "engine may be stuck on I/O"),
			logging.String(logging.FieldImpact, "output file is likely truncated"),
		)
		if err := r.proc.Kill(); err != nil {
			r.logger.Debug("kill engine failed", logging.Error(err))
		}
	}
}

func (c *Controller) monitor(ctx context.Context, r *run, sinks []Sink) {
	defer close(r.done)
	if r.prevDone != nil {
		<-r.prevDone
	}

	emit := func(event Event) {
		r.seq++
		event.Seq = r.seq
		event.Timestamp = time.Now().UTC()
		event.JobID = r.id
		event.Spec = r.spec
		for _, sink := range sinks {
			sink(event)
		}
	}

	emit(Event{Type: EventSubmitted, State: StateRunning, Args: append([]string(nil), r.args...)})

	if r.spawnErr != nil {
		close(r.exited)
		c.finish(r, emit, StateFailed, ReasonSpawn, -1, r.spawnErr)
		return
	}

	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if err := c.cancelRun(r); err == nil {
				r.logger.Info("context cancelled; stopping encode")
			}
		case <-stopWatch:
		}
	}()
	defer close(stopWatch)

	sampler := logging.NewProgressSampler(10)
	reader := newProgressReader(r.total, func(percent int) {
		c.mu.Lock()
		if c.current != r || c.job.State != StateRunning {
			c.mu.Unlock()
			return
		}
		c.job.Progress = percent
		c.mu.Unlock()
		if sampler.ShouldLog(float64(percent), r.id) {
			r.logger.Info("encode progress", logging.Int(logging.FieldProgressPercent, percent))
		}
		emit(Event{Type: EventProgress, State: StateRunning, Percent: percent})
	})
	readErr := reader.consume(r.proc.Stderr())
	waitErr := r.proc.Wait()
	close(r.exited)

	var exitErr interface{ ExitCode() int }
	switch {
	case waitErr == nil && readErr == nil:
		c.finish(r, emit, StateSucceeded, ReasonNone, 0, nil)
	case waitErr == nil:
		c.finish(r, emit, StateFailed, ReasonIO, 0, fmt.Errorf("read engine diagnostics: %w", readErr))
	case errors.As(waitErr, &exitErr):
		code := exitErr.ExitCode()
		c.finish(r, emit, StateFailed, ReasonExitStatus, code, &ExitError{Code: code, Detail: reader.detail()})
	default:
		c.finish(r, emit, StateFailed, ReasonIO, exitCode(waitErr), fmt.Errorf("wait for engine: %w", waitErr))
	}
}

// finish commits the terminal state. An accepted cancel overrides whatever
// outcome the engine produced; once the state is terminal Cancel is refused.
func (c *Controller) finish(r *run, emit func(Event), state State, reason Reason, code int, err error) {
	c.mu.Lock()
	if c.job.State == StateCancelling {
		state, reason, err = StateCancelled, ReasonNone, nil
	}
	c.job.State = state
	c.job.Reason = reason
	c.job.ExitCode = code
	c.job.Err = err
	c.job.FinishedAt = time.Now()
	if state == StateSucceeded {
		c.job.Progress = 100
	}
	percent := c.job.Progress
	c.mu.Unlock()

	if state == StateCancelled && c.removePartial && r.spawnErr == nil {
		if rmErr := os.Remove(r.spec.OutputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.WarnWithContext(r.logger, "failed to remove partial output", "encode_cleanup_failed",
				logging.Error(rmErr),
				logging.String("output_path", r.spec.OutputPath),
				logging.String(logging.FieldImpact, "partial output left on disk"),
			)
		}
	}
	if releaseErr := r.lock.release(); releaseErr != nil {
		r.logger.Debug("release output lock failed", logging.Error(releaseErr))
	}

	event := Event{State: state, Percent: percent, ExitCode: code, Reason: reason, Err: err}
	switch state {
	case StateSucceeded:
		event.Type = EventSucceeded
		r.logger.Info("encode finished",
			logging.String(logging.FieldEventType, "encode_succeeded"),
			logging.String("output_path", r.spec.OutputPath),
		)
	case StateCancelled:
		event.Type = EventCancelled
		r.logger.Info("encode cancelled",
			logging.String(logging.FieldEventType, "encode_cancelled"),
			logging.Int(logging.FieldProgressPercent, percent),
		)
	default:
		event.Type = EventFailed
		logging.ErrorWithContext(r.logger, "encode failed", "encode_failed",
			logging.String("reason", string(reason)),
			logging.Int("exit_code", code),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, failureHint(reason)),
		)
	}
	emit(event)
}

func failureHint(reason Reason) string {
	switch reason {
	case ReasonSpawn:
		return "install the engine or set engine.ffmpeg_binary"
	case ReasonExitStatus:
		return "inspect the engine output above; the inputs may be unsupported"
	default:
		return "check disk space and permissions on the output directory"
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
