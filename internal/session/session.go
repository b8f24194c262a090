package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"stillcast/internal/encoding"
	"stillcast/internal/jobspec"
	"stillcast/internal/logging"
	"stillcast/internal/probe"
	"stillcast/internal/services"
	"stillcast/internal/trim"
)

const (
	mailboxSize         = 64
	eventBufferSize     = 64
	defaultTickInterval = 100 * time.Millisecond
)

var (
	// ErrClosed is returned by Send once the session has stopped.
	ErrClosed = errors.New("session closed")
	// ErrNoRange rejects playback while no trim range exists.
	ErrNoRange = errors.New("no trim range: select an audio file with a known duration")
	// ErrEmptyMedia reports a probed duration of zero seconds.
	ErrEmptyMedia = errors.New("media has zero length")
)

// DurationProber resolves an audio file's length.
type DurationProber interface {
	Probe(ctx context.Context, path string) (probe.Duration, error)
}

// JobController runs renders. *encoding.Controller satisfies it.
type JobController interface {
	Submit(ctx context.Context, spec jobspec.JobSpec) (string, error)
	Cancel() error
	Reset() error
	AddSink(encoding.Sink)
}

// Options wires a session's collaborators.
type Options struct {
	Prober       DurationProber
	Controller   JobController
	Player       Player
	TickInterval time.Duration
	Logger       *slog.Logger
}

type probeResult struct {
	generation int
	path       string
	duration   probe.Duration
	err        error
}

type tickMsg struct{}

type jobMsg struct{ event encoding.Event }

// Session is the actor. Create with New and drive with Run.
type Session struct {
	id           string
	prober       DurationProber
	controller   JobController
	player       Player
	tickInterval time.Duration
	logger       *slog.Logger

	mailbox chan any
	events  chan Event
	stopped chan struct{}
	stop    sync.Once

	// Owned by the Run goroutine.
	ctx        context.Context
	ranges     *trim.Synchronizer
	audioPath  string
	generation int
	jobID      string
}

// New constructs a session and registers it as a sink on the controller.
func New(opts Options) (*Session, error) {
	if opts.Prober == nil || opts.Controller == nil {
		return nil, fmt.Errorf("session: prober and controller are required")
	}
	if opts.Player == nil {
		opts.Player = NewClockPlayer()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	id := uuid.NewString()
	s := &Session{
		id:           id,
		prober:       opts.Prober,
		controller:   opts.Controller,
		player:       opts.Player,
		tickInterval: opts.TickInterval,
		logger:       logging.NewComponentLogger(opts.Logger, "session").With(logging.String(logging.FieldSessionID, id)),
		mailbox:      make(chan any, mailboxSize),
		events:       make(chan Event, eventBufferSize),
		stopped:      make(chan struct{}),
		ranges:       trim.NewSynchronizer(0),
	}
	s.controller.AddSink(s.forwardJobEvent)
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Events streams everything the session emits.
func (s *Session) Events() <-chan Event { return s.events }

// Send queues a command. Commands are applied in the order they are sent.
func (s *Session) Send(cmd Command) error {
	select {
	case <-s.stopped:
		return ErrClosed
	default:
	}
	select {
	case s.mailbox <- cmd:
		return nil
	case <-s.stopped:
		return ErrClosed
	}
}

// Run processes the mailbox until ctx is cancelled. It closes Events on return.
func (s *Session) Run(ctx context.Context) error {
	ctx = services.WithSessionID(ctx, s.id)
	s.ctx = ctx
	defer close(s.events)
	defer s.stop.Do(func() { close(s.stopped) })

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				select {
				case s.mailbox <- tickMsg{}:
				default:
				}
			case <-s.stopped:
				return
			}
		}
	}()

	s.logger.Debug("session started")
	for {
		select {
		case <-ctx.Done():
			s.player.Pause()
			s.logger.Debug("session stopped")
			return nil
		case msg := <-s.mailbox:
			s.handle(msg)
		}
	}
}

func (s *Session) handle(msg any) {
	switch m := msg.(type) {
	case SetAudio:
		s.setAudio(m.Path)
	case probeResult:
		s.applyProbe(m)
	case MoveStart:
		s.edit(s.ranges.MoveStart(m.Seconds))
	case MoveEnd:
		s.edit(s.ranges.MoveEnd(m.Seconds))
	case Nudge:
		s.edit(s.ranges.Nudge(m.Boundary, m.Delta))
	case TickCursor:
		s.tick(m.Position)
	case tickMsg:
		if s.ranges.State().Playing {
			s.tick(s.player.Position())
		}
	case Play:
		s.play()
	case Stop:
		s.pause(false)
	case Submit:
		s.submit(m)
	case Cancel:
		if err := s.controller.Cancel(); err != nil {
			s.reject(m, err)
		}
	case jobMsg:
		s.applyJobEvent(m.event)
	default:
		s.logger.Warn("unhandled session message", logging.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (s *Session) setAudio(path string) {
	s.generation++
	s.audioPath = path
	s.player.Pause()
	s.ranges = trim.NewSynchronizer(0)
	s.emitRange(s.ranges.State())

	generation := s.generation
	ctx := s.ctx
	s.logger.Info("probing audio", logging.String("audio_path", path))
	go func() {
		duration, err := s.prober.Probe(ctx, path)
		s.post(probeResult{generation: generation, path: path, duration: duration, err: err})
	}()
}

func (s *Session) applyProbe(result probeResult) {
	if result.generation != s.generation {
		s.logger.Debug("discarding stale probe result", logging.String("audio_path", result.path))
		return
	}
	switch {
	case result.err != nil:
		s.emit(AudioUnavailable{Path: result.path, Err: result.err})
		return
	case !result.duration.Known:
		s.emit(AudioUnavailable{Path: result.path, Err: probe.ErrUnparsableOutput})
		return
	case result.duration.Seconds <= 0:
		s.emit(AudioUnavailable{Path: result.path, Err: ErrEmptyMedia})
		return
	}
	s.ranges = trim.NewSynchronizer(result.duration.Seconds)
	s.player.Seek(0)
	s.emitRange(s.ranges.State())
}

// edit publishes state after a boundary edit. A playing preview follows the
// cursor when the edit dragged it.
func (s *Session) edit(next trim.State) {
	if next.Playing && s.player.Position() != next.Cursor {
		s.player.Seek(next.Cursor)
	}
	s.emitRange(next)
}

func (s *Session) tick(position int) {
	before := s.ranges.State()
	next, pause := s.ranges.TickCursor(position)
	if pause {
		s.player.Pause()
		s.player.Seek(next.Cursor)
	}
	if !next.SameRange(before) || next.Playing != before.Playing {
		s.emitRange(next)
	}
	if pause {
		s.emit(PlaybackPaused{Cursor: next.Cursor, AtEnd: true})
	}
}

func (s *Session) play() {
	if !s.ranges.State().Active() {
		s.reject(Play{}, ErrNoRange)
		return
	}
	s.ranges.SeekToStart()
	next := s.ranges.SetPlaying(true)
	s.player.Seek(next.Cursor)
	s.player.Play()
	s.emitRange(next)
}

func (s *Session) pause(atEnd bool) {
	if !s.ranges.State().Playing {
		return
	}
	s.player.Pause()
	next := s.ranges.SetPlaying(false)
	s.emitRange(next)
	s.emit(PlaybackPaused{Cursor: next.Cursor, AtEnd: atEnd})
}

func (s *Session) submit(cmd Submit) {
	if s.jobID != "" {
		s.reject(cmd, encoding.ErrAlreadyRunning)
		return
	}
	state := s.ranges.State()
	spec := jobspec.JobSpec{
		ImagePath:  cmd.ImagePath,
		AudioPath:  s.audioPath,
		OutputPath: cmd.OutputPath,
		Range:      jobspec.TrimRange{Start: state.Start, End: state.End},
		Wobble:     cmd.Wobble,
		Dim:        cmd.Dim,
	}
	for _, warning := range spec.FormatWarnings() {
		logging.WarnWithContext(s.logger, "unexpected file format", "format_hint",
			logging.String("detail", warning),
			logging.String(logging.FieldErrorHint, "the engine decides whether it can read this file"),
			logging.String(logging.FieldImpact, "render may fail"),
		)
	}
	id, err := s.controller.Submit(s.ctx, spec)
	if err != nil {
		s.reject(cmd, err)
		return
	}
	s.jobID = id
	s.emit(JobStarted{JobID: id, Spec: spec})
}

func (s *Session) applyJobEvent(event encoding.Event) {
	if event.JobID != s.jobID {
		return
	}
	switch event.Type {
	case encoding.EventProgress:
		s.emit(ProgressChanged{JobID: event.JobID, Percent: event.Percent})
		return
	case encoding.EventSucceeded:
		s.emit(ProgressChanged{JobID: event.JobID, Percent: 100})
		s.emit(JobSucceeded{JobID: event.JobID, OutputPath: event.Spec.OutputPath})
	case encoding.EventFailed:
		s.emit(JobFailed{JobID: event.JobID, Reason: event.Reason, ExitCode: event.ExitCode, Err: event.Err})
	case encoding.EventCancelled:
		s.emit(JobCancelled{JobID: event.JobID})
	default:
		return
	}
	s.jobID = ""
	if err := s.controller.Reset(); err != nil {
		s.logger.Warn("controller reset failed", logging.Error(err))
	}
}

func (s *Session) reject(cmd Command, err error) {
	s.logger.Info("command rejected", logging.String("command", cmd.commandName()), logging.Error(err))
	s.emit(CommandRejected{Command: cmd.commandName(), Err: err})
}

func (s *Session) emitRange(state trim.State) {
	s.emit(RangeChanged{
		Active:   state.Active(),
		Start:    state.Start,
		End:      state.End,
		Cursor:   state.Cursor,
		Duration: state.Duration,
		Playing:  state.Playing,
	})
}

func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	case <-s.ctx.Done():
	}
}

// post delivers an internal message unless the session has stopped.
func (s *Session) post(msg any) {
	select {
	case s.mailbox <- msg:
	case <-s.stopped:
	}
}

// forwardJobEvent is the controller sink. It runs on the controller's monitor
// goroutine and only enqueues.
func (s *Session) forwardJobEvent(event encoding.Event) {
	s.post(jobMsg{event: event})
}
