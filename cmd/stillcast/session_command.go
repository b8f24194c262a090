package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stillcast/internal/encoding"
	"stillcast/internal/history"
	"stillcast/internal/probe"
	"stillcast/internal/session"
	"stillcast/internal/trim"
)

const sessionHelp = `commands:
  audio PATH            select the audio track and probe its length
  start N | end N       move a range boundary (seconds or HH:MM:SS)
  nudge start|end [±N]  shift a boundary (default trim.nudge_seconds)
  play | stop           preview the range
  tick N                report an external playback position
  image PATH            set the still image
  output PATH           set the output video path
  wobble on|off         toggle the wobble effect
  dim on|off            toggle the dim effect
  submit | cancel       start or stop a render
  help | quit`

func newSessionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Edit a trim range interactively and render it",
		Long: "Session reads one command per line from stdin and prints every event.\n" +
			"At end of input it waits for an in-flight render; quit cancels it.\n\n" + sessionHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			warnMissingEngine(cfg, logger)

			return ctx.withHistory(func(store *history.Store) error {
				persistCtx := context.WithoutCancel(cmd.Context())
				controller, err := encoding.NewController(cfg, logger, encoding.WithSink(store.Sink(persistCtx)))
				if err != nil {
					return err
				}
				sess, err := session.New(session.Options{
					Prober:       probe.New(cfg, logger),
					Controller:   controller,
					TickInterval: cfg.TickInterval(),
					Logger:       logger,
				})
				if err != nil {
					return err
				}

				repl := newSessionREPL(sess, cfg.Trim.NudgeSeconds, cmd.OutOrStdout(), cmd.ErrOrStderr())
				err = repl.run(cmd.Context(), cmd.InOrStdin())

				// A render cancelled by quit still records its terminal state.
				if controller.Current().State.Active() {
					_ = controller.Cancel()
					_, _ = controller.Wait(persistCtx)
				}
				return err
			})
		},
	}
}

// eventLog records emitted events so the input loop can wait for the ones
// a command is expected to produce.
type eventLog struct {
	mu        sync.Mutex
	cond      *sync.Cond
	events    []session.Event
	jobActive bool
	closed    bool
}

func newEventLog() *eventLog {
	l := &eventLog{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *eventLog) add(event session.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	switch event.(type) {
	case session.JobStarted:
		l.jobActive = true
	case session.JobSucceeded, session.JobFailed, session.JobCancelled:
		l.jobActive = false
	}
	l.cond.Broadcast()
}

func (l *eventLog) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.cond.Broadcast()
}

func (l *eventLog) mark() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// waitFor blocks until an event at or after index from satisfies match.
func (l *eventLog) waitFor(from int, match func(session.Event) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		for ; from < len(l.events); from++ {
			if match(l.events[from]) {
				return
			}
		}
		if l.closed {
			return
		}
		l.cond.Wait()
	}
}

func (l *eventLog) waitIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.jobActive && !l.closed {
		l.cond.Wait()
	}
}

type sessionREPL struct {
	sess   *session.Session
	nudge  int
	out    io.Writer
	errOut io.Writer
	log    *eventLog

	image  string
	output string
	wobble bool
	dim    bool
}

func newSessionREPL(sess *session.Session, nudge int, out, errOut io.Writer) *sessionREPL {
	if nudge <= 0 {
		nudge = 1
	}
	return &sessionREPL{sess: sess, nudge: nudge, out: out, errOut: errOut, log: newEventLog()}
}

func (r *sessionREPL) run(parent context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- r.sess.Run(ctx) }()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for event := range r.sess.Events() {
			fmt.Fprintln(r.out, event.String())
			r.log.add(event)
		}
		r.log.close()
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := false
	for !quit {
		select {
		case <-ctx.Done():
			quit = true
		case line, ok := <-lines:
			if !ok {
				r.log.waitIdle()
				quit = true
				break
			}
			var err error
			quit, err = r.execute(line)
			if err != nil {
				fmt.Fprintln(r.errOut, err)
			}
		}
	}

	cancel()
	err := <-runDone
	<-printed
	return err
}

// execute applies one input line and reports whether the session should end.
func (r *sessionREPL) execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}
	verb, rest := strings.ToLower(fields[0]), fields[1:]
	argument := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch verb {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(r.out, sessionHelp)
		return false, nil
	case "image":
		if argument == "" {
			return false, errors.New("usage: image PATH")
		}
		r.image = argument
		return false, nil
	case "output":
		if argument == "" {
			return false, errors.New("usage: output PATH")
		}
		r.output = argument
		return false, nil
	case "wobble", "dim":
		on, err := parseToggle(verb, rest)
		if err != nil {
			return false, err
		}
		if verb == "wobble" {
			r.wobble = on
		} else {
			r.dim = on
		}
		return false, nil
	case "audio":
		if argument == "" {
			return false, errors.New("usage: audio PATH")
		}
		return false, r.sendAndWait(session.SetAudio{Path: argument}, audioSettled())
	case "start", "end", "tick":
		if len(rest) != 1 {
			return false, fmt.Errorf("usage: %s N", verb)
		}
		seconds, err := parseSeconds(rest[0])
		if err != nil {
			return false, err
		}
		switch verb {
		case "start":
			return false, r.send(session.MoveStart{Seconds: seconds})
		case "end":
			return false, r.send(session.MoveEnd{Seconds: seconds})
		default:
			return false, r.send(session.TickCursor{Position: seconds})
		}
	case "nudge":
		cmd, err := r.parseNudge(rest)
		if err != nil {
			return false, err
		}
		return false, r.send(cmd)
	case "play":
		return false, r.send(session.Play{})
	case "stop":
		return false, r.send(session.Stop{})
	case "submit":
		return false, r.sendAndWait(session.Submit{
			ImagePath:  r.image,
			OutputPath: r.output,
			Wobble:     r.wobble,
			Dim:        r.dim,
		}, submitSettled)
	case "cancel":
		return false, r.send(session.Cancel{})
	default:
		return false, fmt.Errorf("unknown command %q (try help)", verb)
	}
}

func (r *sessionREPL) send(cmd session.Command) error {
	return r.sess.Send(cmd)
}

func (r *sessionREPL) sendAndWait(cmd session.Command, settled func(session.Event) bool) error {
	from := r.log.mark()
	if err := r.sess.Send(cmd); err != nil {
		return err
	}
	r.log.waitFor(from, settled)
	return nil
}

func (r *sessionREPL) parseNudge(args []string) (session.Nudge, error) {
	if len(args) == 0 || len(args) > 2 {
		return session.Nudge{}, errors.New("usage: nudge start|end [±N]")
	}
	boundary, err := trim.ParseBoundary(strings.ToLower(args[0]))
	if err != nil {
		return session.Nudge{}, err
	}
	delta := r.nudge
	if len(args) == 2 {
		raw := args[1]
		sign := 1
		switch {
		case strings.HasPrefix(raw, "-"):
			sign, raw = -1, raw[1:]
		case strings.HasPrefix(raw, "+"):
			raw = raw[1:]
		}
		magnitude, err := parseSeconds(raw)
		if err != nil {
			return session.Nudge{}, err
		}
		delta = sign * magnitude
	}
	return session.Nudge{Boundary: boundary, Delta: delta}, nil
}

func parseToggle(name string, args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("usage: %s on|off", name)
	}
	switch strings.ToLower(args[0]) {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("usage: %s on|off", name)
	}
}

// audioSettled matches the outcome of a duration probe. Selecting audio
// first clears the range, so only events after that reset count.
func audioSettled() func(session.Event) bool {
	cleared := false
	return func(event session.Event) bool {
		switch e := event.(type) {
		case session.RangeChanged:
			if !e.Active {
				cleared = true
				return false
			}
			return cleared
		case session.AudioUnavailable:
			return cleared
		default:
			return false
		}
	}
}

func submitSettled(event session.Event) bool {
	switch e := event.(type) {
	case session.JobStarted:
		return true
	case session.CommandRejected:
		return e.Command == "submit"
	default:
		return false
	}
}
