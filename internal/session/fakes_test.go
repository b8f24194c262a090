package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stillcast/internal/encoding"
	"stillcast/internal/jobspec"
	"stillcast/internal/probe"
)

type probeReply struct {
	duration probe.Duration
	err      error
}

// fakeProber answers each path from a channel so tests control ordering.
type fakeProber struct {
	mu      sync.Mutex
	replies map[string]chan probeReply
}

func newFakeProber() *fakeProber {
	return &fakeProber{replies: make(map[string]chan probeReply)}
}

func (p *fakeProber) channel(path string) chan probeReply {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.replies[path]
	if !ok {
		ch = make(chan probeReply, 1)
		p.replies[path] = ch
	}
	return ch
}

func (p *fakeProber) reply(path string, seconds int, err error) {
	p.channel(path) <- probeReply{duration: probe.Duration{Seconds: seconds, Known: err == nil}, err: err}
}

func (p *fakeProber) Probe(ctx context.Context, path string) (probe.Duration, error) {
	select {
	case r := <-p.channel(path):
		return r.duration, r.err
	case <-ctx.Done():
		return probe.Unknown, ctx.Err()
	}
}

type fakeController struct {
	mu        sync.Mutex
	sinks     []encoding.Sink
	submitted []jobspec.JobSpec
	cancels   int
	resets    int
	submitErr error
}

func (c *fakeController) Submit(_ context.Context, spec jobspec.JobSpec) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return "", c.submitErr
	}
	if err := spec.Validate(); err != nil {
		return "", err
	}
	c.submitted = append(c.submitted, spec)
	return "job-1", nil
}

func (c *fakeController) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.submitted) == 0 {
		return encoding.ErrNoRunningJob
	}
	c.cancels++
	return nil
}

func (c *fakeController) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets++
	return nil
}

func (c *fakeController) AddSink(s encoding.Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

func (c *fakeController) deliver(event encoding.Event) {
	c.mu.Lock()
	sinks := append([]encoding.Sink(nil), c.sinks...)
	c.mu.Unlock()
	for _, s := range sinks {
		s(event)
	}
}

func (c *fakeController) counts() (submitted, cancels, resets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submitted), c.cancels, c.resets
}

// fakePlayer reports whatever position the test sets.
type fakePlayer struct {
	mu       sync.Mutex
	position int
	playing  bool
}

func (p *fakePlayer) Position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *fakePlayer) Seek(seconds int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = seconds
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *fakePlayer) set(position int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = position
}

func (p *fakePlayer) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

type harness struct {
	session    *Session
	prober     *fakeProber
	controller *fakeController
	player     *fakePlayer
}

func startSession(t *testing.T) *harness {
	t.Helper()
	h := &harness{prober: newFakeProber(), controller: &fakeController{}, player: &fakePlayer{}}
	s, err := New(Options{
		Prober:       h.prober,
		Controller:   h.controller,
		Player:       h.player,
		TickInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.session = s

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		for range s.Events() {
		}
		<-done
	})
	return h
}

func (h *harness) send(t *testing.T, cmd Command) {
	t.Helper()
	if err := h.session.Send(cmd); err != nil {
		t.Fatalf("Send(%T): %v", cmd, err)
	}
}

// expect reads events until one of type T arrives.
func expect[T Event](t *testing.T, h *harness) T {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-h.session.Events():
			if !ok {
				t.Fatal("event stream closed")
			}
			if typed, ok := event.(T); ok {
				return typed
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
		}
	}
}

// expectRange reads RangeChanged events until one satisfies match.
func expectRange(t *testing.T, h *harness, match func(RangeChanged) bool) RangeChanged {
	t.Helper()
	for {
		rc := expect[RangeChanged](t, h)
		if match(rc) {
			return rc
		}
	}
}

var errBroken = errors.New("broken file")
