package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"
)

type fakeExit int

func (e fakeExit) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func (e fakeExit) ExitCode() int { return int(e) }

type fakeProcess struct {
	pr *io.PipeReader
	pw *io.PipeWriter

	exit chan error
	once sync.Once

	mu                sync.Mutex
	interrupted       bool
	killed            bool
	exitOnInterrupt   bool
	interruptExitCode error
}

func newFakeProcess() *fakeProcess {
	pr, pw := io.Pipe()
	return &fakeProcess{pr: pr, pw: pw, exit: make(chan error, 1)}
}

func (p *fakeProcess) Stderr() io.Reader { return p.pr }

func (p *fakeProcess) Wait() error { return <-p.exit }

func (p *fakeProcess) Interrupt() error {
	p.mu.Lock()
	p.interrupted = true
	exit := p.exitOnInterrupt
	code := p.interruptExitCode
	p.mu.Unlock()
	if exit {
		p.finish(code)
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.finish(errors.New("signal: killed"))
	return nil
}

func (p *fakeProcess) write(t *testing.T, text string) {
	t.Helper()
	if _, err := io.WriteString(p.pw, text); err != nil {
		t.Fatalf("write fake stderr: %v", err)
	}
}

func (p *fakeProcess) finish(err error) {
	p.once.Do(func() {
		_ = p.pw.Close()
		p.exit <- err
	})
}

func (p *fakeProcess) state() (interrupted, killed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interrupted, p.killed
}

type launchCall struct {
	binary string
	args   []string
}

type fakeLauncher struct {
	mu        sync.Mutex
	calls     []launchCall
	processes []*fakeProcess
	err       error
}

func (l *fakeLauncher) Launch(_ context.Context, binary string, args []string) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, launchCall{binary: binary, args: append([]string(nil), args...)})
	if l.err != nil {
		return nil, l.err
	}
	proc := newFakeProcess()
	l.processes = append(l.processes, proc)
	return proc, nil
}

func (l *fakeLauncher) last() *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processes[len(l.processes)-1]
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) sink(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) types() []EventType {
	var out []EventType
	for _, e := range r.snapshot() {
		out = append(out, e.Type)
	}
	return out
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitJob(t *testing.T, c *Controller) Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	job, err := c.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return job
}
