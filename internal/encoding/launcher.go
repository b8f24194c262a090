package encoding

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// Process is a started engine invocation.
type Process interface {
	// Stderr streams the engine's diagnostic output until it exits.
	Stderr() io.Reader
	// Wait blocks until the engine exits. Call only after Stderr is drained.
	Wait() error
	// Interrupt asks the engine to stop and finalize.
	Interrupt() error
	// Kill stops the engine immediately.
	Kill() error
}

// Launcher starts engine processes.
type Launcher interface {
	Launch(ctx context.Context, binary string, args []string) (Process, error)
}

// ExecLauncher starts the engine with os/exec.
type ExecLauncher struct{}

func (ExecLauncher) Launch(_ context.Context, binary string, args []string) (Process, error) {
	cmd := exec.Command(binary, args...)
	cmd.Stdout = io.Discard
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stderr: stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stderr io.ReadCloser
}

func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) Interrupt() error { return p.cmd.Process.Signal(os.Interrupt) }

func (p *execProcess) Kill() error { return p.cmd.Process.Kill() }
