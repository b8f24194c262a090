package encoding

import (
	"errors"
	"fmt"

	"stillcast/internal/services"
)

var (
	// ErrAlreadyRunning rejects a submission while a job is running or cancelling.
	ErrAlreadyRunning = errors.New("encode job already running")
	// ErrNoRunningJob rejects a cancel when nothing is running.
	ErrNoRunningJob = errors.New("no running encode job")
	// ErrNotReset rejects a submission while a finished job has not been reset.
	ErrNotReset = errors.New("previous encode job not reset")
	// ErrOutputBusy reports that another process holds the output lock.
	ErrOutputBusy = errors.New("output file is locked by another render")
	// ErrProcessSpawn marks failures to start the engine.
	ErrProcessSpawn = fmt.Errorf("spawn engine: %w", services.ErrExternalTool)
)

// ExitError reports a nonzero engine exit.
type ExitError struct {
	Code   int
	Detail string
}

func (e *ExitError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("engine exited with status %d", e.Code)
	}
	return fmt.Sprintf("engine exited with status %d: %s", e.Code, e.Detail)
}

// Is lets errors.Is match the shared external tool marker.
func (e *ExitError) Is(target error) bool {
	return target == services.ErrExternalTool
}
