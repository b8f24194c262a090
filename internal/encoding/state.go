package encoding

import (
	"time"

	"stillcast/internal/jobspec"
)

// State is the lifecycle position of the controller's current job.
type State string

const (
	StateIdle       State = "idle"
	StateRunning    State = "running"
	StateCancelling State = "cancelling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Active reports whether a job occupies the controller.
func (s State) Active() bool {
	return s == StateRunning || s == StateCancelling
}

// Terminal reports whether the job has finished and awaits Reset.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Reason classifies why a job failed.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonSpawn      Reason = "spawn"
	ReasonExitStatus Reason = "exit_status"
	ReasonIO         Reason = "io"
)

// Job is a snapshot of the controller's current job.
type Job struct {
	ID            string
	State         State
	Spec          jobspec.JobSpec
	Args          []string
	Progress      int
	TotalDuration int
	ExitCode      int
	Reason        Reason
	Err           error
	StartedAt     time.Time
	FinishedAt    time.Time
}
