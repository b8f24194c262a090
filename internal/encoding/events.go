package encoding

import (
	"time"

	"stillcast/internal/jobspec"
)

// EventType classifies controller events.
type EventType string

const (
	EventSubmitted EventType = "submitted"
	EventProgress  EventType = "progress"
	EventSucceeded EventType = "succeeded"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
)

// Terminal reports whether the event ends its job.
func (t EventType) Terminal() bool {
	return t == EventSucceeded || t == EventFailed || t == EventCancelled
}

// Event is delivered to sinks as a job advances. Seq increases by one per
// event within a job.
type Event struct {
	Seq       int64
	Timestamp time.Time
	JobID     string
	Type      EventType
	State     State
	Spec      jobspec.JobSpec
	Args      []string
	Percent   int
	ExitCode  int
	Reason    Reason
	Err       error
}

// Sink receives controller events. Sinks run on the job's monitor goroutine
// and must not call back into the controller.
type Sink func(Event)

// FanOut returns a sink delivering each event to every non-nil sink in turn.
func FanOut(sinks ...Sink) Sink {
	return func(event Event) {
		for _, sink := range sinks {
			if sink != nil {
				sink(event)
			}
		}
	}
}
