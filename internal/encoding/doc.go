// Package encoding runs one transcoding engine job at a time and turns its
// diagnostic stream into progress events.
//
// Controller.Submit validates a jobspec.JobSpec, builds the engine argv,
// takes an advisory lock on the output path and starts the process without
// blocking. A per-job monitor goroutine scans stderr for time= markers,
// converts them to an integer percentage of the trimmed length and reports
// Submitted, Progress and exactly one terminal event to every registered
// Sink, in order. Events of a new job are never delivered before the
// previous job's terminal event.
//
// Cancel flips the job to Cancelling immediately, interrupts the engine and
// kills it after the configured grace period. A cancelled job always ends
// Cancelled, even when the engine managed to exit cleanly. After any terminal
// state the controller must be Reset before it accepts another job.
package encoding
