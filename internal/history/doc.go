// Package history records encode jobs in SQLite so finished renders can be
// listed, inspected and replayed.
//
// The Store is fed exclusively from encoding controller events: Submitted
// inserts a row, Progress updates are throttled, and the terminal event
// stamps state, exit code and failure reason. Each row keeps the exact engine
// argv as JSON, which is what `history rerun` parses back into a job spec.
//
// Schema changes bump schemaVersion in schema.go; users delete history.db to
// adopt a new schema.
package history
