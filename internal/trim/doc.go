// Package trim keeps the audio trim range and the preview cursor consistent.
//
// State is a plain value and every edit returns a new normalized State, so
// the rules can be tested without goroutines or clocks. Synchronizer wraps a
// State for callers that prefer a mutable handle scoped to one audio file.
//
// Invariants while a range is active:
//
//	0 <= Start < End <= Duration
//	Start <= Cursor <= End
//
// Boundary edits win over the cursor: a moved boundary drags the cursor
// along, while cursor updates never move a boundary. Out of range input is
// clamped, never rejected.
package trim
