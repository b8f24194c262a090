package trim

import "fmt"

// Boundary selects which end of the range a nudge applies to.
type Boundary int

const (
	BoundaryStart Boundary = iota
	BoundaryEnd
)

func (b Boundary) String() string {
	switch b {
	case BoundaryStart:
		return "start"
	case BoundaryEnd:
		return "end"
	default:
		return fmt.Sprintf("boundary(%d)", int(b))
	}
}

// ParseBoundary accepts "start" or "end".
func ParseBoundary(value string) (Boundary, error) {
	switch value {
	case "start":
		return BoundaryStart, nil
	case "end":
		return BoundaryEnd, nil
	default:
		return 0, fmt.Errorf("unknown boundary %q", value)
	}
}

// State is the trim range, the preview cursor and the media duration they
// are bounded by. The zero value has no active range.
type State struct {
	Duration int
	Start    int
	End      int
	Cursor   int
	Playing  bool
}

// Active reports whether a range exists. A zero or unknown duration leaves
// the range inactive and turns every edit into a no-op.
func (s State) Active() bool {
	return s.Duration > 0
}

// SetDuration resets the range to the whole file and parks the cursor at 0.
// Non-positive durations clear the range.
func (s State) SetDuration(duration int) State {
	if duration <= 0 {
		return State{}
	}
	return State{Duration: duration, Start: 0, End: duration, Cursor: 0}
}

// MoveStart clamps newStart to [0, End-1]. A cursor left behind the new
// start is pulled up to it.
func (s State) MoveStart(newStart int) State {
	if !s.Active() {
		return s
	}
	s.Start = clamp(newStart, 0, s.End-1)
	if s.Cursor < s.Start {
		s.Cursor = s.Start
	}
	return s
}

// MoveEnd clamps newEnd to [Start+1, Duration]. A cursor past the new end
// is pulled back to it.
func (s State) MoveEnd(newEnd int) State {
	if !s.Active() {
		return s
	}
	s.End = clamp(newEnd, s.Start+1, s.Duration)
	if s.Cursor > s.End {
		s.Cursor = s.End
	}
	return s
}

// Nudge shifts one boundary by delta seconds with the same clamping as the
// direct moves.
func (s State) Nudge(boundary Boundary, delta int) State {
	switch boundary {
	case BoundaryStart:
		return s.MoveStart(s.Start + delta)
	case BoundaryEnd:
		return s.MoveEnd(s.End + delta)
	default:
		return s
	}
}

// TickCursor applies a position reported by playback. Positions at or past
// End clamp the cursor to End, stop playback and return pause=true so the
// caller can halt its player. Positions before Start are floored to Start.
func (s State) TickCursor(position int) (next State, pause bool) {
	if !s.Active() {
		return s, false
	}
	switch {
	case position >= s.End:
		s.Cursor = s.End
		s.Playing = false
		return s, true
	case position < s.Start:
		s.Cursor = s.Start
	default:
		s.Cursor = position
	}
	return s, false
}

// SeekToStart moves the cursor to Start, used when playback (re)starts.
func (s State) SeekToStart() State {
	if !s.Active() {
		return s
	}
	s.Cursor = s.Start
	return s
}

// SetPlaying records whether preview playback is running. Playback cannot
// start without an active range.
func (s State) SetPlaying(playing bool) State {
	if playing && !s.Active() {
		return s
	}
	s.Playing = playing
	return s
}

// SameRange reports whether two states expose the same range and cursor.
func (s State) SameRange(other State) bool {
	return s.Start == other.Start && s.End == other.End && s.Cursor == other.Cursor && s.Duration == other.Duration
}

func (s State) String() string {
	if !s.Active() {
		return "no range"
	}
	return fmt.Sprintf("[%d, %d) cursor=%d of %d", s.Start, s.End, s.Cursor, s.Duration)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
