package trim

// Synchronizer holds the State for one audio selection. It is not safe for
// concurrent use; the session actor owns it and serializes every edit.
type Synchronizer struct {
	state State
}

// NewSynchronizer returns a synchronizer for a file of the given duration.
func NewSynchronizer(duration int) *Synchronizer {
	return &Synchronizer{state: State{}.SetDuration(duration)}
}

// State returns the current normalized state.
func (s *Synchronizer) State() State { return s.state }

func (s *Synchronizer) SetDuration(duration int) State {
	s.state = s.state.SetDuration(duration)
	return s.state
}

func (s *Synchronizer) MoveStart(seconds int) State {
	s.state = s.state.MoveStart(seconds)
	return s.state
}

func (s *Synchronizer) MoveEnd(seconds int) State {
	s.state = s.state.MoveEnd(seconds)
	return s.state
}

func (s *Synchronizer) Nudge(boundary Boundary, delta int) State {
	s.state = s.state.Nudge(boundary, delta)
	return s.state
}

// TickCursor applies a playback position and reports whether the caller
// must pause its player.
func (s *Synchronizer) TickCursor(position int) (State, bool) {
	var pause bool
	s.state, pause = s.state.TickCursor(position)
	return s.state, pause
}

func (s *Synchronizer) SeekToStart() State {
	s.state = s.state.SeekToStart()
	return s.state
}

func (s *Synchronizer) SetPlaying(playing bool) State {
	s.state = s.state.SetPlaying(playing)
	return s.state
}
