package trim

import (
	"math/rand/v2"
	"testing"
)

func TestSetDuration(t *testing.T) {
	got := State{}.SetDuration(120)
	want := State{Duration: 120, Start: 0, End: 120, Cursor: 0}
	if got != want {
		t.Fatalf("SetDuration = %+v, want %+v", got, want)
	}
	if (State{}).SetDuration(0).Active() {
		t.Fatal("zero duration must not activate a range")
	}
}

func TestMoveEndThenStartClampsToGap(t *testing.T) {
	s := State{}.SetDuration(120).MoveEnd(10).MoveStart(15)
	if s.Start != 9 || s.End != 10 {
		t.Fatalf("got [%d, %d), want [9, 10)", s.Start, s.End)
	}
}

func TestMoveClamping(t *testing.T) {
	tests := []struct {
		name      string
		apply     func(State) State
		wantStart int
		wantEnd   int
	}{
		{"start past end", func(s State) State { return s.MoveStart(130) }, 119, 120},
		{"negative start", func(s State) State { return s.MoveStart(-5) }, 0, 120},
		{"end past duration", func(s State) State { return s.MoveEnd(500) }, 0, 120},
		{"end before start", func(s State) State { return s.MoveStart(50).MoveEnd(20) }, 50, 51},
		{"nudge start", func(s State) State { return s.Nudge(BoundaryStart, 5) }, 5, 120},
		{"nudge start below zero", func(s State) State { return s.Nudge(BoundaryStart, -5) }, 0, 120},
		{"nudge end", func(s State) State { return s.Nudge(BoundaryEnd, -5) }, 0, 115},
		{"nudge end past duration", func(s State) State { return s.Nudge(BoundaryEnd, 5) }, 0, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.apply(State{}.SetDuration(120))
			if s.Start != tt.wantStart || s.End != tt.wantEnd {
				t.Fatalf("got [%d, %d), want [%d, %d)", s.Start, s.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestBoundaryEditsDragCursor(t *testing.T) {
	s := State{}.SetDuration(100)
	s, _ = s.TickCursor(40)

	moved := s.MoveStart(60)
	if moved.Cursor != 60 {
		t.Fatalf("cursor = %d, want dragged to start 60", moved.Cursor)
	}

	moved = s.MoveEnd(30)
	if moved.Cursor != 30 {
		t.Fatalf("cursor = %d, want dragged to end 30", moved.Cursor)
	}

	untouched := s.MoveStart(10)
	if untouched.Cursor != 40 {
		t.Fatalf("cursor = %d, want unchanged 40", untouched.Cursor)
	}
}

func TestTickCursor(t *testing.T) {
	base := State{}.SetDuration(100).MoveStart(20).MoveEnd(50).SetPlaying(true)

	s, pause := base.TickCursor(35)
	if pause || s.Cursor != 35 || !s.Playing {
		t.Fatalf("in-range tick = %+v pause=%v", s, pause)
	}

	s, pause = base.TickCursor(50)
	if !pause || s.Cursor != 50 || s.Playing {
		t.Fatalf("tick at end = %+v pause=%v", s, pause)
	}

	s, pause = base.TickCursor(80)
	if !pause || s.Cursor != 50 {
		t.Fatalf("tick past end = %+v pause=%v", s, pause)
	}
	if s.Start != 20 || s.End != 50 {
		t.Fatalf("cursor tick must not move boundaries: %+v", s)
	}

	s, pause = base.TickCursor(3)
	if pause || s.Cursor != 20 {
		t.Fatalf("tick below start = %+v pause=%v", s, pause)
	}
}

func TestSeekToStart(t *testing.T) {
	s := State{}.SetDuration(100).MoveStart(25)
	s, _ = s.TickCursor(70)
	if got := s.SeekToStart().Cursor; got != 25 {
		t.Fatalf("SeekToStart cursor = %d, want 25", got)
	}
}

func TestInactiveStateIgnoresEdits(t *testing.T) {
	var s State
	if s.MoveStart(5) != s || s.MoveEnd(5) != s || s.Nudge(BoundaryEnd, 5) != s || s.SeekToStart() != s {
		t.Fatal("edits on an inactive state must be no-ops")
	}
	if next, pause := s.TickCursor(5); pause || next != s {
		t.Fatalf("tick on inactive state = %+v pause=%v", next, pause)
	}
	if s.SetPlaying(true).Playing {
		t.Fatal("playback cannot start without a range")
	}
}

func TestEditsAreIdempotent(t *testing.T) {
	s := State{}.SetDuration(90)
	once := s.MoveStart(30)
	if once.MoveStart(30) != once {
		t.Fatal("repeating MoveStart changed state")
	}
	end := once.MoveEnd(45)
	if end.MoveEnd(45) != end {
		t.Fatal("repeating MoveEnd changed state")
	}
}

func TestRandomEditSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		duration := 1 + rng.IntN(600)
		s := State{}.SetDuration(duration)
		for step := 0; step < 100; step++ {
			v := rng.IntN(2*duration+40) - duration - 20
			switch rng.IntN(5) {
			case 0:
				s = s.MoveStart(v)
			case 1:
				s = s.MoveEnd(v)
			case 2:
				s = s.Nudge(BoundaryStart, rng.IntN(21)-10)
			case 3:
				s = s.Nudge(BoundaryEnd, rng.IntN(21)-10)
			case 4:
				s, _ = s.TickCursor(v)
			}
			if !(0 <= s.Start && s.Start < s.End && s.End <= s.Duration) {
				t.Fatalf("range invariant broken: %+v", s)
			}
			if s.Cursor < s.Start || s.Cursor > s.End {
				t.Fatalf("cursor invariant broken: %+v", s)
			}
		}
	}
}

func TestParseBoundary(t *testing.T) {
	if b, err := ParseBoundary("start"); err != nil || b != BoundaryStart {
		t.Fatalf("ParseBoundary(start) = %v, %v", b, err)
	}
	if b, err := ParseBoundary("end"); err != nil || b != BoundaryEnd {
		t.Fatalf("ParseBoundary(end) = %v, %v", b, err)
	}
	if _, err := ParseBoundary("middle"); err == nil {
		t.Fatal("expected error")
	}
}
