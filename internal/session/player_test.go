package session

import (
	"testing"
	"time"
)

func TestClockPlayerAdvancesOnlyWhilePlaying(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &ClockPlayer{now: func() time.Time { return now }}

	p.Seek(10)
	now = now.Add(5 * time.Second)
	if got := p.Position(); got != 10 {
		t.Fatalf("stopped position = %d, want 10", got)
	}

	p.Play()
	now = now.Add(2500 * time.Millisecond)
	if got := p.Position(); got != 12 {
		t.Fatalf("playing position = %d, want 12", got)
	}

	p.Pause()
	now = now.Add(time.Minute)
	if got := p.Position(); got != 12 {
		t.Fatalf("paused position = %d, want 12", got)
	}

	p.Play()
	p.Seek(40)
	now = now.Add(3 * time.Second)
	if got := p.Position(); got != 43 {
		t.Fatalf("position after seek = %d, want 43", got)
	}
	p.Seek(-3)
	if got := p.Position(); got != 0 {
		t.Fatalf("negative seek = %d, want 0", got)
	}
}
