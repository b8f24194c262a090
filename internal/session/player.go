package session

import "time"

// Player is the preview playback device. Positions are whole seconds.
type Player interface {
	Position() int
	Seek(seconds int)
	Play()
	Pause()
}

// ClockPlayer simulates playback with the wall clock. It is only touched
// from the session goroutine and is not safe for concurrent use.
type ClockPlayer struct {
	now       func() time.Time
	base      int
	startedAt time.Time
	playing   bool
}

// NewClockPlayer returns a stopped player at position 0.
func NewClockPlayer() *ClockPlayer {
	return &ClockPlayer{now: time.Now}
}

func (p *ClockPlayer) Position() int {
	if !p.playing {
		return p.base
	}
	return p.base + int(p.now().Sub(p.startedAt)/time.Second)
}

func (p *ClockPlayer) Seek(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	p.base = seconds
	if p.playing {
		p.startedAt = p.now()
	}
}

func (p *ClockPlayer) Play() {
	if p.playing {
		return
	}
	p.startedAt = p.now()
	p.playing = true
}

func (p *ClockPlayer) Pause() {
	if !p.playing {
		return
	}
	p.base = p.Position()
	p.playing = false
}
