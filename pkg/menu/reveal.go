package menu

import (
	"context"
	"sync"
	"time"
)

const (
	// StartScale is the scale a segment appears at.
	StartScale float32 = 0.5
	// Growth is the per-frame scale factor while a segment grows.
	Growth float32 = 1.12
)

// Reveal shows segments one after another. Each frame the current segment
// grows by Growth until its scale reaches 1; the next frame clamps it to 1
// and makes the following segment visible at StartScale.
//
// A Reveal is safe for concurrent use.
type Reveal struct {
	mu      sync.Mutex
	visible []bool
	scales  []float32
	shown   bool
	current int
}

// NewReveal returns a Reveal over n segments, all hidden.
func NewReveal(n int) *Reveal {
	r := &Reveal{
		visible: make([]bool, n),
		scales:  make([]float32, n),
	}
	for i := range r.scales {
		r.scales[i] = 1
	}
	return r
}

// Len returns the number of segments.
func (r *Reveal) Len() int {
	return len(r.visible)
}

// Start hides everything and begins revealing from the first segment.
func (r *Reveal) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startLocked()
}

// Hide hides every segment and stops the reveal.
func (r *Reveal) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hideLocked()
}

// Toggle hides a shown menu or starts revealing a hidden one.
func (r *Reveal) Toggle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shown {
		r.hideLocked()
		return
	}
	r.startLocked()
}

// Step advances the animation by one frame. It is a no-op once every
// segment is revealed or while hidden.
func (r *Reveal) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.shown || r.current >= len(r.scales) {
		return
	}
	if r.scales[r.current] < 1 {
		r.scales[r.current] *= Growth
		return
	}
	r.scales[r.current] = 1
	r.current++
	r.activateLocked(r.current)
}

// Shown reports whether the menu is shown (revealing or fully revealed).
func (r *Reveal) Shown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shown
}

// Done reports whether every segment has been revealed.
func (r *Reveal) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shown && r.current >= len(r.scales)
}

// Visible reports whether segment i is visible. Out of range is false.
func (r *Reveal) Visible(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return i >= 0 && i < len(r.visible) && r.visible[i]
}

// Scale returns the current scale of segment i. Out of range is 0.
func (r *Reveal) Scale(i int) float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.scales) {
		return 0
	}
	return r.scales[i]
}

// Frame is a snapshot of the reveal state.
type Frame struct {
	Visible []bool    `json:"visible"`
	Scales  []float32 `json:"scales"`
	Done    bool      `json:"done"`
}

// Snapshot copies the current state.
func (r *Reveal) Snapshot() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Frame{
		Visible: append([]bool(nil), r.visible...),
		Scales:  append([]float32(nil), r.scales...),
		Done:    r.shown && r.current >= len(r.scales),
	}
}

// Run steps the reveal every interval until it is done, hidden, or ctx is
// cancelled. onFrame, if non-nil, receives a snapshot after each step.
func (r *Reveal) Run(ctx context.Context, interval time.Duration, onFrame func(Frame)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Step()
			f := r.Snapshot()
			if onFrame != nil {
				onFrame(f)
			}
			if f.Done || !r.Shown() {
				return nil
			}
		}
	}
}

func (r *Reveal) hideLocked() {
	r.shown = false
	for i := range r.visible {
		r.visible[i] = false
	}
}

func (r *Reveal) startLocked() {
	r.hideLocked()
	r.shown = true
	r.current = 0
	r.activateLocked(0)
}

func (r *Reveal) activateLocked(i int) {
	if i >= len(r.visible) {
		return
	}
	r.visible[i] = true
	r.scales[i] = StartScale
}
