package menu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// framesPerSegment is the number of steps one segment takes: seven
// growth frames from 0.5 past 1, then one frame to clamp and advance.
const framesPerSegment = 8

func TestRevealStartsHidden(t *testing.T) {
	r := NewReveal(3)
	if r.Len() != 3 {
		t.Errorf("Len() = %d", r.Len())
	}
	for i := 0; i < 3; i++ {
		if r.Visible(i) {
			t.Errorf("segment %d visible before Start", i)
		}
	}
	r.Step()
	if r.Visible(0) || r.Shown() {
		t.Error("Step before Start revealed something")
	}
}

func TestRevealSequence(t *testing.T) {
	r := NewReveal(3)
	r.Start()

	if !r.Visible(0) || r.Visible(1) {
		t.Fatal("Start should show only the first segment")
	}
	if r.Scale(0) != StartScale {
		t.Errorf("start scale = %v, want %v", r.Scale(0), StartScale)
	}

	r.Step()
	if want := StartScale * Growth; r.Scale(0) != want {
		t.Errorf("scale after one step = %v, want %v", r.Scale(0), want)
	}

	for i := 1; i < framesPerSegment-1; i++ {
		r.Step()
	}
	if r.Scale(0) <= 1 {
		t.Errorf("scale after growth = %v, want > 1", r.Scale(0))
	}
	if r.Visible(1) {
		t.Error("second segment visible before the first settled")
	}

	r.Step()
	if r.Scale(0) != 1 {
		t.Errorf("settled scale = %v, want 1", r.Scale(0))
	}
	if !r.Visible(1) || r.Scale(1) != StartScale {
		t.Errorf("second segment: visible=%v scale=%v", r.Visible(1), r.Scale(1))
	}

	for i := 0; i < 2*framesPerSegment; i++ {
		if r.Done() {
			t.Fatalf("done after %d extra steps", i)
		}
		r.Step()
	}
	if !r.Done() {
		t.Fatal("reveal not done after all frames")
	}
	for i := 0; i < 3; i++ {
		if !r.Visible(i) || r.Scale(i) != 1 {
			t.Errorf("segment %d: visible=%v scale=%v", i, r.Visible(i), r.Scale(i))
		}
	}

	// Further steps change nothing.
	before := r.Snapshot()
	r.Step()
	after := r.Snapshot()
	for i := range before.Scales {
		if before.Scales[i] != after.Scales[i] {
			t.Error("step after done changed a scale")
		}
	}
}

func TestRevealHideAndToggle(t *testing.T) {
	r := NewReveal(2)
	r.Toggle()
	if !r.Shown() || !r.Visible(0) {
		t.Fatal("Toggle from hidden should start the reveal")
	}
	r.Toggle()
	if r.Shown() || r.Visible(0) {
		t.Fatal("Toggle from shown should hide")
	}

	// Restarting begins at the first segment again.
	r.Start()
	for i := 0; i < framesPerSegment; i++ {
		r.Step()
	}
	r.Start()
	if r.Visible(1) || !r.Visible(0) || r.Scale(0) != StartScale {
		t.Error("Start did not reset the reveal")
	}
}

func TestRevealEmpty(t *testing.T) {
	r := NewReveal(0)
	r.Start()
	if !r.Done() {
		t.Error("empty reveal should be done immediately")
	}
	r.Step()
	if r.Visible(0) || r.Scale(0) != 0 || r.Scale(-1) != 0 {
		t.Error("out of range queries should be zero")
	}
}

func TestRevealRun(t *testing.T) {
	r := NewReveal(2)
	r.Start()

	frames := 0
	err := r.Run(context.Background(), time.Millisecond, func(f Frame) {
		frames++
		if len(f.Scales) != 2 {
			t.Errorf("frame has %d scales", len(f.Scales))
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if frames != 2*framesPerSegment {
		t.Errorf("frames = %d, want %d", frames, 2*framesPerSegment)
	}
	if !r.Done() {
		t.Error("Run returned before done")
	}
}

func TestRevealRunCancelled(t *testing.T) {
	r := NewReveal(50)
	r.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx, time.Hour, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRevealConcurrentToggle(t *testing.T) {
	r := NewReveal(3)
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Toggle()
		}()
	}
	wg.Wait()

	// An even number of toggles lands back on hidden.
	if r.Shown() {
		t.Fatal("64 toggles left the menu shown")
	}
	for i := 0; i < r.Len(); i++ {
		if r.Visible(i) {
			t.Errorf("segment %d visible while hidden", i)
		}
	}
}
