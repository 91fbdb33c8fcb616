package antispam

import (
	"testing"
	"time"
)

func TestObserveTripsOnRepeats(t *testing.T) {
	detector := NewDetector(10*time.Second, 5)
	now := time.Now()

	for i := 0; i < 4; i++ {
		if detector.Observe("g", "u", "buy cheap nitro", now.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("tripped after %d repeats, threshold is 5", i+1)
		}
	}
	if !detector.Observe("g", "u", "BUY CHEAP NITRO  ", now.Add(4*time.Second)) {
		t.Fatalf("expected fifth repeat to trip despite case and spacing")
	}
}

func TestObserveIgnoresDistinctMessages(t *testing.T) {
	detector := NewDetector(10*time.Second, 3)
	now := time.Now()

	messages := []string{"hello", "how are you", "fine thanks", "hello", "hello"}
	for i, m := range messages {
		if detector.Observe("g", "u", m, now.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("tripped on mixed conversation at message %d", i+1)
		}
	}
}

func TestObserveRequiresConsecutiveRepeats(t *testing.T) {
	detector := NewDetector(10*time.Second, 3)
	now := time.Now()

	// three copies inside the window, but broken up by other messages
	messages := []string{"free nitro", "lol", "free nitro", "ok", "free nitro"}
	for i, m := range messages {
		if detector.Observe("g", "u", m, now.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("tripped on interleaved repeats at message %d", i+1)
		}
	}

	detector.Observe("g", "u", "free nitro", now.Add(6*time.Second))
	if !detector.Observe("g", "u", "free nitro", now.Add(7*time.Second)) {
		t.Fatalf("expected an unbroken run of 3 to trip")
	}
}

func TestObserveWindowExpiry(t *testing.T) {
	detector := NewDetector(10*time.Second, 3)
	now := time.Now()

	detector.Observe("g", "u", "same", now)
	detector.Observe("g", "u", "same", now.Add(time.Second))
	if detector.Observe("g", "u", "same", now.Add(15*time.Second)) {
		t.Fatalf("stale repeats outside the window should not count")
	}
}

func TestObserveIsolatesAuthors(t *testing.T) {
	detector := NewDetector(10*time.Second, 3)
	now := time.Now()

	detector.Observe("g", "a", "same", now)
	detector.Observe("g", "b", "same", now)
	if detector.Observe("g", "c", "same", now) {
		t.Fatalf("repeats across different authors should not trip")
	}
}

func TestResetClearsHistory(t *testing.T) {
	detector := NewDetector(10*time.Second, 2)
	now := time.Now()

	detector.Observe("g", "u", "same", now)
	detector.Reset("g", "u")
	if detector.Observe("g", "u", "same", now.Add(time.Second)) {
		t.Fatalf("expected reset to clear the counted history")
	}
}
