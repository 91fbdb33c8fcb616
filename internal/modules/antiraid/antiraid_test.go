package antiraid

import (
	"testing"
	"time"
)

func TestObserveFiresAtThreshold(t *testing.T) {
	detector := NewDetector(10*time.Second, 5)
	now := time.Now()

	for i := 0; i < 4; i++ {
		if detector.Observe("g", now.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("fired on join %d, threshold is 5", i+1)
		}
	}
	if !detector.Observe("g", now.Add(4*time.Second)) {
		t.Fatalf("expected fifth join inside the window to fire")
	}
}

func TestObserveClearsAfterFiring(t *testing.T) {
	detector := NewDetector(10*time.Second, 3)
	now := time.Now()

	detector.Observe("g", now)
	detector.Observe("g", now.Add(time.Second))
	if !detector.Observe("g", now.Add(2*time.Second)) {
		t.Fatalf("expected third join to fire")
	}
	if detector.Observe("g", now.Add(3*time.Second)) {
		t.Fatalf("expected the tracker to restart after firing")
	}
}

func TestObserveWindowExpiry(t *testing.T) {
	detector := NewDetector(10*time.Second, 3)
	now := time.Now()

	detector.Observe("g", now)
	detector.Observe("g", now.Add(time.Second))
	if detector.Observe("g", now.Add(30*time.Second)) {
		t.Fatalf("joins outside the window should not count toward the burst")
	}
}

func TestObserveIsolatesGuilds(t *testing.T) {
	detector := NewDetector(10*time.Second, 2)
	now := time.Now()

	detector.Observe("g1", now)
	if detector.Observe("g2", now) {
		t.Fatalf("joins in one guild should not count toward another")
	}
}
