// Package antispam flags repeated identical messages inside a short window.
package antispam

import (
	"strings"
	"sync"
	"time"
)

type record struct {
	fingerprint string
	at          time.Time
}

// Detector keeps the last Threshold message fingerprints per author. A
// message trips the detector when the queue is full, every entry falls
// inside Window, and all entries share one normalized content.
type Detector struct {
	mu        sync.Mutex
	window    time.Duration
	threshold int
	recent    map[string][]record
}

func NewDetector(window time.Duration, threshold int) *Detector {
	return &Detector{
		window:    window,
		threshold: threshold,
		recent:    make(map[string][]record),
	}
}

func fingerprint(content string) string {
	return strings.ToLower(strings.TrimSpace(content))
}

// Observe records a message and reports whether it crossed the repeat
// threshold. Empty content never trips.
func (d *Detector) Observe(guildID, userID, content string, now time.Time) bool {
	fp := fingerprint(content)
	if fp == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := guildID + ":" + userID
	cutoff := now.Add(-d.window)

	records := d.recent[key]
	idx := 0
	for _, r := range records {
		if r.at.After(cutoff) {
			break
		}
		idx++
	}
	records = append(records[idx:], record{fingerprint: fp, at: now})
	if len(records) > d.threshold {
		records = records[len(records)-d.threshold:]
	}
	d.recent[key] = records

	if len(records) < d.threshold {
		return false
	}
	for _, r := range records {
		if r.fingerprint != fp {
			return false
		}
	}
	return true
}

// Reset drops the author's history, used after a violation is punished so
// the same burst is not counted twice.
func (d *Detector) Reset(guildID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.recent, guildID+":"+userID)
}
