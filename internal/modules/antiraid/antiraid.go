// Package antiraid watches join bursts per guild.
package antiraid

import (
	"sync"
	"time"
)

// Detector counts member joins per guild inside a sliding window. When the
// join count reaches Threshold the detector fires once and clears that
// guild's tracker, so the response runs a single time per burst.
type Detector struct {
	mu        sync.Mutex
	window    time.Duration
	threshold int
	joins     map[string][]time.Time
}

func NewDetector(window time.Duration, threshold int) *Detector {
	return &Detector{
		window:    window,
		threshold: threshold,
		joins:     make(map[string][]time.Time),
	}
}

// Observe records one join and reports whether the burst threshold was hit.
func (d *Detector) Observe(guildID string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := now.Add(-d.window)
	joins := d.joins[guildID]
	idx := 0
	for _, j := range joins {
		if j.After(cutoff) {
			break
		}
		idx++
	}
	joins = append(joins[idx:], now)

	if len(joins) >= d.threshold {
		delete(d.joins, guildID)
		return true
	}
	d.joins[guildID] = joins
	return false
}
