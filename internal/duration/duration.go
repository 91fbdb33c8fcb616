// Package duration parses human-entered duration strings like "1h30m" or "2d".
package duration

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrNoDuration = errors.New("no duration tokens found")

var tokenPattern = regexp.MustCompile(`(\d+)([smhdw])`)

var unitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
	"w": 604800,
}

// Parse extracts every {integer}{unit} token from s and sums them.
// Unrecognized text between tokens is ignored. A string with no tokens,
// or whose tokens sum to zero, fails with ErrNoDuration.
func Parse(s string) (time.Duration, error) {
	matches := tokenPattern.FindAllStringSubmatch(strings.ToLower(s), -1)
	if len(matches) == 0 {
		return 0, ErrNoDuration
	}

	var total int64
	for _, match := range matches {
		amount, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, ErrNoDuration
		}
		total += amount * unitSeconds[match[2]]
	}
	if total <= 0 {
		return 0, ErrNoDuration
	}
	return time.Duration(total) * time.Second, nil
}
