package duration

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"1h30m", 5400 * time.Second},
		{"2d", 172800 * time.Second},
		{"1w", 604800 * time.Second},
		{"90s", 90 * time.Second},
		{"1d12h", 129600 * time.Second},
		{"2H", 7200 * time.Second},
		{"mute for 10m please", 600 * time.Second},
	}
	for _, tc := range cases {
		got, err := Parse(tc.input)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %v, got %v", tc.input, tc.want, got)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"abc", "0s", "", "h1", "0m0s"} {
		if _, err := Parse(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
