package progress

import (
	"fmt"
	"strconv"
	"strings"

	"grabarr/internal/domain/regex"
)

// ParseByteSize converts a human size string like "23.5MiB" to bytes using
// binary (1024-based) units. Unparsable input yields 0.
func ParseByteSize(s string) float64 {
	m := regex.ByteSizeCompile().FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2])[0] {
	case 'K':
		return val * 1024
	case 'M':
		return val * 1024 * 1024
	case 'G':
		return val * 1024 * 1024 * 1024
	}
	return val
}

// ParseClock converts "HH:MM:SS[.ms]", "MM:SS" or a bare number of seconds
// to whole seconds. Unparsable input yields 0.
func ParseClock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if !strings.Contains(s, ":") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return int(f)
	}

	// Fractional seconds are dropped.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, ":")
	secs := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		secs = secs*60 + n
	}
	return secs
}

// FormatClock renders whole seconds as "MM:SS", or "H:MM:SS" above an hour.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
