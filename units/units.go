package units

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a flexible duration string. Accepted formats:
//   - hh:mm:ss (e.g. "01:30:00")
//   - Go-style duration (e.g. "1h30m", "5m", "30s")
//   - Plain number as minutes (e.g. "90", "0.5")
//
// Negative values are rejected.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	// Try hh:mm:ss
	if strings.Count(s, ":") == 2 {
		parts := strings.SplitN(s, ":", 3)
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		sec, err3 := strconv.Atoi(parts[2])
		if err1 == nil && err2 == nil && err3 == nil {
			d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
			if d < 0 {
				return 0, fmt.Errorf("negative duration: %s", s)
			}
			return d, nil
		}
	}

	// Try Go-style duration (e.g. "1h30m5s", "5m", "30s")
	if d, err := time.ParseDuration(strings.ToLower(s)); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration: %s", s)
		}
		return d, nil
	}

	// Try plain number as minutes
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: must be hh:mm:ss, Go duration (1h30m), or minutes", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative duration: %s", s)
	}
	return time.Duration(f * float64(time.Minute)), nil
}

// FormatDuration formats a duration as hh:mm:ss, truncated to seconds.
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

const (
	kilobyte = 1024
	megabyte = 1024 * kilobyte
	gigabyte = 1024 * megabyte
)

// FormatBytes renders a byte count in human-readable form (B/KB/MB/GB).
func FormatBytes(n int64) string {
	switch {
	case n >= gigabyte:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(gigabyte))
	case n >= megabyte:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(megabyte))
	case n >= kilobyte:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(kilobyte))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// ParseRate parses a bandwidth limit string into bytes per second. Accepted
// formats: a number with a K/M/G suffix (decimal allowed, e.g. "2.5M") or a
// plain number of bytes per second. Zero or empty means unlimited.
func ParseRate(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, nil
	}

	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "G"):
		mult, s = gigabyte, strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "M"):
		mult, s = megabyte, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult, s = kilobyte, strings.TrimSuffix(s, "K")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: must be bytes/s with optional K/M/G suffix", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative rate: %s", s)
	}
	return int64(f * float64(mult)), nil
}
