package camera

import "testing"

func TestFixedOffsetCodec(t *testing.T) {
	c := FixedOffsetCodec{}
	rec := "A250101_120000_123000.mp4"

	if got := c.Date(rec); got != "250101" {
		t.Errorf("Date = %q, want 250101", got)
	}
	if got := c.StartTime(rec); got != "120000" {
		t.Errorf("StartTime = %q, want 120000", got)
	}
	if got := c.EndTime(rec); got != "123000" {
		t.Errorf("EndTime = %q, want 123000", got)
	}

	// Round-trip: reassembling the decoded substrings at their offsets
	// reproduces the original name. Guards against off-by-one offsets.
	rebuilt := "A" + c.Date(rec) + "_" + c.StartTime(rec) + "_" + c.EndTime(rec) + ".mp4"
	if rebuilt != rec {
		t.Errorf("round-trip = %q, want %q", rebuilt, rec)
	}

	for _, bad := range []string{"", "x", "short"} {
		if c.Date(bad) != "" || c.StartTime(bad) != "" || c.EndTime(bad) != "" {
			t.Errorf("malformed input %q decoded to non-empty", bad)
		}
	}

	// A truncated name decodes whatever fields still fit and nothing more.
	if got := c.EndTime("A250101_120000"); got != "" {
		t.Errorf("EndTime of truncated name = %q, want empty", got)
	}
}

func TestDelimitedCodec(t *testing.T) {
	c := DelimitedCodec{}
	rec := "RecM01_20250101_120000_123000_6D28808.mp4"

	if got := c.Date(rec); got != "250101" {
		t.Errorf("Date = %q, want 250101", got)
	}
	if got := c.StartTime(rec); got != "120000" {
		t.Errorf("StartTime = %q, want 120000", got)
	}
	if got := c.EndTime(rec); got != "123000" {
		t.Errorf("EndTime = %q, want 123000", got)
	}

	// The prefix before the first underscore is arbitrary.
	if got := c.StartTime("X_20250101_120000_123000"); got != "120000" {
		t.Errorf("StartTime with short prefix = %q, want 120000", got)
	}

	for _, bad := range []string{"", "nounderscore", "Rec_2025"} {
		if c.Date(bad) != "" || c.StartTime(bad) != "" || c.EndTime(bad) != "" {
			t.Errorf("malformed input %q decoded to non-empty", bad)
		}
	}
}
