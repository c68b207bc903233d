package camera

import (
	"testing"
	"time"
)

func TestPadTime(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"1":      "010000",
		"13":     "130000",
		"130":    "130000",
		"1330":   "133000",
		"133045": "133045",
	}
	for in, want := range cases {
		if got := PadTime(in); got != want {
			t.Errorf("PadTime(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateInRange(t *testing.T) {
	// Plain string comparison must behave chronologically for zero-padded dates.
	if !DateInRange("20230105", "20230101", "20230131") {
		t.Error("date inside range rejected")
	}
	if !DateInRange("20230101", "20230101", "20230131") {
		t.Error("range start is inclusive")
	}
	if !DateInRange("20230131", "20230101", "20230131") {
		t.Error("range end is inclusive")
	}
	if DateInRange("20221231", "20230101", "20230131") {
		t.Error("date before range accepted")
	}
	if DateInRange("20230201", "20230101", "20230131") {
		t.Error("date after range accepted")
	}
	if !DateInRange("19000101", "", "") {
		t.Error("open range must accept everything")
	}
	if !DateInRange("20230105", "20230101", "") {
		t.Error("open end bound rejected a later date")
	}
}

func TestRecordInRange(t *testing.T) {
	codec := FixedOffsetCodec{}
	// A250101_120000_123000.mp4 → starts 12:00:00, ends 12:30:00
	rec := "A250101_120000_123000.mp4"

	rng := func(ts, te string) Range {
		return Range{DateStart: "20250101", DateEnd: "20250101", TimeStart: ts, TimeEnd: te}
	}

	// Fully contained.
	if !RecordInRange("20250101", rec, codec, rng("110000", "130000")) {
		t.Error("contained record rejected")
	}
	// Overlap at the front edge: record starts before the window, ends inside.
	if !RecordInRange("20250101", rec, codec, rng("121500", "130000")) {
		t.Error("record overlapping window start rejected (overlap, not containment)")
	}
	// Overlap at the back edge: record ends after the window, starts inside.
	if !RecordInRange("20250101", rec, codec, rng("110000", "121500")) {
		t.Error("record overlapping window end rejected")
	}
	// Disjoint before and after.
	if RecordInRange("20250101", rec, codec, rng("130000", "140000")) {
		t.Error("record before window accepted")
	}
	if RecordInRange("20250101", rec, codec, rng("100000", "110000")) {
		t.Error("record after window accepted")
	}
	// Date outside the window.
	if RecordInRange("20250102", rec, codec, rng("110000", "130000")) {
		t.Error("record on a later date accepted")
	}
	// Absent bounds default to 000000/999999.
	if !RecordInRange("20250101", rec, codec, Range{DateStart: "20250101", DateEnd: "20250101"}) {
		t.Error("record rejected with open time bounds")
	}
	// Zero range matches everything.
	if !RecordInRange("20250101", rec, codec, Range{}) {
		t.Error("record rejected by zero range")
	}
	// In-progress sentinel always excluded, range or no range.
	if RecordInRange("20250101", "A250101_120000_999999.mp4", codec, Range{}) {
		t.Error("in-progress record accepted")
	}
	// Undecodable names never match.
	if RecordInRange("20250101", "junk", codec, Range{}) {
		t.Error("undecodable record accepted")
	}
	if RecordInRange("20250101", "", codec, Range{}) {
		t.Error("empty record name accepted")
	}
}

func TestNewRangeDefaults(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	r := NewRange("", "", "", "", 0, now)
	if r.DateStart != "20250310" || r.DateEnd != "20250310" {
		t.Errorf("default range = %s-%s, want today-today", r.DateStart, r.DateEnd)
	}

	r = NewRange("20250301", "", "", "", 0, now)
	if r.DateEnd != "20250301" {
		t.Errorf("dateEnd = %s, want mirror of dateStart", r.DateEnd)
	}

	// timeEnd before timeStart spans midnight: dateEnd bumps one day.
	r = NewRange("20250301", "", "2300", "0100", 0, now)
	if r.DateEnd != "20250302" {
		t.Errorf("midnight-spanning dateEnd = %s, want 20250302", r.DateEnd)
	}
	if r.TimeStart != "230000" || r.TimeEnd != "010000" {
		t.Errorf("times not padded: %s-%s", r.TimeStart, r.TimeEnd)
	}

	// Month boundary.
	r = NewRange("20250331", "", "2300", "0100", 0, now)
	if r.DateEnd != "20250401" {
		t.Errorf("month-crossing dateEnd = %s, want 20250401", r.DateEnd)
	}
}

func TestNewRangeLastMinutes(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)

	r := NewRange("", "", "", "", 60, now)
	if r.DateStart != "20250309" {
		t.Errorf("dateStart = %s, want 20250309 (window started yesterday)", r.DateStart)
	}
	if r.TimeStart != "233000" {
		t.Errorf("timeStart = %s, want 233000", r.TimeStart)
	}
	if r.DateEnd != "20250310" {
		t.Errorf("dateEnd = %s, want today so the window still covers now", r.DateEnd)
	}

	// Explicit dates are overridden by the window.
	r = NewRange("20200101", "", "050000", "", 10, now)
	if r.DateStart != "20250310" || r.TimeStart != "002000" {
		t.Errorf("window did not override explicit start: %s %s", r.DateStart, r.TimeStart)
	}
}
