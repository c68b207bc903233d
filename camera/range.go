package camera

import (
	"strings"
	"time"
)

const (
	dateLayout = "20060102"
	timeLayout = "150405"
)

// Range is an inclusive date/time window. All fields are zero-padded digit
// strings (YYYYMMDD / HHMMSS), so lexicographic order equals chronological
// order. Empty fields mean unbounded; the zero Range matches everything.
type Range struct {
	DateStart string
	DateEnd   string
	TimeStart string
	TimeEnd   string
}

// IsZero reports whether the range carries no bounds at all.
func (r Range) IsZero() bool {
	return r.DateStart == "" && r.DateEnd == "" && r.TimeStart == "" && r.TimeEnd == ""
}

// NewRange resolves user-supplied bounds into a concrete window.
//
// Defaults: dateStart is "today" when unset; dateEnd mirrors dateStart,
// except that a timeEnd earlier than timeStart pushes dateEnd one day
// forward (a window crossing midnight). A lastMinutes value overrides
// dateStart/timeStart by subtracting the window from now, with dateEnd
// defaulting to today so a window that started yesterday still covers
// today's records.
func NewRange(dateStart, dateEnd, timeStart, timeEnd string, lastMinutes int, now time.Time) Range {
	r := Range{
		DateStart: dateStart,
		DateEnd:   dateEnd,
		TimeStart: PadTime(timeStart),
		TimeEnd:   PadTime(timeEnd),
	}

	if lastMinutes > 0 {
		start := now.Add(-time.Duration(lastMinutes) * time.Minute)
		r.DateStart = start.Format(dateLayout)
		r.TimeStart = start.Format(timeLayout)
		if r.DateEnd == "" {
			r.DateEnd = now.Format(dateLayout)
		}
	}

	if r.DateStart == "" {
		r.DateStart = now.Format(dateLayout)
	}
	if r.DateEnd == "" {
		r.DateEnd = r.DateStart
		if r.TimeStart != "" && r.TimeEnd != "" && r.TimeEnd < r.TimeStart {
			if t, err := time.Parse(dateLayout, r.DateStart); err == nil {
				r.DateEnd = t.AddDate(0, 0, 1).Format(dateLayout)
			}
		}
	}

	return r
}

// PadTime normalizes a partial-precision time filter to HHMMSS. A single
// digit gets a leading zero first, then the value is right-padded with
// zeros: "1" → "010000", "13" → "130000". Empty input stays empty (absent
// filter, not midnight).
func PadTime(s string) string {
	if s == "" {
		return ""
	}
	if len(s) == 1 {
		s = "0" + s
	}
	for len(s) < 6 {
		s += "0"
	}
	return s
}

// DateInRange reports whether date falls within [start, end]. Empty bounds
// are open. Plain string comparison; valid because dates are zero-padded.
func DateInRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

// RecordInRange reports whether a record overlaps the window. The test is
// deliberately an overlap test, not containment: a record that starts before
// the window but ends inside it still counts. Records carrying the
// in-progress sentinel are always excluded.
func RecordInRange(date, record string, codec Codec, r Range) bool {
	if strings.Contains(record, SentinelInProgress) {
		return false
	}

	start := codec.StartTime(record)
	end := codec.EndTime(record)
	if start == "" && end == "" {
		return false
	}
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}

	lo := orElse(r.DateStart, "00000000") + "_" + orElse(r.TimeStart, "000000")
	hi := orElse(r.DateEnd, "99999999") + "_" + orElse(r.TimeEnd, "999999")

	return date+"_"+end >= lo && date+"_"+start <= hi
}

func orElse(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
