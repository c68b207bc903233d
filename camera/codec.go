package camera

import "strings"

// A Codec extracts the date and start/end time substrings embedded in a
// record filename. The encodings are firmware-specific but always sit at
// fixed offsets. Implementations return "" for names they cannot decode;
// callers probe every listed name, and a malformed one must simply fail the
// range test rather than abort the sweep.
type Codec interface {
	Date(record string) string
	StartTime(record string) string
	EndTime(record string) string
}

// FixedOffsetCodec reads fixed character offsets of the raw filename,
// matching HI3510-style names like "A250101_120000_123000.mp4".
type FixedOffsetCodec struct{}

func (FixedOffsetCodec) Date(record string) string      { return substr(record, 1, 7) }
func (FixedOffsetCodec) StartTime(record string) string { return substr(record, 8, 14) }
func (FixedOffsetCodec) EndTime(record string) string   { return substr(record, 15, 21) }

// DelimitedCodec drops everything through the first underscore, then reads
// fixed offsets of the remainder, matching Reolink-style names like
// "RecM01_20250101_120000_123000_6D28808.mp4".
type DelimitedCodec struct{}

func (c DelimitedCodec) Date(record string) string      { return substr(c.rem(record), 2, 8) }
func (c DelimitedCodec) StartTime(record string) string { return substr(c.rem(record), 9, 15) }
func (c DelimitedCodec) EndTime(record string) string   { return substr(c.rem(record), 16, 22) }

func (DelimitedCodec) rem(record string) string {
	i := strings.Index(record, "_")
	if i < 0 {
		return ""
	}
	return record[i+1:]
}

// substr returns s[from:to], or "" when s is too short.
func substr(s string, from, to int) string {
	if len(s) < to {
		return ""
	}
	return s[from:to]
}
