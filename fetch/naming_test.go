package fetch

import (
	"testing"

	"github.com/whisper-darkly/recfetch/camera"
)

func TestValueAt(t *testing.T) {
	list := []string{"a", "b"}
	if got := ValueAt(list, 0); got != "a" {
		t.Errorf("ValueAt(0) = %q", got)
	}
	if got := ValueAt(list, 1); got != "b" {
		t.Errorf("ValueAt(1) = %q", got)
	}
	// Past the end, the last value broadcasts.
	if got := ValueAt(list, 5); got != "b" {
		t.Errorf("ValueAt(5) = %q, want broadcast of last", got)
	}
	// Empty list yields the zero value, not a panic.
	if got := ValueAt[string](nil, 3); got != "" {
		t.Errorf("ValueAt(nil, 3) = %q, want empty", got)
	}
	if got := ValueAt([]bool{true}, 4); got != true {
		t.Errorf("bool broadcast = %v", got)
	}
}

func TestDeriveNameSingleRecord(t *testing.T) {
	codec := camera.FixedOffsetCodec{}
	rec := camera.Record{Name: "A230101_120000_123000.mp4"}

	got := deriveName("", "1.2.3.4", "mp4", codec, "20230101", rec, "20230101", rec, 1)
	want := "1.2.3.4_20230101_120000_123000.mp4"
	if got != want {
		t.Errorf("deriveName = %q, want %q", got, want)
	}
}

func TestDeriveNameMultiRecordSameDate(t *testing.T) {
	codec := camera.FixedOffsetCodec{}
	first := camera.Record{Name: "A230101_120000_123000.mp4"}
	last := camera.Record{Name: "A230101_150000_153000.mp4"}

	got := deriveName("", "1.2.3.4", "mp4", codec, "20230101", first, "20230101", last, 2)
	want := "1.2.3.4_20230101_120000_153000.mp4"
	if got != want {
		t.Errorf("deriveName = %q, want %q", got, want)
	}
}

func TestDeriveNameCrossesMidnight(t *testing.T) {
	codec := camera.FixedOffsetCodec{}
	first := camera.Record{Name: "A230101_120000_123000.mp4"}
	last := camera.Record{Name: "A230102_004500_010000.mp4"}

	got := deriveName("", "1.2.3.4", "mp4", codec, "20230101", first, "20230102", last, 2)
	want := "1.2.3.4_20230101_120000_20230102_010000.mp4"
	if got != want {
		t.Errorf("deriveName = %q, want %q", got, want)
	}
}

func TestDeriveNamePrefixAndType(t *testing.T) {
	codec := camera.FixedOffsetCodec{}
	rec := camera.Record{Name: "A230101_120000_123000.mp4"}

	got := deriveName("porch", "cam.local", "mkv", codec, "20230101", rec, "20230101", rec, 1)
	want := "porch_cam.local_20230101_120000_123000.mkv"
	if got != want {
		t.Errorf("deriveName = %q, want %q", got, want)
	}
}
