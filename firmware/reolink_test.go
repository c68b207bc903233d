package firmware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/whisper-darkly/recfetch/camera"
	"github.com/whisper-darkly/recfetch/logger"
)

func reolinkSession(srv *httptest.Server) *camera.Session {
	return &camera.Session{
		Host:     strings.TrimPrefix(srv.URL, "http://"),
		Username: "admin",
		Password: "p@ss",
		Client:   camera.NewClient(logger.New(logger.LevelFatal), 0),
	}
}

func TestReolinkRecordsDayBounds(t *testing.T) {
	var searches []reolinkCommand
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("cmd") != "Search" {
			t.Errorf("cmd = %q, want Search", q.Get("cmd"))
		}
		if q.Get("user") != "admin" || q.Get("password") != "p@ss" {
			t.Errorf("credentials missing from query: %s", r.URL.RawQuery)
		}

		var cmds []reolinkCommand
		if err := json.NewDecoder(r.Body).Decode(&cmds); err != nil {
			t.Errorf("decode search body: %v", err)
			return
		}
		searches = append(searches, cmds[0])

		w.Write([]byte(`[{"value":{"SearchResult":{"File":[
			{"name":"RecM01_20250101_120000_123000_AAAA.mp4"},
			{"name":"RecM01_20250101_130000_999999_BBBB.mp4"}
		]}}}]`))
	}))
	defer srv.Close()

	fw := &Reolink{}
	rng := camera.Range{
		DateStart: "20250101", DateEnd: "20250103",
		TimeStart: "083000", TimeEnd: "174500",
	}
	entries, err := fw.Records(context.Background(), reolinkSession(srv), rng)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("got %d entries, want one per day", len(entries))
	}
	if len(searches) != 3 {
		t.Fatalf("got %d search calls, want 3", len(searches))
	}

	// First day gets the real start bound but a full-day end bound.
	first := searches[0].Param.Search
	if first.StartTime.Hour != 8 || first.StartTime.Min != 30 || first.StartTime.Sec != 0 {
		t.Errorf("day 1 start = %+v, want 08:30:00", first.StartTime)
	}
	if first.EndTime.Hour != 23 || first.EndTime.Min != 59 || first.EndTime.Sec != 59 {
		t.Errorf("day 1 end = %+v, want 23:59:59", first.EndTime)
	}

	// Interior day is unbounded on both sides.
	mid := searches[1].Param.Search
	if mid.StartTime.Hour != 0 || mid.StartTime.Min != 0 {
		t.Errorf("interior day start = %+v, want 00:00:00", mid.StartTime)
	}
	if mid.EndTime.Hour != 23 || mid.EndTime.Min != 59 {
		t.Errorf("interior day end = %+v, want 23:59:59", mid.EndTime)
	}
	if mid.StartTime.Day != 2 {
		t.Errorf("interior day = %d, want 2", mid.StartTime.Day)
	}

	// Last day gets the real end bound but a full-day start bound.
	lastDay := searches[2].Param.Search
	if lastDay.StartTime.Hour != 0 {
		t.Errorf("day 3 start = %+v, want 00:00:00", lastDay.StartTime)
	}
	if lastDay.EndTime.Hour != 17 || lastDay.EndTime.Min != 45 {
		t.Errorf("day 3 end = %+v, want 17:45:00", lastDay.EndTime)
	}

	// The in-progress recording is excluded from every day's results.
	if len(entries[0].Records) != 1 || entries[0].Records[0].Name != "RecM01_20250101_120000_123000_AAAA.mp4" {
		t.Errorf("day 1 records = %+v", entries[0].Records)
	}

	// StreamType rides along on every search.
	if first.StreamType != "main" {
		t.Errorf("streamType = %q, want main", first.StreamType)
	}
}

func TestReolinkRecordsUnboundedRangeUnsupported(t *testing.T) {
	fw := &Reolink{}
	s := &camera.Session{Host: "cam", Client: camera.NewClient(logger.New(logger.LevelFatal), 0)}

	_, err := fw.Records(context.Background(), s, camera.Range{})
	if !errors.Is(err, camera.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestReolinkRecordsSearchFailureYieldsEmptyDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fw := &Reolink{}
	rng := camera.Range{DateStart: "20250101", DateEnd: "20250101"}
	entries, err := fw.Records(context.Background(), reolinkSession(srv), rng)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Records) != 0 {
		t.Errorf("entries = %+v, want one empty day", entries)
	}
}

func TestReolinkDownloadPlaybackURL(t *testing.T) {
	payload := "mp4-bytes"
	var sources, outputs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("cmd") != "Playback" {
			t.Errorf("cmd = %q, want Playback", q.Get("cmd"))
		}
		sources = append(sources, q.Get("source"))
		outputs = append(outputs, q.Get("output"))
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	fw := &Reolink{}
	entry := camera.DateEntry{
		Date:    "20250101",
		Records: []camera.Record{{Name: "RecM01_20250101_120000_123000_AAAA.mp4"}},
	}

	dir := t.TempDir()
	if err := fw.Download(context.Background(), reolinkSession(srv), entry, dir); err != nil {
		t.Fatalf("Download: %v", err)
	}

	wantSource := "Mp4Record/2025-01-01/RecM01_20250101_120000_123000_AAAA.mp4"
	if len(sources) != 1 || sources[0] != wantSource {
		t.Errorf("source = %v, want %q", sources, wantSource)
	}
	if outputs[0] != entry.Records[0].Name {
		t.Errorf("output = %q, want record name", outputs[0])
	}

	b, err := os.ReadFile(filepath.Join(dir, entry.Records[0].Name))
	if err != nil {
		t.Fatalf("staged file missing: %v", err)
	}
	if string(b) != payload {
		t.Errorf("staged contents = %q", b)
	}
}
