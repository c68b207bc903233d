package firmware

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/whisper-darkly/recfetch/camera"
	"github.com/whisper-darkly/recfetch/media"
)

func init() {
	camera.Register(&HI3510{})
}

// recordDB is an index database the firmware keeps next to the record
// directories. Never a record container, always skipped.
const recordDB = "recdata.db"

// HI3510 talks to HiSilicon-based cameras that expose their SD card as an
// authenticated HTTP directory listing under /sd. Date directories sit at
// the root; records sit up to two subdirectory levels below a date. The raw
// streams are not directly concatenable, so downloads are repaired with a
// container rewrite before assembly.
type HI3510 struct{}

func (h *HI3510) Name() string        { return "hi3510" }
func (h *HI3510) Codec() camera.Codec { return camera.FixedOffsetCodec{} }

func (h *HI3510) BaseURL(s *camera.Session) string {
	return fmt.Sprintf("%s://%s/sd", s.Scheme(), s.Host)
}

func (h *HI3510) Records(ctx context.Context, s *camera.Session, rng camera.Range) ([]camera.DateEntry, error) {
	base := h.BaseURL(s)

	var entries []camera.DateEntry
	for _, name := range s.Client.ListEntries(ctx, s, base+"/") {
		date := strings.TrimSuffix(name, "/")
		if date == recordDB || !camera.DateInRange(date, rng.DateStart, rng.DateEnd) {
			continue
		}
		entry := camera.DateEntry{Date: date}
		h.collect(ctx, s, base+"/"+date, "", &entry, rng, 0)
		entries = append(entries, entry)
	}
	return entries, nil
}

// collect gathers matching records under dirURL, descending at most two
// subdirectory levels. Each record remembers its parent directory relative
// to the date directory; sibling records may live under different parents.
func (h *HI3510) collect(ctx context.Context, s *camera.Session, dirURL, rel string, entry *camera.DateEntry, rng camera.Range, depth int) {
	for _, name := range s.Client.ListEntries(ctx, s, dirURL+"/") {
		if strings.HasSuffix(name, "/") {
			sub := strings.TrimSuffix(name, "/")
			if sub == recordDB || depth >= 2 {
				continue
			}
			h.collect(ctx, s, dirURL+"/"+sub, path.Join(rel, sub), entry, rng, depth+1)
			continue
		}
		if name == recordDB {
			continue
		}
		if camera.RecordInRange(entry.Date, name, h.Codec(), rng) {
			entry.Records = append(entry.Records, camera.Record{Name: name, Dir: rel})
		}
	}
}

func (h *HI3510) Download(ctx context.Context, s *camera.Session, entry camera.DateEntry, dir string) error {
	base := h.BaseURL(s) + "/" + entry.Date
	for _, rec := range entry.Records {
		url := base
		if rec.Dir != "" {
			url += "/" + rec.Dir
		}
		url += "/" + rec.Name

		if err := s.Client.DownloadFile(ctx, s, url, filepath.Join(dir, rec.Name)); err != nil {
			return err
		}
	}
	return nil
}

// Repair rewrites a downloaded raw stream into a concatenable container,
// replacing the original file.
func (h *HI3510) Repair(ctx context.Context, s *camera.Session, file string) error {
	return media.Repair(ctx, file, s.Client.Log)
}
