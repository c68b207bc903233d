package firmware

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/whisper-darkly/recfetch/camera"
)

func init() {
	camera.Register(&Reolink{})
}

const reolinkDateLayout = "20060102"

// Reolink talks to cameras exposing the Reolink JSON command API.
// Credentials ride in the base URL's query string; record discovery is one
// Search command per calendar day; retrieval streams the Playback command.
// The API serves ready-to-concatenate mp4, so there is no repair step.
type Reolink struct{}

func (r *Reolink) Name() string        { return "reolink" }
func (r *Reolink) Codec() camera.Codec { return camera.DelimitedCodec{} }

func (r *Reolink) BaseURL(s *camera.Session) string {
	return fmt.Sprintf("%s://%s/cgi-bin/api.cgi?user=%s&password=%s",
		s.Scheme(), s.Host,
		url.QueryEscape(s.Username), url.QueryEscape(s.Password))
}

type reolinkTime struct {
	Year int `json:"year"`
	Mon  int `json:"mon"`
	Day  int `json:"day"`
	Hour int `json:"hour"`
	Min  int `json:"min"`
	Sec  int `json:"sec"`
}

type reolinkCommand struct {
	Cmd    string `json:"cmd"`
	Action int    `json:"action"`
	Param  struct {
		Search struct {
			Channel    int         `json:"channel"`
			OnlyStatus int         `json:"onlyStatus"`
			StreamType string      `json:"streamType"`
			StartTime  reolinkTime `json:"StartTime"`
			EndTime    reolinkTime `json:"EndTime"`
		} `json:"Search"`
	} `json:"param"`
}

type reolinkSearchResponse []struct {
	Value struct {
		SearchResult struct {
			File []struct {
				Name string `json:"name"`
			} `json:"File"`
		} `json:"SearchResult"`
	} `json:"value"`
}

// Records issues one Search per day of the range. Only the first day gets
// the real start-time bound and only the last day the real end-time bound;
// interior days run 000000–235959, otherwise a multi-day sweep would
// silently clip them. An unbounded range means "all history", which this
// API cannot enumerate.
func (r *Reolink) Records(ctx context.Context, s *camera.Session, rng camera.Range) ([]camera.DateEntry, error) {
	if rng.IsZero() {
		return nil, camera.ErrUnsupported
	}

	today := time.Now().Format(reolinkDateLayout)
	first, err := time.Parse(reolinkDateLayout, orToday(rng.DateStart, today))
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", rng.DateStart, err)
	}
	last, err := time.Parse(reolinkDateLayout, orToday(rng.DateEnd, today))
	if err != nil {
		return nil, fmt.Errorf("bad end date %q: %w", rng.DateEnd, err)
	}

	searchURL := r.BaseURL(s) + "&cmd=Search"

	var entries []camera.DateEntry
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		dayStart := "000000"
		dayEnd := "235959"
		if day.Equal(first) && rng.TimeStart != "" {
			dayStart = rng.TimeStart
		}
		if day.Equal(last) && rng.TimeEnd != "" {
			dayEnd = rng.TimeEnd
		}

		cmd := reolinkCommand{Cmd: "Search"}
		cmd.Param.Search.StreamType = "main"
		cmd.Param.Search.StartTime = timeOfDay(day, dayStart)
		cmd.Param.Search.EndTime = timeOfDay(day, dayEnd)

		date := day.Format(reolinkDateLayout)
		entry := camera.DateEntry{Date: date}

		var resp reolinkSearchResponse
		if err := s.Client.PostJSON(ctx, searchURL, []reolinkCommand{cmd}, &resp); err != nil {
			s.Client.Log.Warn("search %s on %s: %v", date, s.Host, err)
			entries = append(entries, entry)
			continue
		}

		if len(resp) > 0 {
			for _, f := range resp[0].Value.SearchResult.File {
				if camera.RecordInRange(date, f.Name, r.Codec(), rng) {
					entry.Records = append(entry.Records, camera.Record{Name: f.Name})
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Reolink) Download(ctx context.Context, s *camera.Session, entry camera.DateEntry, dir string) error {
	base := r.BaseURL(s)
	dashed := dashDate(entry.Date)
	for _, rec := range entry.Records {
		playback := fmt.Sprintf("%s&cmd=Playback&source=Mp4Record/%s/%s&output=%s",
			base, dashed, url.QueryEscape(rec.Name), url.QueryEscape(rec.Name))

		if err := s.Client.DownloadFile(ctx, s, playback, filepath.Join(dir, rec.Name)); err != nil {
			return err
		}
	}
	return nil
}

// timeOfDay splits an HHMMSS string onto a calendar day. Malformed digits
// degrade to zero rather than failing the sweep.
func timeOfDay(day time.Time, hhmmss string) reolinkTime {
	t := reolinkTime{Year: day.Year(), Mon: int(day.Month()), Day: day.Day()}
	if len(hhmmss) == 6 {
		t.Hour, _ = strconv.Atoi(hhmmss[0:2])
		t.Min, _ = strconv.Atoi(hhmmss[2:4])
		t.Sec, _ = strconv.Atoi(hhmmss[4:6])
	}
	return t
}

// dashDate converts YYYYMMDD to the yyyy-mm-dd form the Playback source
// path uses.
func dashDate(date string) string {
	if len(date) != 8 {
		return date
	}
	return date[0:4] + "-" + date[4:6] + "-" + date[6:8]
}

func orToday(date, today string) string {
	if date == "" {
		return today
	}
	return date
}
