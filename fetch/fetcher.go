// Package fetch drives the per-host sweep: resolve a firmware adapter,
// discover matching records, stage downloads, and hand concatenation
// manifests to the transcoder. Everything runs strictly sequentially —
// hosts, dates, records — which bounds open connections per camera and
// keeps the ordering the filename derivation depends on.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/whisper-darkly/recfetch/camera"
	"github.com/whisper-darkly/recfetch/logger"
	"github.com/whisper-darkly/recfetch/media"
	"github.com/whisper-darkly/recfetch/units"
)

// Config holds all sweep parameters. The per-host slices are positionally
// aligned with Hosts; a short slice broadcasts its last value to the
// remaining hosts.
type Config struct {
	Hosts     []string
	Firmwares []string
	Usernames []string
	Passwords []string
	UseSSL    []bool

	DateStart string // YYYYMMDD
	DateEnd   string
	TimeStart string // HHMMSS, partial precision allowed
	TimeEnd   string

	LastMinutes    int           // overrides DateStart/TimeStart with now-window
	StartDelay     time.Duration // sleep before the sweep starts
	SeparateByDate bool          // one output per date instead of one per host

	TargetDir string
	FileType  string   // output container, "mp4" when empty
	Prefix    string   // output filename prefix
	FileNames []string // explicit per-host output names, broadcast like auth
	Filters   []string // ffmpeg video filter expressions

	LimitRate int64 // download bandwidth cap in bytes/s, 0 = unlimited

	Log *logger.Logger
}

// Fetcher executes fetch and list sweeps over the configured hosts.
type Fetcher struct {
	cfg    Config
	log    *logger.Logger
	client *camera.Client
}

// kv is a shorthand for logger.KV.
func kv(key, value string) logger.KV { return logger.KV{Key: key, Value: value} }

// Transcoder collaborator entry points; swapped out in tests.
var (
	concat    = media.Concat
	checkTool = media.Check
)

// New creates a Fetcher with the given config.
func New(cfg Config) *Fetcher {
	if cfg.FileType == "" {
		cfg.FileType = "mp4"
	}
	if cfg.TargetDir == "" {
		cfg.TargetDir = "."
	}
	return &Fetcher{
		cfg:    cfg,
		log:    cfg.Log,
		client: camera.NewClient(cfg.Log, cfg.LimitRate),
	}
}

// Run executes the fetch sweep. Returns an exit code: a missing transcoder
// is fatal for the whole run; any other failure is scoped to its host.
func (f *Fetcher) Run(ctx context.Context) int {
	if err := checkTool(); err != nil {
		f.log.Error("%v", err)
		return 1
	}

	code := 0
	for i, host := range f.cfg.Hosts {
		if ctx.Err() != nil {
			return 0
		}
		if err := f.fetchHost(ctx, i, host); err != nil {
			f.log.Error("host %s: %v", host, err)
			code = 1
		}
	}
	return code
}

// List executes the read-only listing sweep: every date the camera knows,
// with the first (or first and last) record name per date.
func (f *Fetcher) List(ctx context.Context) int {
	for i, host := range f.cfg.Hosts {
		if ctx.Err() != nil {
			return 0
		}

		s, fw, err := f.session(i, host)
		if err != nil {
			f.log.Warn("skipping host %s: %v", host, err)
			continue
		}

		entries, err := fw.Records(ctx, s, camera.Range{})
		if errors.Is(err, camera.ErrUnsupported) {
			f.log.Warn("host %s: listing recorded history is not supported by %s firmware", host, fw.Name())
			continue
		}
		if err != nil {
			f.log.Error("host %s: %v", host, err)
			continue
		}
		if len(entries) == 0 {
			f.log.Info("no records found on %s", host)
			continue
		}

		for _, entry := range entries {
			f.log.Print("%s", entry.Date)
			switch n := len(entry.Records); {
			case n == 1:
				f.log.Print("  %s", entry.Records[0].Name)
			case n > 1:
				f.log.Print("  %s - %s", entry.Records[0].Name, entry.Records[n-1].Name)
			}
		}
	}
	return 0
}

// session resolves the per-host configuration into an immutable Session
// plus its firmware adapter. Each host gets a fresh value; nothing is
// shared across iterations.
func (f *Fetcher) session(i int, host string) (*camera.Session, camera.Firmware, error) {
	fw, err := camera.Get(ValueAt(f.cfg.Firmwares, i))
	if err != nil {
		return nil, nil, err
	}
	s := &camera.Session{
		Host:     host,
		Firmware: fw.Name(),
		Username: ValueAt(f.cfg.Usernames, i),
		Password: ValueAt(f.cfg.Passwords, i),
		UseSSL:   ValueAt(f.cfg.UseSSL, i),
		Index:    i,
		Client:   f.client,
	}
	return s, fw, nil
}

// fetchHost runs the full state machine for one host: resolve → delay →
// discover → stage per date → combine → cleanup. The staging directory is
// removed whichever step fails.
func (f *Fetcher) fetchHost(ctx context.Context, i int, host string) error {
	s, fw, err := f.session(i, host)
	if err != nil {
		f.log.Warn("skipping host %s: %v", host, err)
		return nil
	}

	f.log.Event("HOST START", kv("host", host), kv("firmware", fw.Name()))

	if f.cfg.StartDelay > 0 {
		f.log.Info("waiting %s before fetching from %s", units.FormatDuration(f.cfg.StartDelay), host)
		select {
		case <-time.After(f.cfg.StartDelay):
		case <-ctx.Done():
			return nil
		}
	}

	rng := camera.NewRange(f.cfg.DateStart, f.cfg.DateEnd, f.cfg.TimeStart, f.cfg.TimeEnd,
		f.cfg.LastMinutes, time.Now())
	f.log.Debug("range %s-%s %s-%s", rng.DateStart, rng.DateEnd, rng.TimeStart, rng.TimeEnd)

	entries, err := fw.Records(ctx, s, rng)
	if errors.Is(err, camera.ErrUnsupported) {
		f.log.Warn("host %s: fetch is not supported by %s firmware", host, fw.Name())
		return nil
	}
	if err != nil {
		return err
	}

	total := 0
	for _, entry := range entries {
		total += len(entry.Records)
	}
	if total == 0 {
		f.log.Info("no records found on %s", host)
		return nil
	}
	f.log.Info("found %d records across %d dates on %s", total, len(entries), host)

	staging, err := os.MkdirTemp("", "recfetch-"+strings.ReplaceAll(host, ":", "_")+"-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	explicit := ValueAt(f.cfg.FileNames, i)

	// Combined-mode accumulation across dates: staged paths in date order,
	// then per-date listing order, plus the first/last record for naming.
	var all []string
	var firstDate, lastDate string
	var first, last camera.Record

	for _, entry := range entries {
		if len(entry.Records) == 0 {
			if f.cfg.SeparateByDate {
				f.log.Info("no records found for %s on %s", entry.Date, host)
			}
			continue
		}

		dateDir := filepath.Join(staging, entry.Date)
		if err := os.MkdirAll(dateDir, 0755); err != nil {
			return fmt.Errorf("create date staging: %w", err)
		}

		f.log.Info("downloading %d records for %s", len(entry.Records), entry.Date)
		if err := fw.Download(ctx, s, entry, dateDir); err != nil {
			return err
		}

		if rep, ok := fw.(camera.Repairer); ok {
			for _, rec := range entry.Records {
				if err := rep.Repair(ctx, s, filepath.Join(dateDir, rec.Name)); err != nil {
					return fmt.Errorf("repair %s: %w", rec.Name, err)
				}
			}
		}

		paths := make([]string, len(entry.Records))
		for j, rec := range entry.Records {
			paths[j] = filepath.Join(dateDir, rec.Name)
		}

		if f.cfg.SeparateByDate {
			name := explicit
			if name == "" {
				n := len(entry.Records)
				name = deriveName(f.cfg.Prefix, host, f.cfg.FileType, fw.Codec(),
					entry.Date, entry.Records[0], entry.Date, entry.Records[n-1], n)
			}
			if err := f.assemble(ctx, paths, name); err != nil {
				return err
			}
			continue
		}

		if len(all) == 0 {
			firstDate, first = entry.Date, entry.Records[0]
		}
		lastDate, last = entry.Date, entry.Records[len(entry.Records)-1]
		all = append(all, paths...)
	}

	if !f.cfg.SeparateByDate && len(all) > 0 {
		name := explicit
		if name == "" {
			name = deriveName(f.cfg.Prefix, host, f.cfg.FileType, fw.Codec(),
				firstDate, first, lastDate, last, len(all))
		}
		if err := f.assemble(ctx, all, name); err != nil {
			return err
		}
	}

	f.log.Event("HOST DONE", kv("host", host), kv("records", fmt.Sprintf("%d", total)))
	return nil
}

// assemble hands one ordered group of staged files to the transcoder.
func (f *Fetcher) assemble(ctx context.Context, paths []string, name string) error {
	out := filepath.Join(f.cfg.TargetDir, name)
	f.log.Info("writing %s (%d records)", out, len(paths))
	return concat(ctx, paths, f.cfg.Filters, out, f.log)
}
