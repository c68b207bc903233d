package camera

import (
	"context"
	"fmt"
	"strings"
)

// SentinelInProgress marks a recording the camera is still writing. Names
// containing it are never downloaded, whatever the filter says.
const SentinelInProgress = "999999"

// Record is one discovered remote segment file. Dir is the remote parent
// directory it was found under, relative to the date directory; different
// records of the same date may live under different parents, so it is kept
// per record to rebuild the download URL later. Empty for firmware families
// that address records by name alone.
type Record struct {
	Name string
	Dir  string
}

// DateEntry groups the records of one calendar day on one host. Records keep
// the order the camera returned them in; concatenation order and first/last
// filename derivation rely on it, so it is never re-sorted.
type DateEntry struct {
	Date    string // YYYYMMDD
	Records []Record
}

// Session is the resolved per-host configuration threaded through the sweep.
// Built fresh for each configured host and discarded afterwards.
type Session struct {
	Host     string
	Firmware string
	Username string
	Password string
	UseSSL   bool
	Index    int // position in the configured host list

	Client *Client
}

// Scheme returns the URL scheme for this session.
func (s *Session) Scheme() string {
	if s.UseSSL {
		return "https"
	}
	return "http"
}

// Firmware is the capability set a camera firmware family must provide.
type Firmware interface {
	// Name returns the firmware identifier (e.g. "hi3510", "reolink").
	Name() string

	// Codec returns the filename codec for this firmware's record names.
	Codec() Codec

	// BaseURL builds the root URL all requests for this session derive from.
	BaseURL(s *Session) string

	// Records enumerates the date entries whose records match the range,
	// in remote listing order. An unreachable or missing date directory
	// yields an empty entry, not an error.
	Records(ctx context.Context, s *Session, rng Range) ([]DateEntry, error)

	// Download populates dir with one local file per record of the entry,
	// keeping the remote base names. Strictly sequential.
	Download(ctx context.Context, s *Session, entry DateEntry, dir string) error
}

// Repairer is an optional capability for firmware whose raw record streams
// need a container rewrite before they are concatenable. Repair replaces the
// file at path with its repaired equivalent.
type Repairer interface {
	Repair(ctx context.Context, s *Session, path string) error
}

var registry = map[string]Firmware{}

// Register adds a firmware implementation to the global registry.
// Lookup is case-insensitive.
func Register(f Firmware) {
	registry[strings.ToLower(f.Name())] = f
}

// Get returns a registered firmware by name.
func Get(name string) (Firmware, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(registry))
		for n := range registry {
			names = append(names, n)
		}
		return nil, fmt.Errorf("unknown firmware %q (available: %v)", name, names)
	}
	return f, nil
}
