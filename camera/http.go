package camera

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/whisper-darkly/recfetch/logger"
	"github.com/whisper-darkly/recfetch/units"
)

// listTimeout bounds every listing/API request so an unreachable date
// directory shows up as a failed request, not a hang.
const listTimeout = 10 * time.Second

// listingHeaderRows is the number of leading table rows (header and
// navigation) the camera firmware puts before the first real entry.
const listingHeaderRows = 3

// Client wraps http.Client for camera endpoints: self-signed-TLS tolerant,
// basic-auth aware, with byte-level progress reporting and an optional
// bandwidth cap on downloads.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter

	Log *logger.Logger
}

// NewClient creates a camera HTTP client. bytesPerSec caps download
// bandwidth; zero means unlimited. TLS verification is disabled — cameras
// ship self-signed certificates.
func NewClient(log *logger.Logger, bytesPerSec int64) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	c := &Client{
		client: &http.Client{Transport: transport},
		Log:    log,
	}
	if bytesPerSec > 0 {
		// Burst must cover one io.Copy chunk or WaitN rejects the request.
		burst := int(bytesPerSec)
		if burst < 64*1024 {
			burst = 64 * 1024
		}
		c.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
	}
	return c
}

// ListEntries fetches a directory-listing page and returns the entry names
// in page order. The firmware renders listings as an HTML table whose first
// three rows are header/navigation; each remaining row names one entry in
// its anchor text. Any transport error or non-200 response is logged and
// yields an empty list: one dead date directory must not stop a sweep.
func (c *Client) ListEntries(ctx context.Context, s *Session, url string) []string {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.Log.Warn("list %s: %v", url, err)
		return nil
	}
	if s.Username != "" {
		req.SetBasicAuth(s.Username, s.Password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.Log.Warn("list %s: %v", url, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Log.Warn("list %s: http %d", url, resp.StatusCode)
		return nil
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		c.Log.Warn("list %s: parse: %v", url, err)
		return nil
	}

	return entriesFromTable(doc)
}

// entriesFromTable walks the listing document and collects one entry name
// per table row after the header rows, taken from the row's first anchor.
func entriesFromTable(doc *html.Node) []string {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if len(rows) <= listingHeaderRows {
		return nil
	}

	var names []string
	for _, tr := range rows[listingHeaderRows:] {
		if a := firstAnchor(tr); a != nil {
			if name := strings.TrimSpace(textContent(a)); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func firstAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "a" {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if a := firstAnchor(child); a != nil {
			return a
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

// PostJSON issues a JSON POST and decodes the response into out. Used by
// the query-API firmware family, which authenticates via the URL itself.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// DownloadFile streams url into dest, reporting progress on the logger's
// status line as bytes arrive. No overall timeout: record files can be
// large and the transport already fails fast on a dead connection.
func (c *Client) DownloadFile(ctx context.Context, s *Session, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if s.Username != "" {
		req.SetBasicAuth(s.Username, s.Password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	pw := &progressWriter{
		ctx:     ctx,
		name:    filepath.Base(dest),
		total:   resp.ContentLength,
		log:     c.Log,
		limiter: c.limiter,
	}

	_, err = io.Copy(io.MultiWriter(out, pw), resp.Body)
	c.Log.EndProgress()
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("download %s: %w", url, err)
	}
	return nil
}

// progressWriter counts transferred bytes, throttles via the rate limiter,
// and repaints the status line at most a few times per second.
type progressWriter struct {
	ctx     context.Context
	name    string
	total   int64
	written int64
	last    time.Time
	log     *logger.Logger
	limiter *rate.Limiter
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n := len(b)
	p.written += int64(n)

	if p.limiter != nil {
		if err := p.limiter.WaitN(p.ctx, n); err != nil {
			return n, err
		}
	}

	if now := time.Now(); now.Sub(p.last) >= 200*time.Millisecond {
		p.last = now
		if p.total > 0 {
			p.log.Progress("  %s  %s / %s (%d%%)", p.name,
				units.FormatBytes(p.written), units.FormatBytes(p.total),
				p.written*100/p.total)
		} else {
			p.log.Progress("  %s  %s", p.name, units.FormatBytes(p.written))
		}
	}
	return n, nil
}
