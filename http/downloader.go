// Package http downloads EDGAR index files and filings over HTTP.
package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/gzip"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default timeout for one HTTP request.
	DefaultTimeout = 60 * time.Second

	// DefaultRate is the default number of requests per second shared by
	// all callers of one Downloader.
	DefaultRate = 10

	// DefaultBaseURL is the EDGAR archive root that index paths are
	// relative to.
	DefaultBaseURL = "https://www.sec.gov/Archives/"
)

// Ensure Downloader implements the downloader interfaces at compile time.
var (
	_ edgarscan.FilingDownloader = (*Downloader)(nil)
	_ edgarscan.IndexDownloader  = (*Downloader)(nil)
)

// Downloader fetches EDGAR resources. Every request, from any goroutine,
// first takes a permit from one shared token bucket.
type Downloader struct {
	client    *http.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	rps       float64
	userAgent string
	baseURL   string
	now       func() time.Time
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithRate sets the request rate in requests per second.
func WithRate(rps float64) Option {
	return func(dl *Downloader) {
		dl.rps = rps
	}
}

// WithUserAgent sets the User-Agent header. EDGAR rejects anonymous
// clients, so it should name the caller and a contact address.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithBaseURL sets the archive root used for index files.
func WithBaseURL(u string) Option {
	return func(dl *Downloader) {
		dl.baseURL = u
	}
}

// WithClock sets the time source used to find the latest index quarter.
func WithClock(now func() time.Time) Option {
	return func(dl *Downloader) {
		dl.now = now
	}
}

// NewDownloader creates a new Downloader.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		timeout: DefaultTimeout,
		rps:     DefaultRate,
		baseURL: DefaultBaseURL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.client = &http.Client{Timeout: d.timeout}
	d.limiter = rate.NewLimiter(rate.Limit(d.rps), 1)

	return d
}

// Download fetches the filing at url and stores it gzip-compressed at dest.
// A body the server already compressed is stored as received.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	resp, err := d.get(ctx, url, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	br := bufio.NewReader(resp.Body)
	magic, _ := br.Peek(2)
	if gzip.IsCompressed(magic) {
		err = gzip.WriteCompressed(dest, br)
	} else {
		err = gzip.WriteFile(dest, br)
	}
	if err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "store %s: %v", dest, err)
	}
	return nil
}

// get issues a rate-limited GET. With rawGzip set the request advertises
// gzip itself, which stops the transport from decompressing the body.
func (d *Downloader) get(ctx context.Context, url string, rawGzip bool) (*http.Response, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, edgarscan.Errorf(edgarscan.EINVALID, "invalid URL %q: %v", url, err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	if rawGzip {
		req.Header.Set("Accept-Encoding", "gzip")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, edgarscan.Errorf(edgarscan.ENOTFOUND, "HTTP 404 for %s", url)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return resp, nil
}

// writeFile stores r at path through a temporary file in the same
// directory.
func writeFile(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
