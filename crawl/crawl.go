// Package crawl downloads the filings listed in the EDGAR index.
// It plans the filings missing on disk and fetches them on a bounded
// worker pool.
package crawl

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/fwojciec/edgarscan"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the default number of concurrent downloads.
const DefaultConcurrency = 8

// Presence reports whether a filing is already stored.
type Presence interface {
	Has(key edgarscan.FilingKey) bool
}

// Crawler downloads filings into the filing store.
type Crawler struct {
	Downloader  edgarscan.FilingDownloader
	Store       edgarscan.FilingStore
	Logger      *slog.Logger
	Concurrency int
}

// Result holds the outcome of a download run.
type Result struct {
	Planned int
	Skipped int
	Saved   int
	Failed  int
}

// Plan returns the entries whose filings are not yet stored, dropping
// duplicate keys, and the number of entries skipped.
func Plan(entries []*edgarscan.IndexEntry, presence Presence) ([]*edgarscan.IndexEntry, int) {
	seen := make(map[edgarscan.FilingKey]struct{}, len(entries))
	jobs := make([]*edgarscan.IndexEntry, 0, len(entries))
	for _, e := range entries {
		key := e.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if presence.Has(key) {
			continue
		}
		jobs = append(jobs, e)
	}
	return jobs, len(entries) - len(jobs)
}

type downloadResult struct {
	key edgarscan.FilingKey
	url string
	err error
}

// CrawlFilings downloads every planned entry in random order. A failed
// download is reported and counted but does not stop the run.
func (c *Crawler) CrawlFilings(ctx context.Context, entries []*edgarscan.IndexEntry, presence Presence, progress edgarscan.DownloadProgressFunc) (*Result, error) {
	begin := time.Now()
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	jobs, skipped := Plan(entries, presence)
	rand.Shuffle(len(jobs), func(i, j int) {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	})

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	logger.Info("download started", "planned", len(jobs), "skipped", skipped, "concurrency", concurrency)

	resultCh := make(chan downloadResult, len(jobs))

	var completed atomic.Int64
	total := len(jobs)

	var g errgroup.Group
	g.SetLimit(concurrency)

	go func() {
		for _, e := range jobs {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				key := e.Key()
				err := c.Downloader.Download(ctx, e.URL, c.Store.Path(key))
				resultCh <- downloadResult{key: key, url: e.URL, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	result := &Result{Planned: total, Skipped: skipped}
	for r := range resultCh {
		completed.Add(1)
		if r.err != nil {
			result.Failed++
			logger.Debug("download failed", "filing", r.key.String(), "url", r.url, "err", r.err)
		} else {
			result.Saved++
		}
		if progress != nil {
			progress(edgarscan.DownloadProgress{
				Key:       r.key,
				URL:       r.url,
				Completed: int(completed.Load()),
				Total:     total,
				Err:       r.err,
			})
		}
	}

	logger.Info("download finished",
		"saved", result.Saved,
		"failed", result.Failed,
		"duration", time.Since(begin))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
