// Package scan coordinates parallel scans of stored filings.
// Entity scanners run on a bounded worker pool and return result tuples;
// the coordinator is the only writer to the result store.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/fwojciec/edgarscan"
	"golang.org/x/sync/errgroup"
)

// Coordinator dispatches entities to scanners and persists their results.
type Coordinator struct {
	Store   edgarscan.FilingStore
	Results edgarscan.ResultService
	Logger  *slog.Logger

	// Threads caps the worker count. The pool never exceeds the number of
	// CPUs; zero means one worker per CPU.
	Threads int
}

// Request describes one scan run.
type Request struct {
	Scanner  edgarscan.EntityScanner
	FileType string

	// Resume skips entities that already have non-null results for
	// FileType.
	Resume bool

	// Progress, if set, is called from the coordinator goroutine as each
	// entity completes or fails.
	Progress edgarscan.ScanProgressFunc
}

// Summary holds the outcome of a scan run.
type Summary struct {
	Total     int
	Skipped   int
	Completed int
	Failed    int
	Rows      int
}

type entityResult struct {
	cik  string
	rows []edgarscan.Result
	err  error
}

// Workers returns the size of the worker pool.
func (c *Coordinator) Workers() int {
	n := runtime.NumCPU()
	if c.Threads > 0 && c.Threads < n {
		n = c.Threads
	}
	return n
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Run scans every pending entity. Entity failures are logged and counted
// but never stop the run; the returned error reflects only result store
// failures and context cancellation.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Summary, error) {
	begin := time.Now()
	logger := c.logger()
	kind := req.Scanner.Kind()

	def, err := edgarscan.LookupScanSpec(kind)
	if err != nil {
		return nil, err
	}
	if req.FileType == "" {
		return nil, edgarscan.Errorf(edgarscan.EINVALID, "file type required")
	}
	if err := c.Results.EnsureTable(ctx, kind); err != nil {
		return nil, err
	}

	ciks, err := c.Store.Entities()
	if err != nil {
		return nil, err
	}
	summary := &Summary{Total: len(ciks)}

	pending := ciks
	if req.Resume {
		done, err := c.Results.ProcessedEntities(ctx, kind, req.FileType)
		if err != nil {
			return nil, err
		}
		pending = subtract(ciks, done)
		summary.Skipped = len(ciks) - len(pending)
	}
	rand.Shuffle(len(pending), func(i, j int) {
		pending[i], pending[j] = pending[j], pending[i]
	})

	workers := c.Workers()
	logger.Info("scan started",
		"kind", kind,
		"file_type", req.FileType,
		"entities", len(pending),
		"skipped", summary.Skipped,
		"workers", workers)

	// Workers stop early when the store fails, so cancel is shared with
	// the writer below.
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan entityResult)

	// A plain group: one entity failing must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(workers)

	go func() {
		for _, cik := range pending {
			if dctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res := entityResult{cik: cik}
				defer func() {
					if r := recover(); r != nil {
						res.rows, res.err = nil, fmt.Errorf("panic: %v", r)
					}
					resultCh <- res
				}()
				res.rows, res.err = req.Scanner.ScanEntity(dctx, cik, req.FileType)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var writeErr error
	var finished int
	for res := range resultCh {
		if writeErr != nil {
			continue
		}
		if res.err != nil && dctx.Err() != nil && errors.Is(res.err, dctx.Err()) {
			continue
		}

		finished++
		progress := edgarscan.ScanProgress{CIK: res.cik, Completed: finished, Total: len(pending)}

		// Rows the store rejects as invalid fail only their entity.
		if res.err == nil {
			res.err = c.Results.UpsertResults(ctx, kind, def.Mode, res.rows)
			if res.err != nil && edgarscan.ErrorCode(res.err) != edgarscan.EINVALID {
				writeErr = res.err
				cancel()
				logger.Error("write results failed", "kind", kind, "cik", res.cik, "err", res.err)
				continue
			}
		}

		if res.err != nil {
			summary.Failed++
			progress.Err = edgarscan.Errorf(edgarscan.EWORKER, "entity %s: %v", res.cik, res.err)
			logger.Error("entity scan failed", "kind", kind, "cik", res.cik, "err", res.err)
		} else {
			summary.Completed++
			summary.Rows += len(res.rows)
			progress.Rows = len(res.rows)
		}

		if req.Progress != nil {
			req.Progress(progress)
		}
	}

	logger.Info("scan finished",
		"kind", kind,
		"file_type", req.FileType,
		"completed", summary.Completed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"rows", summary.Rows,
		"duration", time.Since(begin))

	if writeErr != nil {
		return summary, writeErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// subtract returns the elements of all not present in done, keeping order.
func subtract(all, done []string) []string {
	skip := make(map[string]struct{}, len(done))
	for _, cik := range done {
		skip[cik] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, cik := range all {
		if _, ok := skip[cik]; !ok {
			out = append(out, cik)
		}
	}
	return out
}
