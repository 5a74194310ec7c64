package main

import (
	"fmt"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/bloom"
	"github.com/fwojciec/edgarscan/crawl"
)

// Run executes the download-filings command.
func (c *DownloadFilingsCmd) Run(deps *Dependencies) error {
	if err := requireUserAgent(deps); err != nil {
		return deps.fail(err)
	}

	fileType := deps.FileType
	entries, err := deps.Index.FindIndexEntries(deps.Ctx, edgarscan.IndexFilter{FileType: &fileType})
	if err != nil {
		return deps.fail(err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No index entries for %s. Run 'edgarscan build-database' first.\n", fileType)
		return nil
	}

	stored, err := deps.Layout.AllFilings(fileType)
	if err != nil && edgarscan.ErrorCode(err) != edgarscan.ENOTFOUND {
		return deps.fail(err)
	}
	presence := bloom.NewPresence(stored, deps.Layout.Exists)

	crawler := &crawl.Crawler{
		Downloader:  deps.FilingDownloader,
		Store:       deps.Layout,
		Logger:      deps.logger(),
		Concurrency: deps.Threads,
	}

	line := newProgressLine(deps.Stderr)
	progress := func(p edgarscan.DownloadProgress) {
		if p.Err != nil {
			line.Printf("  skip %s: %s\n", crawl.TruncateURL(p.URL, 80), errorText(p.Err))
		}
		line.Update("downloading", p.Completed, p.Total)
	}

	result, err := crawler.CrawlFilings(deps.Ctx, entries, presence, progress)
	line.Clear()
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "Downloaded %d filings (%d already stored, %d failed)\n",
		result.Saved, result.Skipped, result.Failed)
	return nil
}
