package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/edgarscan"
)

// MinIndexYear is the first year EDGAR publishes full indexes for.
const MinIndexYear = 1994

// IndexFileName returns the local file name of one quarterly index.
func IndexFileName(year, quarter int) string {
	return fmt.Sprintf("%d-QTR%d.idx", year, quarter)
}

// DownloadIndex fetches the quarterly master indexes from sinceYear, or
// MinIndexYear if later, through the current quarter. Quarters already on
// disk are skipped, except the current one which is still growing.
func (d *Downloader) DownloadIndex(ctx context.Context, dir string, sinceYear int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "create index directory: %v", err)
	}

	now := d.now()
	lastYear, lastQuarter := now.Year(), (int(now.Month())-1)/3+1
	start := max(sinceYear, MinIndexYear)

	var paths []string
	for year := start; year <= lastYear; year++ {
		for quarter := 1; quarter <= 4; quarter++ {
			if year == lastYear && quarter > lastQuarter {
				break
			}
			path := filepath.Join(dir, IndexFileName(year, quarter))
			latest := year == lastYear && quarter == lastQuarter
			if _, err := os.Stat(path); err == nil && !latest {
				continue
			}

			url := fmt.Sprintf("%sedgar/full-index/%d/QTR%d/master.idx", d.baseURL, year, quarter)
			if err := d.downloadIndexFile(ctx, url, path); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (d *Downloader) downloadIndexFile(ctx context.Context, url, path string) error {
	resp, err := d.get(ctx, url, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := writeFile(path, resp.Body); err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "store %s: %v", path, err)
	}
	return nil
}

// ParseIndex reads index lines of the form cik|firm name|type|date|path
// and returns one entry per valid line, with path resolved against
// baseURL. Header lines and lines without a numeric CIK or an ISO date
// are skipped. Fields past the fifth are ignored.
func ParseIndex(r io.Reader, baseURL string) ([]*edgarscan.IndexEntry, error) {
	var entries []*edgarscan.IndexEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if e, ok := ParseIndexLine(scanner.Text(), baseURL); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "read index: %v", err)
	}
	return entries, nil
}

// ParseIndexLine parses one index line. It reports false for lines that
// are not index rows.
func ParseIndexLine(line, baseURL string) (*edgarscan.IndexEntry, bool) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "|")
	if len(fields) < 5 {
		return nil, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	cik, name, fileType, date, path := fields[0], fields[1], fields[2], fields[3], fields[4]
	if cik == "" || strings.Trim(cik, "0123456789") != "" {
		return nil, false
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, false
	}
	if fileType == "" || path == "" {
		return nil, false
	}

	return &edgarscan.IndexEntry{
		CIK:      cik,
		FirmName: name,
		FileType: fileType,
		Date:     date,
		URL:      baseURL + path,
	}, true
}
