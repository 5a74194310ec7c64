package mock

import (
	"context"

	"github.com/fwojciec/edgarscan"
)

var _ edgarscan.IndexService = (*IndexService)(nil)

// IndexService is a mock implementation of edgarscan.IndexService.
type IndexService struct {
	CreateIndexEntriesFn func(ctx context.Context, entries []*edgarscan.IndexEntry) (int, error)
	FindIndexEntriesFn   func(ctx context.Context, filter edgarscan.IndexFilter) ([]*edgarscan.IndexEntry, error)
}

func (s *IndexService) CreateIndexEntries(ctx context.Context, entries []*edgarscan.IndexEntry) (int, error) {
	return s.CreateIndexEntriesFn(ctx, entries)
}

func (s *IndexService) FindIndexEntries(ctx context.Context, filter edgarscan.IndexFilter) ([]*edgarscan.IndexEntry, error) {
	return s.FindIndexEntriesFn(ctx, filter)
}

var _ edgarscan.IndexDownloader = (*IndexDownloader)(nil)

// IndexDownloader is a mock implementation of edgarscan.IndexDownloader.
type IndexDownloader struct {
	DownloadIndexFn func(ctx context.Context, dir string, sinceYear int) ([]string, error)
}

func (d *IndexDownloader) DownloadIndex(ctx context.Context, dir string, sinceYear int) ([]string, error) {
	return d.DownloadIndexFn(ctx, dir, sinceYear)
}

var _ edgarscan.FilingDownloader = (*FilingDownloader)(nil)

// FilingDownloader is a mock implementation of edgarscan.FilingDownloader.
type FilingDownloader struct {
	DownloadFn func(ctx context.Context, url, dest string) error
}

func (d *FilingDownloader) Download(ctx context.Context, url, dest string) error {
	return d.DownloadFn(ctx, url, dest)
}
