package mock

import (
	"context"

	"github.com/fwojciec/edgarscan"
)

var _ edgarscan.FilingStore = (*FilingStore)(nil)

// FilingStore is a mock implementation of edgarscan.FilingStore.
type FilingStore struct {
	EntitiesFn func() ([]string, error)
	FilingsFn  func(cik, fileType string) ([]edgarscan.Filing, error)
	PathFn     func(key edgarscan.FilingKey) string
}

func (s *FilingStore) Entities() ([]string, error) {
	return s.EntitiesFn()
}

func (s *FilingStore) Filings(cik, fileType string) ([]edgarscan.Filing, error) {
	return s.FilingsFn(cik, fileType)
}

func (s *FilingStore) Path(key edgarscan.FilingKey) string {
	return s.PathFn(key)
}

var _ edgarscan.DocumentExtractor = (*DocumentExtractor)(nil)

// DocumentExtractor is a mock implementation of edgarscan.DocumentExtractor.
type DocumentExtractor struct {
	ExtractFn func(ctx context.Context, key edgarscan.FilingKey, archivePath string) ([]string, error)
}

func (e *DocumentExtractor) Extract(ctx context.Context, key edgarscan.FilingKey, archivePath string) ([]string, error) {
	return e.ExtractFn(ctx, key, archivePath)
}

var _ edgarscan.ContentMatcher = (*ContentMatcher)(nil)

// ContentMatcher is a mock implementation of edgarscan.ContentMatcher.
type ContentMatcher struct {
	MatchFn func(path string) (bool, error)
}

func (m *ContentMatcher) Match(path string) (bool, error) {
	return m.MatchFn(path)
}

var _ edgarscan.ArchiveOpener = (*ArchiveOpener)(nil)

// ArchiveOpener is a mock implementation of edgarscan.ArchiveOpener.
type ArchiveOpener struct {
	OpenArchiveFn func(path string) (edgarscan.Archive, error)
}

func (o *ArchiveOpener) OpenArchive(path string) (edgarscan.Archive, error) {
	return o.OpenArchiveFn(path)
}
