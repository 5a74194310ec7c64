package edgarscan

import "context"

// IndexEntry is one row of the EDGAR filing index.
type IndexEntry struct {
	CIK      string `json:"cik"`
	FirmName string `json:"firmName"`
	FileType string `json:"fileType"`
	Date     string `json:"date"`
	URL      string `json:"url"`
}

// Key returns the filing key of the entry.
func (e *IndexEntry) Key() FilingKey {
	return FilingKey{CIK: e.CIK, FileType: e.FileType, Date: e.Date}
}

// Validate returns an error if the entry contains invalid fields.
func (e *IndexEntry) Validate() error {
	if err := e.Key().Validate(); err != nil {
		return err
	}
	if e.URL == "" {
		return Errorf(EINVALID, "index entry URL required")
	}
	return nil
}

// IndexService represents a service for managing index entries.
type IndexService interface {
	// CreateIndexEntries inserts entries, ignoring ones already present.
	// Returns the number of rows inserted.
	CreateIndexEntries(ctx context.Context, entries []*IndexEntry) (int, error)

	// FindIndexEntries retrieves entries matching the filter.
	FindIndexEntries(ctx context.Context, filter IndexFilter) ([]*IndexEntry, error)
}

// IndexFilter represents a filter for FindIndexEntries.
type IndexFilter struct {
	CIK      *string `json:"cik"`
	FileType *string `json:"fileType"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// IndexDownloader fetches EDGAR index files.
type IndexDownloader interface {
	// DownloadIndex stores quarterly index files for sinceYear through
	// the current year under dir and returns the paths written.
	DownloadIndex(ctx context.Context, dir string, sinceYear int) ([]string, error)
}

// FilingDownloader fetches one filing and stores it gzip-compressed at dest.
type FilingDownloader interface {
	Download(ctx context.Context, url, dest string) error
}

// DownloadProgress reports progress during filing downloads.
type DownloadProgress struct {
	Key       FilingKey
	URL       string
	Completed int
	Total     int
	Err       error
}

// DownloadProgressFunc is called as downloads finish.
type DownloadProgressFunc func(DownloadProgress)
