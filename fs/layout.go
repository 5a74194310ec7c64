// Package fs provides the on-disk filing layout and file-based export.
package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/edgarscan"
)

// FilingExt is the file extension of a stored filing.
const FilingExt = ".txt.gz"

// Ensure Layout implements edgarscan.FilingStore at compile time.
var _ edgarscan.FilingStore = (*Layout)(nil)

// Layout implements edgarscan.FilingStore over the directory tree
// {root}/{cik}/{file_type}/{date}.txt.gz.
type Layout struct {
	root string
}

// NewLayout creates a new Layout rooted at root.
func NewLayout(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the data directory.
func (l *Layout) Root() string {
	return l.root
}

// Path returns the storage path of a filing.
func (l *Layout) Path(key edgarscan.FilingKey) string {
	return filepath.Join(l.root, key.CIK, key.FileType, key.Date+FilingExt)
}

// Exists reports whether a filing is stored on disk.
func (l *Layout) Exists(key edgarscan.FilingKey) bool {
	_, err := os.Stat(l.Path(key))
	return err == nil
}

// Entities returns every entity directory under the root, sorted.
// Returns ENOTFOUND if the root does not exist.
func (l *Layout) Entities() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, edgarscan.Errorf(edgarscan.ENOTFOUND, "data directory not found: %s", l.root)
	} else if err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "read data directory: %v", err)
	}

	var ciks []string
	for _, e := range entries {
		if e.IsDir() {
			ciks = append(ciks, e.Name())
		}
	}
	return ciks, nil
}

// Filings returns the stored filings of one entity and filing type, ordered
// by date. A missing directory yields an empty slice.
func (l *Layout) Filings(cik, fileType string) ([]edgarscan.Filing, error) {
	dir := filepath.Join(l.root, cik, fileType)

	var filings []edgarscan.Filing
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), FilingExt) {
			return nil
		}
		filings = append(filings, edgarscan.Filing{
			Key: edgarscan.FilingKey{
				CIK:      cik,
				FileType: fileType,
				Date:     strings.TrimSuffix(d.Name(), FilingExt),
			},
			Path: path,
		})
		return nil
	})
	if err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "walk %s: %v", dir, err)
	}

	sort.Slice(filings, func(i, j int) bool {
		return filings[i].Key.Date < filings[j].Key.Date
	})
	return filings, nil
}

// AllFilings returns the stored filings of fileType across every entity.
func (l *Layout) AllFilings(fileType string) ([]edgarscan.Filing, error) {
	ciks, err := l.Entities()
	if err != nil {
		return nil, err
	}

	var all []edgarscan.Filing
	for _, cik := range ciks {
		filings, err := l.Filings(cik, fileType)
		if err != nil {
			return nil, err
		}
		all = append(all, filings...)
	}
	return all, nil
}
