package fs

import (
	"os"
	"path/filepath"

	"github.com/fwojciec/edgarscan"
	"github.com/google/uuid"
)

// RunDir is a per-run scratch directory for transient sub-document files.
type RunDir struct {
	Path string
}

// NewRunDir creates a uniquely named directory under parent. An empty
// parent uses the system temporary directory.
func NewRunDir(parent string) (*RunDir, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	path := filepath.Join(parent, "edgarscan-"+uuid.NewString())
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "create run directory: %v", err)
	}
	return &RunDir{Path: path}, nil
}

// Close removes the directory and anything left in it.
func (d *RunDir) Close() error {
	return os.RemoveAll(d.Path)
}
