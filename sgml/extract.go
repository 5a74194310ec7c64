package sgml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/edgarscan"
)

// Ensure Extractor implements edgarscan.DocumentExtractor at compile time.
var _ edgarscan.DocumentExtractor = (*Extractor)(nil)

// Extractor splits stored filings and writes their retained sub-documents
// to transient files under Dir.
type Extractor struct {
	Opener edgarscan.ArchiveOpener
	Dir    string

	// OnWarning, if set, receives soft anomalies found while splitting.
	OnWarning func(edgarscan.ParseWarning)
}

// Extract implements edgarscan.DocumentExtractor.
func (e *Extractor) Extract(ctx context.Context, key edgarscan.FilingKey, archivePath string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archive, err := e.Opener.OpenArchive(archivePath)
	if err != nil {
		return nil, err
	}
	result, err := Split(archive)
	archive.Close()
	if err != nil {
		return nil, err
	}

	if e.OnWarning != nil {
		for _, w := range result.Warnings {
			e.OnWarning(edgarscan.ParseWarning{Filing: key, Message: w})
		}
	}

	return Materialize(e.Dir, key, result.Documents)
}

// Materialize writes docs to uniquely named files under dir and returns
// their paths in document order. On failure every file already written is
// removed.
func Materialize(dir string, key edgarscan.FilingKey, docs []edgarscan.SubDocument) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "create transient dir: %v", err)
	}

	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		path := filepath.Join(dir, TransientName(key, doc))
		if err := os.WriteFile(path, doc.Content, 0644); err != nil {
			Cleanup(paths)
			return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// TransientName returns a collision-free file name for doc. It combines the
// entity, filing type, a hash of the full filing key, the ordinal and the
// declared filename, so concurrent workers never share a name. Text
// documents always carry a .txt extension; markup documents keep their
// declared suffix.
func TransientName(key edgarscan.FilingKey, doc edgarscan.SubDocument) string {
	base := filepath.Base(doc.Filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if doc.Type == edgarscan.DocumentText {
		ext = ".txt"
	}
	return fmt.Sprintf("%s_%s_%016x_%d_%s%s",
		safe(key.CIK), safe(key.FileType), xxhash.Sum64String(key.String()), doc.Ordinal, safe(stem), ext)
}

func safe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, s)
}

// Cleanup removes transient files, ignoring ones already gone.
func Cleanup(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
