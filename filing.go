package edgarscan

import (
	"context"
	"path"
	"strings"
)

// FilingKey identifies one regulatory submission.
// Date is the filing date formatted as YYYY-MM-DD.
type FilingKey struct {
	CIK      string `json:"cik"`
	FileType string `json:"fileType"`
	Date     string `json:"date"`
}

func (k FilingKey) String() string {
	return k.CIK + "/" + k.FileType + "/" + k.Date
}

// Validate returns an error if the key contains invalid fields.
func (k FilingKey) Validate() error {
	if k.CIK == "" {
		return Errorf(EINVALID, "filing CIK required")
	}
	if k.FileType == "" {
		return Errorf(EINVALID, "filing type required")
	}
	if k.Date == "" {
		return Errorf(EINVALID, "filing date required")
	}
	return nil
}

// Filing is a downloaded filing container on disk.
type Filing struct {
	Key  FilingKey
	Path string
}

// DocumentType classifies a sub-document by its declared filename suffix.
type DocumentType string

// DocumentType constants.
const (
	DocumentUnknown DocumentType = ""
	DocumentText    DocumentType = "text"
	DocumentMarkup  DocumentType = "markup"
)

// ClassifyFilename returns the document type hinted by a declared filename.
// Only plain-text and markup documents are recognised; images, XML and
// other payloads return DocumentUnknown.
func ClassifyFilename(name string) DocumentType {
	switch strings.ToLower(path.Ext(name)) {
	case ".htm", ".html":
		return DocumentMarkup
	case ".txt":
		return DocumentText
	default:
		return DocumentUnknown
	}
}

// SubDocument is one logical file embedded in a filing container.
type SubDocument struct {
	Ordinal  int
	Filename string
	Type     DocumentType

	// Content holds the captured lines verbatim, including the
	// <DOCUMENT> and </DOCUMENT> marker lines.
	Content []byte

	// BodySize is the number of content bytes excluding marker lines.
	BodySize int
}

// LineReader iterates over the lines of a decompressed filing.
type LineReader interface {
	// Next advances to the next line. It returns false at end of stream
	// or on error.
	Next() bool

	// Text returns the current line without its terminator.
	Text() string

	// Bytes returns the current line without its terminator. The slice
	// may be overwritten by the next call to Next.
	Bytes() []byte

	// Err returns the first non-EOF error encountered.
	Err() error
}

// Archive is a restartable line stream over one stored filing.
type Archive interface {
	LineReader

	// Rewind restarts iteration from the first line.
	Rewind() error

	Close() error
}

// ArchiveOpener opens stored filings.
type ArchiveOpener interface {
	// OpenArchive opens the compressed filing at path.
	// Returns ESTORAGE if the path does not exist or is not a valid archive.
	OpenArchive(path string) (Archive, error)
}

// FilingStore exposes the on-disk filing layout
// {root}/{cik}/{file_type}/{date}.txt.gz.
type FilingStore interface {
	// Entities returns every CIK directory under the root.
	Entities() ([]string, error)

	// Filings returns the filings of one entity and filing type.
	// A missing directory yields an empty slice.
	Filings(cik, fileType string) ([]Filing, error)

	// Path returns the storage path for a filing key.
	Path(key FilingKey) string
}

// DocumentExtractor splits a filing into its text and markup sub-documents
// and materialises each retained one to a transient file.
type DocumentExtractor interface {
	// Extract returns the transient paths of the retained sub-documents in
	// document order. The caller owns the returned files.
	Extract(ctx context.Context, key FilingKey, archivePath string) ([]string, error)
}

// ContentMatcher tests one extracted sub-document against the loan
// vocabulary.
type ContentMatcher interface {
	Match(path string) (bool, error)
}
