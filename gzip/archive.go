// Package gzip reads and writes gzip-compressed filing containers.
package gzip

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/edgarscan"
)

// MaxLineSize bounds a single line. Filings embed uuencoded payloads and
// minified HTML with very long lines.
const MaxLineSize = 64 * 1024 * 1024

// Ensure Archive implements edgarscan.Archive at compile time.
var _ edgarscan.Archive = (*Archive)(nil)

// Archive is a restartable line iterator over a gzip-compressed filing.
type Archive struct {
	path    string
	file    *os.File
	reader  *gzip.Reader
	scanner *bufio.Scanner
	err     error
}

// Open opens the compressed filing at path.
// Returns ESTORAGE if the file does not exist or is not a gzip archive.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "archive %s does not exist", path)
		}
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "open archive %s: %v", path, err)
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "corrupt archive %s: %v", path, err)
	}

	a := &Archive{path: path, file: f, reader: zr}
	a.scanner = newScanner(zr)
	return a, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return s
}

// Next advances to the next line.
func (a *Archive) Next() bool {
	if a.err != nil {
		return false
	}
	if a.scanner.Scan() {
		return true
	}
	if err := a.scanner.Err(); err != nil {
		a.err = edgarscan.Errorf(edgarscan.ESTORAGE, "read archive %s: %v", a.path, err)
	}
	return false
}

// Text returns the current line as a string.
func (a *Archive) Text() string { return a.scanner.Text() }

// Bytes returns the current line as raw bytes.
func (a *Archive) Bytes() []byte { return a.scanner.Bytes() }

// Err returns the first read or decompression error.
func (a *Archive) Err() error { return a.err }

// Rewind restarts iteration from the first line.
func (a *Archive) Rewind() error {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "rewind archive %s: %v", a.path, err)
	}
	if err := a.reader.Reset(a.file); err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "rewind archive %s: %v", a.path, err)
	}
	a.scanner = newScanner(a.reader)
	a.err = nil
	return nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	zerr := a.reader.Close()
	if err := a.file.Close(); err != nil {
		return err
	}
	return zerr
}

// Ensure Opener implements edgarscan.ArchiveOpener at compile time.
var _ edgarscan.ArchiveOpener = (*Opener)(nil)

// Opener opens gzip archives from the local filesystem.
type Opener struct{}

// NewOpener returns a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// OpenArchive implements edgarscan.ArchiveOpener.
func (o *Opener) OpenArchive(path string) (edgarscan.Archive, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// WriteFile compresses everything read from r into a new archive at path.
// Parent directories are created as needed. The archive is written to a
// temporary file first and renamed into place, so a partial write never
// leaves a truncated archive behind.
func WriteFile(path string, r io.Reader) error {
	return writeAtomic(path, func(w io.Writer) error {
		zw := gzip.NewWriter(w)
		if _, err := io.Copy(zw, r); err != nil {
			return err
		}
		return zw.Close()
	})
}

// WriteCompressed stores an already gzip-compressed stream at path with the
// same guarantees as WriteFile.
func WriteCompressed(path string, r io.Reader) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

func writeAtomic(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// IsCompressed reports whether data starts with the gzip magic number.
func IsCompressed(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
