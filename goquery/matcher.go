// Package goquery provides HTML text extraction and loan phrase matching
// for extracted filing documents.
package goquery

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/edgarscan"
	"golang.org/x/net/html/charset"
)

// Ensure Matcher implements edgarscan.ContentMatcher at compile time.
var _ edgarscan.ContentMatcher = (*Matcher)(nil)

// Matcher tests extracted sub-documents against the loan vocabulary.
// Markup documents are reduced to their visible text first; text
// documents are matched on their raw content.
type Matcher struct{}

// NewMatcher creates a new Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match implements edgarscan.ContentMatcher.
func (m *Matcher) Match(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, edgarscan.Errorf(edgarscan.ENOTFOUND, "document not found: %s", path)
	} else if err != nil {
		return false, edgarscan.Errorf(edgarscan.ESTORAGE, "read %s: %v", path, err)
	}

	if edgarscan.ClassifyFilename(path) != edgarscan.DocumentMarkup {
		return edgarscan.HasLoanPhrase(string(data)), nil
	}

	text, err := Text(bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	return edgarscan.HasLoanPhrase(text), nil
}

// MatchAny reports whether any of paths matches. Paths are tested in
// order and the first hit stops the search.
func (m *Matcher) MatchAny(paths []string) (bool, error) {
	for _, p := range paths {
		ok, err := m.Match(p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Text returns the visible text of an HTML document with runs of
// whitespace collapsed to single spaces. The document encoding is
// detected from its meta tags and decoded to UTF-8.
func Text(r io.Reader) (string, error) {
	utf8, err := charset.NewReader(r, "text/html")
	if err != nil {
		return "", edgarscan.Errorf(edgarscan.EINVALID, "detect charset: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8)
	if err != nil {
		return "", edgarscan.Errorf(edgarscan.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
