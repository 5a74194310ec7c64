package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/edgarscan"
	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML header of an exported markdown document.
type Frontmatter struct {
	CIK      string `yaml:"cik"`
	FileType string `yaml:"file_type"`
	Date     string `yaml:"date"`
	Source   string `yaml:"source"`
}

// FormatExport formats a markdown rendition with YAML frontmatter naming
// the filing it came from.
func FormatExport(key edgarscan.FilingKey, source, content string) (string, error) {
	header, err := yaml.Marshal(Frontmatter{
		CIK:      key.CIK,
		FileType: key.FileType,
		Date:     key.Date,
		Source:   source,
	})
	if err != nil {
		return "", edgarscan.Errorf(edgarscan.EINTERNAL, "encode frontmatter: %v", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(content)
	return b.String(), nil
}

// MarkdownWriter writes sanitised markdown renditions of extracted markup
// documents next to the documents themselves.
type MarkdownWriter struct {
	Sanitizer edgarscan.Sanitizer
	Converter edgarscan.Converter
}

// WriteMarkdown renders the markup document at path and writes it to the
// same location with a .md extension. Returns the written path, or "" when
// path is not a markup document.
func (w *MarkdownWriter) WriteMarkdown(key edgarscan.FilingKey, path string) (string, error) {
	if edgarscan.ClassifyFilename(path) != edgarscan.DocumentMarkup {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", edgarscan.Errorf(edgarscan.ESTORAGE, "read %s: %v", path, err)
	}

	html := w.Sanitizer.Sanitize(DocumentBody(string(data)))
	md, err := w.Converter.Convert(html)
	if err != nil {
		return "", err
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".md"
	content, err := FormatExport(key, filepath.Base(path), md)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, []byte(content), 0644); err != nil {
		return "", edgarscan.Errorf(edgarscan.ESTORAGE, "write %s: %v", out, err)
	}
	return out, nil
}

// DocumentBody returns the content between the <TEXT> and </TEXT> lines of
// a captured sub-document, or the whole input when it has no text block.
func DocumentBody(content string) string {
	start := strings.Index(content, "<TEXT>")
	if start < 0 {
		return content
	}
	body := content[start+len("<TEXT>"):]
	if end := strings.LastIndex(body, "</TEXT>"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
