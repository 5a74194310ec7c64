// Package sgml splits EDGAR filing containers into their sub-documents.
//
// A filing is a flat pseudo-SGML stream: a header declaring the number of
// documents followed by <DOCUMENT> ... </DOCUMENT> blocks, each declaring
// its filename in a <FILENAME> line. There is no offset index, so blocks
// are delimited by scanning for marker lines.
package sgml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/header"
)

// Container markers.
const (
	MarkerOpen     = "<DOCUMENT>"
	MarkerClose    = "</DOCUMENT>"
	MarkerFilename = "<FILENAME>"
)

// Content wrapper tags. Text may share a line with either tag.
const (
	tagText      = "<TEXT>"
	tagTextClose = "</TEXT>"
)

// metadataMarkers prefix lines that describe a document rather than
// carry its content.
var metadataMarkers = []string{
	MarkerOpen, MarkerClose, MarkerFilename,
	"<TYPE>", "<SEQUENCE>", "<DESCRIPTION>",
}

// SplitResult holds the outcome of splitting one filing.
type SplitResult struct {
	// Declared is the document count the splitter worked with: the header
	// value, or 1 when the header is absent or malformed.
	Declared int

	// Delimited is the number of document blocks found, including ones
	// beyond the declared count that were not extracted.
	Delimited int

	// Documents holds the retained text and markup sub-documents in
	// document order.
	Documents []edgarscan.SubDocument

	// Warnings lists soft anomalies found while splitting.
	Warnings []string
}

func (r *SplitResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Split reads a filing line stream and returns its retained sub-documents.
// Malformed containers never fail: the returned error only reflects
// failures of the underlying reader.
func Split(r edgarscan.LineReader) (*SplitResult, error) {
	s := &splitter{r: r, result: &SplitResult{}}
	s.run()
	if err := r.Err(); err != nil {
		return s.result, err
	}
	return s.result, nil
}

type splitter struct {
	r      edgarscan.LineReader
	result *SplitResult

	// pending is set when an opening marker was consumed while looking
	// for something else and must start the next document.
	pending bool
	eof     bool
}

func (s *splitter) next() (string, bool) {
	if s.eof {
		return "", false
	}
	if !s.r.Next() {
		s.eof = true
		return "", false
	}
	return s.r.Text(), true
}

func (s *splitter) run() {
	s.readCount()

	for ordinal := 1; ordinal <= s.result.Declared; ordinal++ {
		if !s.seekOpen() {
			break
		}
		s.result.Delimited++
		doc, complete := s.capture(ordinal)
		if !complete {
			s.result.warnf("document %d: premature end of stream", ordinal)
		}
		s.retain(doc)
	}

	// Count blocks past the declared number so mismatches are reported.
	for s.seekOpen() {
		s.result.Delimited++
		s.pending = false
	}

	if s.result.Delimited != s.result.Declared {
		s.result.warnf("declared %d documents, found %d", s.result.Declared, s.result.Delimited)
	}
}

// readCount scans the header for the declared document count. The scan
// stops at the first opening marker since documents follow the header.
func (s *splitter) readCount() {
	for {
		line, ok := s.next()
		if !ok {
			s.result.Declared = 1
			s.result.warnf("missing %s", header.LabelDocumentCount)
			return
		}
		if isMarker(line, MarkerOpen) {
			s.pending = true
			s.result.Declared = 1
			s.result.warnf("missing %s", header.LabelDocumentCount)
			return
		}
		if _, found := header.MatchLabel(line, header.LabelDocumentCount); found {
			n, ok := header.ParseDocumentCount(line)
			if !ok {
				s.result.Declared = 1
				s.result.warnf("malformed %s %q", header.LabelDocumentCount, line)
				return
			}
			s.result.Declared = n
			return
		}
	}
}

// seekOpen advances to the next opening marker. Stray closing markers are
// ignored.
func (s *splitter) seekOpen() bool {
	if s.pending {
		return true
	}
	for {
		line, ok := s.next()
		if !ok {
			return false
		}
		if isMarker(line, MarkerOpen) {
			s.pending = true
			return true
		}
	}
}

// capture reads one document starting at a consumed opening marker. It
// reports whether the document ended with a closing marker.
func (s *splitter) capture(ordinal int) (edgarscan.SubDocument, bool) {
	s.pending = false

	doc := edgarscan.SubDocument{Ordinal: ordinal}
	var buf bytes.Buffer
	buf.WriteString(MarkerOpen)
	buf.WriteByte('\n')

	declared := false
	discard := false
	for {
		line, ok := s.next()
		if !ok {
			doc.Content = contentOf(&buf, discard)
			return doc, false
		}

		if isMarker(line, MarkerOpen) {
			// An unclosed document runs into the next one.
			s.pending = true
			doc.Content = contentOf(&buf, discard)
			return doc, false
		}

		if !discard {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}

		if isMarker(line, MarkerClose) {
			doc.Content = contentOf(&buf, discard)
			return doc, true
		}

		if !declared && strings.HasPrefix(strings.TrimSpace(line), MarkerFilename) {
			declared = true
			doc.Filename = parseFilename(line)
			doc.Type = edgarscan.ClassifyFilename(doc.Filename)
			if doc.Type == edgarscan.DocumentUnknown {
				discard = true
				buf.Reset()
			}
			continue
		}

		doc.BodySize += contentSize(line)
	}
}

func contentOf(buf *bytes.Buffer, discard bool) []byte {
	if discard {
		return nil
	}
	return buf.Bytes()
}

// retain appends doc to the result when it is a non-empty text or markup
// document with a declared filename.
func (s *splitter) retain(doc edgarscan.SubDocument) {
	switch {
	case doc.Filename == "":
		s.result.warnf("document %d: no declared filename", doc.Ordinal)
	case doc.Type == edgarscan.DocumentUnknown:
	case doc.BodySize == 0:
	default:
		s.result.Documents = append(s.result.Documents, doc)
	}
}

func isMarker(line, marker string) bool {
	return strings.TrimSpace(line) == marker
}

// contentSize returns the captured bytes a line adds to the document
// body, terminator included. Metadata lines add nothing; a wrapper tag
// line adds only the text beside the tag.
func contentSize(line string) int {
	trimmed := strings.TrimSpace(line)
	for _, m := range metadataMarkers {
		if strings.HasPrefix(trimmed, m) {
			return 0
		}
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(trimmed, tagText), tagTextClose)
	if rest != trimmed {
		if rest == "" {
			return 0
		}
		return len(rest) + 1
	}
	return len(line) + 1
}

// parseFilename returns the lower-cased token after the filename marker.
func parseFilename(line string) string {
	rest := strings.TrimPrefix(strings.TrimSpace(line), MarkerFilename)
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
