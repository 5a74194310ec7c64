package sgml_test

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/sgml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineReader struct{ s *bufio.Scanner }

func (r *lineReader) Next() bool    { return r.s.Scan() }
func (r *lineReader) Text() string  { return r.s.Text() }
func (r *lineReader) Bytes() []byte { return r.s.Bytes() }
func (r *lineReader) Err() error    { return r.s.Err() }

func lines(s string) edgarscan.LineReader {
	return &lineReader{s: bufio.NewScanner(strings.NewReader(s))}
}

func document(typ, filename, body string) string {
	return fmt.Sprintf("<DOCUMENT>\n<TYPE>%s\n<SEQUENCE>1\n<FILENAME>%s\n<TEXT>\n%s\n</TEXT>\n</DOCUMENT>\n", typ, filename, body)
}

func filing(count string, docs ...string) string {
	var b strings.Builder
	b.WriteString("<SEC-DOCUMENT>0000099780-20-000008.txt : 20200115\n<SEC-HEADER>\n")
	if count != "" {
		b.WriteString("PUBLIC DOCUMENT COUNT:\t\t" + count + "\n")
	}
	b.WriteString("CONFORMED PERIOD OF REPORT:\t20200115\n</SEC-HEADER>\n")
	for _, d := range docs {
		b.WriteString(d)
	}
	b.WriteString("</SEC-DOCUMENT>\n")
	return b.String()
}

func filenames(docs []edgarscan.SubDocument) []string {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Filename)
	}
	return names
}

func TestSplit(t *testing.T) {
	t.Parallel()

	t.Run("retains text document and excludes xml", func(t *testing.T) {
		t.Parallel()

		input := filing("2",
			document("8-K", "doc1.txt", "The company entered into a CREDIT AGREEMENT."),
			document("EX-101.INS", "instance.xml", "<xbrl></xbrl>"),
		)

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Declared)
		assert.Equal(t, 2, result.Delimited)
		require.Len(t, result.Documents, 1)
		doc := result.Documents[0]
		assert.Equal(t, 1, doc.Ordinal)
		assert.Equal(t, "doc1.txt", doc.Filename)
		assert.Equal(t, edgarscan.DocumentText, doc.Type)
		assert.Contains(t, string(doc.Content), "CREDIT AGREEMENT")
		assert.True(t, strings.HasPrefix(string(doc.Content), "<DOCUMENT>\n"))
		assert.True(t, strings.HasSuffix(string(doc.Content), "</DOCUMENT>\n"))
		assert.Empty(t, result.Warnings)
	})

	t.Run("returns all documents when every block is text or markup", func(t *testing.T) {
		t.Parallel()

		input := filing("3",
			document("10-K", "form10k.htm", "<p>Annual report</p>"),
			document("EX-10.1", "EX10-1.HTML", "<p>Exhibit</p>"),
			document("EX-99", "ex99.txt", "press release"),
		)

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		require.Len(t, result.Documents, 3)
		assert.Equal(t, []string{"form10k.htm", "ex10-1.html", "ex99.txt"}, filenames(result.Documents))
		assert.Equal(t, edgarscan.DocumentMarkup, result.Documents[1].Type)
		assert.Equal(t, 3, result.Documents[2].Ordinal)
	})

	t.Run("never returns more than the declared count", func(t *testing.T) {
		t.Parallel()

		input := filing("1",
			document("8-K", "a.txt", "first"),
			document("EX-99", "b.txt", "second"),
		)

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt"}, filenames(result.Documents))
		assert.Equal(t, 2, result.Delimited)
		assert.Contains(t, result.Warnings, "declared 1 documents, found 2")
	})

	t.Run("drops documents with empty body", func(t *testing.T) {
		t.Parallel()

		input := filing("3",
			"<DOCUMENT>\n<TYPE>8-K\n<SEQUENCE>1\n<FILENAME>empty.txt\n<TEXT>\n</TEXT>\n</DOCUMENT>\n",
			"<DOCUMENT>\n<TYPE>EX-10\n<FILENAME>bare.htm\n<DESCRIPTION>EXHIBIT 10\n</DOCUMENT>\n",
			document("EX-99", "full.txt", "content"),
		)

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"full.txt"}, filenames(result.Documents))
	})

	t.Run("retains document whose text shares a line with its tags", func(t *testing.T) {
		t.Parallel()

		input := filing("2",
			"<DOCUMENT>\n<TYPE>EX-10.1\n<SEQUENCE>1\n<FILENAME>ex10.txt\n<TEXT>CREDIT AGREEMENT dated as of January 1\n</DOCUMENT>\n",
			"<DOCUMENT>\n<TYPE>EX-99\n<SEQUENCE>2\n<FILENAME>ex99.txt\n<TEXT>\npress release</TEXT>\n</DOCUMENT>\n",
		)

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		require.Equal(t, []string{"ex10.txt", "ex99.txt"}, filenames(result.Documents))
		assert.Contains(t, string(result.Documents[0].Content), "<TEXT>CREDIT AGREEMENT dated as of January 1")
		assert.Empty(t, result.Warnings)
	})

	t.Run("retains document whose body is only whitespace", func(t *testing.T) {
		t.Parallel()

		input := filing("1", document("8-K", "blank.txt", "   \n"))

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		require.Len(t, result.Documents, 1)
		assert.Positive(t, result.Documents[0].BodySize)
	})

	t.Run("excludes images and binary payloads", func(t *testing.T) {
		t.Parallel()

		input := filing("3",
			document("GRAPHIC", "logo.jpg", "begin 644 logo.jpg\nM_]C_X``02D9)1@`!`0$`8`!@``#_VP!#``@&!@<&!0@'!P<)\nend"),
			document("GRAPHIC", "chart.png", "binary"),
			document("8-K", "d8k.htm", "<html>body</html>"),
		)

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		require.Len(t, result.Documents, 1)
		assert.Equal(t, "d8k.htm", result.Documents[0].Filename)
		assert.Equal(t, 3, result.Documents[0].Ordinal)
	})

	t.Run("excludes document without declared filename", func(t *testing.T) {
		t.Parallel()

		input := filing("1", "<DOCUMENT>\n<TYPE>8-K\n<TEXT>\nbody\n</TEXT>\n</DOCUMENT>\n")

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Empty(t, result.Documents)
		assert.Contains(t, result.Warnings, "document 1: no declared filename")
	})

	t.Run("defaults count to one when header is missing", func(t *testing.T) {
		t.Parallel()

		input := filing("",
			document("8-K", "a.txt", "first"),
			document("EX-99", "b.txt", "second"),
		)

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Equal(t, 1, result.Declared)
		assert.Equal(t, []string{"a.txt"}, filenames(result.Documents))
		assert.Contains(t, result.Warnings, "missing PUBLIC DOCUMENT COUNT")
	})

	t.Run("defaults count to one when header is malformed", func(t *testing.T) {
		t.Parallel()

		input := filing("two", document("8-K", "a.txt", "first"))

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Equal(t, 1, result.Declared)
		assert.Equal(t, []string{"a.txt"}, filenames(result.Documents))
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "malformed")
	})

	t.Run("parses count with embedded spaces", func(t *testing.T) {
		t.Parallel()

		input := filing("1 0")

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Equal(t, 10, result.Declared)
	})

	t.Run("returns empty sequence for zero declared documents", func(t *testing.T) {
		t.Parallel()

		result, err := sgml.Split(lines(filing("0")))
		require.NoError(t, err)

		assert.Empty(t, result.Documents)
		assert.Equal(t, 0, result.Delimited)
		assert.Empty(t, result.Warnings)
	})

	t.Run("returns empty sequence when no documents are found", func(t *testing.T) {
		t.Parallel()

		result, err := sgml.Split(lines(filing("2")))
		require.NoError(t, err)

		assert.Empty(t, result.Documents)
		assert.Contains(t, result.Warnings, "declared 2 documents, found 0")
	})

	t.Run("closes out document at premature end of stream", func(t *testing.T) {
		t.Parallel()

		input := "PUBLIC DOCUMENT COUNT: 1\n<DOCUMENT>\n<FILENAME>cut.txt\n<TEXT>\npartial content"

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		require.Len(t, result.Documents, 1)
		assert.Contains(t, string(result.Documents[0].Content), "partial content")
		assert.Contains(t, result.Warnings, "document 1: premature end of stream")
	})

	t.Run("ignores stray closing marker", func(t *testing.T) {
		t.Parallel()

		input := filing("1", "</DOCUMENT>\n"+document("8-K", "a.txt", "body"))

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt"}, filenames(result.Documents))
	})

	t.Run("splits unclosed document at next opening marker", func(t *testing.T) {
		t.Parallel()

		input := "PUBLIC DOCUMENT COUNT: 2\n" +
			"<DOCUMENT>\n<FILENAME>a.txt\n<TEXT>\nfirst\n" +
			document("EX-99", "b.txt", "second")

		result, err := sgml.Split(lines(input))
		require.NoError(t, err)

		require.Equal(t, []string{"a.txt", "b.txt"}, filenames(result.Documents))
		assert.NotContains(t, string(result.Documents[0].Content), "second")
	})
}
