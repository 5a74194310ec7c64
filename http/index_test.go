package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/edgarscan"
	edgarhttp "github.com/fwojciec/edgarscan/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterIndex = `Description:           Master Index of EDGAR Dissemination Feed
Last Data Received:    March 31, 2020
Comments:              webmaster@sec.gov
Anonymous FTP:         ftp://ftp.sec.gov/edgar/
 
 
 
 
CIK|Company Name|Form Type|Date Filed|Filename
--------------------------------------------------------------------------------
1000045|NICHOLAS FINANCIAL INC|10-Q|2020-02-14|edgar/data/1000045/0001564590-20-005148.txt
99780|TRINITY INDUSTRIES INC|8-K|2020-01-15|edgar/data/99780/0000099780-20-000008.txt
`

type indexServer struct {
	mu        sync.Mutex
	requested []string
}

func (s *indexServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requested = append(s.requested, r.URL.Path)
		s.mu.Unlock()
		_, _ = w.Write([]byte(masterIndex))
	}))
	t.Cleanup(server.Close)
	return server
}

func (s *indexServer) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requested...)
}

func clock(year int, month time.Month) func() time.Time {
	return func() time.Time { return time.Date(year, month, 10, 0, 0, 0, 0, time.UTC) }
}

func TestDownloader_DownloadIndex(t *testing.T) {
	t.Parallel()

	t.Run("fetches every quarter through the current one", func(t *testing.T) {
		t.Parallel()

		srv := &indexServer{}
		server := srv.start(t)
		dir := t.TempDir()
		d := edgarhttp.NewDownloader(
			edgarhttp.WithBaseURL(server.URL+"/"),
			edgarhttp.WithClock(clock(2021, time.May)),
			edgarhttp.WithRate(1000),
		)

		paths, err := d.DownloadIndex(context.Background(), dir, 2020)

		require.NoError(t, err)
		assert.Len(t, paths, 6)
		requested := srv.paths()
		require.Len(t, requested, 6)
		assert.Equal(t, "/edgar/full-index/2020/QTR1/master.idx", requested[0])
		assert.Equal(t, "/edgar/full-index/2021/QTR2/master.idx", requested[5])
		assert.FileExists(t, filepath.Join(dir, "2021-QTR2.idx"))

		data, err := os.ReadFile(paths[0])
		require.NoError(t, err)
		assert.Equal(t, masterIndex, string(data))
	})

	t.Run("refreshes only the current quarter on rerun", func(t *testing.T) {
		t.Parallel()

		srv := &indexServer{}
		server := srv.start(t)
		dir := t.TempDir()
		d := edgarhttp.NewDownloader(
			edgarhttp.WithBaseURL(server.URL+"/"),
			edgarhttp.WithClock(clock(2021, time.May)),
			edgarhttp.WithRate(1000),
		)

		_, err := d.DownloadIndex(context.Background(), dir, 2020)
		require.NoError(t, err)

		paths, err := d.DownloadIndex(context.Background(), dir, 2020)

		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "2021-QTR2.idx")}, paths)
	})

	t.Run("starts no earlier than 1994", func(t *testing.T) {
		t.Parallel()

		srv := &indexServer{}
		server := srv.start(t)
		d := edgarhttp.NewDownloader(
			edgarhttp.WithBaseURL(server.URL+"/"),
			edgarhttp.WithClock(clock(1994, time.February)),
		)

		paths, err := d.DownloadIndex(context.Background(), t.TempDir(), 1980)

		require.NoError(t, err)
		assert.Len(t, paths, 1)
		assert.Equal(t, []string{"/edgar/full-index/1994/QTR1/master.idx"}, srv.paths())
	})
}

func TestParseIndex(t *testing.T) {
	t.Parallel()

	t.Run("parses master index rows and skips header", func(t *testing.T) {
		t.Parallel()

		entries, err := edgarhttp.ParseIndex(strings.NewReader(masterIndex), edgarhttp.DefaultBaseURL)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, &edgarscan.IndexEntry{
			CIK:      "99780",
			FirmName: "TRINITY INDUSTRIES INC",
			FileType: "8-K",
			Date:     "2020-01-15",
			URL:      "https://www.sec.gov/Archives/edgar/data/99780/0000099780-20-000008.txt",
		}, entries[1])
	})

	t.Run("ignores fields past the fifth", func(t *testing.T) {
		t.Parallel()

		line := "99780|TRINITY INDUSTRIES INC|8-K|2020-01-15|edgar/data/99780/0000099780-20-000008.txt|edgar/data/99780/0000099780-20-000008-index.html"

		e, ok := edgarhttp.ParseIndexLine(line, edgarhttp.DefaultBaseURL)

		require.True(t, ok)
		assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/99780/0000099780-20-000008.txt", e.URL)
	})

	t.Run("rejects malformed rows", func(t *testing.T) {
		t.Parallel()

		for _, line := range []string{
			"",
			"CIK|Company Name|Form Type|Date Filed|Filename",
			"99780|TRINITY|8-K|20200115|edgar/data/x.txt",
			"99780|TRINITY|8-K|2020-01-15",
			"99780|TRINITY||2020-01-15|edgar/data/x.txt",
		} {
			_, ok := edgarhttp.ParseIndexLine(line, edgarhttp.DefaultBaseURL)
			assert.False(t, ok, line)
		}
	})
}
