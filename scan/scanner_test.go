package scan_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/fs"
	"github.com/fwojciec/edgarscan/goquery"
	"github.com/fwojciec/edgarscan/gzip"
	"github.com/fwojciec/edgarscan/mock"
	"github.com/fwojciec/edgarscan/scan"
	"github.com/fwojciec/edgarscan/sgml"
	"github.com/fwojciec/edgarscan/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filingHeader = `<SEC-DOCUMENT>0000099780-20-000008.txt : 20200115
<SEC-HEADER>0000099780-20-000008.hdr.sgml : 20200115
ACCESSION NUMBER:		0000099780-20-000008
CONFORMED SUBMISSION TYPE:	8-K
PUBLIC DOCUMENT COUNT:		2
CONFORMED PERIOD OF REPORT:	20200114
ITEM INFORMATION:		Entry into a Material Definitive Agreement
ITEM INFORMATION:		Financial Statements and Exhibits
FILED AS OF DATE:		20200115

FILER:

	COMPANY DATA:	
		COMPANY CONFORMED NAME:			TRINITY INDUSTRIES INC
		CENTRAL INDEX KEY:			0000099780

	BUSINESS ADDRESS:	
		STREET 1:		14221 N. DALLAS PARKWAY
		CITY:			DALLAS
		STATE:			TX
		ZIP:			75254
		BUSINESS PHONE:		2146314420

	MAIL ADDRESS:	
		STATE:			NY
		ZIP:			10001
</SEC-HEADER>
`

func loanFiling(body string) string {
	return filingHeader +
		"<DOCUMENT>\n<TYPE>8-K\n<SEQUENCE>1\n<FILENAME>doc1.txt\n<TEXT>\n" + body + "\n</TEXT>\n</DOCUMENT>\n" +
		"<DOCUMENT>\n<TYPE>EX-101.INS\n<SEQUENCE>2\n<FILENAME>instance.xml\n<TEXT>\n<xbrl>CREDIT AGREEMENT</xbrl>\n</TEXT>\n</DOCUMENT>\n" +
		"</SEC-DOCUMENT>\n"
}

// storeFiling writes content to the layout path of key.
func storeFiling(t *testing.T, layout *fs.Layout, key edgarscan.FilingKey, content string) {
	t.Helper()
	require.NoError(t, gzip.WriteFile(layout.Path(key), strings.NewReader(content)))
}

var trinity = edgarscan.FilingKey{CIK: "99780", FileType: "8-K", Date: "2020-01-15"}

func headerScanners(layout *fs.Layout) []edgarscan.EntityScanner {
	opener := gzip.NewOpener()
	return []edgarscan.EntityScanner{
		&scan.EventDateScanner{Store: layout, Opener: opener},
		&scan.ItemScanner{Store: layout, Opener: opener},
		&scan.ZipcodeScanner{Store: layout, Opener: opener},
	}
}

func TestHeaderScanners(t *testing.T) {
	t.Parallel()

	layout := fs.NewLayout(t.TempDir())
	storeFiling(t, layout, trinity, loanFiling("body"))
	scanners := headerScanners(layout)

	t.Run("event date", func(t *testing.T) {
		t.Parallel()

		results, err := scanners[0].ScanEntity(context.Background(), "99780", "8-K")

		require.NoError(t, err)
		assert.Equal(t, []edgarscan.Result{{Key: trinity, Values: []any{"2020-01-14"}}}, results)
	})

	t.Run("items", func(t *testing.T) {
		t.Parallel()

		results, err := scanners[1].ScanEntity(context.Background(), "99780", "8-K")

		require.NoError(t, err)
		assert.Equal(t, []edgarscan.Result{
			{Key: trinity, Values: []any{"ENTRY INTO A MATERIAL DEFINITIVE AGREEMENT"}},
			{Key: trinity, Values: []any{"FINANCIAL STATEMENTS AND EXHIBITS"}},
		}, results)
	})

	t.Run("zipcode", func(t *testing.T) {
		t.Parallel()

		results, err := scanners[2].ScanEntity(context.Background(), "99780", "8-K")

		require.NoError(t, err)
		assert.Equal(t, []edgarscan.Result{{Key: trinity, Values: []any{"TX", "75254"}}}, results)
	})

	t.Run("entity without filings yields no results", func(t *testing.T) {
		t.Parallel()

		results, err := scanners[0].ScanEntity(context.Background(), "99780", "10-K")

		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestHeaderScanners_CorruptArchive(t *testing.T) {
	t.Parallel()

	layout := fs.NewLayout(t.TempDir())
	path := layout.Path(trinity)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0644))

	_, err := headerScanners(layout)[0].ScanEntity(context.Background(), "99780", "8-K")

	assert.Equal(t, edgarscan.ESTORAGE, edgarscan.ErrorCode(err))
}

func newLoanScanner(layout *fs.Layout, dir string) *scan.LoanScanner {
	return &scan.LoanScanner{
		Store:     layout,
		Extractor: &sgml.Extractor{Opener: gzip.NewOpener(), Dir: dir},
		Matcher:   goquery.NewMatcher(),
	}
}

func TestLoanScanner_ScanEntity(t *testing.T) {
	t.Parallel()

	t.Run("flags filing with loan phrase and removes transient files", func(t *testing.T) {
		t.Parallel()

		layout := fs.NewLayout(t.TempDir())
		storeFiling(t, layout, trinity, loanFiling("The Company entered into a CREDIT AGREEMENT."))
		other := edgarscan.FilingKey{CIK: "99780", FileType: "8-K", Date: "2021-03-01"}
		storeFiling(t, layout, other, loanFiling("Results of operations."))
		dir := t.TempDir()

		results, err := newLoanScanner(layout, dir).ScanEntity(context.Background(), "99780", "8-K")

		require.NoError(t, err)
		assert.Equal(t, []edgarscan.Result{
			{Key: trinity, Values: []any{edgarscan.LoanTrue}},
			{Key: other, Values: []any{edgarscan.LoanFalse}},
		}, results)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("ignores loan phrase in excluded document types", func(t *testing.T) {
		t.Parallel()

		layout := fs.NewLayout(t.TempDir())
		storeFiling(t, layout, trinity, loanFiling("nothing to see"))

		results, err := newLoanScanner(layout, t.TempDir()).ScanEntity(context.Background(), "99780", "8-K")

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, edgarscan.LoanFalse, results[0].Values[0])
	})

	t.Run("stops matching at first hit", func(t *testing.T) {
		t.Parallel()

		var matched []string
		s := &scan.LoanScanner{
			Store: &mock.FilingStore{FilingsFn: func(cik, fileType string) ([]edgarscan.Filing, error) {
				return []edgarscan.Filing{{Key: trinity, Path: "unused"}}, nil
			}},
			Extractor: &mock.DocumentExtractor{ExtractFn: func(context.Context, edgarscan.FilingKey, string) ([]string, error) {
				return []string{"a.txt", "b.htm", "c.htm"}, nil
			}},
			Matcher: &mock.ContentMatcher{MatchFn: func(path string) (bool, error) {
				matched = append(matched, path)
				return path == "b.htm", nil
			}},
		}

		results, err := s.ScanEntity(context.Background(), "99780", "8-K")

		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.htm"}, matched)
		assert.Equal(t, edgarscan.LoanTrue, results[0].Values[0])
	})

	t.Run("returns extraction failure", func(t *testing.T) {
		t.Parallel()

		s := &scan.LoanScanner{
			Store: &mock.FilingStore{FilingsFn: func(cik, fileType string) ([]edgarscan.Filing, error) {
				return []edgarscan.Filing{{Key: trinity, Path: "unused"}}, nil
			}},
			Extractor: &mock.DocumentExtractor{ExtractFn: func(context.Context, edgarscan.FilingKey, string) ([]string, error) {
				return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "corrupt archive")
			}},
		}

		_, err := s.ScanEntity(context.Background(), "99780", "8-K")

		assert.Equal(t, edgarscan.ESTORAGE, edgarscan.ErrorCode(err))
	})
}

func setupDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(sqlite.Memory)
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitLoanRows(t *testing.T) {
	t.Parallel()

	layout := fs.NewLayout(t.TempDir())
	storeFiling(t, layout, trinity, loanFiling("body"))
	storeFiling(t, layout, edgarscan.FilingKey{CIK: "1750", FileType: "8-K", Date: "2019-07-01"}, loanFiling("body"))
	storeFiling(t, layout, edgarscan.FilingKey{CIK: "1750", FileType: "10-K", Date: "2019-07-01"}, loanFiling("body"))

	db := setupDB(t)
	results := sqlite.NewResultService(db)
	ctx := context.Background()

	n, err := scan.InitLoanRows(ctx, layout, results, "8-K")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var nulls int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM files_with_loan_contracts WHERE has_loan IS NULL AND file_type = '8-K'").Scan(&nulls))
	assert.Equal(t, 2, nulls)

	processed, err := results.ProcessedEntities(ctx, edgarscan.KindLoans, "8-K")
	require.NoError(t, err)
	assert.Empty(t, processed)
}

func TestFindLoans_EndToEnd(t *testing.T) {
	t.Parallel()

	layout := fs.NewLayout(t.TempDir())
	storeFiling(t, layout, trinity, loanFiling("The Company entered into a CREDIT AGREEMENT."))

	db := setupDB(t)
	results := sqlite.NewResultService(db)
	ctx := context.Background()

	_, err := scan.InitLoanRows(ctx, layout, results, "8-K")
	require.NoError(t, err)

	c := &scan.Coordinator{Store: layout, Results: results, Threads: 2}
	summary, err := c.Run(ctx, scan.Request{
		Scanner:  newLoanScanner(layout, t.TempDir()),
		FileType: "8-K",
		Resume:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)

	var cik, fileType, date string
	var hasLoan sql.NullString
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT cik, file_type, date, has_loan FROM files_with_loan_contracts").Scan(&cik, &fileType, &date, &hasLoan))
	assert.Equal(t, []string{"99780", "8-K", "2020-01-15", "TRUE"}, []string{cik, fileType, date, hasLoan.String})

	// A second run skips the entity already flagged.
	summary, err = c.Run(ctx, scan.Request{
		Scanner:  newLoanScanner(layout, t.TempDir()),
		FileType: "8-K",
		Resume:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Completed)
}

func TestFindItems_EndToEnd(t *testing.T) {
	t.Parallel()

	layout := fs.NewLayout(t.TempDir())
	storeFiling(t, layout, trinity, loanFiling("body"))

	db := setupDB(t)
	ctx := context.Background()
	c := &scan.Coordinator{Store: layout, Results: sqlite.NewResultService(db)}
	scanner := &scan.ItemScanner{Store: layout, Opener: gzip.NewOpener()}

	for range 2 {
		_, err := c.Run(ctx, scan.Request{Scanner: scanner, FileType: "8-K"})
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files_all_items").Scan(&n))
	assert.Equal(t, 2, n)
}
