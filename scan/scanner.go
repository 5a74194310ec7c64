package scan

import (
	"context"
	"os"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/header"
)

// headerFunc turns the header of one filing into result tuples.
type headerFunc func(key edgarscan.FilingKey, r edgarscan.LineReader) []edgarscan.Result

// scanHeaders opens every filing of one entity and applies fn to its line
// stream. An unreadable filing fails the whole entity.
func scanHeaders(ctx context.Context, store edgarscan.FilingStore, opener edgarscan.ArchiveOpener, cik, fileType string, fn headerFunc) ([]edgarscan.Result, error) {
	filings, err := store.Filings(cik, fileType)
	if err != nil {
		return nil, err
	}

	var results []edgarscan.Result
	for _, f := range filings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		archive, err := opener.OpenArchive(f.Path)
		if err != nil {
			return nil, err
		}
		rows := fn(f.Key, archive)
		err = archive.Err()
		archive.Close()
		if err != nil {
			return nil, err
		}
		results = append(results, rows...)
	}
	return results, nil
}

// Ensure scanners implement edgarscan.EntityScanner at compile time.
var (
	_ edgarscan.EntityScanner = (*EventDateScanner)(nil)
	_ edgarscan.EntityScanner = (*ItemScanner)(nil)
	_ edgarscan.EntityScanner = (*ZipcodeScanner)(nil)
	_ edgarscan.EntityScanner = (*LoanScanner)(nil)
)

// EventDateScanner records the conformed period of report of each filing.
// Filings without a usable date yield "".
type EventDateScanner struct {
	Store  edgarscan.FilingStore
	Opener edgarscan.ArchiveOpener
}

func (s *EventDateScanner) Kind() edgarscan.ScanKind { return edgarscan.KindEventDate }

func (s *EventDateScanner) ScanEntity(ctx context.Context, cik, fileType string) ([]edgarscan.Result, error) {
	return scanHeaders(ctx, s.Store, s.Opener, cik, fileType, func(key edgarscan.FilingKey, r edgarscan.LineReader) []edgarscan.Result {
		return []edgarscan.Result{{Key: key, Values: []any{header.PeriodOfReport(r)}}}
	})
}

// ItemScanner records one tuple per reported item of each filing.
type ItemScanner struct {
	Store  edgarscan.FilingStore
	Opener edgarscan.ArchiveOpener
}

func (s *ItemScanner) Kind() edgarscan.ScanKind { return edgarscan.KindItems }

func (s *ItemScanner) ScanEntity(ctx context.Context, cik, fileType string) ([]edgarscan.Result, error) {
	return scanHeaders(ctx, s.Store, s.Opener, cik, fileType, func(key edgarscan.FilingKey, r edgarscan.LineReader) []edgarscan.Result {
		var rows []edgarscan.Result
		for _, item := range header.Items(r) {
			rows = append(rows, edgarscan.Result{Key: key, Values: []any{item}})
		}
		return rows
	})
}

// ZipcodeScanner records the business address state and zip code of each
// filing.
type ZipcodeScanner struct {
	Store  edgarscan.FilingStore
	Opener edgarscan.ArchiveOpener
}

func (s *ZipcodeScanner) Kind() edgarscan.ScanKind { return edgarscan.KindZipcode }

func (s *ZipcodeScanner) ScanEntity(ctx context.Context, cik, fileType string) ([]edgarscan.Result, error) {
	return scanHeaders(ctx, s.Store, s.Opener, cik, fileType, func(key edgarscan.FilingKey, r edgarscan.LineReader) []edgarscan.Result {
		state, zip := header.BusinessAddress(r)
		return []edgarscan.Result{{Key: key, Values: []any{state, zip}}}
	})
}

// LoanScanner flags filings with at least one sub-document mentioning a
// loan contract. Sub-documents are extracted to transient files, tested in
// document order until the first hit and removed afterwards.
type LoanScanner struct {
	Store     edgarscan.FilingStore
	Extractor edgarscan.DocumentExtractor
	Matcher   edgarscan.ContentMatcher
}

func (s *LoanScanner) Kind() edgarscan.ScanKind { return edgarscan.KindLoans }

func (s *LoanScanner) ScanEntity(ctx context.Context, cik, fileType string) ([]edgarscan.Result, error) {
	filings, err := s.Store.Filings(cik, fileType)
	if err != nil {
		return nil, err
	}

	results := make([]edgarscan.Result, 0, len(filings))
	for _, f := range filings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := s.scanFiling(ctx, f)
		if err != nil {
			return nil, err
		}
		value := edgarscan.LoanFalse
		if found {
			value = edgarscan.LoanTrue
		}
		results = append(results, edgarscan.Result{Key: f.Key, Values: []any{value}})
	}
	return results, nil
}

func (s *LoanScanner) scanFiling(ctx context.Context, f edgarscan.Filing) (bool, error) {
	paths, err := s.Extractor.Extract(ctx, f.Key, f.Path)
	if err != nil {
		return false, err
	}
	defer func() {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}()

	for _, p := range paths {
		ok, err := s.Matcher.Match(p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// InitLoanRows records every stored filing of fileType in the loan table
// with a NULL flag, leaving existing rows untouched. It returns the number
// of filings seen.
func InitLoanRows(ctx context.Context, store edgarscan.FilingStore, results edgarscan.ResultService, fileType string) (int, error) {
	if err := results.EnsureTable(ctx, edgarscan.KindLoans); err != nil {
		return 0, err
	}

	ciks, err := store.Entities()
	if err != nil {
		return 0, err
	}

	var n int
	for _, cik := range ciks {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		filings, err := store.Filings(cik, fileType)
		if err != nil {
			return n, err
		}
		if len(filings) == 0 {
			continue
		}
		rows := make([]edgarscan.Result, 0, len(filings))
		for _, f := range filings {
			rows = append(rows, edgarscan.Result{Key: f.Key, Values: []any{nil}})
		}
		if err := results.UpsertResults(ctx, edgarscan.KindLoans, edgarscan.InsertIfAbsent, rows); err != nil {
			return n, err
		}
		n += len(rows)
	}
	return n, nil
}
