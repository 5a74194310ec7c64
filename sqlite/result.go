package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/edgarscan"
)

// Compile-time interface verification.
var _ edgarscan.ResultService = (*ResultService)(nil)

// ResultService implements edgarscan.ResultService using SQLite.
// Every scan kind writes to its own table keyed by (cik, file_type, date)
// plus the kind's discriminator column.
type ResultService struct {
	db *DB
}

// NewResultService creates a new ResultService.
func NewResultService(db *DB) *ResultService {
	return &ResultService{db: db}
}

// EnsureTable creates the destination table of kind if it does not exist.
func (s *ResultService) EnsureTable(ctx context.Context, kind edgarscan.ScanKind) error {
	def, err := edgarscan.LookupScanSpec(kind)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(def)); err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "create table %s: %v", def.Table, err)
	}
	return nil
}

// UpsertResults writes results in a single transaction. InsertIfAbsent
// keeps existing rows; InsertOrReplace overwrites them.
func (s *ResultService) UpsertResults(ctx context.Context, kind edgarscan.ScanKind, mode edgarscan.UpsertMode, results []edgarscan.Result) error {
	def, err := edgarscan.LookupScanSpec(kind)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}
	for _, r := range results {
		if err := r.Key.Validate(); err != nil {
			return err
		}
		if len(r.Values) != len(def.Columns) {
			return edgarscan.Errorf(edgarscan.EINVALID, "%s result for %s has %d values, want %d",
				kind, r.Key, len(r.Values), len(def.Columns))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(def, mode))
	if err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "prepare insert into %s: %v", def.Table, err)
	}
	defer stmt.Close()

	for _, r := range results {
		args := make([]any, 0, 3+len(r.Values))
		args = append(args, r.Key.CIK, r.Key.FileType, r.Key.Date)
		args = append(args, r.Values...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return edgarscan.Errorf(edgarscan.ESTORAGE, "insert into %s: %v", def.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return edgarscan.Errorf(edgarscan.ESTORAGE, "commit %s: %v", def.Table, err)
	}
	return nil
}

// ProcessedEntities returns the distinct CIKs with a non-null resume column
// for fileType.
func (s *ResultService) ProcessedEntities(ctx context.Context, kind edgarscan.ScanKind, fileType string) ([]string, error) {
	def, err := edgarscan.LookupScanSpec(kind)
	if err != nil {
		return nil, err
	}
	if def.ResumeColumn == "" {
		return []string{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT cik FROM "+def.Table+" WHERE "+def.ResumeColumn+" IS NOT NULL AND file_type = ? ORDER BY cik",
		fileType)
	if err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "query processed entities: %v", err)
	}
	defer rows.Close()

	ciks := []string{}
	for rows.Next() {
		var cik string
		if err := rows.Scan(&cik); err != nil {
			return nil, err
		}
		ciks = append(ciks, cik)
	}
	return ciks, rows.Err()
}

// SampleLoanFilings returns up to limit random loan-positive filings.
func (s *ResultService) SampleLoanFilings(ctx context.Context, fileType string, limit int) ([]edgarscan.FilingKey, error) {
	if limit <= 0 {
		return nil, edgarscan.Errorf(edgarscan.EINVALID, "sample size must be positive")
	}
	def, err := edgarscan.LookupScanSpec(edgarscan.KindLoans)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT cik, file_type, date FROM "+def.Table+" WHERE file_type = ? AND has_loan = ? ORDER BY RANDOM() LIMIT ?",
		fileType, edgarscan.LoanTrue, limit)
	if err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "query loan sample: %v", err)
	}
	defer rows.Close()

	var keys []edgarscan.FilingKey
	for rows.Next() {
		var k edgarscan.FilingKey
		if err := rows.Scan(&k.CIK, &k.FileType, &k.Date); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func keyColumns(def edgarscan.ScanSpec) []string {
	cols := []string{"cik", "file_type", "date"}
	if def.Discriminator != "" {
		cols = append(cols, def.Discriminator)
	}
	return cols
}

func createTableSQL(def edgarscan.ScanSpec) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(def.Table)
	b.WriteString(" (cik TEXT, file_type TEXT, date TEXT")
	for i, col := range def.Columns {
		b.WriteString(", ")
		b.WriteString(col)
		b.WriteString(" ")
		b.WriteString(def.ColumnTypes[i])
	}
	b.WriteString(", PRIMARY KEY(")
	b.WriteString(strings.Join(keyColumns(def), ", "))
	b.WriteString("))")
	return b.String()
}

func insertSQL(def edgarscan.ScanSpec, mode edgarscan.UpsertMode) string {
	verb := "INSERT OR IGNORE"
	if mode == edgarscan.InsertOrReplace {
		verb = "INSERT OR REPLACE"
	}
	cols := append([]string{"cik", "file_type", "date"}, def.Columns...)
	return verb + " INTO " + def.Table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) + ")"
}
