package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/edgarscan"
)

// Compile-time interface verification.
var _ edgarscan.IndexService = (*IndexService)(nil)

// IndexService implements edgarscan.IndexService using SQLite.
type IndexService struct {
	db *DB
}

// NewIndexService creates a new IndexService.
func NewIndexService(db *DB) *IndexService {
	return &IndexService{db: db}
}

// CreateIndexEntries inserts entries in one transaction, ignoring entries
// already present.
func (s *IndexService) CreateIndexEntries(ctx context.Context, entries []*edgarscan.IndexEntry) (int, error) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, edgarscan.Errorf(edgarscan.ESTORAGE, "begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO edgar_idx (cik, firm_name, file_type, date, url)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, edgarscan.Errorf(edgarscan.ESTORAGE, "prepare index insert: %v", err)
	}
	defer stmt.Close()

	var inserted int
	for _, e := range entries {
		res, err := stmt.ExecContext(ctx, e.CIK, e.FirmName, e.FileType, e.Date, e.URL)
		if err != nil {
			return 0, edgarscan.Errorf(edgarscan.ESTORAGE, "insert index entry: %v", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, edgarscan.Errorf(edgarscan.ESTORAGE, "commit index entries: %v", err)
	}
	return inserted, nil
}

// FindIndexEntries retrieves entries matching the filter ordered by date.
func (s *IndexService) FindIndexEntries(ctx context.Context, filter edgarscan.IndexFilter) ([]*edgarscan.IndexEntry, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT cik, firm_name, file_type, date, url FROM edgar_idx WHERE 1=1")

	if filter.CIK != nil {
		query.WriteString(" AND cik = ?")
		args = append(args, *filter.CIK)
	}
	if filter.FileType != nil {
		query.WriteString(" AND file_type = ?")
		args = append(args, *filter.FileType)
	}

	query.WriteString(" ORDER BY date ASC, cik ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*edgarscan.IndexEntry
	for rows.Next() {
		var e edgarscan.IndexEntry
		if err := rows.Scan(&e.CIK, &e.FirmName, &e.FileType, &e.Date, &e.URL); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
