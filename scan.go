package edgarscan

import "context"

// ScanKind names one kind of filing scan.
type ScanKind string

// Supported scan kinds.
const (
	KindEventDate ScanKind = "event_date"
	KindItems     ScanKind = "items"
	KindZipcode   ScanKind = "zipcode"
	KindLoans     ScanKind = "loans"
)

// UpsertMode selects how a result collides with an existing row.
type UpsertMode int

const (
	// InsertIfAbsent keeps the existing row on key collision.
	InsertIfAbsent UpsertMode = iota
	// InsertOrReplace overwrites the existing row on key collision.
	InsertOrReplace
)

func (m UpsertMode) String() string {
	switch m {
	case InsertIfAbsent:
		return "insert-if-absent"
	case InsertOrReplace:
		return "insert-or-replace"
	default:
		return "unknown"
	}
}

// ScanSpec describes the destination table of a scan kind.
// Every table is keyed by (cik, file_type, date) plus Discriminator when set.
type ScanSpec struct {
	Kind  ScanKind
	Table string

	// Columns lists the value columns in Result.Values order.
	Columns []string

	// ColumnTypes holds the SQL type of each value column.
	ColumnTypes []string

	// Discriminator names a value column that is also part of the key.
	Discriminator string

	// Mode is the upsert mode used for scan results.
	Mode UpsertMode

	// ResumeColumn names the column whose non-null value marks an
	// entity as processed. Empty disables resume for the kind.
	ResumeColumn string
}

var scanSpecs = map[ScanKind]ScanSpec{
	KindEventDate: {
		Kind:        KindEventDate,
		Table:       "files_event_date",
		Columns:     []string{"event_date"},
		ColumnTypes: []string{"TEXT"},
		Mode:        InsertIfAbsent,
	},
	KindItems: {
		Kind:          KindItems,
		Table:         "files_all_items",
		Columns:       []string{"item"},
		ColumnTypes:   []string{"TEXT"},
		Discriminator: "item",
		Mode:          InsertIfAbsent,
	},
	KindZipcode: {
		Kind:        KindZipcode,
		Table:       "files_zipcode",
		Columns:     []string{"state", "zipcode"},
		ColumnTypes: []string{"TEXT", "TEXT"},
		Mode:        InsertIfAbsent,
	},
	KindLoans: {
		Kind:         KindLoans,
		Table:        "files_with_loan_contracts",
		Columns:      []string{"has_loan"},
		ColumnTypes:  []string{"INTEGER"},
		Mode:         InsertOrReplace,
		ResumeColumn: "has_loan",
	},
}

// LookupScanSpec returns the destination table layout for a scan kind.
// Returns EINVALID for unknown kinds.
func LookupScanSpec(kind ScanKind) (ScanSpec, error) {
	def, ok := scanSpecs[kind]
	if !ok {
		return ScanSpec{}, Errorf(EINVALID, "unknown scan kind %q", kind)
	}
	return def, nil
}

// ScanKinds returns all supported scan kinds.
func ScanKinds() []ScanKind {
	return []ScanKind{KindEventDate, KindItems, KindZipcode, KindLoans}
}

// Loan scan values stored in has_loan.
const (
	LoanTrue  = "TRUE"
	LoanFalse = "FALSE"
)

// Result is one scan result tuple.
type Result struct {
	Key FilingKey

	// Values holds one entry per ScanSpec.Columns. A nil entry is stored
	// as NULL.
	Values []any
}

// EntityScanner scans every filing of one entity and filing type.
// Implementations must be safe to call concurrently for different entities
// and must not write to the result store.
type EntityScanner interface {
	Kind() ScanKind
	ScanEntity(ctx context.Context, cik, fileType string) ([]Result, error)
}

// ResultService persists scan results.
type ResultService interface {
	// EnsureTable creates the destination table of a scan kind if needed.
	EnsureTable(ctx context.Context, kind ScanKind) error

	// UpsertResults writes results in one transaction using mode.
	UpsertResults(ctx context.Context, kind ScanKind, mode UpsertMode, results []Result) error

	// ProcessedEntities returns the CIKs that already have a non-null
	// result for fileType. Returns an empty slice for kinds without a
	// resume column.
	ProcessedEntities(ctx context.Context, kind ScanKind, fileType string) ([]string, error)

	// SampleLoanFilings returns up to limit random filings of fileType
	// flagged as containing a loan contract.
	SampleLoanFilings(ctx context.Context, fileType string, limit int) ([]FilingKey, error)
}

// ScanProgress reports the outcome of one entity during a scan run.
type ScanProgress struct {
	CIK       string
	Completed int
	Total     int
	Rows      int
	Err       error
}

// ScanProgressFunc is called as entities finish.
type ScanProgressFunc func(ScanProgress)
