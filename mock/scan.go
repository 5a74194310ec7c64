package mock

import (
	"context"

	"github.com/fwojciec/edgarscan"
)

var _ edgarscan.EntityScanner = (*EntityScanner)(nil)

// EntityScanner is a mock implementation of edgarscan.EntityScanner.
type EntityScanner struct {
	KindFn       func() edgarscan.ScanKind
	ScanEntityFn func(ctx context.Context, cik, fileType string) ([]edgarscan.Result, error)
}

func (s *EntityScanner) Kind() edgarscan.ScanKind {
	return s.KindFn()
}

func (s *EntityScanner) ScanEntity(ctx context.Context, cik, fileType string) ([]edgarscan.Result, error) {
	return s.ScanEntityFn(ctx, cik, fileType)
}

var _ edgarscan.ResultService = (*ResultService)(nil)

// ResultService is a mock implementation of edgarscan.ResultService.
type ResultService struct {
	EnsureTableFn       func(ctx context.Context, kind edgarscan.ScanKind) error
	UpsertResultsFn     func(ctx context.Context, kind edgarscan.ScanKind, mode edgarscan.UpsertMode, results []edgarscan.Result) error
	ProcessedEntitiesFn func(ctx context.Context, kind edgarscan.ScanKind, fileType string) ([]string, error)
	SampleLoanFilingsFn func(ctx context.Context, fileType string, limit int) ([]edgarscan.FilingKey, error)
}

func (s *ResultService) EnsureTable(ctx context.Context, kind edgarscan.ScanKind) error {
	return s.EnsureTableFn(ctx, kind)
}

func (s *ResultService) UpsertResults(ctx context.Context, kind edgarscan.ScanKind, mode edgarscan.UpsertMode, results []edgarscan.Result) error {
	return s.UpsertResultsFn(ctx, kind, mode, results)
}

func (s *ResultService) ProcessedEntities(ctx context.Context, kind edgarscan.ScanKind, fileType string) ([]string, error) {
	return s.ProcessedEntitiesFn(ctx, kind, fileType)
}

func (s *ResultService) SampleLoanFilings(ctx context.Context, fileType string, limit int) ([]edgarscan.FilingKey, error) {
	return s.SampleLoanFilingsFn(ctx, fileType, limit)
}
