// Package slog wraps edgarscan services with structured debug logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/edgarscan"
)

var _ edgarscan.EntityScanner = (*LoggingEntityScanner)(nil)

// LoggingEntityScanner wraps an EntityScanner with debug logging.
type LoggingEntityScanner struct {
	next   edgarscan.EntityScanner
	logger *slog.Logger
}

// NewLoggingEntityScanner creates a new LoggingEntityScanner.
func NewLoggingEntityScanner(next edgarscan.EntityScanner, logger *slog.Logger) *LoggingEntityScanner {
	return &LoggingEntityScanner{next: next, logger: logger}
}

// Kind delegates to the wrapped scanner.
func (s *LoggingEntityScanner) Kind() edgarscan.ScanKind {
	return s.next.Kind()
}

// ScanEntity delegates to the wrapped scanner and logs the operation.
func (s *LoggingEntityScanner) ScanEntity(ctx context.Context, cik, fileType string) (results []edgarscan.Result, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("scan entity",
			"kind", s.next.Kind(),
			"cik", cik,
			"file_type", fileType,
			"rows", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ScanEntity(ctx, cik, fileType)
}

var _ edgarscan.ResultService = (*LoggingResultService)(nil)

// LoggingResultService wraps a ResultService with debug logging.
type LoggingResultService struct {
	next   edgarscan.ResultService
	logger *slog.Logger
}

// NewLoggingResultService creates a new LoggingResultService.
func NewLoggingResultService(next edgarscan.ResultService, logger *slog.Logger) *LoggingResultService {
	return &LoggingResultService{next: next, logger: logger}
}

// EnsureTable delegates to the wrapped service and logs the operation.
func (s *LoggingResultService) EnsureTable(ctx context.Context, kind edgarscan.ScanKind) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("ensure table",
			"kind", kind,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.EnsureTable(ctx, kind)
}

// UpsertResults delegates to the wrapped service and logs the operation.
func (s *LoggingResultService) UpsertResults(ctx context.Context, kind edgarscan.ScanKind, mode edgarscan.UpsertMode, results []edgarscan.Result) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("upsert results",
			"kind", kind,
			"mode", mode.String(),
			"rows", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertResults(ctx, kind, mode, results)
}

// ProcessedEntities delegates to the wrapped service and logs the operation.
func (s *LoggingResultService) ProcessedEntities(ctx context.Context, kind edgarscan.ScanKind, fileType string) (ciks []string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("processed entities",
			"kind", kind,
			"file_type", fileType,
			"count", len(ciks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ProcessedEntities(ctx, kind, fileType)
}

// SampleLoanFilings delegates to the wrapped service and logs the operation.
func (s *LoggingResultService) SampleLoanFilings(ctx context.Context, fileType string, limit int) (keys []edgarscan.FilingKey, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("sample loan filings",
			"file_type", fileType,
			"limit", limit,
			"count", len(keys),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SampleLoanFilings(ctx, fileType, limit)
}

var _ edgarscan.FilingDownloader = (*LoggingFilingDownloader)(nil)

// LoggingFilingDownloader wraps a FilingDownloader with debug logging.
type LoggingFilingDownloader struct {
	next   edgarscan.FilingDownloader
	logger *slog.Logger
}

// NewLoggingFilingDownloader creates a new LoggingFilingDownloader.
func NewLoggingFilingDownloader(next edgarscan.FilingDownloader, logger *slog.Logger) *LoggingFilingDownloader {
	return &LoggingFilingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the operation.
func (d *LoggingFilingDownloader) Download(ctx context.Context, url, dest string) (err error) {
	defer func(begin time.Time) {
		d.logger.Debug("download filing",
			"url", url,
			"dest", dest,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Download(ctx, url, dest)
}

var _ edgarscan.IndexDownloader = (*LoggingIndexDownloader)(nil)

// LoggingIndexDownloader wraps an IndexDownloader with logging.
type LoggingIndexDownloader struct {
	next   edgarscan.IndexDownloader
	logger *slog.Logger
}

// NewLoggingIndexDownloader creates a new LoggingIndexDownloader.
func NewLoggingIndexDownloader(next edgarscan.IndexDownloader, logger *slog.Logger) *LoggingIndexDownloader {
	return &LoggingIndexDownloader{next: next, logger: logger}
}

// DownloadIndex delegates to the wrapped downloader and logs the operation.
func (d *LoggingIndexDownloader) DownloadIndex(ctx context.Context, dir string, sinceYear int) (paths []string, err error) {
	defer func(begin time.Time) {
		d.logger.Info("download index",
			"dir", dir,
			"since", sinceYear,
			"files", len(paths),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.DownloadIndex(ctx, dir, sinceYear)
}
