// Package tracker keeps the history of imported usage exports.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/ogulcanaydogan/tokalator/pkg/storage"
)

// UsageTracker is the entry point for saving and querying imported usage.
type UsageTracker struct {
	storage storage.Storage
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a UsageTracker.
type Option func(*UsageTracker)

// WithClock overrides the clock used for import timestamps and periods.
func WithClock(now func() time.Time) Option {
	return func(t *UsageTracker) { t.now = now }
}

// NewUsageTracker creates a usage tracker with the given dependencies.
func NewUsageTracker(store storage.Storage, logger *slog.Logger, opts ...Option) *UsageTracker {
	t := &UsageTracker{
		storage: store,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Import persists a parsed CSV export and stamps result.ImportID.
func (t *UsageTracker) Import(ctx context.Context, filename string, result *model.ParseResult) (*model.ImportRecord, error) {
	imp := &model.ImportRecord{
		Filename:     filename,
		Provider:     result.DetectedProvider,
		TotalRecords: int64(result.TotalRecords),
		TotalCost:    result.TotalCost,
		Warnings:     result.Warnings,
		CreatedAt:    t.now().UTC(),
	}

	if err := t.storage.RecordImport(ctx, imp, result.Records); err != nil {
		return nil, fmt.Errorf("store import: %w", err)
	}
	result.ImportID = imp.ID

	t.logger.Info("import recorded",
		"import_id", imp.ID,
		"filename", filename,
		"provider", imp.Provider,
		"records", imp.TotalRecords,
		"total_cost", imp.TotalCost,
		"warnings", len(imp.Warnings),
	)

	return imp, nil
}

// Report generates a usage summary for the given filter.
func (t *UsageTracker) Report(ctx context.Context, filter model.ReportFilter) (*model.UsageSummary, error) {
	return t.storage.AggregateUsage(ctx, filter)
}

// ReportPeriod summarizes the calendar period containing today. The
// filter's own date bounds are replaced.
func (t *UsageTracker) ReportPeriod(ctx context.Context, period model.Period, filter model.ReportFilter) (*model.UsageSummary, error) {
	filter.StartDate, filter.EndDate = model.PeriodBounds(period, t.now())
	return t.storage.AggregateUsage(ctx, filter)
}

// Query returns individual usage records for the given filter.
func (t *UsageTracker) Query(ctx context.Context, filter model.ReportFilter) ([]model.UsageRecord, error) {
	return t.storage.QueryUsage(ctx, filter)
}

// QueryPeriod returns the records of the calendar period containing today.
func (t *UsageTracker) QueryPeriod(ctx context.Context, period model.Period, filter model.ReportFilter) ([]model.UsageRecord, error) {
	filter.StartDate, filter.EndDate = model.PeriodBounds(period, t.now())
	return t.storage.QueryUsage(ctx, filter)
}

// Imports lists the most recent imports.
func (t *UsageTracker) Imports(ctx context.Context, limit int) ([]model.ImportRecord, error) {
	return t.storage.ListImports(ctx, limit)
}

// Lookup returns one import by ID.
func (t *UsageTracker) Lookup(ctx context.Context, id string) (*model.ImportRecord, error) {
	return t.storage.GetImport(ctx, id)
}

// Close releases the underlying storage.
func (t *UsageTracker) Close() error {
	return t.storage.Close()
}
