package storage

import (
	"context"
	"errors"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

// ErrNotFound is returned when a requested import does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines the persistence layer for CSV imports and their records.
type Storage interface {
	// RecordImport persists an import and its records in one transaction.
	// An empty imp.ID is filled in.
	RecordImport(ctx context.Context, imp *model.ImportRecord, records []model.UsageRecord) error

	// GetImport retrieves one import by ID.
	GetImport(ctx context.Context, id string) (*model.ImportRecord, error)

	// ListImports returns the most recent imports first.
	ListImports(ctx context.Context, limit int) ([]model.ImportRecord, error)

	// QueryUsage retrieves usage records matching the given filter.
	QueryUsage(ctx context.Context, filter model.ReportFilter) ([]model.UsageRecord, error)

	// AggregateUsage returns total cost and tokens for the filter.
	AggregateUsage(ctx context.Context, filter model.ReportFilter) (*model.UsageSummary, error)

	// Close releases resources.
	Close() error
}
