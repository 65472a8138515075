package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/ogulcanaydogan/tokalator/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecords() []model.UsageRecord {
	return []model.UsageRecord{
		{ID: "a1", Date: "2025-01-01", Model: "gpt-4o", Provider: model.ProviderOpenAI, Project: model.DefaultProject, InputTokens: 100, OutputTokens: 50, Cost: 1.00},
		{ID: "a2", Date: "2025-01-02", Model: "gpt-4o", Provider: model.ProviderOpenAI, Project: model.DefaultProject, InputTokens: 200, OutputTokens: 100, CacheWriteTokens: 10, Cost: 2.00},
		{ID: "a3", Date: "2025-01-03", Model: "claude-sonnet-4.5", Provider: model.ProviderAnthropic, Project: model.DefaultProject, InputTokens: 300, OutputTokens: 150, CacheReadTokens: 20, Cost: 3.00},
	}
}

func recordSample(t *testing.T, db *storage.SQLite, filename string) *model.ImportRecord {
	t.Helper()
	imp := &model.ImportRecord{
		Filename:     filename,
		Provider:     model.ProviderOpenAI,
		TotalRecords: 3,
		TotalCost:    6.0,
		Warnings:     []string{"No date column found — using today's date"},
	}
	require.NoError(t, db.RecordImport(context.Background(), imp, sampleRecords()))
	return imp
}

func TestSQLite_RecordImport(t *testing.T) {
	db := newTestDB(t)
	imp := recordSample(t, db, "usage.csv")

	assert.NotEmpty(t, imp.ID)
	assert.False(t, imp.CreatedAt.IsZero())

	got, err := db.GetImport(context.Background(), imp.ID)
	require.NoError(t, err)
	assert.Equal(t, "usage.csv", got.Filename)
	assert.Equal(t, model.ProviderOpenAI, got.Provider)
	assert.Equal(t, int64(3), got.TotalRecords)
	assert.Equal(t, 6.0, got.TotalCost)
	assert.Equal(t, imp.Warnings, got.Warnings)
	assert.WithinDuration(t, imp.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLite_RecordImport_NilWarnings(t *testing.T) {
	db := newTestDB(t)
	imp := &model.ImportRecord{Filename: "x.csv", Provider: model.ProviderGoogle}
	require.NoError(t, db.RecordImport(context.Background(), imp, nil))

	got, err := db.GetImport(context.Background(), imp.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Warnings)
	assert.Empty(t, got.Warnings)
}

func TestSQLite_RecordImport_DuplicateRecordIDsAcrossImports(t *testing.T) {
	db := newTestDB(t)
	recordSample(t, db, "first.csv")
	recordSample(t, db, "second.csv")

	all, err := db.QueryUsage(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestSQLite_RecordImport_RollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	imp := recordSample(t, db, "usage.csv")

	// reusing the import ID violates the primary key
	again := &model.ImportRecord{ID: imp.ID, Filename: "dup.csv", Provider: model.ProviderOpenAI}
	err := db.RecordImport(ctx, again, sampleRecords())
	require.Error(t, err)

	all, err := db.QueryUsage(ctx, model.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_GetImport_NotFound(t *testing.T) {
	_, err := newTestDB(t).GetImport(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLite_ListImports(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	empty, err := db.ListImports(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	older := &model.ImportRecord{Filename: "older.csv", Provider: model.ProviderOpenAI, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &model.ImportRecord{Filename: "newer.csv", Provider: model.ProviderOpenAI, CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.RecordImport(ctx, older, nil))
	require.NoError(t, db.RecordImport(ctx, newer, nil))

	list, err := db.ListImports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer.csv", list[0].Filename)

	limited, err := db.ListImports(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_QueryUsage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	imp := recordSample(t, db, "usage.csv")

	tests := []struct {
		name   string
		filter model.ReportFilter
		want   int
	}{
		{"all", model.ReportFilter{}, 3},
		{"provider", model.ReportFilter{Provider: "openai"}, 2},
		{"model", model.ReportFilter{Model: "claude-sonnet-4.5"}, 1},
		{"project", model.ReportFilter{Project: model.DefaultProject}, 3},
		{"import", model.ReportFilter{ImportID: imp.ID}, 3},
		{"other import", model.ReportFilter{ImportID: "nope"}, 0},
		{"inclusive dates", model.ReportFilter{StartDate: "2025-01-02", EndDate: "2025-01-03"}, 2},
		{"single day", model.ReportFilter{StartDate: "2025-01-01", EndDate: "2025-01-01"}, 1},
		{"limit", model.ReportFilter{Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.QueryUsage(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSQLite_QueryUsage_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	recordSample(t, db, "usage.csv")

	got, err := db.QueryUsage(context.Background(), model.ReportFilter{Model: "claude-sonnet-4.5"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sampleRecords()[2], got[0])
}

func TestSQLite_QueryUsage_NewestDateFirst(t *testing.T) {
	db := newTestDB(t)
	recordSample(t, db, "usage.csv")

	got, err := db.QueryUsage(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-01-03", got[0].Date)
	assert.Equal(t, "2025-01-01", got[2].Date)
}

func TestSQLite_AggregateUsage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	recordSample(t, db, "usage.csv")

	summary, err := db.AggregateUsage(ctx, model.ReportFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 6.00, summary.TotalCost, 0.001)
	assert.Equal(t, int64(600), summary.TotalInputTokens)
	assert.Equal(t, int64(300), summary.TotalOutputTokens)
	assert.Equal(t, int64(10), summary.TotalCacheWriteTokens)
	assert.Equal(t, int64(20), summary.TotalCacheReadTokens)
	assert.Equal(t, int64(3), summary.RecordCount)
	assert.InDelta(t, 3.00, summary.ByProvider["openai"], 0.001)
	assert.InDelta(t, 3.00, summary.ByProvider["anthropic"], 0.001)
	assert.InDelta(t, 3.00, summary.ByModel["gpt-4o"], 0.001)

	filtered, err := db.AggregateUsage(ctx, model.ReportFilter{Provider: "anthropic"})
	require.NoError(t, err)
	assert.InDelta(t, 3.00, filtered.TotalCost, 0.001)
	assert.Len(t, filtered.ByModel, 1)
}

func TestSQLite_AggregateUsage_Empty(t *testing.T) {
	summary, err := newTestDB(t).AggregateUsage(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalCost)
	assert.Zero(t, summary.RecordCount)
}

func TestSQLite_MigrationIdempotency(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	// Open and close twice to verify migration idempotency
	db1, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	db1.Close()

	db2, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	db2.Close()
}
