package tracker_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/tokalator/pkg/importer"
	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/ogulcanaydogan/tokalator/pkg/providers"
	"github.com/ogulcanaydogan/tokalator/pkg/storage"
	"github.com/ogulcanaydogan/tokalator/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) *tracker.UsageTracker {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ut := tracker.NewUsageTracker(store, logger, tracker.WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(func() { ut.Close() })
	return ut
}

func parseSample(t *testing.T) *model.ParseResult {
	t.Helper()
	r, err := providers.NewDefaultRegistry("")
	require.NoError(t, err)

	csv := "date,model,input_tokens,output_tokens\n" +
		"2025-01-02,claude-sonnet-4.5,1000000,500000\n" +
		"2025-01-14,claude-haiku-4.5,1000000,0\n" +
		"2024-12-31,gpt-4o,1000000,0\n"
	res, err := importer.New(r.Table()).Parse([]byte(csv))
	require.NoError(t, err)
	return res
}

func TestUsageTracker_Import(t *testing.T) {
	ut := newTestTracker(t)
	ctx := context.Background()
	res := parseSample(t)

	imp, err := ut.Import(ctx, "usage.csv", res)
	require.NoError(t, err)
	assert.NotEmpty(t, imp.ID)
	assert.Equal(t, imp.ID, res.ImportID)
	assert.Equal(t, "usage.csv", imp.Filename)
	assert.Equal(t, model.ProviderAnthropic, imp.Provider)
	assert.Equal(t, int64(3), imp.TotalRecords)
	assert.Equal(t, fixedNow, imp.CreatedAt)

	got, err := ut.Lookup(ctx, imp.ID)
	require.NoError(t, err)
	assert.InDelta(t, res.TotalCost, got.TotalCost, 1e-9)
}

func TestUsageTracker_Query(t *testing.T) {
	ut := newTestTracker(t)
	ctx := context.Background()
	res := parseSample(t)
	_, err := ut.Import(ctx, "usage.csv", res)
	require.NoError(t, err)

	records, err := ut.Query(ctx, model.ReportFilter{ImportID: res.ImportID})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2025-01-14", records[0].Date)

	records, err = ut.Query(ctx, model.ReportFilter{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUsageTracker_Report(t *testing.T) {
	ut := newTestTracker(t)
	ctx := context.Background()
	_, err := ut.Import(ctx, "usage.csv", parseSample(t))
	require.NoError(t, err)

	summary, err := ut.Report(ctx, model.ReportFilter{})
	require.NoError(t, err)
	// 10.5 sonnet + 1.0 haiku + 2.5 gpt-4o
	assert.InDelta(t, 14.0, summary.TotalCost, 1e-9)
	assert.Equal(t, int64(3), summary.RecordCount)
	assert.InDelta(t, 14.0, summary.ByProvider["anthropic"], 1e-9)
}

func TestUsageTracker_ReportPeriod(t *testing.T) {
	ut := newTestTracker(t)
	ctx := context.Background()
	_, err := ut.Import(ctx, "usage.csv", parseSample(t))
	require.NoError(t, err)

	monthly, err := ut.ReportPeriod(ctx, model.PeriodMonthly, model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), monthly.RecordCount)
	assert.InDelta(t, 11.5, monthly.TotalCost, 1e-9)

	weekly, err := ut.ReportPeriod(ctx, model.PeriodWeekly, model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), weekly.RecordCount)

	all, err := ut.ReportPeriod(ctx, model.PeriodAll, model.ReportFilter{StartDate: "2030-01-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.RecordCount)
}

func TestUsageTracker_QueryPeriod(t *testing.T) {
	ut := newTestTracker(t)
	ctx := context.Background()
	_, err := ut.Import(ctx, "usage.csv", parseSample(t))
	require.NoError(t, err)

	records, err := ut.QueryPeriod(ctx, model.PeriodMonthly, model.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-01-14", records[0].Date)
	assert.Equal(t, "2025-01-02", records[1].Date)
}

func TestUsageTracker_Imports(t *testing.T) {
	ut := newTestTracker(t)
	ctx := context.Background()

	_, err := ut.Import(ctx, "a.csv", parseSample(t))
	require.NoError(t, err)
	_, err = ut.Import(ctx, "b.csv", parseSample(t))
	require.NoError(t, err)

	list, err := ut.Imports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b.csv", list[0].Filename)
}

func TestUsageTracker_Lookup_NotFound(t *testing.T) {
	_, err := newTestTracker(t).Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
