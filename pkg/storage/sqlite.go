package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/tokalator/pkg/model"

	_ "modernc.org/sqlite"
)

const summaryPlaces = 4

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RecordImport(ctx context.Context, imp *model.ImportRecord, records []model.UsageRecord) error {
	if imp.ID == "" {
		imp.ID = uuid.New().String()
	}
	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = time.Now().UTC()
	}
	if imp.Warnings == nil {
		imp.Warnings = []string{}
	}
	warnings, err := json.Marshal(imp.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, filename, provider, total_records, total_cost, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		imp.ID, imp.Filename, string(imp.Provider), imp.TotalRecords, imp.TotalCost, string(warnings), imp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO usage_records (id, import_id, date, provider, model, project,
		   input_tokens, output_tokens, cache_write_tokens, cache_read_tokens, cost)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare usage insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.ID, imp.ID, r.Date, string(r.Provider), r.Model, r.Project,
			r.InputTokens, r.OutputTokens, r.CacheWriteTokens, r.CacheReadTokens, r.Cost,
		)
		if err != nil {
			return fmt.Errorf("insert usage record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

const importColumns = "id, filename, provider, total_records, total_cost, warnings, created_at"

func (s *SQLite) GetImport(ctx context.Context, id string) (*model.ImportRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+importColumns+" FROM imports WHERE id = ?", id)
	imp, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	return imp, nil
}

func (s *SQLite) ListImports(ctx context.Context, limit int) ([]model.ImportRecord, error) {
	query := "SELECT " + importColumns + " FROM imports ORDER BY created_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	imports := []model.ImportRecord{}
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import row: %w", err)
		}
		imports = append(imports, *imp)
	}
	return imports, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImport(row scanner) (*model.ImportRecord, error) {
	var imp model.ImportRecord
	var provider, warnings string
	if err := row.Scan(&imp.ID, &imp.Filename, &provider, &imp.TotalRecords,
		&imp.TotalCost, &warnings, &imp.CreatedAt); err != nil {
		return nil, err
	}
	imp.Provider = model.Provider(provider)
	if err := json.Unmarshal([]byte(warnings), &imp.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	return &imp, nil
}

func (s *SQLite) QueryUsage(ctx context.Context, filter model.ReportFilter) ([]model.UsageRecord, error) {
	query := `SELECT id, date, provider, model, project, input_tokens, output_tokens,
		cache_write_tokens, cache_read_tokens, cost FROM usage_records`
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY date DESC, seq ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	records := []model.UsageRecord{}
	for rows.Next() {
		var r model.UsageRecord
		var provider string
		if err := rows.Scan(&r.ID, &r.Date, &provider, &r.Model, &r.Project, &r.InputTokens,
			&r.OutputTokens, &r.CacheWriteTokens, &r.CacheReadTokens, &r.Cost); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		r.Provider = model.Provider(provider)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) AggregateUsage(ctx context.Context, filter model.ReportFilter) (*model.UsageSummary, error) {
	query := `SELECT
		COALESCE(SUM(cost), 0),
		COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0),
		COALESCE(SUM(cache_write_tokens), 0),
		COALESCE(SUM(cache_read_tokens), 0),
		COUNT(*)
	FROM usage_records`
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}

	summary := &model.UsageSummary{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.TotalCost,
		&summary.TotalInputTokens,
		&summary.TotalOutputTokens,
		&summary.TotalCacheWriteTokens,
		&summary.TotalCacheReadTokens,
		&summary.RecordCount,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	summary.TotalCost = model.Round(summary.TotalCost, summaryPlaces)

	summary.ByProvider, err = s.aggregateByField(ctx, "provider", where, args)
	if err != nil {
		return nil, err
	}

	summary.ByModel, err = s.aggregateByField(ctx, "model", where, args)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// aggregateByField sums cost grouped by a column. field is always a
// constant from this package, never user input.
func (s *SQLite) aggregateByField(ctx context.Context, field, where string, args []any) (map[string]float64, error) {
	query := fmt.Sprintf("SELECT %s, COALESCE(SUM(cost), 0) FROM usage_records", field)
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" GROUP BY %s", field)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate by %s: %w", field, err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var name string
		var total float64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("scan %s aggregate: %w", field, err)
		}
		result[name] = model.Round(total, summaryPlaces)
	}
	return result, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// buildWhereClause constructs a SQL WHERE clause from a ReportFilter.
// Date bounds compare YYYY-MM-DD strings and are inclusive.
func buildWhereClause(filter model.ReportFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(cond, value string) {
		if value != "" {
			conditions = append(conditions, cond)
			args = append(args, value)
		}
	}
	add("provider = ?", filter.Provider)
	add("model = ?", filter.Model)
	add("project = ?", filter.Project)
	add("import_id = ?", filter.ImportID)
	add("date >= ?", filter.StartDate)
	add("date <= ?", filter.EndDate)

	return strings.Join(conditions, " AND "), args
}
