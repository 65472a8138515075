// Package importer normalizes usage-export CSV files from AI provider
// dashboards into model.UsageRecord values.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/ogulcanaydogan/tokalator/pkg/providers"
)

const (
	recordCostPlaces = 6
	totalCostPlaces  = 4
)

// Importer parses CSV exports against a pricing table.
type Importer struct {
	table *providers.Table
	now   func() time.Time
	newID func() string
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock overrides the clock used for the "today" date default.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.now = now }
}

// WithIDGenerator overrides how record IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(i *Importer) { i.newID = newID }
}

// New creates an Importer that estimates missing costs from table.
func New(table *providers.Table, opts ...Option) *Importer {
	i := &Importer{
		table: table,
		now:   time.Now,
		newID: shortID,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func shortID() string {
	return uuid.NewString()[:8]
}

// Parse normalizes a CSV export. Row-level problems never fail the parse;
// they fall back to defaults. Structural problems return one of the
// package's sentinel errors.
func (i *Importer) Parse(data []byte) (*model.ParseResult, error) {
	text, err := decode(data)
	if err != nil {
		return nil, err
	}

	headers, rows, err := readCSV(text)
	if err != nil {
		return nil, err
	}

	provider := DetectProvider(headers, modelCells(headers, rows))

	cols, warnings, err := resolveColumns(headers)
	if err != nil {
		return nil, err
	}

	today := i.now().Format(model.DateLayout)
	records := make([]model.UsageRecord, 0, len(rows))

	for _, row := range rows {
		rec, ok := i.normalizeRow(row, cols, provider, today)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	costs := lo.Map(records, func(r model.UsageRecord, _ int) float64 { return r.Cost })

	return &model.ParseResult{
		Records:          records,
		TotalRecords:     len(records),
		TotalCost:        model.SumRounded(costs, totalCostPlaces),
		DetectedProvider: provider,
		Warnings:         warnings,
	}, nil
}

func (i *Importer) normalizeRow(row []string, cols columns, provider model.Provider, today string) (model.UsageRecord, bool) {
	in := parseTokens(cell(row, cols.input))
	out := parseTokens(cell(row, cols.output))
	if in == 0 && out == 0 {
		return model.UsageRecord{}, false
	}

	name := model.UnknownModel
	if cols.model >= 0 {
		name = NormalizeModel(cell(row, cols.model))
	}

	date := today
	if cols.date >= 0 {
		date = parseDate(cell(row, cols.date), today)
	}

	cost, ok := parseCost(cell(row, cols.cost))
	if !ok {
		cost = i.table.EstimateCost(name, in, out)
	}

	return model.UsageRecord{
		ID:               i.newID(),
		Date:             date,
		Model:            name,
		Provider:         provider,
		Project:          model.DefaultProject,
		InputTokens:      in,
		OutputTokens:     out,
		CacheWriteTokens: parseTokens(cell(row, cols.cacheWrite)),
		CacheReadTokens:  parseTokens(cell(row, cols.cacheRead)),
		Cost:             model.Round(cost, recordCostPlaces),
	}, true
}

// readCSV splits text into trimmed headers and data rows. Rows may be
// shorter or longer than the header. The first line is always the header
// line, even when blank. Quoting is strict: a stray quote fails the whole
// file instead of swallowing the rows after it.
func readCSV(text string) ([]string, [][]string, error) {
	if first, _, _ := strings.Cut(text, "\n"); strings.TrimSuffix(first, "\r") == "" {
		return nil, nil, ErrMissingHeaders
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrMissingHeaders
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}

	headers = lo.Map(headers, func(h string, _ int) string { return strings.TrimSpace(h) })
	if lo.EveryBy(headers, func(h string) bool { return h == "" }) {
		return nil, nil, ErrMissingHeaders
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}
	return headers, rows, nil
}

// modelCells samples the model column used for provider detection. A
// "model" cell is preferred, falling back to "model_id".
func modelCells(headers []string, rows [][]string) []string {
	idx := newHeaderIndex(headers)
	byModel := idx.find([]string{"model"})
	byModelID := idx.find([]string{"model_id"})

	sample := rows[:min(len(rows), detectRows)]
	return lo.Map(sample, func(row []string, _ int) string {
		if v := cell(row, byModel); v != "" {
			return v
		}
		return cell(row, byModelID)
	})
}
