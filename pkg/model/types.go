package model

import (
	"fmt"
	"strings"
	"time"
)

// Provider identifies the AI vendor whose dashboard produced a usage export.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// Providers lists every known provider in lookup order.
var Providers = []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGoogle}

// ParseProvider converts a case-insensitive name into a Provider.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle:
		return true
	}
	return false
}

func (p Provider) String() string { return string(p) }

// InferProvider guesses a provider from a model name alone.
func InferProvider(modelName string) (Provider, bool) {
	m := strings.ToLower(modelName)
	switch {
	case strings.Contains(m, "claude"):
		return ProviderAnthropic, true
	case strings.Contains(m, "gpt") || strings.HasPrefix(m, "o"):
		return ProviderOpenAI, true
	case strings.Contains(m, "gemini"):
		return ProviderGoogle, true
	}
	return "", false
}

// DefaultProject is the project assigned to rows imported from a CSV export.
const DefaultProject = "Imported"

// UnknownModel is used when a row carries no model name.
const UnknownModel = "unknown"

// DateLayout is the calendar date format used on every record.
const DateLayout = "2006-01-02"

// UsageRecord is one normalized row of token usage.
type UsageRecord struct {
	ID               string   `json:"id"`
	Date             string   `json:"date"`
	Model            string   `json:"model"`
	Provider         Provider `json:"provider"`
	Project          string   `json:"project"`
	InputTokens      int64    `json:"input_tokens"`
	OutputTokens     int64    `json:"output_tokens"`
	CacheWriteTokens int64    `json:"cache_write_tokens"`
	CacheReadTokens  int64    `json:"cache_read_tokens"`
	Cost             float64  `json:"cost"`
}

// ParseResult is the envelope returned for a parsed usage export.
type ParseResult struct {
	Records          []UsageRecord `json:"records"`
	TotalRecords     int           `json:"total_records"`
	TotalCost        float64       `json:"total_cost"`
	DetectedProvider Provider      `json:"detected_provider"`
	Warnings         []string      `json:"warnings"`
	ImportID         string        `json:"import_id,omitempty"`
}

// ImportRecord describes one persisted CSV import.
type ImportRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Provider     Provider  `json:"provider"`
	TotalRecords int64     `json:"total_records"`
	TotalCost    float64   `json:"total_cost"`
	Warnings     []string  `json:"warnings"`
	CreatedAt    time.Time `json:"created_at"`
}

// Period is a named reporting window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAll     Period = "all"
)

// ParsePeriod converts a case-insensitive period name into a Period.
func ParsePeriod(name string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", name)
}

// ReportFilter controls which stored usage records are included in queries.
// StartDate and EndDate are inclusive YYYY-MM-DD bounds. Limit caps the
// number of rows a query returns; zero means no cap.
type ReportFilter struct {
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	Project   string `json:"project,omitempty"`
	ImportID  string `json:"import_id,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// UsageSummary holds aggregated usage statistics.
type UsageSummary struct {
	TotalCost             float64            `json:"total_cost"`
	TotalInputTokens      int64              `json:"total_input_tokens"`
	TotalOutputTokens     int64              `json:"total_output_tokens"`
	TotalCacheWriteTokens int64              `json:"total_cache_write_tokens"`
	TotalCacheReadTokens  int64              `json:"total_cache_read_tokens"`
	RecordCount           int64              `json:"record_count"`
	ByProvider            map[string]float64 `json:"by_provider,omitempty"`
	ByModel               map[string]float64 `json:"by_model,omitempty"`
}

// PeriodBounds returns the inclusive first and last calendar day of the
// period containing now. PeriodAll yields empty bounds.
func PeriodBounds(period Period, now time.Time) (start, end string) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var from, to time.Time
	switch period {
	case PeriodAll:
		return "", ""
	case PeriodWeekly:
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		from = day.AddDate(0, 0, -weekday+1)
		to = from.AddDate(0, 0, 6)
	case PeriodMonthly:
		from = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		to = from.AddDate(0, 1, -1)
	default:
		from, to = day, day
	}
	return from.Format(DateLayout), to.Format(DateLayout)
}
