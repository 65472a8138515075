package importer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Known header spellings per field, in priority order.
var (
	dateAliases       = []string{"date", "timestamp", "created_at", "time", "day"}
	modelAliases      = []string{"model", "model_id", "model_name"}
	inputAliases      = []string{"input_tokens", "prompt_tokens", "input_token_count", "n_context_tokens_total", "inputTokenCount"}
	outputAliases     = []string{"output_tokens", "completion_tokens", "output_token_count", "n_generated_tokens_total", "outputTokenCount"}
	cacheWriteAliases = []string{"cache_write_tokens", "cache_creation_input_tokens"}
	cacheReadAliases  = []string{"cache_read_tokens", "cache_read_input_tokens"}
	costAliases       = []string{"cost", "total_cost", "cost_usd", "amount"}
)

const (
	warnNoModel = "No model column found — using 'unknown'"
	warnNoDate  = "No date column found — using today's date"
)

// columns maps each logical field to a header index, or -1 when absent.
type columns struct {
	date, model, input, output, cacheWrite, cacheRead, cost int
}

// headerIndex maps lower-cased header names to their position. A repeated
// header resolves to its last occurrence.
type headerIndex map[string]int

func newHeaderIndex(headers []string) headerIndex {
	idx := make(headerIndex, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(h)] = i
	}
	return idx
}

// find returns the position of the first alias present, or -1.
func (h headerIndex) find(aliases []string) int {
	for _, a := range aliases {
		if i, ok := h[strings.ToLower(a)]; ok {
			return i
		}
	}
	return -1
}

// resolveColumns locates every field. It fails only when neither token
// column exists; missing model or date columns become warnings.
func resolveColumns(headers []string) (columns, []string, error) {
	idx := newHeaderIndex(headers)
	cols := columns{
		date:       idx.find(dateAliases),
		model:      idx.find(modelAliases),
		input:      idx.find(inputAliases),
		output:     idx.find(outputAliases),
		cacheWrite: idx.find(cacheWriteAliases),
		cacheRead:  idx.find(cacheReadAliases),
		cost:       idx.find(costAliases),
	}

	if cols.input < 0 && cols.output < 0 {
		found, _ := json.Marshal(headers)
		return cols, nil, fmt.Errorf("%w. Found: %s", ErrNoTokenColumns, found)
	}

	warnings := []string{}
	if cols.model < 0 {
		warnings = append(warnings, warnNoModel)
	}
	if cols.date < 0 {
		warnings = append(warnings, warnNoDate)
	}
	return cols, warnings, nil
}

// cell returns the value at column i, or "" when the column is absent or
// the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
