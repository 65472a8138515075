package providers

import (
	"maps"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Default prices in USD per million tokens, used when a model is unknown.
const (
	DefaultInputPerMillion      = 3.0
	DefaultOutputPerMillion     = 15.0
	DefaultCacheWritePerMillion = 3.75
	DefaultCacheReadPerMillion  = 0.30
)

// MatchKind reports how Table.Lookup resolved a model name.
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchFuzzy   MatchKind = "fuzzy"
	MatchDefault MatchKind = "default"
)

// Entry is one priced model together with its provider.
type Entry struct {
	Provider string `json:"provider"`
	ModelPricing
}

// CachePrices is the price triple used by the cache calculators.
type CachePrices struct {
	InputPerMillion      float64 `json:"input_per_million"`
	CacheWritePerMillion float64 `json:"cache_write_per_million"`
	CacheReadPerMillion  float64 `json:"cache_read_per_million"`
}

// DefaultCachePrices returns the triple used for models without cache pricing.
func DefaultCachePrices() CachePrices {
	return CachePrices{
		InputPerMillion:      DefaultInputPerMillion,
		CacheWritePerMillion: DefaultCacheWritePerMillion,
		CacheReadPerMillion:  DefaultCacheReadPerMillion,
	}
}

// Table is an immutable model price table. It is safe for concurrent use
// without locking because nothing mutates it after NewTable returns.
type Table struct {
	entries []Entry
	byModel map[string]Entry
	keys    []string
	updated map[string]string
}

// NewTable builds a table from provider catalogs. When two providers price
// the same model, the first one wins.
func NewTable(providers ...Provider) *Table {
	t := &Table{byModel: make(map[string]Entry), updated: make(map[string]string)}
	for _, p := range providers {
		t.updated[p.Name()] = p.Updated()
		for _, m := range p.Models() {
			if _, dup := t.byModel[m.Model]; dup {
				continue
			}
			e := Entry{Provider: p.Name(), ModelPricing: m}
			t.entries = append(t.entries, e)
			t.byModel[m.Model] = e
		}
	}
	t.keys = lo.Keys(t.byModel)
	sort.Strings(t.keys)
	return t
}

// Models returns every priced model in registration order.
func (t *Table) Models() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Updated returns the price date stamp of each provider.
func (t *Table) Updated() map[string]string {
	return maps.Clone(t.updated)
}

// Len returns the number of priced models.
func (t *Table) Len() int { return len(t.entries) }

// Lookup resolves a model name to its pricing.
//
// An exact key wins. Otherwise the longest key contained in the name is
// used, then the shortest key that contains the name. Equal lengths are
// broken lexicographically. Anything else gets the default price pair.
func (t *Table) Lookup(model string) (Entry, MatchKind) {
	if e, ok := t.byModel[model]; ok {
		return e, MatchExact
	}
	if model != "" {
		if key, ok := t.fuzzyKey(model); ok {
			return t.byModel[key], MatchFuzzy
		}
	}
	return Entry{ModelPricing: ModelPricing{
		InputPerMillion:  DefaultInputPerMillion,
		OutputPerMillion: DefaultOutputPerMillion,
	}}, MatchDefault
}

func (t *Table) fuzzyKey(model string) (string, bool) {
	// keys is sorted, so the first of equal length is the lexicographic minimum.
	contained := lo.Filter(t.keys, func(k string, _ int) bool {
		return strings.Contains(model, k)
	})
	if len(contained) > 0 {
		return lo.MaxBy(contained, func(a, b string) bool { return len(a) > len(b) }), true
	}

	containing := lo.Filter(t.keys, func(k string, _ int) bool {
		return strings.Contains(k, model)
	})
	if len(containing) > 0 {
		return lo.MinBy(containing, func(a, b string) bool { return len(a) < len(b) }), true
	}
	return "", false
}

// EstimateCost prices input and output tokens for a model in USD.
func (t *Table) EstimateCost(model string, inputTokens, outputTokens int64) float64 {
	e, _ := t.Lookup(model)
	return float64(inputTokens)/1_000_000*e.InputPerMillion +
		float64(outputTokens)/1_000_000*e.OutputPerMillion
}

// CachePrices returns the cache price triple for a model. Only exact
// matches on models with published cache pricing are used; every other
// name, including unknown ones, gets DefaultCachePrices.
func (t *Table) CachePrices(model string) (CachePrices, bool) {
	e, ok := t.byModel[model]
	if !ok || !e.HasCachePricing() {
		return DefaultCachePrices(), false
	}
	return CachePrices{
		InputPerMillion:      e.InputPerMillion,
		CacheWritePerMillion: e.CacheWritePerMillion,
		CacheReadPerMillion:  e.CacheReadPerMillion,
	}, true
}
