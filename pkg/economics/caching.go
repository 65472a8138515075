package economics

import (
	"errors"
	"fmt"
	"math"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

const (
	maxReuseCount = 1000
	percentPlaces = 1
)

// CachingRequest describes a prompt prefix that may be cached and reused.
type CachingRequest struct {
	ModelID     string `json:"model_id"`
	CacheTokens int64  `json:"cache_tokens"`
	ReuseCount  int64  `json:"reuse_count"`
}

// DefaultCachingRequest returns the analysis defaults.
func DefaultCachingRequest() CachingRequest {
	return CachingRequest{
		ModelID:     "claude-sonnet-4.5",
		CacheTokens: 10_000,
		ReuseCount:  10,
	}
}

// Validate checks every field against its allowed range.
func (r CachingRequest) Validate() error {
	return errors.Join(
		checkNonNegative("cache_tokens", r.CacheTokens),
		checkIntRange("reuse_count", r.ReuseCount, 0, maxReuseCount),
	)
}

// CachingAnalysis compares sending a prefix ReuseCount+1 times with
// writing it to the cache once and reading it ReuseCount times.
type CachingAnalysis struct {
	ModelID          string  `json:"model_id"`
	CacheTokens      int64   `json:"cache_tokens"`
	ReuseCount       int64   `json:"reuse_count"`
	CacheWriteCost   float64 `json:"cache_write_cost"`
	CacheReadCost    float64 `json:"cache_read_cost"`
	InputCost        float64 `json:"input_cost"`
	SavingsPerReuse  float64 `json:"savings_per_reuse"`
	BreakEvenReuses  *int64  `json:"break_even_reuses"`
	TotalWithCache   float64 `json:"total_with_cache"`
	TotalWithout     float64 `json:"total_without_cache"`
	NetSavings       float64 `json:"net_savings"`
	SavingsPercent   float64 `json:"savings_percent"`
	ShouldCache      bool    `json:"should_cache"`
	Recommendation   string  `json:"recommendation"`
	CachePricesKnown bool    `json:"cache_prices_known"`
}

// Caching analyses whether caching a prefix pays off for the planned
// number of reuses.
func (c *Calculator) Caching(req CachingRequest) (*CachingAnalysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prices, known := c.table.CachePrices(req.ModelID)
	write := perMillion(req.CacheTokens, prices.CacheWritePerMillion)
	read := perMillion(req.CacheTokens, prices.CacheReadPerMillion)
	input := perMillion(req.CacheTokens, prices.InputPerMillion)
	perReuse := input - read

	// breakEven is the smallest reuse count whose total with the cache is
	// no more than sending the prefix every time, the first send included.
	var breakEven *int64
	if perReuse > 0 {
		n := int64(math.Max(0, math.Ceil((write-input)/perReuse)))
		breakEven = &n
	}

	n := float64(req.ReuseCount)
	without := input * (n + 1)
	with := write + read*n
	net := without - with
	percent := 0.0
	if without > 0 {
		percent = net / without * 100
	}
	shouldCache := req.ReuseCount > 0 && breakEven != nil && req.ReuseCount >= *breakEven

	return &CachingAnalysis{
		ModelID:          req.ModelID,
		CacheTokens:      req.CacheTokens,
		ReuseCount:       req.ReuseCount,
		CacheWriteCost:   model.Round(write, costPlaces),
		CacheReadCost:    model.Round(read, costPlaces),
		InputCost:        model.Round(input, costPlaces),
		SavingsPerReuse:  model.Round(perReuse, costPlaces),
		BreakEvenReuses:  breakEven,
		TotalWithCache:   model.Round(with, costPlaces),
		TotalWithout:     model.Round(without, costPlaces),
		NetSavings:       model.Round(net, costPlaces),
		SavingsPercent:   model.Round(percent, percentPlaces),
		ShouldCache:      shouldCache,
		Recommendation:   recommend(req.ReuseCount, shouldCache, net, percent, breakEven),
		CachePricesKnown: known,
	}, nil
}

func recommend(reuses int64, shouldCache bool, net, percent float64, breakEven *int64) string {
	switch {
	case reuses == 0:
		return "No reuses planned - caching would only add cost"
	case shouldCache:
		return fmt.Sprintf("Cache it! You'll save $%.4f (%.0f%%)", net, percent)
	case breakEven == nil:
		return "Caching never pays off at these prices"
	default:
		return fmt.Sprintf("Not worth caching yet. Need %d more reuse(s) to break even", *breakEven-reuses)
	}
}
