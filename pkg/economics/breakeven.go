package economics

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

const (
	costPlaces      = 6
	thresholdPlaces = 2
	roiPlaces       = 1
	maxReusesLimit  = 100
	roiReuses       = 10
)

// Threshold is the break-even reuse count. It is +Inf when caching never
// pays off, which encodes as JSON null.
type Threshold float64

// Infinite reports whether caching never breaks even.
func (t Threshold) Infinite() bool { return math.IsInf(float64(t), 1) }

func (t Threshold) MarshalJSON() ([]byte, error) {
	if t.Infinite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(t))
}

func (t *Threshold) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Threshold(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Threshold(v)
	return nil
}

// BreakevenRequest holds the break-even calculator inputs. OutputTokens is
// validated but does not enter the formulas.
type BreakevenRequest struct {
	ModelID      string `json:"model_id"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	CacheTokens  int64  `json:"cache_tokens"`
	MaxReuses    int64  `json:"max_reuses"`
}

// DefaultBreakevenRequest returns the calculator's default inputs.
func DefaultBreakevenRequest() BreakevenRequest {
	return BreakevenRequest{
		ModelID:      "claude-sonnet-4.5",
		InputTokens:  50_000,
		OutputTokens: 10_000,
		CacheTokens:  10_000,
		MaxReuses:    30,
	}
}

// Validate checks every field against its allowed range.
func (r BreakevenRequest) Validate() error {
	return errors.Join(
		checkNonNegative("input_tokens", r.InputTokens),
		checkNonNegative("output_tokens", r.OutputTokens),
		checkNonNegative("cache_tokens", r.CacheTokens),
		checkIntRange("max_reuses", r.MaxReuses, 1, maxReusesLimit),
	)
}

// BreakevenPoint compares cumulative cost after a number of reuses.
type BreakevenPoint struct {
	Reuses        int64   `json:"reuses"`
	CostNoCache   float64 `json:"cost_no_cache"`
	CostWithCache float64 `json:"cost_with_cache"`
}

// BreakevenResult is the break-even threshold, the ten-reuse savings and
// the cost curve.
type BreakevenResult struct {
	Threshold   Threshold        `json:"threshold"`
	BreaksEven  bool             `json:"breaks_even"`
	SavingsAt10 float64          `json:"savings_at_10"`
	ROIAt10     float64          `json:"roi_at_10"`
	Curve       []BreakevenPoint `json:"curve"`
}

// callCosts are the per-call prices of one request shape.
type callCosts struct {
	noCache float64 // every call without caching
	first   float64 // first call, writing the cache
	reuse   float64 // later calls, reading the cache
}

func (cc callCosts) totals(n int64) (noCache, withCache float64) {
	return cc.noCache * float64(n), cc.first + cc.reuse*float64(max(0, n-1))
}

// Breakeven computes how many calls it takes for a cached prompt prefix
// to cost less than resending it. Cache tokens are capped at the input.
func (c *Calculator) Breakeven(req BreakevenRequest) (*BreakevenResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prices, _ := c.table.CachePrices(req.ModelID)
	cache := min(req.CacheTokens, req.InputTokens)
	uncached := req.InputTokens - cache

	cc := callCosts{
		noCache: perMillion(req.InputTokens, prices.InputPerMillion),
		first:   perMillion(cache, prices.CacheWritePerMillion) + perMillion(uncached, prices.InputPerMillion),
		reuse:   perMillion(cache, prices.CacheReadPerMillion) + perMillion(uncached, prices.InputPerMillion),
	}

	threshold := math.Inf(1)
	if delta := cc.noCache - cc.reuse; delta > 0 {
		threshold = (cc.first - cc.reuse) / delta
	}

	curve := make([]BreakevenPoint, 0, req.MaxReuses)
	for n := int64(1); n <= req.MaxReuses; n++ {
		without, with := cc.totals(n)
		curve = append(curve, BreakevenPoint{
			Reuses:        n,
			CostNoCache:   model.Round(without, costPlaces),
			CostWithCache: model.Round(with, costPlaces),
		})
	}

	without10, with10 := cc.totals(roiReuses)
	savings := without10 - with10
	roi := 0.0
	if with10 > 0 {
		roi = savings / with10 * 100
	}

	return &BreakevenResult{
		Threshold:   Threshold(model.Round(threshold, thresholdPlaces)),
		BreaksEven:  !math.IsInf(threshold, 1),
		SavingsAt10: model.Round(savings, costPlaces),
		ROIAt10:     model.Round(roi, roiPlaces),
		Curve:       curve,
	}, nil
}
