package economics

import (
	"errors"
	"math"

	"github.com/ogulcanaydogan/tokalator/pkg/importer"
	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

const qualityPlaces = 4

// QualityRequest holds the inputs of the quality function. Use
// DefaultQualityRequest as the starting point so absent fields keep
// their defaults.
type QualityRequest struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CacheTokens  int64   `json:"cache_tokens"`
	Alpha        float64 `json:"alpha"`
	Beta         float64 `json:"beta"`
	Gamma        float64 `json:"gamma"`
	BaseQuality  float64 `json:"base_quality"`
	ModelID      string  `json:"model_id,omitempty"`
}

// DefaultQualityRequest returns the calculator's default inputs.
func DefaultQualityRequest() QualityRequest {
	return QualityRequest{
		InputTokens:  50_000,
		OutputTokens: 10_000,
		CacheTokens:  0,
		Alpha:        0.30,
		Beta:         0.35,
		Gamma:        0.20,
		BaseQuality:  1.0,
	}
}

// Validate checks every field against its allowed range.
func (r QualityRequest) Validate() error {
	return errors.Join(
		checkNonNegative("input_tokens", r.InputTokens),
		checkNonNegative("output_tokens", r.OutputTokens),
		checkNonNegative("cache_tokens", r.CacheTokens),
		checkRange("alpha", r.Alpha, 0.05, 0.60),
		checkRange("beta", r.Beta, 0.05, 0.60),
		checkRange("gamma", r.Gamma, 0.05, 0.50),
		checkRange("base_quality", r.BaseQuality, 0.1, 2.0),
	)
}

// QualityResult is the quality score and its three factors.
type QualityResult struct {
	QualityScore       float64 `json:"quality_score"`
	InputContribution  float64 `json:"input_contribution"`
	OutputContribution float64 `json:"output_contribution"`
	CacheContribution  float64 `json:"cache_contribution"`
	CostPerQuality     float64 `json:"cost_per_quality"`
}

// Quality evaluates Q = X^α × Y^β × (b + Z)^γ with token counts in
// thousands. X and Y are floored at 0.001 so the product stays positive.
func (c *Calculator) Quality(req QualityRequest) (*QualityResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	x := math.Max(float64(req.InputTokens)/1000, 0.001)
	y := math.Max(float64(req.OutputTokens)/1000, 0.001)
	z := float64(req.CacheTokens) / 1000

	inputC := math.Pow(x, req.Alpha)
	outputC := math.Pow(y, req.Beta)
	cacheC := math.Pow(req.BaseQuality+z, req.Gamma)
	quality := inputC * outputC * cacheC

	res := &QualityResult{
		QualityScore:       model.Round(quality, qualityPlaces),
		InputContribution:  model.Round(inputC, qualityPlaces),
		OutputContribution: model.Round(outputC, qualityPlaces),
		CacheContribution:  model.Round(cacheC, qualityPlaces),
	}
	if req.ModelID != "" {
		// priced under the same name a CSV import would give it
		cost := c.table.EstimateCost(importer.NormalizeModel(req.ModelID), req.InputTokens, req.OutputTokens)
		res.CostPerQuality = model.Round(cost/quality, costPlaces)
	}
	return res, nil
}
