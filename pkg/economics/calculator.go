// Package economics evaluates the token-economics formulas behind the
// calculators: a Cobb-Douglas quality score, the prompt-cache break-even
// curve, and a caching ROI analysis.
package economics

import (
	"errors"
	"fmt"

	"github.com/ogulcanaydogan/tokalator/pkg/providers"
)

// ErrInvalidParameter is wrapped by every request validation failure.
var ErrInvalidParameter = errors.New("invalid parameter")

// Calculator evaluates economics requests against a pricing table.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	table *providers.Table
}

// NewCalculator creates a Calculator backed by table.
func NewCalculator(table *providers.Table) *Calculator {
	return &Calculator{table: table}
}

func checkRange(field string, v, lo, hi float64) error {
	if v >= lo && v <= hi {
		return nil
	}
	return fmt.Errorf("%w: %s must be between %g and %g, got %g", ErrInvalidParameter, field, lo, hi, v)
}

func checkIntRange(field string, v, lo, hi int64) error {
	if v >= lo && v <= hi {
		return nil
	}
	return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidParameter, field, lo, hi, v)
}

func checkNonNegative(field string, v int64) error {
	if v >= 0 {
		return nil
	}
	return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidParameter, field, v)
}

func perMillion(tokens int64, price float64) float64 {
	return float64(tokens) / 1_000_000 * price
}
