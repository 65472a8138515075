package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v to places decimal places, half away from zero.
// Infinities and NaN are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// SumRounded adds values in decimal arithmetic and rounds the total.
func SumRounded(values []float64, places int32) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(places).InexactFloat64()
}
