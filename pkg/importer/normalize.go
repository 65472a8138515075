package importer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

var modelPrefixes = []string{"models/", "anthropic.", "openai."}

// modelAliasTable collapses dated snapshot names onto priced model IDs.
var modelAliasTable = map[string]string{
	"claude-3-5-sonnet-20241022": "claude-sonnet-4.5",
	"claude-3-5-sonnet":          "claude-sonnet-4.5",
	"claude-3-5-haiku":           "claude-haiku-4.5",
	"claude-sonnet-4-20250514":   "claude-sonnet-4.5",
	"gpt-4o-2024-08-06":          "gpt-4o",
	"gpt-4o-mini-2024-07-18":     "gpt-4o-mini",
}

// dateLayouts are tried in order against the first 19 characters of a cell.
// Month and day accept one or two digits.
var dateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"2/1/2006",
	"2006-1-2T15:04:05",
	"2006-1-2 15:04:05",
}

// NormalizeModel lower-cases a model name, strips vendor prefixes in order and
// applies the snapshot alias table. Empty names become "unknown".
func NormalizeModel(raw string) string {
	m := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range modelPrefixes {
		m = strings.TrimPrefix(m, prefix)
	}
	if alias, ok := modelAliasTable[m]; ok {
		return alias
	}
	if m == "" {
		return model.UnknownModel
	}
	return m
}

// parseTokens reads a token count leniently. Thousands separators are
// ignored and fractions truncated. Anything unparseable, negative or out of
// range is 0.
func parseTokens(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f <= 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

// parseCost reads a currency cell. ok is false when the value is empty,
// unparseable, negative or not finite.
func parseCost(s string) (cost float64, ok bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// parseDate returns the cell as YYYY-MM-DD, or today when no layout fits.
func parseDate(s, today string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return today
	}
	if len(s) > 19 {
		s = s[:19]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateLayout)
		}
	}
	return today
}
