package services

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Normalized category identifiers.
const (
	categoryQIB         = "qib"
	categoryMarketMaker = "marketmaker"
)

// CategoryKey normalizes an investor category name so that "Market Maker",
// "market_maker" and "MarketMaker" resolve to the same key.
func CategoryKey(category string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(category) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ratio returns round(numerator / denominator, 2), or nil when the
// denominator is not positive.
func ratio(numerator, denominator int64) *float64 {
	if denominator <= 0 {
		return nil
	}
	value := decimal.NewFromInt(numerator).
		Div(decimal.NewFromInt(denominator)).
		Round(2).
		InexactFloat64()
	return &value
}

// percentOf returns round(part / whole * 100, 2), or nil when whole is not positive.
func percentOf(part, whole int64) *float64 {
	if whole <= 0 {
		return nil
	}
	value := decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(whole)).
		Round(2).
		InexactFloat64()
	return &value
}

func int64Ptr(v int64) *int64 {
	return &v
}

func float64Ptr(v float64) *float64 {
	return &v
}

func copyFloat64(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
