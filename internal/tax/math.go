// Package tax holds the GST arithmetic used when building invoices.
// Functions are pure; rounding to whole currency units is left to callers
// through RoundUnits so the unrounded value stays available for checks.
package tax

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// rateOf converts a percentage, treating NaN and infinities as no tax.
func rateOf(rate float64) decimal.Decimal {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(rate)
}

// AddExclusiveTax returns the tax due on top of base at rate percent.
func AddExclusiveTax(base int64, rate float64) decimal.Decimal {
	r := rateOf(rate)
	if !r.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(base).Mul(r).Div(hundred)
}

// ExtractInclusiveTax returns the tax portion already contained in total
// at rate percent.
func ExtractInclusiveTax(total int64, rate float64) decimal.Decimal {
	r := rateOf(rate)
	if !r.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Mul(r).Div(hundred.Add(r))
}

// RoundUnits rounds to the nearest whole unit, halves away from zero.
func RoundUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// SplitInclusive splits a tax-inclusive amount into base and tax.
// base + tax always equals total.
func SplitInclusive(total int64, rate float64) (base, tax int64) {
	tax = RoundUnits(ExtractInclusiveTax(total, rate))
	return total - tax, tax
}
