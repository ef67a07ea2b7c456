package frac

import (
	"fmt"
	"math"
)

// Pct is a floating-point percentage formatted to a fixed number of
// fractional digits. Rust expressed the digit count as a const generic
// parameter (Pct<const PRECISION: u8>); Go has no const generics, so
// Precision is an ordinary struct field instead.
type Pct struct {
	Value     float64
	Precision int
}

// NewPct builds a Pct from a numerator/denominator pair at the given
// precision.
func NewPct(numerator, denominator float64, precision int) Pct {
	return Pct{Value: numerator / denominator, Precision: precision}
}

// Add returns the sum of two percentages. Both operands must share the
// same Precision; the result takes the receiver's.
func (p Pct) Add(other Pct) Pct {
	return Pct{Value: p.Value + other.Value, Precision: p.Precision}
}

// String renders the percentage the way a scoreboard displays rate
// stats: "NaN" / "inf" for non-finite values, otherwise a fixed number
// of fractional digits. At precision 3 or more the whole-number part is
// omitted when it is zero (".429", not "0.429") and printed otherwise
// (e.g. "1.044"); below precision 3 it is always printed.
func (p Pct) String() string {
	if math.IsInf(p.Value, 0) {
		return "inf"
	}
	if math.IsNaN(p.Value) {
		return "NaN"
	}

	multF := math.Pow(10, float64(p.Precision))
	multI := uint64(1)
	for i := 0; i < p.Precision; i++ {
		multI *= 10
	}

	frac := uint64(math.Round(p.Value * multF))

	out := ""
	if p.Precision < 3 || frac >= multI {
		out += fmt.Sprintf("%d", frac/multI)
	}
	out += fmt.Sprintf(".%0*d", p.Precision, frac%multI)
	return out
}
