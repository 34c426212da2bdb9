package lineitems

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Numbers whose exponent or coefficient fall outside these bounds read as
// non-numeric. Rounding rescales by powers of ten, so an unbounded exponent
// would make a single row arbitrarily expensive to compute.
const (
	maxExponent        = 32
	maxCoefficientBits = 133 // 40 decimal digits
)

// Limits of the strict boundary. They match the widest stored columns:
// quantities and rates are numeric(18,6).
const MaxPlaces = 6

// MaxValue is the exclusive upper bound ParseAmount accepts.
var MaxValue = decimal.New(1, 9)

// Coerce converts a loosely-typed numeric value into a non-negative decimal.
// Non-numeric, non-finite, out-of-range and negative input all yield zero.
func Coerce(v any) decimal.Decimal {
	d, ok := parseDecimal(v)
	if !ok {
		return decimal.Zero
	}
	return nonNegative(d)
}

// ParseStrict is Coerce without coercion: ok is false for input Coerce
// would have turned into zero.
func ParseStrict(v any) (d decimal.Decimal, ok bool) {
	d, ok = parseDecimal(v)
	if !ok || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount is ParseStrict limited to values below MaxValue with at most
// places decimal places, the shape the database stores without rounding.
func ParseAmount(v any, places int32) (decimal.Decimal, bool) {
	d, ok := ParseStrict(v)
	if !ok || !Fits(d, places) {
		return decimal.Zero, false
	}
	return d, true
}

// Fits reports whether d is below MaxValue in magnitude and carries no more
// than places significant decimal places.
func Fits(d decimal.Decimal, places int32) bool {
	if !bounded(d) {
		return false
	}
	return d.Abs().LessThan(MaxValue) && d.Equal(d.Truncate(places))
}

// nonNegative also zeroes values outside the computable range.
func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() || !bounded(d) {
		return decimal.Zero
	}
	return d
}

func bounded(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent && d.Coefficient().BitLen() <= maxCoefficientBits
}

// parseDecimal reports ok=false when v cannot be read as a finite number in
// the computable range. nil and blank strings read as zero.
func parseDecimal(v any) (decimal.Decimal, bool) {
	d, ok := parseAny(v)
	if !ok || !bounded(d) {
		return decimal.Zero, false
	}
	return d, true
}

func parseAny(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, true
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, true
		}
		return *n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return fromUint64(uint64(n)), true
	case uint32:
		return fromUint64(uint64(n)), true
	case uint64:
		return fromUint64(n), true
	case json.Number:
		return parseString(string(n))
	case string:
		return parseString(n)
	default:
		return decimal.Zero, false
	}
}

func fromUint64(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}

func parseString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
