// Package numfmt renders quantities and money the way the store's staff reads
// them: no trailing zeros, no scientific notation, "." as thousands separator
// and "," as decimal separator for currency.
package numfmt

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// QuantityPlaces is the precision stock quantities are stored with.
	QuantityPlaces = 3
	// MoneyPlaces is the precision monetary amounts are stored with.
	MoneyPlaces = 2

	currencySymbol = "$"
	groupSeparator = "."
	decimalMark    = ","
)

// Parse converts the common scalar shapes found in entity state into a
// decimal. The boolean is false when the value is absent or not numeric.
func Parse(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, false
		}
		return *v, true
	case decimal.NullDecimal:
		return v.Decimal, v.Valid
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case uint:
		return fromUint64(uint64(v)), true
	case uint64:
		return fromUint64(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	case json.Number:
		return parseString(v.String())
	case string:
		return parseString(v)
	case *string:
		if v == nil {
			return decimal.Decimal{}, false
		}
		return parseString(*v)
	default:
		return decimal.Decimal{}, false
	}
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func parseString(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Decimal quantizes value to places (banker's rounding) and strips trailing
// zeros. Nil renders as the empty string; non-numeric values are returned
// as-is.
func Decimal(value interface{}, places int) string {
	if value == nil {
		return ""
	}
	d, ok := Parse(value)
	if !ok {
		return fmt.Sprint(value)
	}
	return d.RoundBank(int32(places)).String()
}

// Quantity formats a stock quantity ("5.000" -> "5", "2.500" -> "2.5").
func Quantity(value interface{}) string {
	return Decimal(value, QuantityPlaces)
}

// Money formats an amount as currency with thousands grouping: 1500 ->
// "$1.500", 1500.5 -> "$1.500,5". ok is false when value is not numeric so
// callers can fall back to raw interpolation.
func Money(value interface{}) (string, bool) {
	d, ok := Parse(value)
	if !ok {
		return "", false
	}
	return currencySymbol + Group(d.RoundBank(MoneyPlaces).String()), true
}

// MoneyOr is Money with a raw-string fallback.
func MoneyOr(value interface{}) string {
	if formatted, ok := Money(value); ok {
		return formatted
	}
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// Group inserts thousands separators into a plain decimal string such as
// "-1234567.5" and swaps the decimal point for the decimal mark.
func Group(plain string) string {
	sign := ""
	if strings.HasPrefix(plain, "-") {
		sign, plain = "-", plain[1:]
	}

	integer, fraction, hasFraction := strings.Cut(plain, ".")

	var b strings.Builder
	lead := len(integer) % 3
	if lead > 0 {
		b.WriteString(integer[:lead])
	}
	for i := lead; i < len(integer); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(integer[i : i+3])
	}

	out := sign + b.String()
	if hasFraction && fraction != "" {
		out += decimalMark + fraction
	}
	return out
}
