package numfmt

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMoneyGroupsThousands(t *testing.T) {
	cases := map[string]interface{}{
		"$1.500":       "1500",
		"$0":           "0.00",
		"$1.234.567":   decimal.RequireFromString("1234567.00"),
		"$999":         999,
		"$1.500,5":     "1500.50",
		"$-12.000,25":  "-12000.25",
		"$100.000.000": int64(100000000),
	}

	for want, input := range cases {
		got, ok := Money(input)
		require.True(t, ok, "input %v", input)
		require.Equal(t, want, got)
	}

	_, ok := Money(nil)
	require.False(t, ok)
}

func TestMoneyOrFallsBackToRawValue(t *testing.T) {
	require.Equal(t, "1,500 CLP", MoneyOr("1,500 CLP"))
	require.Equal(t, "$2.000", MoneyOr("2000"))
	require.Equal(t, "", MoneyOr(nil))
}

func TestQuantityTrimsTrailingZeros(t *testing.T) {
	require.Equal(t, "5", Quantity("5.000"))
	require.Equal(t, "2.5", Quantity("2.500"))
	require.Equal(t, "0.002", Quantity("0.0015"))
	require.Equal(t, "0", Quantity("0.0005"))
	require.Equal(t, "", Quantity(nil))
	require.Equal(t, "n/a", Quantity("n/a"))
}

func TestParseAcceptsCommonShapes(t *testing.T) {
	s := "7.0"
	var nilString *string

	for _, v := range []interface{}{7, int64(7), uint(7), 7.0, "7", " 7.000 ", &s, decimal.NewFromInt(7)} {
		d, ok := Parse(v)
		require.True(t, ok, "value %#v", v)
		require.True(t, d.Equal(decimal.NewFromInt(7)))
	}

	for _, v := range []interface{}{nil, "", "abc", nilString, true} {
		_, ok := Parse(v)
		require.False(t, ok, "value %#v", v)
	}

	d, ok := Parse(uint64(math.MaxUint64))
	require.True(t, ok)
	require.Equal(t, "18446744073709551615", d.String())
}
