package utils

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{1000000, "$1,000,000.00"},
		{-42.25, "-$42.25"},
		{999.999, "$1,000.00"},
		{0.004, "$0.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatUSD(tc.in), "FormatUSD(%v)", tc.in)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+12.50%", FormatPercent(12.5))
	assert.Equal(t, "-3.33%", FormatPercent(-3.33))
	assert.Equal(t, "0.00%", FormatPercent(0))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "0.5", FormatQuantity(0.5))
	assert.Equal(t, "1", FormatQuantity(1.0))
	assert.Equal(t, "0.00000001", FormatQuantity(0.00000001))
	assert.Equal(t, "123.456", FormatQuantity(123.456))
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "1.20B", FormatCompact(1.2e9))
	assert.Equal(t, "35.00M", FormatCompact(3.5e7))
	assert.Equal(t, "1.50K", FormatCompact(1500))
	assert.Equal(t, "999.99", FormatCompact(999.99))
}

// The dollar formatter must round-trip the value it displays.
func TestFormatUSDRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("formatted dollars parse back within a cent", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatUSD(amount)

			negative := strings.HasPrefix(formatted, "-")
			cleaned := strings.NewReplacer("-", "", "$", "", ",", "").Replace(formatted)
			parsed, err := strconv.ParseFloat(cleaned, 64)
			if err != nil {
				return false
			}
			if negative {
				parsed = -parsed
			}
			diff := amount - parsed
			if diff < 0 {
				diff = -diff
			}
			return diff <= 0.005
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}
