package product

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePrice(t *testing.T) {
	for input, want := range map[string]string{
		`"6.50"`: "6.5",
		`4.25`:   "4.25",
		`0`:      "0",
		`1e2`:    "100",
	} {
		t.Run(input, func(t *testing.T) {
			got, err := DecodePrice(jx.DecodeStr(input))
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(want).Equal(got), "got %s", got)
		})
	}
}

func TestDecodePrice_Invalid(t *testing.T) {
	for _, input := range []string{`"cheap"`, `true`, `null`, `{}`} {
		t.Run(input, func(t *testing.T) {
			_, err := DecodePrice(jx.DecodeStr(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPrice)
		})
	}
}

func TestValidatePrice(t *testing.T) {
	for _, ok := range []string{"0", "6.50", "9999999999.99", "9999999999.994"} {
		assert.NoError(t, ValidatePrice(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"-0.01", "10000000000", "9999999999.995", "1e11"} {
		assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString(bad)), ErrInvalidPrice, bad)
	}
}
