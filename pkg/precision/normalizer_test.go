package precision

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weex/pkg/core"
)

func fixtureNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	table, err := NewTable(mustPair("cmt_btcusdt", "0.01", "0.001", "0.001"))
	require.NoError(t, err)
	return NewNormalizer(table)
}

func TestNormalizePrice(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name   string
		symbol string
		raw    string
		want   string
	}{
		{"btc_truncates", "cmt_btcusdt", "80000.004", "80000.0"},
		{"btc_truncates_not_rounds", "cmt_btcusdt", "80000.09", "80000.0"},
		{"btc_valid_multiple_unchanged", "cmt_btcusdt", "80000.1", "80000.1"},
		{"btc_trailing_zero_input", "cmt_btcusdt", "80000.10", "80000.1"},
		{"btc_integer_input", "cmt_btcusdt", "80000", "80000.0"},
		{"btc_exponent_input", "cmt_btcusdt", "8E+4", "80000.0"},
		{"eth", "cmt_ethusdt", "3456.789", "3456.78"},
		{"sol", "cmt_solusdt", "145.12345", "145.123"},
		{"doge", "cmt_dogeusdt", "0.123456", "0.12345"},
		{"xrp", "cmt_xrpusdt", "0.52199", "0.5219"},
		{"bnb_uppercase_symbol", "CMT_BNBUSDT", "612.999", "612.99"},
		{"ltc_spaces", " cmt_ltcusdt ", " 88.1 ", "88.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.NormalizePrice(tt.symbol, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePrice_FixtureStep(t *testing.T) {
	n := fixtureNormalizer(t)

	got, err := n.NormalizePrice("cmt_btcusdt", "80000.004")
	require.NoError(t, err)
	assert.Equal(t, "80000.00", got)

	got, err = n.NormalizeSize("cmt_btcusdt", "0.0019")
	require.NoError(t, err)
	assert.Equal(t, "0.001", got)
}

func TestNormalizeSize(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name   string
		symbol string
		raw    string
		want   string
	}{
		{"btc_floor", "cmt_btcusdt", "0.0019", "0.001"},
		{"btc_exact_min", "cmt_btcusdt", "0.001", "0.001"},
		{"btc_large", "cmt_btcusdt", "1.23456", "1.234"},
		{"sol_floor", "cmt_solusdt", "1.25", "1.2"},
		{"doge_integral_step", "cmt_dogeusdt", "12345", "12300"},
		{"doge_exact_min", "cmt_dogeusdt", "100", "100"},
		{"xrp_fractional_input", "cmt_xrpusdt", "25.9", "20"},
		{"ada", "cmt_adausdt", "10.0", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.NormalizeSize(tt.symbol, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSize_BelowMinimum(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		symbol  string
		raw     string
		rounded string
		min     string
	}{
		{"cmt_btcusdt", "0.0009", "0.000", "0.001"},
		{"cmt_btcusdt", "0.000999999", "0.000", "0.001"},
		{"cmt_dogeusdt", "99", "0", "100"},
		{"cmt_solusdt", "0.09", "0.0", "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol+"_"+tt.raw, func(t *testing.T) {
			got, err := n.NormalizeSize(tt.symbol, tt.raw)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, core.ErrBelowMinimumSize)

			var below *core.BelowMinimumSizeError
			require.ErrorAs(t, err, &below)
			assert.Equal(t, tt.rounded, below.Rounded)
			assert.Equal(t, tt.min, below.MinSize)
			assert.Equal(t, tt.raw, below.Size)
		})
	}
}

func TestNormalize_UnknownSymbol(t *testing.T) {
	n := NewNormalizer(nil)

	price, err := n.NormalizePrice("cmt_unknowncoin", "1.5")
	assert.Empty(t, price)
	assert.ErrorIs(t, err, core.ErrUnknownSymbol)

	size, err := n.NormalizeSize("cmt_unknowncoin", "1.5")
	assert.Empty(t, size)
	assert.ErrorIs(t, err, core.ErrUnknownSymbol)

	_, err = n.PriceDecimal("cmt_unknowncoin", apd.New(15, -1))
	assert.ErrorIs(t, err, core.ErrUnknownSymbol)
}

func TestNormalize_InvalidValues(t *testing.T) {
	n := NewNormalizer(nil)

	inputs := []string{"", "   ", "abc", "1.2.3", "0", "0.000", "-1", "-0.5", "NaN", "Infinity", "-Infinity"}

	for _, raw := range inputs {
		t.Run("price_"+raw, func(t *testing.T) {
			_, err := n.NormalizePrice("cmt_btcusdt", raw)
			assert.ErrorIs(t, err, core.ErrInvalidValue)
		})
		t.Run("size_"+raw, func(t *testing.T) {
			_, err := n.NormalizeSize("cmt_btcusdt", raw)
			assert.ErrorIs(t, err, core.ErrInvalidValue)
		})
	}
}

func TestNormalizePrice_BelowStep(t *testing.T) {
	n := NewNormalizer(nil)

	_, err := n.NormalizePrice("cmt_btcusdt", "0.05")
	assert.ErrorIs(t, err, core.ErrInvalidValue)
}

func TestNormalize_DecimalVariants(t *testing.T) {
	n := NewNormalizer(nil)

	price, err := n.PriceDecimal("cmt_ethusdt", apd.New(3456789, -3))
	require.NoError(t, err)
	assert.Equal(t, "3456.78", price.Text('f'))

	size, err := n.SizeDecimal("cmt_dogeusdt", apd.New(250, 0))
	require.NoError(t, err)
	assert.Equal(t, "200", size.Text('f'))

	_, err = n.SizeDecimal("cmt_dogeusdt", nil)
	assert.ErrorIs(t, err, core.ErrInvalidValue)

	_, err = n.PriceDecimal("cmt_ethusdt", apd.New(-1, 0))
	assert.ErrorIs(t, err, core.ErrInvalidValue)
}

// Every normalized price is an exact step multiple, and neither output ever
// exceeds the raw input.
func TestNormalize_Properties(t *testing.T) {
	n := NewNormalizer(nil)
	inputs := []string{
		"0.3", "1", "1.0000001", "7.77777777", "99.99999", "100", "123.456789",
		"999.9995", "1234.5", "65432.10987", "80000.004", "99999.99999", "1000000.123456789",
	}

	for _, spec := range DefaultTable().Specs() {
		for _, in := range inputs {
			raw, err := ParseDecimal("input", in)
			require.NoError(t, err)

			priceStr, err := n.NormalizePrice(spec.Symbol, in)
			if err == nil {
				price, err := ParseDecimal("price", priceStr)
				require.NoError(t, err)
				assert.True(t, IsMultiple(price, &spec.PriceStep), "%s price %s -> %s", spec.Symbol, in, priceStr)
				assert.LessOrEqual(t, price.Cmp(raw), 0, "%s price %s -> %s", spec.Symbol, in, priceStr)
				assert.NotContains(t, priceStr, "E")
			} else {
				assert.ErrorIs(t, err, core.ErrInvalidValue)
			}

			sizeStr, err := n.NormalizeSize(spec.Symbol, in)
			if err == nil {
				size, err := ParseDecimal("size", sizeStr)
				require.NoError(t, err)
				assert.True(t, IsMultiple(size, &spec.SizeStep), "%s size %s -> %s", spec.Symbol, in, sizeStr)
				assert.LessOrEqual(t, size.Cmp(raw), 0, "%s size %s -> %s", spec.Symbol, in, sizeStr)
				assert.GreaterOrEqual(t, size.Cmp(&spec.MinSize), 0)
				assert.NotContains(t, sizeStr, "E")
			} else {
				assert.ErrorIs(t, err, core.ErrBelowMinimumSize)
			}
		}
	}
}
