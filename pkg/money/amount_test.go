package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "500.00", "500"},
		{"plain integer", "500", "500"},
		{"us grouping", "1,234.56", "1234.56"},
		{"us grouping millions", "12,345,678.90", "12345678.9"},
		{"european", "1.234,56", "1234.56"},
		{"european millions", "1.234.567,89", "1234567.89"},
		{"thin space grouping", "1 234,56", "1234.56"},
		{"comma decimal only", "4,50", "4.5"},
		{"comma grouping only", "5,000", "5000"},
		{"dot grouping only", "1.234.567", "1234567"},
		{"explicit negative", "-500.00", "-500"},
		{"negative after space", " -500.00", "-500"},
		{"parenthesized", "(500.00)", "-500"},
		{"parenthesized grouped", "(1,250.75)", "-1250.75"},
		{"dr suffix", "500.00 DR", "-500"},
		{"dr suffix lowercase", "500.00 dr", "-500"},
		{"cr suffix", "500.00 CR", "500"},
		{"naira symbol", "₦1,000.00", "1000"},
		{"dollar symbol", "$99.99", "99.99"},
		{"euro symbol", "€1.234,00", "1234"},
		{"pound symbol", "£12.00", "12"},
		{"rupee symbol", "₹2,500.00", "2500"},
		{"code prefix", "NGN 750.25", "750.25"},
		{"trailing minus", "500.00-", "-500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tc.want)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "Parse(%q) = %s, want %s", tc.in, got, want)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "-", ".", "abc", "N/A", "--"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrNotAnAmount)
		})
	}
}

func TestLooksLikeAmount(t *testing.T) {
	assert.True(t, LooksLikeAmount("balance 9,500.00"))
	assert.True(t, LooksLikeAmount("(42.00)"))
	assert.True(t, LooksLikeAmount("500"))
	assert.False(t, LooksLikeAmount("no numbers here"))
	assert.False(t, LooksLikeAmount(""))
}

func TestRoundCents(t *testing.T) {
	d := decimal.RequireFromString("10.005")
	assert.Equal(t, "10.01", RoundCents(d).StringFixed(2))

	d = decimal.RequireFromString("10.004")
	assert.Equal(t, "10.00", RoundCents(d).StringFixed(2))
}

func TestKnownCurrency(t *testing.T) {
	assert.True(t, KnownCurrency("NGN"))
	assert.True(t, KnownCurrency("usd"))
	assert.False(t, KnownCurrency("ZZZ"))
	assert.False(t, KnownCurrency(""))
}

func TestFormat(t *testing.T) {
	d := decimal.RequireFromString("1234.5")
	assert.Equal(t, "1234.50", Format(d, "ZZZ")) // unknown code falls back to fixed decimal
	assert.NotEmpty(t, Format(d, "USD"))
}
