package rows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		// day-first wins for ambiguous slash dates
		{"01/02/2024", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"31/12/2023", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"2024-02-01", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"15.04.2024", time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"15/04/24", time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"Mar 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"5 Mar 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"jan 5 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		// date embedded in a longer string
		{"Value 12/05/2023 ref 881", time.Date(2023, 5, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseDate(tc.in)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}

	for _, in := range []string{"", "not a date", "99/99/9999"} {
		_, ok := parseDate(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestLooksLikeDate(t *testing.T) {
	assert.True(t, looksLikeDate("01/02/2024"))
	assert.True(t, looksLikeDate("2024-02-01"))
	assert.True(t, looksLikeDate("Jan 5, 2024"))
	assert.False(t, looksLikeDate("POS PURCHASE"))
	assert.False(t, looksLikeDate("1,500.00"))
	assert.False(t, looksLikeDate(""))
}
