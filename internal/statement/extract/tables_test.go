package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableRow lays out one visual line with three column-aligned words.
func tableRow(top float64, date, desc, amount string) []Word {
	return []Word{
		{Text: date, X0: 10, X1: 30, Top: top, Bottom: top + 10},
		{Text: desc, X0: 110, X1: 130, Top: top, Bottom: top + 10},
		{Text: amount, X0: 210, X1: 230, Top: top, Bottom: top + 10},
	}
}

func TestBuildTables_Grid(t *testing.T) {
	var words []Word
	for i := 0; i < 4; i++ {
		words = append(words, tableRow(float64(i*15),
			fmt.Sprintf("0%d/02/2024", i+1), "PURCHASE", "1,500.00")...)
	}

	tables, strategy := buildTables(words)
	require.Equal(t, "grid", strategy)
	require.Len(t, tables, 1)
	require.Len(t, tables[0], 4)
	assert.Equal(t, []string{"01/02/2024", "PURCHASE", "1,500.00"}, tables[0][0])
	assert.Equal(t, []string{"04/02/2024", "PURCHASE", "1,500.00"}, tables[0][3])
}

func TestBuildTables_Stream(t *testing.T) {
	// Two dense paragraph lines tile the page so midpoint clustering
	// collapses into a single band and the grid pass finds nothing.
	var words []Word
	for _, top := range []float64{0, 15} {
		for k := 0; k < 10; k++ {
			x0 := float64(k * 12)
			words = append(words, Word{Text: "word", X0: x0, X1: x0 + 10, Top: top, Bottom: top + 10})
		}
	}
	// Three aligned transaction lines below, each splitting into three
	// cells on wide gaps.
	for i, top := range []float64{30, 45, 60} {
		words = append(words,
			Word{Text: fmt.Sprintf("0%d/03/2024", i+1), X0: 10, X1: 30, Top: top, Bottom: top + 10},
			Word{Text: "TRANSFER", X0: 50, X1: 70, Top: top, Bottom: top + 10},
			Word{Text: "200.00", X0: 90, X1: 110, Top: top, Bottom: top + 10},
		)
	}

	tables, strategy := buildTables(words)
	require.Equal(t, "stream", strategy)
	require.Len(t, tables, 1)
	require.Len(t, tables[0], 3)
	assert.Equal(t, []string{"01/03/2024", "TRANSFER", "200.00"}, tables[0][0])
	assert.Equal(t, []string{"03/03/2024", "TRANSFER", "200.00"}, tables[0][2])
}

func TestBuildTables_None(t *testing.T) {
	words := tableRow(0, "01/02/2024", "PURCHASE", "1,500.00")
	tables, strategy := buildTables(words)
	assert.Equal(t, "none", strategy)
	assert.Empty(t, tables)
}

func TestSplitLine(t *testing.T) {
	t.Run("splits on wide gaps", func(t *testing.T) {
		cells := splitLine([]Word{
			{Text: "01/02/2024", X0: 10, X1: 30},
			{Text: "POS", X0: 110, X1: 120},
			{Text: "PURCHASE", X0: 124, X1: 150},
			{Text: "1,500.00", X0: 210, X1: 230},
		})
		assert.Equal(t, []string{"01/02/2024", "POS PURCHASE", "1,500.00"}, cells)
	})

	t.Run("empty line", func(t *testing.T) {
		assert.Nil(t, splitLine(nil))
	})
}

func TestClusterBands(t *testing.T) {
	bands := clusterBands([]float64{20, 21, 22, 120, 121, 220})
	require.Len(t, bands, 3)
	assert.True(t, bands[0].contains(20))
	assert.True(t, bands[1].contains(125))
	assert.False(t, bands[2].contains(120))
}
