package extract

import (
	"testing"

	"github.com/dslipak/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordsFromContent(t *testing.T) {
	const pageHeight = 800.0

	t.Run("merges adjacent runs into words", func(t *testing.T) {
		texts := []pdf.Text{
			{FontSize: 10, X: 10, Y: 790, W: 8, S: "Da"},
			{FontSize: 10, X: 18, Y: 790, W: 6, S: "te"},
			{FontSize: 10, X: 80, Y: 790, W: 40, S: "Narration"},
		}
		words := wordsFromContent(texts, pageHeight)
		require.Len(t, words, 2)
		assert.Equal(t, "Date", words[0].Text)
		assert.Equal(t, "Narration", words[1].Text)
		assert.InDelta(t, 10, words[0].X0, 0.01)
		assert.InDelta(t, 24, words[0].X1, 0.01)
	})

	t.Run("flips origin to top left", func(t *testing.T) {
		texts := []pdf.Text{
			{FontSize: 10, X: 10, Y: 100, W: 20, S: "lower"},
			{FontSize: 10, X: 10, Y: 700, W: 20, S: "upper"},
		}
		words := wordsFromContent(texts, pageHeight)
		require.Len(t, words, 2)
		assert.Equal(t, "upper", words[0].Text)
		assert.Equal(t, "lower", words[1].Text)
		assert.Less(t, words[0].Top, words[1].Top)
	})

	t.Run("drops blank runs", func(t *testing.T) {
		texts := []pdf.Text{
			{FontSize: 10, X: 10, Y: 790, W: 5, S: "  "},
			{FontSize: 10, X: 20, Y: 790, W: 5, S: "\t"},
		}
		assert.Empty(t, wordsFromContent(texts, pageHeight))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, wordsFromContent(nil, pageHeight))
	})
}

func TestGroupLines(t *testing.T) {
	words := []Word{
		{Text: "b", X0: 50, Top: 10.5},
		{Text: "a", X0: 10, Top: 10},
		{Text: "c", X0: 10, Top: 30},
	}
	lines := groupLines(words)
	require.Len(t, lines, 2)
	require.Len(t, lines[0].words, 2)
	assert.Equal(t, "a", lines[0].words[0].Text)
	assert.Equal(t, "b", lines[0].words[1].Text)
	assert.Equal(t, "c", lines[1].words[0].Text)
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		DocumentID([]byte("hello")))
	assert.Equal(t, DocumentID([]byte("same")), DocumentID([]byte("same")))
}
