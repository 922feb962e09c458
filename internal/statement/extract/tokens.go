package extract

import (
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

const (
	// lineTolerance groups glyph runs into one visual line when their
	// baselines are within this many points.
	lineTolerance = 2.5
	// wordGapFactor scales the font size into the maximum horizontal gap
	// still considered intra-word.
	wordGapFactor = 0.33
)

// wordsFromContent converts raw glyph runs into positioned word tokens.
// pageHeight flips the PDF bottom-left origin into top-left coordinates so
// downstream row grouping reads top to bottom.
func wordsFromContent(texts []pdf.Text, pageHeight float64) []Word {
	if len(texts) == 0 {
		return nil
	}

	runs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		runs = append(runs, t)
	}
	if len(runs) == 0 {
		return nil
	}

	// Top-left Y first, then X: reading order.
	sort.SliceStable(runs, func(i, j int) bool {
		yi, yj := pageHeight-runs[i].Y, pageHeight-runs[j].Y
		if absf(yi-yj) > lineTolerance {
			return yi < yj
		}
		return runs[i].X < runs[j].X
	})

	var words []Word
	cur := wordBuilder{}
	for _, r := range runs {
		top := pageHeight - r.Y - r.FontSize
		if top < 0 {
			top = 0
		}
		maxGap := r.FontSize * wordGapFactor
		if maxGap < 1 {
			maxGap = 1
		}
		if cur.empty() || absf(cur.top-top) > lineTolerance || r.X-cur.x1 > maxGap {
			if !cur.empty() {
				words = append(words, cur.build())
			}
			cur = wordBuilder{x0: r.X, x1: r.X + r.W, top: top, bottom: top + r.FontSize}
			cur.text.WriteString(r.S)
			continue
		}
		cur.text.WriteString(r.S)
		cur.x1 = r.X + r.W
		if top+r.FontSize > cur.bottom {
			cur.bottom = top + r.FontSize
		}
	}
	if !cur.empty() {
		words = append(words, cur.build())
	}
	return words
}

type wordBuilder struct {
	text        strings.Builder
	x0, x1      float64
	top, bottom float64
}

func (b *wordBuilder) empty() bool { return b.text.Len() == 0 }

func (b *wordBuilder) build() Word {
	return Word{Text: b.text.String(), X0: b.x0, X1: b.x1, Top: b.top, Bottom: b.bottom}
}

// line is a group of words sharing a baseline, in reading order.
type line struct {
	top   float64
	words []Word
}

// groupLines buckets words into visual lines by vertical proximity.
func groupLines(words []Word) []line {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if absf(sorted[i].Top-sorted[j].Top) > lineTolerance {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines []line
	for _, w := range sorted {
		if len(lines) == 0 || absf(lines[len(lines)-1].top-w.Top) > lineTolerance {
			lines = append(lines, line{top: w.Top, words: []Word{w}})
			continue
		}
		last := &lines[len(lines)-1]
		last.words = append(last.words, w)
	}
	return lines
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
