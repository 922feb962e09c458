package rows

import (
	"sort"
	"strings"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
)

const (
	// tokenLineTolerance groups word tokens into rows by baseline proximity.
	tokenLineTolerance = 2.5
	// tokenColumnGap splits header midpoint clusters into column bands.
	tokenColumnGap = 15.0
	// tokenBandPadding widens bands to absorb slight cell misalignment.
	tokenBandPadding = 10.0
	// maxTokenColumns caps inferred columns; statements never need more.
	maxTokenColumns = 10
	// headerScanRows limits how deep into the page the header search goes.
	headerScanRows = 8
)

// tokenRow is one visual line of word tokens.
type tokenRow struct {
	y      float64
	tokens []extract.Word
}

// tokenBand is the x-range of one inferred column.
type tokenBand struct {
	x0, x1 float64
}

// fromTokens reconstructs rows for one page from positioned words. The page
// contributes nothing unless a header line is found in its first few rows
// and that header names a date column. Accepted rows are appended to out so
// continuation lines can merge into the last accepted row across pages.
func fromTokens(words []extract.Word, pageIndex int, currencyHint string, out []Row) []Row {
	rowsOfTokens := wordsToRows(words)
	if len(rowsOfTokens) == 0 {
		return out
	}

	headerIdx := findHeaderRow(rowsOfTokens)
	if headerIdx < 0 {
		return out
	}
	bands := inferColumnBands(rowsOfTokens[headerIdx].tokens)
	if len(bands) == 0 {
		return out
	}

	headerMap := make(map[int]string)
	for idx, cell := range bandCellTexts(rowsOfTokens[headerIdx].tokens, bands) {
		if canonical := standardizeHeader(cell); canonical != "" {
			headerMap[idx] = canonical
		}
	}
	if !validHeaderMapping(headerMap) {
		return out
	}

	descriptionCol := -1
	for col, name := range headerMap {
		if name == "description" && (descriptionCol < 0 || col < descriptionCol) {
			descriptionCol = col
		}
	}

	seq := 0
	for _, tr := range rowsOfTokens[headerIdx+1:] {
		if len(tr.tokens) == 0 {
			continue
		}
		colTexts := bandCellTexts(tr.tokens, bands)
		if allBlank(colTexts) {
			continue
		}
		row := Row{
			Currency:  currencyHint,
			Source:    SourceTokens,
			PageIndex: pageIndex,
			RowSeq:    seq,
		}
		seq++
		for colIndex, value := range colTexts {
			if canonical, ok := headerMap[colIndex]; ok {
				row.Assign(canonical, value)
			}
		}
		row.resolveAmount()

		// A line with only description text continues the previous row's
		// narration (banks wrap long narrations onto extra lines).
		if !row.HasNumbers() && !row.HasDate() && row.Description != "" && len(out) > 0 {
			prev := &out[len(out)-1]
			piece := row.Description
			if descriptionCol >= 0 && descriptionCol < len(colTexts) {
				piece = colTexts[descriptionCol]
			}
			prev.Description = strings.TrimSpace(prev.Description + " " + piece)
			continue
		}
		if row.valid() {
			out = append(out, row)
		}
	}
	return out
}

// wordsToRows groups words into visual rows by baseline proximity.
func wordsToRows(words []extract.Word) []tokenRow {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]extract.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var rows []tokenRow
	for _, w := range sorted {
		if len(rows) == 0 || absFloat(rows[len(rows)-1].y-w.Top) > tokenLineTolerance {
			rows = append(rows, tokenRow{y: w.Top, tokens: []extract.Word{w}})
			continue
		}
		last := &rows[len(rows)-1]
		last.tokens = append(last.tokens, w)
	}
	return rows
}

// findHeaderRow returns the index of the first early row containing a
// recognizable header token, or -1.
func findHeaderRow(rowsOfTokens []tokenRow) int {
	limit := len(rowsOfTokens)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		for _, tok := range rowsOfTokens[i].tokens {
			if standardizeHeader(tok.Text) != "" {
				return i
			}
		}
	}
	return -1
}

// inferColumnBands clusters header token midpoints into column x-ranges.
func inferColumnBands(headerTokens []extract.Word) []tokenBand {
	mids := make([]float64, 0, len(headerTokens))
	for _, t := range headerTokens {
		mids = append(mids, t.Mid())
	}
	if len(mids) == 0 {
		return nil
	}
	sort.Float64s(mids)

	var clusters [][]float64
	start := 0
	for i := 0; i < len(mids)-1; i++ {
		if mids[i+1]-mids[i] >= tokenColumnGap {
			clusters = append(clusters, mids[start:i+1])
			start = i + 1
		}
	}
	clusters = append(clusters, mids[start:])
	if len(clusters) > maxTokenColumns {
		clusters = clusters[:maxTokenColumns]
	}

	var bands []tokenBand
	for _, c := range clusters {
		b := tokenBand{x0: c[0] - tokenBandPadding, x1: c[len(c)-1] + tokenBandPadding}
		if len(bands) > 0 && b.x0 <= bands[len(bands)-1].x1 {
			if b.x1 > bands[len(bands)-1].x1 {
				bands[len(bands)-1].x1 = b.x1
			}
			continue
		}
		bands = append(bands, b)
	}
	return bands
}

// bandCellTexts joins each band's tokens into one cell string.
func bandCellTexts(tokens []extract.Word, bands []tokenBand) []string {
	cells := make([][]string, len(bands))
	for _, t := range tokens {
		mid := t.Mid()
		for i, b := range bands {
			if b.x0 <= mid && mid <= b.x1 {
				cells[i] = append(cells[i], t.Text)
				break
			}
		}
	}
	out := make([]string, len(bands))
	for i, c := range cells {
		out[i] = strings.TrimSpace(strings.Join(c, " "))
	}
	return out
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
