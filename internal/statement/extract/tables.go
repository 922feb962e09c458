package extract

import (
	"sort"
	"strings"
)

const (
	// columnGap is the minimum horizontal gap between midpoint clusters for
	// them to count as separate columns.
	columnGap = 15.0
	// minTableRows and minTableCols gate what qualifies as a table at all.
	minTableRows = 3
	minTableCols = 3
	// bandPadding widens inferred column bands so slightly misaligned cells
	// still land in their column.
	bandPadding = 10.0
)

// band is a horizontal x-range covering one table column.
type band struct {
	x0, x1 float64
}

func (b band) contains(mid float64) bool { return b.x0 <= mid && mid <= b.x1 }

// buildTables infers tabular structure from positioned words. A strict grid
// pass runs first: column bands derived from midpoint clustering across the
// whole page, kept only when enough lines fill enough bands. When the grid
// pass finds nothing, a looser stream pass splits individual lines on wide
// gaps and accepts runs of lines with a consistent cell count. Returns the
// tables and the strategy that produced them ("grid", "stream" or "none").
func buildTables(words []Word) ([]Table, string) {
	lines := groupLines(words)
	if len(lines) < minTableRows {
		return nil, "none"
	}

	if t := gridPass(lines); t != nil {
		return []Table{t}, "grid"
	}
	if t := streamPass(lines); t != nil {
		return []Table{t}, "stream"
	}
	return nil, "none"
}

// gridPass clusters every word midpoint on the page into column bands and
// accepts the layout when at least minTableRows lines populate two or more
// bands each.
func gridPass(lines []line) Table {
	var mids []float64
	for _, ln := range lines {
		for _, w := range ln.words {
			mids = append(mids, w.Mid())
		}
	}
	bands := clusterBands(mids)
	if len(bands) < minTableCols {
		return nil
	}

	var rows Table
	filled := 0
	for _, ln := range lines {
		cells := assignToBands(ln.words, bands)
		nonEmpty := 0
		for _, c := range cells {
			if c != "" {
				nonEmpty++
			}
		}
		if nonEmpty >= 2 {
			filled++
		}
		rows = append(rows, cells)
	}
	if filled < minTableRows {
		return nil
	}
	return trimEmptyRows(rows)
}

// streamPass splits each line on horizontal gaps >= columnGap and accepts
// the longest run of consecutive lines sharing a cell count >= minTableCols.
func streamPass(lines []line) Table {
	type split struct {
		cells []string
	}
	splits := make([]split, len(lines))
	for i, ln := range lines {
		splits[i] = split{cells: splitLine(ln.words)}
	}

	bestStart, bestLen := -1, 0
	runStart, runLen, runCols := -1, 0, 0
	for i, s := range splits {
		n := len(s.cells)
		if n >= minTableCols && (runLen == 0 || n == runCols) {
			if runLen == 0 {
				runStart, runCols = i, n
			}
			runLen++
		} else {
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
			runLen, runCols = 0, 0
			if n >= minTableCols {
				runStart, runCols, runLen = i, n, 1
			}
		}
	}
	if runLen > bestLen {
		bestStart, bestLen = runStart, runLen
	}
	if bestLen < minTableRows {
		return nil
	}

	rows := make(Table, 0, bestLen)
	for i := bestStart; i < bestStart+bestLen; i++ {
		rows = append(rows, splits[i].cells)
	}
	return rows
}

// splitLine cuts one visual line into cells wherever the horizontal gap
// between adjacent words reaches columnGap.
func splitLine(words []Word) []string {
	if len(words) == 0 {
		return nil
	}
	var cells []string
	var cur strings.Builder
	cur.WriteString(words[0].Text)
	prevEnd := words[0].X1
	for _, w := range words[1:] {
		if w.X0-prevEnd >= columnGap {
			cells = append(cells, cur.String())
			cur.Reset()
		} else {
			cur.WriteByte(' ')
		}
		cur.WriteString(w.Text)
		prevEnd = w.X1
	}
	cells = append(cells, cur.String())
	return cells
}

// clusterBands splits sorted midpoints at gaps >= columnGap and turns each
// cluster into a padded band, merging overlaps.
func clusterBands(mids []float64) []band {
	if len(mids) == 0 {
		return nil
	}
	sort.Float64s(mids)

	var clusters [][]float64
	start := 0
	for i := 0; i < len(mids)-1; i++ {
		if mids[i+1]-mids[i] >= columnGap {
			clusters = append(clusters, mids[start:i+1])
			start = i + 1
		}
	}
	clusters = append(clusters, mids[start:])

	var bands []band
	for _, c := range clusters {
		b := band{x0: c[0] - bandPadding, x1: c[len(c)-1] + bandPadding}
		if len(bands) > 0 && b.x0 <= bands[len(bands)-1].x1 {
			bands[len(bands)-1].x1 = maxf(bands[len(bands)-1].x1, b.x1)
			continue
		}
		bands = append(bands, b)
	}
	return bands
}

// assignToBands joins the words of one line into per-band cell strings.
func assignToBands(words []Word, bands []band) []string {
	cells := make([][]string, len(bands))
	for _, w := range words {
		for i, b := range bands {
			if b.contains(w.Mid()) {
				cells[i] = append(cells[i], w.Text)
				break
			}
		}
	}
	out := make([]string, len(bands))
	for i, c := range cells {
		out[i] = strings.Join(c, " ")
	}
	return out
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func trimEmptyRows(rows Table) Table {
	out := rows[:0]
	for _, r := range rows {
		empty := true
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, r)
		}
	}
	if len(out) < minTableRows {
		return nil
	}
	return out
}
