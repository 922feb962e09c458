package rows

import (
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/money"
)

// fromTable converts one extracted table into rows. When the first row is a
// recognizable header it drives the column mapping; otherwise a positional
// heuristic maps cells by shape, date-like first, then amount, then balance,
// with the first remaining cell as description.
func fromTable(table extract.Table, pageIndex int, seq *int, currencyHint string) []Row {
	if len(table) == 0 {
		return nil
	}
	headerMap := detectHeaderMapping(table[0])
	dataRows := table
	if headerMap != nil {
		dataRows = table[1:]
	}

	var out []Row
	for _, rawRow := range dataRows {
		row := Row{
			Currency:  currencyHint,
			Source:    SourceTable,
			PageIndex: pageIndex,
			RowSeq:    *seq,
		}
		*seq++

		if headerMap != nil {
			// Column order keeps multi-column descriptions deterministic.
			for colIndex, value := range rawRow {
				if canonical, ok := headerMap[colIndex]; ok {
					row.Assign(canonical, value)
				}
			}
		} else {
			for _, value := range rawRow {
				switch {
				case looksLikeDate(value) && !row.HasDate():
					row.Assign("date", value)
				case money.LooksLikeAmount(value):
					if row.Amount == nil {
						row.Assign("amount", value)
					} else {
						row.Assign("balance", value)
					}
				case row.Description == "":
					row.Assign("description", value)
				}
			}
		}

		row.resolveAmount()
		if row.valid() {
			out = append(out, row)
		}
	}
	return out
}
