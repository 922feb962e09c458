package parsers

import (
	"strings"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/fingerprint"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/rows"
)

// OpayParser handles OPay wallet statements. Their exports use a Type
// column (DR/CR) next to an unsigned Amount column instead of separate
// debit/credit columns, which the generic header mapping cannot express.
type OpayParser struct{}

func (p *OpayParser) Name() string { return "OPAY" }

func (p *OpayParser) Supports(fp fingerprint.Fingerprint) bool {
	switch strings.ToUpper(fp.Bank) {
	case "OPAY", "OPAY_BANK", "OPAY_NG":
		return true
	}
	return false
}

// opaySynonyms extends the canonical header names with OPay's abbreviations
// and the DR/CR type column.
var opaySynonyms = map[string]string{
	"date":             "date",
	"tran date":        "date",
	"transaction date": "date",
	"value date":       "date",

	"description": "description",
	"narration":   "description",
	"details":     "description",
	"remark":      "description",
	"particulars": "description",

	"amount":             "amount",
	"transaction amount": "amount",
	"amt":                "amount",

	"balance":         "balance",
	"running balance": "balance",
	"bal":             "balance",

	"type":  "type",
	"dr/cr": "type",
	"dc":    "type",

	"credit": "credit",
	"cr":     "credit",
	"debit":  "debit",
	"dr":     "debit",
}

func opayCanon(cell string) string {
	t := strings.Join(strings.Fields(strings.ToLower(cell)), " ")
	if t == "" {
		return ""
	}
	if canonical, ok := opaySynonyms[t]; ok {
		return canonical
	}
	switch {
	case strings.Contains(t, "date"):
		return "date"
	case strings.Contains(t, "narration"), strings.Contains(t, "details"),
		strings.Contains(t, "descr"), strings.Contains(t, "remark"),
		strings.Contains(t, "particular"):
		return "description"
	case strings.Contains(t, "balance"):
		return "balance"
	case strings.Contains(t, "amount"), strings.Contains(t, "amt"):
		return "amount"
	}
	return ""
}

// NormalizeRows walks every table looking for OPay-shaped headers. Tables
// whose header lacks a date plus a monetary column are skipped rather than
// guessed at; the generic tiers pick the document up if nothing matches.
func (p *OpayParser) NormalizeRows(extracted *extract.Result, fp fingerprint.Fingerprint) []rows.Row {
	var out []rows.Row
	for pageIndex, tables := range extracted.PageTables {
		seq := 0
		for _, table := range tables {
			if len(table) == 0 {
				continue
			}
			mapping := make(map[int]string)
			for idx, cell := range table[0] {
				if c := opayCanon(cell); c != "" {
					mapping[idx] = c
				}
			}
			if !opayMappingValid(mapping) {
				continue
			}

			for _, rawRow := range table[1:] {
				row := rows.Row{
					Currency:  fp.Currency,
					Source:    rows.SourceTable,
					PageIndex: pageIndex,
					RowSeq:    seq,
				}
				seq++
				txnType := ""
				for idx, value := range rawRow {
					canonical, ok := mapping[idx]
					if !ok {
						continue
					}
					if canonical == "type" {
						txnType = strings.ToLower(strings.TrimSpace(value))
						continue
					}
					row.Assign(canonical, value)
				}
				applyType(&row, txnType)
				out = append(out, row)
			}
		}
	}
	return out
}

func opayMappingValid(mapping map[int]string) bool {
	values := make(map[string]bool, len(mapping))
	for _, v := range mapping {
		values[v] = true
	}
	return values["date"] && (values["amount"] || values["credit"] || values["debit"])
}

// applyType signs an unsigned Amount according to the DR/CR type column.
func applyType(row *rows.Row, txnType string) {
	if row.Amount == nil {
		return
	}
	switch txnType {
	case "dr", "debit", "d":
		if row.Amount.IsPositive() {
			neg := row.Amount.Neg()
			row.Amount = &neg
		}
		debit := row.Amount.Neg()
		row.Debit = &debit
	case "cr", "credit", "c":
		if row.Amount.IsNegative() {
			pos := row.Amount.Neg()
			row.Amount = &pos
		}
		credit := *row.Amount
		row.Credit = &credit
	}
}
