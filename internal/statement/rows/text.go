package rows

import (
	"regexp"
	"strings"

	"github.com/FutureFinance-ai/statement-pipeline/pkg/money"
)

const (
	amountToken = `(?:\(?-?\d{1,3}(?:[,\s]\d{3})*(?:\.\d{2})?\)?|\(?-?\d+(?:\.\d{2})?\)?)`
	dateToken   = `(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2},?\s+\d{2,4})`
)

// textLineRe matches a transaction-shaped line: a date, up to 80 chars of
// narration, an amount and optionally a trailing balance.
var textLineRe = regexp.MustCompile(`(?i)\b(?P<date>` + dateToken + `)\b.{1,80}?(?P<amount>` + amountToken + `)(?:\s+(?P<balance>` + amountToken + `))?`)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// fromText scans one page's raw text for transaction-shaped lines. Last
// resort tier; debit/credit are derived from the amount's sign.
func fromText(text string, pageIndex int, currencyHint string) []Row {
	var out []Row
	seq := 0
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		m := textLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		dateStr := m[textLineRe.SubexpIndex("date")]
		amountStr := m[textLineRe.SubexpIndex("amount")]
		balanceStr := m[textLineRe.SubexpIndex("balance")]

		row := Row{
			Currency:  currencyHint,
			Source:    SourceText,
			PageIndex: pageIndex,
			RowSeq:    seq,
		}
		if d, ok := parseDate(dateStr); ok {
			row.Date = d
		}
		if amt, err := money.Parse(amountStr); err == nil {
			row.Amount = &amt
			if amt.IsNegative() {
				debit := amt.Neg()
				row.Debit = &debit
			} else if amt.IsPositive() {
				credit := amt
				row.Credit = &credit
			}
		}
		if balanceStr != "" {
			if bal, err := money.Parse(balanceStr); err == nil {
				row.Balance = &bal
			}
		}

		row.Description = cleanDescription(line, dateStr, amountStr, balanceStr)
		out = append(out, row)
		seq++
	}
	return out
}

// cleanDescription strips the matched date/amount fragments so the residual
// narration reads cleanly.
func cleanDescription(line, dateStr, amountStr, balanceStr string) string {
	desc := strings.Replace(line, dateStr, "", 1)
	desc = strings.Replace(desc, amountStr, "", 1)
	if balanceStr != "" {
		desc = strings.Replace(desc, balanceStr, "", 1)
	}
	desc = multiSpaceRe.ReplaceAllString(desc, " ")
	return strings.Trim(desc, " -|:")
}
