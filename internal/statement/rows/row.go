// Package rows converts extraction output into canonical candidate rows.
// Three tiers run in strict preference order: table cells, positioned word
// tokens, then raw text lines. A lower tier only runs when every higher tier
// produced nothing.
package rows

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FutureFinance-ai/statement-pipeline/pkg/money"
)

// Source records which tier recovered a row.
type Source string

const (
	SourceTable  Source = "table"
	SourceTokens Source = "tokens"
	SourceText   Source = "text"
)

// Row is one candidate transaction line. Debit and credit hold unsigned
// column values as printed; Amount is signed, positive for credits.
type Row struct {
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Debit       *decimal.Decimal `json:"debit"`
	Credit      *decimal.Decimal `json:"credit"`
	Amount      *decimal.Decimal `json:"amount"`
	Balance     *decimal.Decimal `json:"balance"`
	Currency    string           `json:"currency"`
	Source      Source           `json:"source"`
	PageIndex   int              `json:"page_index"`
	RowSeq      int              `json:"row_seq"`
}

// HasDate reports whether a date was recovered for the row.
func (r *Row) HasDate() bool { return !r.Date.IsZero() }

// HasNumbers reports whether any monetary column parsed.
func (r *Row) HasNumbers() bool {
	return r.Amount != nil || r.Debit != nil || r.Credit != nil || r.Balance != nil
}

// valid rows carry at least a description or an amount.
func (r *Row) valid() bool {
	return r.Description != "" || r.Amount != nil
}

// resolveAmount derives the signed amount from debit/credit columns when no
// amount column was present.
func (r *Row) resolveAmount() {
	if r.Amount != nil {
		return
	}
	if r.Debit != nil {
		neg := r.Debit.Neg()
		r.Amount = &neg
		return
	}
	if r.Credit != nil {
		c := *r.Credit
		r.Amount = &c
	}
}

// Assign writes one cell value into its canonical field. Unparseable
// monetary cells are ignored so stray footers do not poison rows.
func (r *Row) Assign(canonical, value string) {
	switch canonical {
	case "date":
		if d, ok := parseDate(value); ok {
			r.Date = d
		}
	case "debit", "credit", "amount", "balance":
		parsed, err := money.Parse(value)
		if err != nil {
			return
		}
		switch canonical {
		case "debit":
			r.Debit = &parsed
		case "credit":
			r.Credit = &parsed
		case "amount":
			r.Amount = &parsed
		case "balance":
			r.Balance = &parsed
		}
	case "currency":
		if v := strings.TrimSpace(value); v != "" {
			r.Currency = v
		}
	case "description":
		r.Description = strings.TrimSpace(r.Description + " " + strings.TrimSpace(value))
	}
}
