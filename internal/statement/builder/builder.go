// Package builder turns candidate rows into canonical transactions with
// deterministic ids.
package builder

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/rows"
)

// Transaction is one reconciled statement line. Amount is signed, credit
// positive; Debit and Credit are unsigned and mutually exclusive.
type Transaction struct {
	ID          string           `json:"id"`
	AccountID   string           `json:"account_id,omitempty"`
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Debit       *decimal.Decimal `json:"debit"`
	Credit      *decimal.Decimal `json:"credit"`
	Balance     *decimal.Decimal `json:"balance"`
	Currency    string           `json:"currency,omitempty"`
	PageIndex   int              `json:"page_index"`
	RowSeq      int              `json:"row_seq"`
	DuplicateOf string           `json:"duplicate_of,omitempty"`
	Raw         rows.Row         `json:"raw"`
}

// HasDate reports whether a date was recovered for the transaction.
func (t *Transaction) HasDate() bool { return !t.Date.IsZero() }

// Build converts rows into transactions. Rows carrying no numeric value at
// all are discarded as noise; narration without money is a section header or
// a carried-over label, not a transaction. Output order follows input order;
// the validator owns semantic sorting.
func Build(candidates []rows.Row, documentID, accountID string) []Transaction {
	out := make([]Transaction, 0, len(candidates))
	for _, row := range candidates {
		amount := row.Amount
		if amount == nil {
			if row.Debit != nil {
				neg := row.Debit.Neg()
				amount = &neg
			} else if row.Credit != nil {
				c := *row.Credit
				amount = &c
			}
		}

		description := normalizeDescription(row.Description)
		hasNumber := amount != nil || row.Debit != nil || row.Credit != nil || row.Balance != nil
		if !hasNumber {
			continue
		}

		// Debit/credit rebuilt from the signed amount so the three fields
		// can never disagree.
		debit, credit := row.Debit, row.Credit
		if amount != nil {
			switch {
			case amount.IsNegative():
				d := amount.Neg()
				debit, credit = &d, nil
			case amount.IsPositive():
				c := *amount
				debit, credit = nil, &c
			default:
				debit, credit = nil, nil
			}
		}

		out = append(out, Transaction{
			ID:          ComputeID(documentID, accountID, row.Date, description, amount, row.PageIndex),
			AccountID:   accountID,
			Date:        row.Date,
			Description: description,
			Amount:      amount,
			Debit:       debit,
			Credit:      credit,
			Balance:     row.Balance,
			Currency:    row.Currency,
			PageIndex:   row.PageIndex,
			RowSeq:      row.RowSeq,
			Raw:         row,
		})
	}
	return out
}

// ComputeID derives the stable transaction id from fields that survive
// re-extraction. The page index disambiguates repeated narrations.
func ComputeID(documentID, accountID string, date time.Time, description string, amount *decimal.Decimal, pageIndex int) string {
	dateStr := ""
	if !date.IsZero() {
		dateStr = date.Format("2006-01-02")
	}
	amountStr := ""
	if amount != nil {
		amountStr = amount.StringFixed(2)
	}
	key := strings.Join([]string{
		documentID,
		accountID,
		dateStr,
		strings.ToLower(description),
		amountStr,
		strconv.Itoa(pageIndex),
	}, "|")
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func normalizeDescription(s string) string {
	folded := strings.Join(strings.Fields(s), " ")
	return strings.Trim(folded, " -|:")
}
