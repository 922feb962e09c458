// Package validate reconciles transactions against statement balances and
// flags re-extraction duplicates.
package validate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/builder"
)

// tolerance absorbs rounding noise in printed statement balances.
var tolerance = decimal.RequireFromString("0.02")

// Options carries caller-supplied balances and duplicate policy.
type Options struct {
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
	DropDuplicates bool
	// DupIncludePage widens the duplicate key with the page index so
	// identical transactions on different pages are not flagged.
	DupIncludePage bool
}

// Summary reports reconciliation outcomes. Warnings live here as data;
// a failed balance check is the caller's decision to act on, not an error.
type Summary struct {
	TransactionsCount      int              `json:"transactions_count"`
	SumAmount              decimal.Decimal  `json:"sum_amount"`
	OpeningBalanceInput    *decimal.Decimal `json:"opening_balance_input"`
	ClosingBalanceInput    *decimal.Decimal `json:"closing_balance_input"`
	OpeningBalanceDetected *decimal.Decimal `json:"opening_balance_detected"`
	ClosingBalanceDetected *decimal.Decimal `json:"closing_balance_detected"`
	OpeningBalanceUsed     *decimal.Decimal `json:"opening_balance_used"`
	ClosingBalanceUsed     *decimal.Decimal `json:"closing_balance_used"`
	ExpectedClosing        *decimal.Decimal `json:"expected_closing"`
	BalanceCheckPassed     *bool            `json:"balance_check_passed"`
	BalanceCheckDelta      *decimal.Decimal `json:"balance_check_delta"`
	RunningBalanceRebuilt  bool             `json:"running_balance_rebuilt"`
	DuplicatesFound        int              `json:"duplicates_found"`
	DuplicatesRemoved      int              `json:"duplicates_removed"`
}

// Statement sorts, reconciles and deduplicates transactions. The input
// slice is never mutated; all adjustments happen on the returned copy.
// Backfilling missing per-row balances from a known opening is the only
// value-level mutation performed.
func Statement(transactions []builder.Transaction, opts Options) ([]builder.Transaction, Summary) {
	txns := make([]builder.Transaction, len(transactions))
	copy(txns, transactions)

	for i := range txns {
		if txns[i].Amount == nil {
			if txns[i].Debit != nil {
				neg := txns[i].Debit.Neg()
				txns[i].Amount = &neg
			} else if txns[i].Credit != nil {
				c := *txns[i].Credit
				txns[i].Amount = &c
			}
		}
	}

	// Total order for reproducibility when dates collide. Dateless rows
	// sort first.
	sort.SliceStable(txns, func(i, j int) bool {
		di, dj := sortDate(&txns[i]), sortDate(&txns[j])
		if di != dj {
			return di < dj
		}
		if txns[i].PageIndex != txns[j].PageIndex {
			return txns[i].PageIndex < txns[j].PageIndex
		}
		if txns[i].RowSeq != txns[j].RowSeq {
			return txns[i].RowSeq < txns[j].RowSeq
		}
		return txns[i].Description < txns[j].Description
	})

	total := decimal.Zero
	for i := range txns {
		if txns[i].Amount != nil {
			total = total.Add(*txns[i].Amount)
		}
	}

	summary := Summary{
		SumAmount:           total,
		OpeningBalanceInput: opts.OpeningBalance,
		ClosingBalanceInput: opts.ClosingBalance,
	}
	summary.OpeningBalanceDetected, summary.ClosingBalanceDetected = detectBalances(txns)

	openingUsed := firstNonNil(opts.OpeningBalance, summary.OpeningBalanceDetected)
	closingUsed := firstNonNil(opts.ClosingBalance, summary.ClosingBalanceDetected)
	summary.OpeningBalanceUsed = openingUsed
	summary.ClosingBalanceUsed = closingUsed

	if openingUsed != nil {
		expected := openingUsed.Add(total)
		summary.ExpectedClosing = &expected
		if closingUsed != nil {
			delta := expected.Sub(*closingUsed)
			passed := delta.Abs().LessThanOrEqual(tolerance)
			summary.BalanceCheckPassed = &passed
			summary.BalanceCheckDelta = &delta
		}

		// Backfill missing balances by running the cumulative sum forward.
		// Explicit balances printed on the statement are never overridden.
		running := *openingUsed
		for i := range txns {
			if txns[i].Amount != nil {
				running = running.Add(*txns[i].Amount)
			}
			if txns[i].Balance == nil {
				bal := running
				txns[i].Balance = &bal
				summary.RunningBalanceRebuilt = true
			}
		}
	}

	txns, summary.DuplicatesFound, summary.DuplicatesRemoved = markDuplicates(txns, opts)
	summary.TransactionsCount = len(txns)
	return txns, summary
}

// detectBalances derives implied opening/closing balances from inline
// balance columns. The opening is the first observed balance minus the
// amounts accumulated up to and including that row.
func detectBalances(txns []builder.Transaction) (opening, closing *decimal.Decimal) {
	firstIdx, lastIdx := -1, -1
	for i := range txns {
		if txns[i].Balance != nil {
			if firstIdx < 0 {
				firstIdx = i
			}
			lastIdx = i
		}
	}
	if firstIdx < 0 {
		return nil, nil
	}

	subtotal := decimal.Zero
	for i := 0; i <= firstIdx; i++ {
		if txns[i].Amount != nil {
			subtotal = subtotal.Add(*txns[i].Amount)
		}
	}
	o := txns[firstIdx].Balance.Sub(subtotal)
	c := *txns[lastIdx].Balance
	return &o, &c
}

// markDuplicates flags transactions whose content key repeats; the first
// occurrence wins. With DropDuplicates the flagged ones are removed.
func markDuplicates(txns []builder.Transaction, opts Options) ([]builder.Transaction, int, int) {
	seen := make(map[string]string)
	found := 0
	kept := txns[:0]
	for i := range txns {
		key := duplicateKey(&txns[i], opts.DupIncludePage)
		if firstID, ok := seen[key]; ok {
			found++
			if opts.DropDuplicates {
				continue
			}
			txns[i].DuplicateOf = firstID
		} else {
			id := txns[i].ID
			if id == "" {
				id = key
			}
			seen[key] = id
		}
		kept = append(kept, txns[i])
	}
	removed := 0
	if opts.DropDuplicates {
		removed = found
	}
	return kept, found, removed
}

func duplicateKey(t *builder.Transaction, includePage bool) string {
	parts := make([]string, 0, 5)
	if t.HasDate() {
		parts = append(parts, t.Date.Format("2006-01-02"))
	} else {
		parts = append(parts, "")
	}
	parts = append(parts, strings.ToLower(strings.Join(strings.Fields(t.Description), " ")))
	if t.Amount != nil {
		parts = append(parts, t.Amount.Abs().StringFixed(2))
	} else {
		parts = append(parts, "")
	}
	parts = append(parts, t.Currency)
	if includePage {
		parts = append(parts, "p"+strconv.Itoa(t.PageIndex))
	}
	return strings.Join(parts, "|")
}

func firstNonNil(values ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func sortDate(t *builder.Transaction) string {
	if !t.HasDate() {
		return ""
	}
	return t.Date.Format("2006-01-02")
}
