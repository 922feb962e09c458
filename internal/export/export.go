// Package export renders processed transactions as CSV and XLSX for
// downstream accounting tools.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/builder"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/money"
)

// transactionRow is the flat export shape. Amounts are fixed to two decimal
// places so spreadsheets cannot reinterpret them as floats with drift.
type transactionRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Debit       string `csv:"debit"`
	Credit      string `csv:"credit"`
	Amount      string `csv:"amount"`
	Balance     string `csv:"balance"`
	Currency    string `csv:"currency"`
	Page        int    `csv:"page"`
	ID          string `csv:"id"`
}

func rowsFor(txns []builder.Transaction) []transactionRow {
	out := make([]transactionRow, 0, len(txns))
	for i := range txns {
		t := &txns[i]
		row := transactionRow{
			Description: t.Description,
			Debit:       fixed(t.Debit),
			Credit:      fixed(t.Credit),
			Amount:      fixed(t.Amount),
			Balance:     fixed(t.Balance),
			Currency:    t.Currency,
			Page:        t.PageIndex,
			ID:          t.ID,
		}
		if t.HasDate() {
			row.Date = t.Date.Format("2006-01-02")
		}
		out = append(out, row)
	}
	return out
}

func fixed(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

// WriteCSV writes transactions as a CSV document with a header row.
func WriteCSV(w io.Writer, txns []builder.Transaction) error {
	rows := rowsFor(txns)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

const xlsxSheet = "Transactions"

var xlsxHeaders = []string{"Date", "Description", "Debit", "Credit", "Amount", "Balance", "Currency", "Page", "ID"}

// WriteXLSX writes transactions as an XLSX workbook. Monetary cells carry
// the currency symbol when the transaction's currency is known.
func WriteXLSX(w io.Writer, txns []builder.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(xlsxSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(xlsxSheet); err == nil {
		f.SetActiveSheet(index)
	}
	_ = f.DeleteSheet("Sheet1")

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(xlsxSheet, cell, h)
	}

	for i := range txns {
		t := &txns[i]
		rowNum := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(xlsxSheet, cell, v)
		}
		if t.HasDate() {
			write(1, t.Date.Format("2006-01-02"))
		}
		write(2, t.Description)
		write(3, display(t.Debit, t.Currency))
		write(4, display(t.Credit, t.Currency))
		write(5, display(t.Amount, t.Currency))
		write(6, display(t.Balance, t.Currency))
		write(7, t.Currency)
		write(8, t.PageIndex)
		write(9, t.ID)
	}

	_ = f.SetColWidth(xlsxSheet, "A", "A", 12)
	_ = f.SetColWidth(xlsxSheet, "B", "B", 42)
	_ = f.SetColWidth(xlsxSheet, "C", "F", 14)
	_ = f.SetColWidth(xlsxSheet, "I", "I", 42)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func display(d *decimal.Decimal, currency string) string {
	if d == nil {
		return ""
	}
	if money.KnownCurrency(currency) {
		return money.Format(*d, currency)
	}
	return d.StringFixed(2)
}
