package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/builder"
)

func sampleTransactions() []builder.Transaction {
	debit := decimal.RequireFromString("500")
	amount := debit.Neg()
	balance := decimal.RequireFromString("9500")
	credit := decimal.RequireFromString("10000")
	return []builder.Transaction{
		{
			ID:          "aaa111",
			Date:        time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
			Description: "Coffee Shop",
			Amount:      &amount,
			Debit:       &debit,
			Balance:     &balance,
			Currency:    "NGN",
			PageIndex:   0,
		},
		{
			ID:          "bbb222",
			Description: "Salary",
			Amount:      &credit,
			Credit:      &credit,
			Currency:    "NGN",
			PageIndex:   1,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTransactions()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,description,debit,credit,amount,balance,currency,page,id", lines[0])
	assert.Equal(t, "2024-02-02,Coffee Shop,500.00,,-500.00,9500.00,NGN,0,aaa111", lines[1])
	assert.Equal(t, ",Salary,,10000.00,10000.00,,NGN,1,bbb222", lines[2], "dateless rows export an empty date")
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "date,description,debit,credit,amount,balance,currency,page,id", strings.TrimSpace(buf.String()))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTransactions()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, xlsxHeaders, rows[0])
	assert.Equal(t, "Coffee Shop", rows[1][1])
	assert.Contains(t, rows[1][4], "500.00", "amount carries the minor-unit precision")
	assert.Contains(t, rows[1][4], "-", "debit stays signed")
}
