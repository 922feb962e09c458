package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
)

func result(firstPage string) *extract.Result {
	return &extract.Result{
		DocumentID:    "doc-1",
		PagesCount:    2,
		FirstPageText: firstPage,
	}
}

func TestDetect(t *testing.T) {
	t.Run("nigerian bank statement", func(t *testing.T) {
		fp := Detect(result(`GTBank Plc
Account Number: 0123456789
BVN: 22123456789
Statement of Account ₦`))

		assert.Equal(t, "GTBANK", fp.Bank)
		assert.Equal(t, "NGN", fp.Currency)
		assert.Equal(t, "NG", fp.Country)
		require.Len(t, fp.Anchors.AccountNumbers, 1)
		assert.Equal(t, "0123456789", fp.Anchors.AccountNumbers[0])
		require.Len(t, fp.Anchors.BVNs, 1)
		assert.Equal(t, "22123456789", fp.Anchors.BVNs[0])
		// 0.2 base + 0.9 bank + 0.4 currency + 0.2 anchors, clamped.
		assert.InDelta(t, 1.0, fp.Confidence, 0.001)
	})

	t.Run("opay wallet has no country", func(t *testing.T) {
		fp := Detect(result("OPay Digital Services statement NGN"))
		assert.Equal(t, "OPAY", fp.Bank)
		assert.Equal(t, "NGN", fp.Currency)
		assert.Empty(t, fp.Country)
	})

	t.Run("first currency match wins", func(t *testing.T) {
		fp := Detect(result("Amounts in NGN and USD"))
		assert.Equal(t, "NGN", fp.Currency)
	})

	t.Run("uk statement", func(t *testing.T) {
		fp := Detect(result("Sort Code: 20-44-71 IBAN GB29NWBK60161331926819 £"))
		assert.Equal(t, "GBP", fp.Currency)
		require.Len(t, fp.Anchors.SortCodes, 1)
		assert.Equal(t, "20-44-71", fp.Anchors.SortCodes[0])
		require.Len(t, fp.Anchors.IBANs, 1)
	})

	t.Run("unrecognized text keeps base confidence", func(t *testing.T) {
		fp := Detect(result("just some words"))
		assert.Empty(t, fp.Bank)
		assert.Empty(t, fp.Currency)
		assert.Empty(t, fp.Country)
		assert.InDelta(t, 0.2, fp.Confidence, 0.001)
	})

	t.Run("empty first page", func(t *testing.T) {
		fp := Detect(result(""))
		assert.Equal(t, "doc-1", fp.DocumentID)
		assert.Equal(t, 2, fp.PagesCount)
		assert.Zero(t, fp.Anchors.Kinds())
	})
}
