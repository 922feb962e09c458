package statement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/config"
)

var pdfBytes = []byte("%PDF-1.4 test fixture")

type stubExtractor struct {
	result *extract.Result
	err    error
	calls  int
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte, _ string) (*extract.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type memStore struct {
	results   map[string]*Result
	artifacts map[string]*Artifacts
	raw       map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{
		results:   map[string]*Result{},
		artifacts: map[string]*Artifacts{},
		raw:       map[string][]byte{},
	}
}

func (m *memStore) Has(documentID string) bool { return m.results[documentID] != nil }

func (m *memStore) GetResult(documentID string) (*Result, error) {
	r, ok := m.results[documentID]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

func (m *memStore) Persist(documentID string, result *Result, artifacts *Artifacts, rawPDF []byte) error {
	m.results[documentID] = result
	m.artifacts[documentID] = artifacts
	m.raw[documentID] = rawPDF
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor(cfg *config.Config, ex DocumentExtractor, store Store) *Processor {
	p := New(cfg, ex, store, testLogger())
	p.decrypt = func(content []byte, _ string) ([]byte, error) { return content, nil }
	return p
}

// statementExtract mimics extraction of a one-page statement with a single
// header-mapped table.
func statementExtract() *extract.Result {
	table := extract.Table{
		{"Date", "Narration", "Debit", "Credit", "Balance"},
		{"01/02/2024", "Opening", "", "", ""},
		{"02/02/2024", "Coffee Shop", "500.00", "", "9500.00"},
		{"03/02/2024", "Salary", "", "10000.00", "19500.00"},
	}
	return &extract.Result{
		DocumentID:      extract.DocumentID(pdfBytes),
		PagesCount:      1,
		PageTexts:       []string{"Statement of Account"},
		PageTables:      [][]extract.Table{{table}},
		PageWords:       make([][]extract.Word, 1),
		ImageBasedPages: []bool{false},
		FirstPageText:   "Statement of Account",
		Pages:           []extract.PageMeta{{TablesFound: 1}},
	}
}

func TestProcess_Statement(t *testing.T) {
	ex := &stubExtractor{result: statementExtract()}
	p := newTestProcessor(config.Load(), ex, nil)

	opening := decimal.RequireFromString("10000.00")
	res, err := p.Process(context.Background(), Request{
		Content:        pdfBytes,
		Filename:       "statement.pdf",
		AccountID:      "acct-1",
		OpeningBalance: &opening,
	})
	require.NoError(t, err)
	assert.Equal(t, extract.DocumentID(pdfBytes), res.DocumentID)
	assert.Equal(t, 1, res.PagesCount)

	require.Len(t, res.Transactions, 2, "the row with no monetary value is dropped")
	first, second := res.Transactions[0], res.Transactions[1]
	require.NotNil(t, first.Amount)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-500")))
	assert.Equal(t, "Coffee Shop", first.Description)
	require.NotNil(t, second.Amount)
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("10000")))

	require.NotNil(t, res.Validation.BalanceCheckPassed)
	assert.True(t, *res.Validation.BalanceCheckPassed)
	require.NotNil(t, res.Validation.ExpectedClosing)
	assert.True(t, res.Validation.ExpectedClosing.Equal(decimal.RequireFromString("19500")))

	assert.Equal(t, 3, res.Metrics.RowsFromTables)
	assert.Empty(t, res.Parser, "no institution parser claims a generic statement")
}

func TestProcess_Rejections(t *testing.T) {
	makeProcessor := func() *Processor {
		return newTestProcessor(config.Load(), &stubExtractor{result: statementExtract()}, nil)
	}

	t.Run("wrong extension", func(t *testing.T) {
		res, err := makeProcessor().Process(context.Background(), Request{Content: pdfBytes, Filename: "statement.docx"})
		assert.Nil(t, res)
		assert.Equal(t, StatusInvalidType, StatusOf(err))
	})

	t.Run("not a pdf", func(t *testing.T) {
		res, err := makeProcessor().Process(context.Background(), Request{Content: []byte("hello world")})
		assert.Nil(t, res)
		assert.Equal(t, StatusInvalidType, StatusOf(err))
	})

	t.Run("file too large", func(t *testing.T) {
		cfg := config.Load()
		cfg.Limits.MaxFileSizeMB = 0
		p := newTestProcessor(cfg, &stubExtractor{result: statementExtract()}, nil)
		res, err := p.Process(context.Background(), Request{Content: pdfBytes})
		assert.Nil(t, res)
		assert.Equal(t, StatusFileTooLarge, StatusOf(err))
	})

	t.Run("encrypted without password", func(t *testing.T) {
		p := makeProcessor()
		p.decrypt = func([]byte, string) ([]byte, error) {
			return nil, statusErr(StatusEncrypted, "document is password protected")
		}
		res, err := p.Process(context.Background(), Request{Content: pdfBytes})
		assert.Nil(t, res)
		assert.Equal(t, StatusEncrypted, StatusOf(err))
	})

	t.Run("extraction failure", func(t *testing.T) {
		p := newTestProcessor(config.Load(), &stubExtractor{err: errors.New("corrupt xref")}, nil)
		res, err := p.Process(context.Background(), Request{Content: pdfBytes})
		assert.Nil(t, res)
		assert.Equal(t, StatusPDFLoadFailed, StatusOf(err))
	})
}

func TestProcess_CacheHit(t *testing.T) {
	store := newMemStore()
	docID := extract.DocumentID(pdfBytes)
	store.results[docID] = &Result{DocumentID: docID, PagesCount: 7}

	ex := &stubExtractor{result: statementExtract()}
	p := newTestProcessor(config.Load(), ex, store)

	res, err := p.Process(context.Background(), Request{Content: pdfBytes, Filename: "statement.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 7, res.PagesCount, "persisted result returned verbatim")
	assert.Zero(t, ex.calls, "a known document is never re-extracted")
}

func TestProcess_Persist(t *testing.T) {
	cfg := config.Load()
	cfg.Artifacts.IncludeTexts = true
	store := newMemStore()
	p := newTestProcessor(cfg, &stubExtractor{result: statementExtract()}, store)

	res, err := p.Process(context.Background(), Request{Content: pdfBytes, Filename: "statement.pdf"})
	require.NoError(t, err)

	persisted, ok := store.results[res.DocumentID]
	require.True(t, ok)
	assert.Equal(t, res, persisted)

	artifacts := store.artifacts[res.DocumentID]
	require.NotNil(t, artifacts)
	assert.Equal(t, 1, artifacts.PagesCount)
	assert.Equal(t, []string{"Statement of Account"}, artifacts.PageTexts)
	assert.Nil(t, artifacts.PageWords, "word dumps stay opt-in")
	assert.Nil(t, store.raw[res.DocumentID], "raw pdf stays opt-in")
}

func TestProcess_InstitutionParser(t *testing.T) {
	table := extract.Table{
		{"Tran Date", "Remark", "Type", "Amt", "Bal"},
		{"01/02/2024", "Transfer to market", "DR", "500.00", "9500.00"},
		{"02/02/2024", "Wallet top up", "CR", "10000.00", "19500.00"},
	}
	extracted := &extract.Result{
		DocumentID:      extract.DocumentID(pdfBytes),
		PagesCount:      1,
		PageTexts:       []string{"OPay Digital Services Account Statement"},
		PageTables:      [][]extract.Table{{table}},
		PageWords:       make([][]extract.Word, 1),
		ImageBasedPages: []bool{false},
		FirstPageText:   "OPay Digital Services Account Statement",
		Pages:           []extract.PageMeta{{TablesFound: 1}},
	}
	p := newTestProcessor(config.Load(), &stubExtractor{result: extracted}, nil)

	res, err := p.Process(context.Background(), Request{Content: pdfBytes, Filename: "opay.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "OPAY", res.Parser)
	require.Len(t, res.Transactions, 2)
	require.NotNil(t, res.Transactions[0].Amount)
	assert.True(t, res.Transactions[0].Amount.Equal(decimal.RequireFromString("-500")),
		"DR marker flips the unsigned amount")
	assert.Equal(t, 2, res.Metrics.RowsFromTables)
}
