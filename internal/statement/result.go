package statement

import (
	"github.com/shopspring/decimal"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/builder"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/fingerprint"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/rows"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/validate"
)

// Request carries one document through the pipeline. Content is the raw PDF
// bytes; everything else is optional caller context.
type Request struct {
	Content        []byte
	Filename       string
	AccountID      string
	Password       string
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
	DropDuplicates bool
}

// Result is the full processing outcome for one document, suitable for
// persistence or as an API response body.
type Result struct {
	DocumentID   string                  `json:"document_id"`
	Filename     string                  `json:"filename,omitempty"`
	PagesCount   int                     `json:"pages_count"`
	Fingerprint  fingerprint.Fingerprint `json:"fingerprint"`
	Validation   validate.Summary        `json:"validation"`
	Transactions []builder.Transaction   `json:"transactions"`
	OCR          extract.OCRInfo         `json:"ocr"`
	Metrics      rows.Metrics            `json:"metrics"`
	Parser       string                  `json:"parser,omitempty"`
}

// Artifacts is the replay/debug bundle persisted next to a Result.
type Artifacts struct {
	PagesCount      int                `json:"pages_count"`
	PageTables      [][]extract.Table  `json:"page_tables"`
	ImageBasedPages []bool             `json:"image_based_pages"`
	FirstPageText   string             `json:"first_page_text"`
	Pages           []extract.PageMeta `json:"pages"`
	OCR             extract.OCRInfo    `json:"ocr"`
	PageTexts       []string           `json:"page_texts,omitempty"`
	PageWords       [][]extract.Word   `json:"page_words,omitempty"`
}

// Store persists results keyed by document id. Has and GetResult make
// reprocessing of identical bytes a cache hit instead of repeated work.
type Store interface {
	Has(documentID string) bool
	GetResult(documentID string) (*Result, error)
	Persist(documentID string, result *Result, artifacts *Artifacts, rawPDF []byte) error
}
