package extract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/FutureFinance-ai/statement-pipeline/pkg/config"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/metrics"
)

// OCREngine recognizes text on a single page of a PDF document. The engine
// owns bitmap preparation and throttling; a failed recognition returns an
// error and the page degrades to its native (possibly empty) text.
type OCREngine interface {
	RecognizePage(ctx context.Context, pdfContent []byte, pageNumber int) (string, error)
	Name() string
	DPI() int
}

// Extractor turns raw PDF bytes into a Result. Pages are processed in
// parallel by a bounded worker pool and reassembled in page order.
type Extractor struct {
	cfg    *config.Config
	engine OCREngine // nil disables OCR
	logger *slog.Logger
}

// New creates an Extractor. engine may be nil when OCR is unavailable.
func New(cfg *config.Config, engine OCREngine, logger *slog.Logger) *Extractor {
	return &Extractor{cfg: cfg, engine: engine, logger: logger}
}

// pageData is the outcome of processing a single page.
type pageData struct {
	text       string
	tables     []Table
	words      []Word
	imageBased bool
	meta       PageMeta
	ocrApplied bool
}

// Extract computes the document id, fans pages out across the worker pool
// and reassembles per-page results by index. Only a document that cannot be
// opened at all fails; individual page failures degrade to empty values.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename string) (*Result, error) {
	documentID := DocumentID(content)

	pageCount, err := api.PageCount(bytes.NewReader(content), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if _, err := pdf.NewReader(bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := pageCount
	if pages > e.cfg.Limits.MaxPages {
		e.logger.Warn("pdf_pages_exceed_limit",
			"document_id", documentID,
			"pages", pageCount,
			"max_pages", e.cfg.Limits.MaxPages)
		pages = e.cfg.Limits.MaxPages
	}

	results := make([]pageData, pages)
	var ocrBudget atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	workers := e.cfg.Limits.PageWorkers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i := 0; i < pages; i++ {
		idx := i
		g.Go(func() error {
			results[idx] = e.processPage(gctx, content, idx, &ocrBudget)
			metrics.PagesProcessed.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		DocumentID:      documentID,
		Filename:        filename,
		PagesCount:      pages,
		PageTexts:       make([]string, pages),
		PageTables:      make([][]Table, pages),
		PageWords:       make([][]Word, pages),
		ImageBasedPages: make([]bool, pages),
		Pages:           make([]PageMeta, pages),
		OCR: OCRInfo{
			Enabled:      e.ocrEnabled(),
			AppliedPages: []int{},
			DPI:          e.cfg.OCR.DPI,
			MaxPages:     e.cfg.OCR.MaxPages,
		},
	}
	if e.engine != nil {
		res.OCR.Engine = e.engine.Name()
	}
	for idx, data := range results {
		res.PageTexts[idx] = data.text
		res.PageTables[idx] = data.tables
		res.PageWords[idx] = data.words
		res.ImageBasedPages[idx] = data.imageBased
		res.Pages[idx] = data.meta
	}
	for idx := range results {
		if results[idx].ocrApplied {
			res.OCR.AppliedPages = append(res.OCR.AppliedPages, idx)
			metrics.OCRApplied.Inc()
		}
	}
	if pages > 0 {
		res.FirstPageText = res.PageTexts[0]
	}

	e.logger.Info("pdf_extracted",
		"document_id", documentID,
		"pages", res.PagesCount,
		"ocr_pages", res.OCR.AppliedPages)
	return res, nil
}

// processPage extracts text, tables and tokens for one page. All failures
// inside the page, including panics from malformed content streams, degrade
// to empty values so one bad page cannot sink the document.
func (e *Extractor) processPage(ctx context.Context, content []byte, idx int, ocrBudget *atomic.Int32) (data pageData) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("page_extract_panic", "page", idx, "cause", fmt.Sprint(r))
			data = pageData{meta: PageMeta{TablesStrategy: "none"}}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		e.logger.Warn("page_open_failed", "page", idx, "error", err)
		return pageData{meta: PageMeta{TablesStrategy: "none"}}
	}
	page := reader.Page(idx + 1)
	if page.V.IsNull() {
		return pageData{meta: PageMeta{TablesStrategy: "none"}}
	}

	width, height := pageSize(page)
	rotation := int(page.V.Key("Rotate").Int64())
	hasImages := pageHasImages(page)

	text, err := page.GetPlainText(nil)
	if err != nil {
		text = ""
	}

	var words []Word
	func() {
		defer func() { _ = recover() }() // malformed content streams only lose tokens
		words = wordsFromContent(page.Content().Text, height)
	}()

	tables, strategy := buildTables(words)

	imageBased := hasImages && strings.TrimSpace(text) == ""
	ocrApplied := false
	if e.ocrEnabled() && strings.TrimSpace(text) == "" && (imageBased || hasImages) &&
		reserveOCRSlot(ocrBudget, int32(e.cfg.OCR.MaxPages)) {
		if ocrText, err := e.engine.RecognizePage(ctx, content, idx+1); err != nil {
			e.logger.Warn("ocr_failed", "page", idx, "error", err)
		} else if strings.TrimSpace(ocrText) != "" {
			text = ocrText
			ocrApplied = true
		}
	}

	text = truncateRunes(text, e.cfg.Limits.MaxCharsPerPage)

	// Token payloads travel downstream only when no table was found (the
	// token tier needs them) or when artifact inclusion asks for them.
	keptWords := words
	if len(tables) > 0 && !e.cfg.Artifacts.IncludeWords {
		keptWords = nil
	}

	return pageData{
		text:       text,
		tables:     tables,
		words:      keptWords,
		imageBased: imageBased,
		ocrApplied: ocrApplied,
		meta: PageMeta{
			Width:          width,
			Height:         height,
			Rotation:       rotation,
			HasImages:      hasImages,
			TablesFound:    len(tables),
			TablesStrategy: strategy,
			WordsFound:     len(words),
			CharsCount:     len(text),
			OCRApplied:     ocrApplied,
		},
	}
}

func (e *Extractor) ocrEnabled() bool {
	return e.engine != nil && e.cfg.OCR.Enabled
}

// reserveOCRSlot claims one page of the document-wide OCR budget.
func reserveOCRSlot(budget *atomic.Int32, max int32) bool {
	for {
		n := budget.Load()
		if n >= max {
			return false
		}
		if budget.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// truncateRunes caps text at max bytes, backing off so the cut never splits
// a multi-byte rune.
func truncateRunes(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

// DocumentID is the idempotency key for raw statement bytes.
func DocumentID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func pageSize(p pdf.Page) (width, height float64) {
	box := p.V.Key("MediaBox")
	if box.Len() == 4 {
		width = box.Index(2).Float64() - box.Index(0).Float64()
		height = box.Index(3).Float64() - box.Index(1).Float64()
	}
	return width, height
}

func pageHasImages(p pdf.Page) bool {
	xobjects := p.V.Key("Resources").Key("XObject")
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			return true
		}
	}
	return false
}
