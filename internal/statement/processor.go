// Package statement orchestrates the full bank-statement pipeline:
// extract, fingerprint, normalize, build, validate, mask, persist.
package statement

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/builder"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/fingerprint"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/parsers"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/pii"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/rows"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/validate"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/config"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/metrics"
)

var pdfMagic = []byte("%PDF-")

// DocumentExtractor is the low-level PDF extraction seam.
type DocumentExtractor interface {
	Extract(ctx context.Context, content []byte, filename string) (*extract.Result, error)
}

// Processor runs documents through the pipeline. Construct with New; the
// zero value is not usable.
type Processor struct {
	cfg        *config.Config
	extractor  DocumentExtractor
	registry   *parsers.Registry
	normalizer *rows.Normalizer
	masker     *pii.Masker
	store      Store
	logger     *slog.Logger

	// decrypt is a seam so tests can bypass real PDF cryptography.
	decrypt func(content []byte, password string) ([]byte, error)
}

// New wires a Processor. store may be nil to disable persistence and the
// idempotency cache.
func New(cfg *config.Config, extractor DocumentExtractor, store Store, logger *slog.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		extractor:  extractor,
		registry:   parsers.DefaultRegistry(),
		normalizer: rows.NewNormalizer(cfg, logger),
		masker:     pii.NewMasker(cfg.PII),
		store:      store,
		logger:     logger,
		decrypt:    decryptIfNeeded,
	}
}

// SetDecrypt replaces the PDF decryption step. Tests use it to feed
// synthetic documents that are not real PDFs.
func (p *Processor) SetDecrypt(fn func(content []byte, password string) ([]byte, error)) {
	p.decrypt = fn
}

// Process runs one document end to end. Input rejections come back as
// *StatusError; degraded pages inside an accepted document never fail the
// call, they just contribute less data.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	content, err := p.admit(req)
	if err != nil {
		metrics.DocumentsProcessed.WithLabelValues(string(StatusOf(err))).Inc()
		return nil, err
	}

	// The document id is just a hash of the admitted bytes, so a cached
	// document short-circuits before any extraction work starts.
	documentID := extract.DocumentID(content)
	if p.store != nil && p.store.Has(documentID) {
		if cached, cerr := p.store.GetResult(documentID); cerr == nil {
			p.logger.Info("pdf_cache_hit", "document_id", documentID)
			metrics.DocumentsProcessed.WithLabelValues("cache_hit").Inc()
			return cached, nil
		}
	}

	extracted, err := p.extractor.Extract(ctx, content, req.Filename)
	if err != nil {
		metrics.DocumentsProcessed.WithLabelValues(string(StatusPDFLoadFailed)).Inc()
		return nil, &StatusError{Code: StatusPDFLoadFailed, Message: "pdf extraction failed", Err: err}
	}

	fp := fingerprint.Detect(extracted)

	var candidates []rows.Row
	var rowMetrics rows.Metrics
	parserName := ""
	if parser := p.registry.Select(fp); parser != nil {
		if candidates = parser.NormalizeRows(extracted, fp); len(candidates) > 0 {
			parserName = parser.Name()
			rowMetrics.RowsFromTables = len(candidates)
		}
	}
	if len(candidates) == 0 {
		candidates, rowMetrics = p.normalizer.Normalize(extracted, fp)
	}

	txns := builder.Build(candidates, extracted.DocumentID, req.AccountID)

	opening, closing := req.OpeningBalance, req.ClosingBalance
	if opening == nil || closing == nil {
		autoOpen, autoClose := validate.BalancesFromText(extracted.PageTexts)
		if opening == nil {
			opening = autoOpen
		}
		if closing == nil {
			closing = autoClose
		}
	}

	validated, summary := validate.Statement(txns, validate.Options{
		OpeningBalance: opening,
		ClosingBalance: closing,
		DropDuplicates: req.DropDuplicates,
		DupIncludePage: p.cfg.Metrics.DupIncludePage,
	})
	masked := p.masker.Mask(validated)

	p.alertTokensDominate(extracted.DocumentID, rowMetrics)

	result := &Result{
		DocumentID:   extracted.DocumentID,
		Filename:     req.Filename,
		PagesCount:   extracted.PagesCount,
		Fingerprint:  fp,
		Validation:   summary,
		Transactions: masked,
		OCR:          extracted.OCR,
		Metrics:      rowMetrics,
		Parser:       parserName,
	}
	p.persist(result, extracted, content)

	metrics.DocumentsProcessed.WithLabelValues("ok").Inc()
	metrics.ProcessDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("pdf_processed",
		"document_id", extracted.DocumentID,
		"pages", extracted.PagesCount,
		"transactions", len(masked),
		"parser", parserName,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// admit applies the input-rejection checks and returns the bytes the rest of
// the pipeline works on, decrypted when needed.
func (p *Processor) admit(req Request) ([]byte, error) {
	if req.Filename != "" {
		if ext := strings.ToLower(filepath.Ext(req.Filename)); ext != "" && ext != ".pdf" {
			return nil, statusErr(StatusInvalidType, "only PDF files are supported, got %s", ext)
		}
	}
	if !bytes.HasPrefix(req.Content, pdfMagic) {
		return nil, statusErr(StatusInvalidType, "only PDF files are supported")
	}
	if maxBytes := p.cfg.Limits.MaxFileSizeBytes(); int64(len(req.Content)) > maxBytes {
		return nil, statusErr(StatusFileTooLarge, "file is %d bytes, limit is %d MB", len(req.Content), p.cfg.Limits.MaxFileSizeMB)
	}
	return p.decrypt(req.Content, req.Password)
}

// decryptIfNeeded detects encrypted PDFs and decrypts when a password is
// provided. Unencrypted documents pass through untouched.
func decryptIfNeeded(content []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if _, err := api.PageCount(bytes.NewReader(content), conf); err == nil {
		return content, nil
	} else if !isEncryptionError(err) {
		return nil, &StatusError{Code: StatusPDFLoadFailed, Message: "unreadable pdf", Err: err}
	}
	if password == "" {
		return nil, statusErr(StatusEncrypted, "document is password protected")
	}

	conf = model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = password
	conf.OwnerPW = password
	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(content), &out, conf); err != nil {
		if isEncryptionError(err) {
			return nil, statusErr(StatusPasswordIncorrect, "password did not unlock the document")
		}
		return nil, &StatusError{Code: StatusDecryptionFailed, Message: "decryption failed", Err: err}
	}
	return out.Bytes(), nil
}

func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

// alertTokensDominate warns when most rows bypassed the table tier, a sign
// the layout heuristics are struggling with this document family.
func (p *Processor) alertTokensDominate(documentID string, m rows.Metrics) {
	if !p.cfg.Metrics.TokensDominateAlert {
		return
	}
	total := m.RowsFromTables + m.RowsFromTokens + m.RowsFromText
	if total == 0 {
		return
	}
	ratio := float64(m.RowsFromTokens) / float64(total)
	if ratio >= p.cfg.Metrics.TokensDominateRatio {
		metrics.TokensDominateAlerts.Inc()
		p.logger.Warn("tokens_dominate_rows",
			"document_id", documentID,
			"ratio", ratio,
			"threshold", p.cfg.Metrics.TokensDominateRatio,
			"total_rows", total,
		)
	}
}

// persist writes the result and replay artifacts. Persistence failures are
// logged and swallowed, a processed result is still returned to the caller.
func (p *Processor) persist(result *Result, extracted *extract.Result, rawPDF []byte) {
	if p.store == nil {
		return
	}
	artifacts := &Artifacts{
		PagesCount:      extracted.PagesCount,
		PageTables:      extracted.PageTables,
		ImageBasedPages: extracted.ImageBasedPages,
		FirstPageText:   extracted.FirstPageText,
		Pages:           extracted.Pages,
		OCR:             extracted.OCR,
	}
	if p.cfg.Artifacts.IncludeTexts {
		artifacts.PageTexts = extracted.PageTexts
	}
	if p.cfg.Artifacts.IncludeWords {
		artifacts.PageWords = extracted.PageWords
	}
	var raw []byte
	if p.cfg.Artifacts.IncludeRaw {
		raw = rawPDF
	}
	if err := p.store.Persist(result.DocumentID, result, artifacts, raw); err != nil {
		p.logger.Warn("pdf_persist_failed", "document_id", result.DocumentID, "error", err)
		return
	}
	p.logger.Info("pdf_persisted", "document_id", result.DocumentID)
}
