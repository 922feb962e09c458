package rows

import (
	"log/slog"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/fingerprint"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/config"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/metrics"
)

// Metrics counts what each tier recovered; downstream quality gates alert
// when the token tier dominates.
type Metrics struct {
	RowsFromTables  int `json:"rows_from_tables"`
	RowsFromTokens  int `json:"rows_from_tokens"`
	RowsFromText    int `json:"rows_from_text"`
	PagesWithTables int `json:"pages_with_tables"`
	PagesWithTokens int `json:"pages_with_tokens"`
}

// Normalizer runs the three-tier row recovery.
type Normalizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewNormalizer(cfg *config.Config, logger *slog.Logger) *Normalizer {
	return &Normalizer{cfg: cfg, logger: logger}
}

// Normalize converts extraction output into candidate rows. Tables are
// preferred; word tokens run only when tables yielded nothing anywhere, and
// the text scan only when both structured tiers came up empty. The currency
// hint from fingerprinting is stamped onto every row.
func (n *Normalizer) Normalize(extracted *extract.Result, fp fingerprint.Fingerprint) ([]Row, Metrics) {
	var out []Row
	var m Metrics
	earlyStop := n.cfg.Rows.EarlyStopRows

	for pageIndex, tables := range extracted.PageTables {
		seq := 0
		for _, table := range tables {
			rows := fromTable(table, pageIndex, &seq, fp.Currency)
			out = append(out, rows...)
			m.RowsFromTables += len(rows)
		}
		if len(tables) > 0 {
			m.PagesWithTables++
		}
		if earlyStop > 0 && len(out) >= earlyStop {
			n.observe(extracted.DocumentID, out, m)
			return out, m
		}
	}

	if len(out) == 0 {
		for pageIndex, words := range extracted.PageWords {
			if len(words) == 0 {
				continue
			}
			before := len(out)
			out = fromTokens(words, pageIndex, fp.Currency, out)
			if added := len(out) - before; added > 0 {
				m.RowsFromTokens += added
				m.PagesWithTokens++
			}
			if earlyStop > 0 && len(out) >= earlyStop {
				n.observe(extracted.DocumentID, out, m)
				return out, m
			}
		}
	}

	if len(out) == 0 {
		for pageIndex, text := range extracted.PageTexts {
			rows := fromText(text, pageIndex, fp.Currency)
			out = append(out, rows...)
			m.RowsFromText += len(rows)
			if earlyStop > 0 && len(out) >= earlyStop {
				break
			}
		}
	}

	n.observe(extracted.DocumentID, out, m)
	return out, m
}

func (n *Normalizer) observe(documentID string, out []Row, m Metrics) {
	metrics.RowsRecovered.WithLabelValues(string(SourceTable)).Add(float64(m.RowsFromTables))
	metrics.RowsRecovered.WithLabelValues(string(SourceTokens)).Add(float64(m.RowsFromTokens))
	metrics.RowsRecovered.WithLabelValues(string(SourceText)).Add(float64(m.RowsFromText))
	n.logger.Debug("rows_normalized",
		"document_id", documentID,
		"rows", len(out),
		"from_tables", m.RowsFromTables,
		"from_tokens", m.RowsFromTokens,
		"from_text", m.RowsFromText)
}
