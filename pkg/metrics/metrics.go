// Package metrics exposes Prometheus instruments for the statement pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statement_documents_processed_total",
		Help: "Statement documents processed, by outcome.",
	}, []string{"status"})

	PagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_pages_processed_total",
		Help: "PDF pages run through the extraction pool.",
	})

	OCRApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_ocr_pages_total",
		Help: "Pages whose text came from OCR.",
	})

	RowsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statement_rows_recovered_total",
		Help: "Candidate rows recovered, by extraction tier.",
	}, []string{"source"})

	ProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "statement_process_duration_seconds",
		Help:    "End to end processing time per document.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	TokensDominateAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_tokens_dominate_alerts_total",
		Help: "Documents where the token tier produced most rows.",
	})
)

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
