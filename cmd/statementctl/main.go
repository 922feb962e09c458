// statementctl processes bank-statement PDFs from the command line and
// prints one JSON result per input file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/FutureFinance-ai/statement-pipeline/internal/artifacts"
	"github.com/FutureFinance-ai/statement-pipeline/internal/export"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/ocr"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/config"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/metrics"
)

type fileOutcome struct {
	File   string            `json:"file"`
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Result *statement.Result `json:"result,omitempty"`
}

func main() {
	var (
		accountID      = flag.String("account", "", "account id to stamp on transactions")
		password       = flag.String("password", "", "password for encrypted PDFs")
		openingStr     = flag.String("opening", "", "known opening balance, e.g. 10000.00")
		closingStr     = flag.String("closing", "", "known closing balance")
		dropDuplicates = flag.Bool("drop-duplicates", false, "remove flagged duplicate transactions")
		outDir         = flag.String("out", "", "directory for CSV/XLSX exports")
		csvOut         = flag.Bool("csv", false, "write a CSV export per document")
		xlsxOut        = flag.Bool("xlsx", false, "write an XLSX export per document")
		parallel       = flag.Int("parallel", 2, "documents processed concurrently")
		metricsAddr    = flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	)
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: statementctl [flags] statement.pdf [more.pdf ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	opening, err := parseBalance(*openingStr)
	if err != nil {
		logger.Error("bad_opening_balance", "value", *openingStr, "error", err)
		os.Exit(2)
	}
	closing, err := parseBalance(*closingStr)
	if err != nil {
		logger.Error("bad_closing_balance", "value", *closingStr, "error", err)
		os.Exit(2)
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics_server_failed", "addr", *metricsAddr, "error", err)
			}
		}()
	}

	var engine extract.OCREngine
	if cfg.OCR.Enabled {
		tess, err := ocr.NewTesseract(cfg.OCR, logger)
		if err != nil {
			logger.Warn("ocr_unavailable", "error", err)
		} else {
			engine = tess
		}
	}

	store, err := artifacts.NewLocalStore(cfg.Artifacts.Dir, logger)
	if err != nil {
		logger.Error("artifacts_store_failed", "dir", cfg.Artifacts.Dir, "error", err)
		os.Exit(1)
	}

	processor := statement.New(cfg, extract.New(cfg, engine, logger), store, logger)

	ctx := context.Background()
	outcomes := make([]fileOutcome, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInt(1, *parallel))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			outcomes[i] = processFile(ctx, processor, path, statement.Request{
				AccountID:      *accountID,
				Password:       *password,
				OpeningBalance: opening,
				ClosingBalance: closing,
				DropDuplicates: *dropDuplicates,
			})
			return nil
		})
	}
	_ = g.Wait()

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, oc := range outcomes {
		if oc.Status != "OK" {
			failed++
		}
		if err := enc.Encode(oc); err != nil {
			logger.Error("encode_result_failed", "file", oc.File, "error", err)
			failed++
		}
		if oc.Result != nil && (*csvOut || *xlsxOut) {
			writeExports(logger, oc, *outDir, *csvOut, *xlsxOut)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func processFile(ctx context.Context, processor *statement.Processor, path string, req statement.Request) fileOutcome {
	content, err := os.ReadFile(path)
	if err != nil {
		return fileOutcome{File: path, Status: string(statement.StatusPDFLoadFailed), Error: err.Error()}
	}
	req.Content = content
	req.Filename = filepath.Base(path)

	result, err := processor.Process(ctx, req)
	if err != nil {
		status := statement.StatusOf(err)
		if status == "" {
			status = statement.StatusPDFLoadFailed
		}
		return fileOutcome{File: path, Status: string(status), Error: err.Error()}
	}
	return fileOutcome{File: path, Status: "OK", Result: result}
}

func writeExports(logger *slog.Logger, oc fileOutcome, outDir string, csvOut, xlsxOut bool) {
	if outDir == "" {
		outDir = "."
	}
	base := strings.TrimSuffix(filepath.Base(oc.File), filepath.Ext(oc.File))

	if csvOut {
		writeExport(logger, filepath.Join(outDir, base+".csv"), func(f *os.File) error {
			return export.WriteCSV(f, oc.Result.Transactions)
		})
	}
	if xlsxOut {
		writeExport(logger, filepath.Join(outDir, base+".xlsx"), func(f *os.File) error {
			return export.WriteXLSX(f, oc.Result.Transactions)
		})
	}
}

func writeExport(logger *slog.Logger, path string, write func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		logger.Error("export_create_failed", "path", path, "error", err)
		return
	}
	defer f.Close()
	if err := write(f); err != nil {
		logger.Error("export_write_failed", "path", path, "error", err)
	}
}

func parseBalance(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
