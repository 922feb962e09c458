// Package ocr recognizes text on image-based statement pages by driving a
// tesseract child process. Recognition is throttled document-wide so a batch
// of scanned statements cannot fork-bomb the host.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"

	_ "image/jpeg"

	_ "golang.org/x/image/tiff"

	"github.com/FutureFinance-ai/statement-pipeline/pkg/config"
)

// maxLongEdge caps the bitmap handed to tesseract. Scans above this are
// downscaled; recognition quality plateaus while runtime keeps growing.
const maxLongEdge = 1800

// Tesseract runs the tesseract binary once per page image.
type Tesseract struct {
	cfg    config.OCRConfig
	logger *slog.Logger
	sem    *semaphore.Weighted
	binary string
}

// NewTesseract locates the tesseract binary. A missing binary is an error so
// callers can fall back to running without OCR.
func NewTesseract(cfg config.OCRConfig, logger *slog.Logger) (*Tesseract, error) {
	binary, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("tesseract not found: %w", err)
	}
	concurrent := cfg.MaxConcurrent
	if concurrent < 1 {
		concurrent = 1
	}
	return &Tesseract{
		cfg:    cfg,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(concurrent)),
		binary: binary,
	}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) DPI() int { return t.cfg.DPI }

// RecognizePage extracts the page's embedded image, normalizes it to PNG and
// feeds it to tesseract. pageNumber is 1-based.
func (t *Tesseract) RecognizePage(ctx context.Context, pdfContent []byte, pageNumber int) (string, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer t.sem.Release(1)

	imgPath, cleanup, err := t.pageImage(pdfContent, pageNumber)
	if err != nil {
		return "", err
	}
	defer cleanup()

	return t.run(ctx, imgPath)
}

// pageImage writes the PDF to a temp dir, extracts the page's images with
// pdfcpu and returns the largest one re-encoded as PNG.
func (t *Tesseract) pageImage(pdfContent []byte, pageNumber int) (string, func(), error) {
	tempDir, err := os.MkdirTemp("", "statement-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tempDir) }

	sourcePath := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(sourcePath, pdfContent, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp pdf: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pages := []string{strconv.Itoa(pageNumber)}
	if err := api.ExtractImagesFile(sourcePath, tempDir, pages, conf); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("extract page %d images: %w", pageNumber, err)
	}

	rawPath, err := largestImage(tempDir)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	normalized, err := normalizePNG(rawPath, filepath.Join(tempDir, "page.png"))
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return normalized, cleanup, nil
}

func (t *Tesseract) run(ctx context.Context, imgPath string) (string, error) {
	args := []string{
		imgPath, "stdout",
		"-l", t.cfg.Languages,
		"--oem", strconv.Itoa(t.cfg.EngineMode),
		"--psm", strconv.Itoa(t.cfg.PageSegMode),
		"--dpi", strconv.Itoa(t.cfg.DPI),
	}
	cmd := exec.CommandContext(ctx, t.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// largestImage picks the biggest extracted image file. A scanned page is
// stored as one full-page image; logos and stamps come out smaller.
func largestImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read image dir: %w", err)
	}
	var best string
	var bestSize int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		default:
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, entry.Name())
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", fmt.Errorf("no page image extracted")
	}
	return best, nil
}

// normalizePNG decodes src, downscales oversized scans and writes PNG to dst.
func normalizePNG(src, dst string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img = downscale(img, maxLongEdge)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create png: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return dst, nil
}

func downscale(img image.Image, longEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= longEdge {
		return img
	}
	scale := float64(longEdge) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
