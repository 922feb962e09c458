// Package artifacts persists processing results and replay bundles on the
// local filesystem, one directory per document hash.
package artifacts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement"
)

const (
	resultFile    = "result.json"
	artifactsFile = "artifacts.json"
	rawFile       = "raw.pdf"
	manifestFile  = "manifest.json"
)

// LocalStore implements statement.Store on a local directory tree.
type LocalStore struct {
	basePath string
	logger   *slog.Logger
}

// manifest records one persisted bundle for audit and replay tooling.
type manifest struct {
	ID         uuid.UUID `json:"id"`
	DocumentID string    `json:"document_id"`
	StoredAt   time.Time `json:"stored_at"`
	Files      []string  `json:"files"`
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(basePath string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts directory: %w", err)
	}
	return &LocalStore{basePath: basePath, logger: logger}, nil
}

// docDir fans documents out by hash prefix so no single directory grows
// unbounded.
func (s *LocalStore) docDir(documentID string) string {
	if len(documentID) < 2 {
		return filepath.Join(s.basePath, documentID)
	}
	return filepath.Join(s.basePath, documentID[:2], documentID)
}

// Has reports whether a completed result exists for the document.
func (s *LocalStore) Has(documentID string) bool {
	_, err := os.Stat(filepath.Join(s.docDir(documentID), resultFile))
	return err == nil
}

// GetResult loads a previously persisted result.
func (s *LocalStore) GetResult(documentID string) (*statement.Result, error) {
	data, err := os.ReadFile(filepath.Join(s.docDir(documentID), resultFile))
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var result statement.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}

// Persist writes the bundle. The result file lands last so Has never
// observes a half-written bundle.
func (s *LocalStore) Persist(documentID string, result *statement.Result, bundle *statement.Artifacts, rawPDF []byte) error {
	dir := s.docDir(documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	files := []string{artifactsFile, resultFile}
	if err := writeJSON(filepath.Join(dir, artifactsFile), bundle); err != nil {
		return err
	}
	if rawPDF != nil {
		if err := os.WriteFile(filepath.Join(dir, rawFile), rawPDF, 0o600); err != nil {
			return fmt.Errorf("write raw pdf: %w", err)
		}
		files = append(files, rawFile)
	}
	if err := writeJSON(filepath.Join(dir, manifestFile), manifest{
		ID:         uuid.New(),
		DocumentID: documentID,
		StoredAt:   time.Now().UTC(),
		Files:      files,
	}); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, resultFile), result); err != nil {
		return err
	}
	s.logger.Debug("artifacts_persisted", "document_id", documentID, "dir", dir)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
