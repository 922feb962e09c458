// Package parsers holds institution-specific statement parsers. The generic
// row normalizer handles anything no parser claims; new institutions are
// added by registering a parser, never by widening the generic path.
package parsers

import (
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/fingerprint"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/rows"
)

// Parser converts a known institution's layout into canonical rows.
// NormalizeRows returning an empty slice hands the document back to the
// generic normalizer.
type Parser interface {
	Name() string
	Supports(fp fingerprint.Fingerprint) bool
	NormalizeRows(extracted *extract.Result, fp fingerprint.Fingerprint) []rows.Row
}

// Registry selects the first registered parser that claims a document.
type Registry struct {
	parsers []Parser
}

func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// DefaultRegistry wires the known institution parsers in priority order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&OpayParser{},
		&NGGenericParser{},
	)
}

// Select returns the first parser whose Supports reports true, or nil.
func (r *Registry) Select(fp fingerprint.Fingerprint) Parser {
	for _, p := range r.parsers {
		if p.Supports(fp) {
			return p
		}
	}
	return nil
}
