package parsers

import (
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/fingerprint"
	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/rows"
)

// NGGenericParser claims Nigerian statements that no bank-specific parser
// handled. It currently yields no rows, deferring to the generic tiers;
// it exists as the hook where NG-wide sign conventions would live.
type NGGenericParser struct{}

func (p *NGGenericParser) Name() string { return "NG_GENERIC" }

func (p *NGGenericParser) Supports(fp fingerprint.Fingerprint) bool {
	return fp.Country == "NG"
}

func (p *NGGenericParser) NormalizeRows(*extract.Result, fingerprint.Fingerprint) []rows.Row {
	return nil
}
