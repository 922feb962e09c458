// Package pii redacts sensitive identifiers from transaction text with
// stable one-way tokens, so equal values correlate across runs without
// exposing the original.
package pii

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/builder"
	"github.com/FutureFinance-ai/statement-pipeline/pkg/config"
)

var (
	ibanRe    = regexp.MustCompile(`\b[A-Z]{2}[0-9A-Z]{13,34}\b`)
	panRe     = regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`)
	bvnRe     = regexp.MustCompile(`\b\d{11}\b`)
	sortRe    = regexp.MustCompile(`\b\d{2}-\d{2}-\d{2}\b`)
	acctRe    = regexp.MustCompile(`(?i)(?:(?:account\s*(?:no\.|number)[:\s]*)?[#:;\s-]*)(?:\d[\s-]?){8,12}\b`)
	routingRe = regexp.MustCompile(`(?i)routing\s*number[:\s-]*[0-9\-\s]{9,}`)
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	nonDigitRe = regexp.MustCompile(`\D`)
	spaceRe    = regexp.MustCompile(`\s`)
)

// Masker applies the substitution cascade. With AccountNumbersOnly (the
// default) only account-like identifiers are touched; the full cascade also
// covers card PANs, national ids, sort codes, routing numbers and emails.
type Masker struct {
	accountOnly bool
}

func NewMasker(cfg config.PIIConfig) *Masker {
	return &Masker{accountOnly: cfg.AccountNumbersOnly}
}

// Mask returns masked copies of the transactions. Monetary fields are never
// touched; only narration text is rewritten.
func (m *Masker) Mask(transactions []builder.Transaction) []builder.Transaction {
	out := make([]builder.Transaction, len(transactions))
	copy(out, transactions)
	for i := range out {
		out[i].Description = m.MaskText(out[i].Description)
		out[i].Raw.Description = m.MaskText(out[i].Raw.Description)
	}
	return out
}

// MaskText runs the cascade over one string. Order matters: the most
// specific patterns run first so an IBAN is not half-eaten by the generic
// account-number rule.
func (m *Masker) MaskText(text string) string {
	s := ibanRe.ReplaceAllStringFunc(text, func(match string) string {
		return token("IBAN", match, 4)
	})

	if !m.accountOnly {
		s = panRe.ReplaceAllStringFunc(s, func(match string) string {
			digits := nonDigitRe.ReplaceAllString(match, "")
			if len(digits) >= 13 && len(digits) <= 19 && luhnValid(digits) {
				return token("CARD", digits, 4)
			}
			return match
		})
		s = bvnRe.ReplaceAllStringFunc(s, func(match string) string {
			return token("BVN", match, 2)
		})
		s = sortRe.ReplaceAllStringFunc(s, func(match string) string {
			return token("SORT", strings.ReplaceAll(match, "-", ""), 2)
		})
	}

	s = acctRe.ReplaceAllStringFunc(s, func(match string) string {
		digits := nonDigitRe.ReplaceAllString(match, "")
		if len(digits) >= 8 && len(digits) <= 12 {
			return token("ACCT", digits, 4)
		}
		return match
	})

	if !m.accountOnly {
		s = routingRe.ReplaceAllStringFunc(s, func(match string) string {
			digits := nonDigitRe.ReplaceAllString(match, "")
			if len(digits) == 9 {
				return token("ROUTING", digits, 2)
			}
			return match
		})
		s = emailRe.ReplaceAllStringFunc(s, func(match string) string {
			return token("EMAIL", match, 0)
		})
	}
	return s
}

// token builds the stable placeholder. The hash comes from the matched text
// itself, no secret involved; keepLast digits stay visible for humans
// matching statements against their records.
func token(tag, original string, keepLast int) string {
	clean := spaceRe.ReplaceAllString(original, "")
	sum := sha1.Sum([]byte(clean))
	h := hex.EncodeToString(sum[:])[:10]
	if keepLast > 0 {
		digits := nonDigitRe.ReplaceAllString(clean, "")
		if len(digits) > keepLast {
			digits = digits[len(digits)-keepLast:]
		}
		if digits != "" {
			return fmt.Sprintf("<%s:%s:%s>", tag, h, digits)
		}
	}
	return fmt.Sprintf("<%s:%s>", tag, h)
}

func luhnValid(digits string) bool {
	total := 0
	for i := 0; i < len(digits); i++ {
		n := int(digits[len(digits)-1-i] - '0')
		if i%2 == 1 {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		total += n
	}
	return total%10 == 0
}
