// Package fingerprint guesses a statement's provenance from its first page.
// The guess drives parser selection; it never rewrites extraction output.
package fingerprint

import (
	"regexp"
	"strings"

	"github.com/FutureFinance-ai/statement-pipeline/internal/statement/extract"
)

// Anchors are the structural identifiers found on the first page.
type Anchors struct {
	AccountNumbers []string `json:"account_number,omitempty"`
	IBANs          []string `json:"iban,omitempty"`
	SortCodes      []string `json:"sort_code,omitempty"`
	BVNs           []string `json:"bvn,omitempty"`
	RoutingNumbers []string `json:"routing_number,omitempty"`
}

// Kinds counts how many distinct anchor kinds were found.
func (a Anchors) Kinds() int {
	n := 0
	for _, s := range [][]string{a.AccountNumbers, a.IBANs, a.SortCodes, a.BVNs, a.RoutingNumbers} {
		if len(s) > 0 {
			n++
		}
	}
	return n
}

// Fingerprint is a confidence-scored provenance guess.
type Fingerprint struct {
	DocumentID string  `json:"document_id"`
	PagesCount int     `json:"pages_count"`
	Bank       string  `json:"bank,omitempty"`
	Currency   string  `json:"currency,omitempty"`
	Country    string  `json:"country,omitempty"`
	Anchors    Anchors `json:"anchors"`
	Confidence float64 `json:"confidence"`
}

var (
	accountNumberRe = regexp.MustCompile(`(?i)account\s*(?:no\.|number)[:\s]*([0-9\-\s]{6,})`)
	ibanRe          = regexp.MustCompile(`\b[A-Z]{2}[0-9A-Z]{13,34}\b`)
	sortCodeRe      = regexp.MustCompile(`(?i)sort\s*code[:\s]*([0-9\-]{6,8})`)
	bvnRe           = regexp.MustCompile(`(?i)\bbvn[:\s]*([0-9]{11})\b`)
	routingRe       = regexp.MustCompile(`(?i)routing\s*number[:\s]*([0-9\-]{5,})`)
)

type hint struct {
	re     *regexp.Regexp
	code   string
	weight float64
}

// Order encodes priority: first match wins per category.
var currencyHints = []hint{
	{regexp.MustCompile(`\bngn\b|₦`), "NGN", 0.8},
	{regexp.MustCompile(`\busd\b|\$`), "USD", 0.6},
	{regexp.MustCompile(`\beur\b|€`), "EUR", 0.6},
	{regexp.MustCompile(`\bgpb\b|\bgbp\b|£`), "GBP", 0.6},
	{regexp.MustCompile(`\binr\b|₹`), "INR", 0.6},
	{regexp.MustCompile(`\bcad\b`), "CAD", 0.4},
}

var bankHints = []hint{
	{regexp.MustCompile(`\baccess bank\b`), "ACCESS_BANK", 0.9},
	{regexp.MustCompile(`\bgtbank\b|guaranty trust`), "GTBANK", 0.9},
	{regexp.MustCompile(`\bzenith bank\b`), "ZENITH", 0.9},
	{regexp.MustCompile(`\bfirst bank\b|firstbank`), "FIRST_BANK", 0.9},
	{regexp.MustCompile(`\bunited bank for africa\b|\buba\b`), "UBA", 0.8},
	{regexp.MustCompile(`\bpolaris bank\b`), "POLARIS", 0.8},
	{regexp.MustCompile(`\bunion bank\b`), "UNION_BANK", 0.8},
	{regexp.MustCompile(`\bsterling bank\b`), "STERLING", 0.8},
	{regexp.MustCompile(`\bfidelity bank\b`), "FIDELITY", 0.8},
	{regexp.MustCompile(`\becobank\b`), "ECOBANK", 0.8},
	{regexp.MustCompile(`\bkeystone bank\b`), "KEYSTONE", 0.8},
	{regexp.MustCompile(`\bfcmb\b|first city monument`), "FCMB", 0.8},
	{regexp.MustCompile(`\bstanbic ibtc\b`), "STANBIC_IBTC", 0.8},
	{regexp.MustCompile(`\bopay\b`), "OPAY", 0.95},
}

// nigerianBanks maps banks whose identity pins the country to NG.
var nigerianBanks = map[string]bool{
	"ACCESS_BANK": true, "GTBANK": true, "ZENITH": true, "FIRST_BANK": true,
	"UBA": true, "POLARIS": true, "UNION_BANK": true, "STERLING": true,
	"FIDELITY": true, "ECOBANK": true, "KEYSTONE": true, "FCMB": true,
	"STANBIC_IBTC": true,
}

// Detect fingerprints the first page. Pure function of the extraction
// result; safe to call concurrently.
func Detect(extracted *extract.Result) Fingerprint {
	firstText := extracted.FirstPageText
	textNorm := strings.ToLower(firstText)

	fp := Fingerprint{
		DocumentID: extracted.DocumentID,
		PagesCount: extracted.PagesCount,
		Anchors: Anchors{
			AccountNumbers: captures(accountNumberRe, firstText),
			IBANs:          ibanRe.FindAllString(firstText, -1),
			SortCodes:      captures(sortCodeRe, firstText),
			BVNs:           captures(bvnRe, firstText),
			RoutingNumbers: captures(routingRe, firstText),
		},
	}

	var bankWeight, currencyWeight float64
	for _, h := range bankHints {
		if h.re.MatchString(textNorm) {
			fp.Bank = h.code
			bankWeight = h.weight
			break
		}
	}
	for _, h := range currencyHints {
		if h.re.MatchString(textNorm) {
			fp.Currency = h.code
			currencyWeight = h.weight
			break
		}
	}
	if nigerianBanks[fp.Bank] {
		fp.Country = "NG"
	}

	confidence := 0.2
	if fp.Bank != "" {
		confidence += bankWeight
	}
	if fp.Currency != "" {
		confidence += currencyWeight * 0.5
	}
	if kinds := fp.Anchors.Kinds(); kinds > 0 {
		bonus := 0.1 * float64(kinds)
		if bonus > 0.4 {
			bonus = 0.4
		}
		confidence += bonus
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	fp.Confidence = confidence
	return fp
}

func captures(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
