package rows

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// headerSynonyms maps header cell text, lowercased and space-collapsed, to
// canonical column names.
var headerSynonyms = map[string]string{
	"date":             "date",
	"value date":       "date",
	"transaction date": "date",
	"posting date":     "date",

	"description": "description",
	"details":     "description",
	"narration":   "description",
	"particulars": "description",
	"remarks":     "description",

	"debit":      "debit",
	"withdrawal": "debit",
	"dr":         "debit",
	"credit":     "credit",
	"deposit":    "credit",
	"cr":         "credit",

	"amount":             "amount",
	"transaction amount": "amount",

	"balance":           "balance",
	"running balance":   "balance",
	"available balance": "balance",

	"currency": "currency",
}

var (
	spacesRe = regexp.MustCompile(`\s+`)
	drWordRe = regexp.MustCompile(`\bdr\b|debit|withdraw`)
	crWordRe = regexp.MustCompile(`\bcr\b|credit|deposit`)
)

// standardizeHeader maps one header cell to its canonical column name, or ""
// when the cell is not a recognized header. Resolution order: exact synonym,
// substring hit, then a fuzzy pass that absorbs single-character OCR damage.
func standardizeHeader(token string) string {
	t := spacesRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(token)), " ")
	if t == "" {
		return ""
	}
	if canonical, ok := headerSynonyms[t]; ok {
		return canonical
	}
	switch {
	case strings.Contains(t, "date"):
		return "date"
	case strings.Contains(t, "narration"), strings.Contains(t, "details"), strings.Contains(t, "descr"):
		return "description"
	case drWordRe.MatchString(t):
		return "debit"
	case crWordRe.MatchString(t):
		return "credit"
	case strings.Contains(t, "amount"):
		return "amount"
	case strings.Contains(t, "balance"):
		return "balance"
	case strings.Contains(t, "currency"):
		return "currency"
	}
	// OCR leaves headers one glyph off ("Narrat1on", "Ba1ance").
	if len(t) >= 5 {
		for key, canonical := range headerSynonyms {
			if len(key) >= 5 && fuzzy.LevenshteinDistance(t, key) <= 1 {
				return canonical
			}
		}
	}
	return ""
}

// detectHeaderMapping maps column indexes to canonical names. A mapping is
// only valid when it names a date column plus at least one of amount, debit,
// credit or description; anything weaker returns nil and the table is
// treated as headerless.
func detectHeaderMapping(headerRow []string) map[int]string {
	mapping := make(map[int]string)
	for idx, cell := range headerRow {
		if canonical := standardizeHeader(cell); canonical != "" {
			mapping[idx] = canonical
		}
	}
	if !validHeaderMapping(mapping) {
		return nil
	}
	return mapping
}

func validHeaderMapping(mapping map[int]string) bool {
	values := make(map[string]bool, len(mapping))
	for _, v := range mapping {
		values[v] = true
	}
	return values["date"] &&
		(values["amount"] || values["debit"] || values["credit"] || values["description"])
}
