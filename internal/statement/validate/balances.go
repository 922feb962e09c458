package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FutureFinance-ai/statement-pipeline/pkg/money"
)

var (
	openingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)opening\s*balance[:\s-]*([^\n]+)`),
		regexp.MustCompile(`(?i)balance\s*brought\s*forward[:\s-]*([^\n]+)`),
		regexp.MustCompile(`(?i)start(?:ing)?\s*balance[:\s-]*([^\n]+)`),
	}
	closingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)closing\s*balance[:\s-]*([^\n]+)`),
		regexp.MustCompile(`(?i)balance\s*carried\s*forward[:\s-]*([^\n]+)`),
		regexp.MustCompile(`(?i)end(?:ing)?\s*balance[:\s-]*([^\n]+)`),
	}
)

// BalancesFromText scans statement text for printed opening and closing
// balances. Opening phrases live near the top of a statement and closing
// phrases near the end, so only the first and last two pages are searched.
func BalancesFromText(pageTexts []string) (opening, closing *decimal.Decimal) {
	if len(pageTexts) == 0 {
		return nil, nil
	}
	headEnd := 2
	if headEnd > len(pageTexts) {
		headEnd = len(pageTexts)
	}
	tailStart := len(pageTexts) - 2
	if tailStart < 0 {
		tailStart = 0
	}
	head := strings.Join(pageTexts[:headEnd], "\n")
	tail := strings.Join(pageTexts[tailStart:], "\n")

	return findAmount(openingPatterns, head), findAmount(closingPatterns, tail)
}

func findAmount(patterns []*regexp.Regexp, hay string) *decimal.Decimal {
	for _, re := range patterns {
		m := re.FindStringSubmatch(hay)
		if m == nil {
			continue
		}
		if amt, err := money.Parse(m[1]); err == nil {
			return &amt
		}
	}
	return nil
}
