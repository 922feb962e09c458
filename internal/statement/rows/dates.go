package rows

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// dateLayouts are tried in order; day-first formats take priority because
// the statements this pipeline sees are predominantly day-first.
var dateLayouts = []string{
	"Jan 2 2006", "Jan 2, 2006", "2 Jan 2006", "2 Jan, 2006",
	"02/01/2006", "02-01-2006", "02.01.2006",
	"01/02/2006", "01-02-2006",
	"2006-01-02", "2006/01/02",
	"02/01/06", "01/02/06", "06-01-02",
}

var (
	looksLikeDateRes = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2,4}$`),
		regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}$`),
		regexp.MustCompile(`(?i)^(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2},?\s+\d{2,4}$`),
	}
	embeddedDateRe = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
)

// looksLikeDate reports whether a whole cell reads as a date.
func looksLikeDate(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	for _, re := range looksLikeDateRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// parseDate tries the known layouts, then falls back to the first date-like
// token embedded in a longer string.
func parseDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, candidate := range []string{s, titleMonth(s)} {
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, candidate); err == nil {
				return d, true
			}
		}
	}
	if m := embeddedDateRe.FindString(s); m != "" && m != s {
		return parseDate(m)
	}
	return time.Time{}, false
}

// titleMonth capitalizes word-initial letters so lowercased month names
// still parse ("jan 5 2024" -> "Jan 5 2024").
func titleMonth(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		out := r
		if prev == ' ' || prev == ',' {
			out = unicode.ToUpper(r)
		} else {
			out = unicode.ToLower(r)
		}
		prev = r
		return out
	}, s)
}
