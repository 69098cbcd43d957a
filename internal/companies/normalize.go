package companies

import (
	"net/url"
	"strings"
	"unicode"
)

var corporateMarkers = []string{"(주)", "㈜", "(유)", "주식회사", "유한회사", "(株)"}

var corporateSuffixes = map[string]struct{}{
	"inc":          {},
	"incorporated": {},
	"corp":         {},
	"corporation":  {},
	"co":           {},
	"ltd":          {},
	"llc":          {},
	"limited":      {},
	"gmbh":         {},
	"plc":          {},
}

// NormalizeName folds a company name for fuzzy comparison: case, whitespace,
// punctuation and corporate markers such as (주) or Co., Ltd. are dropped.
func NormalizeName(name string) string {
	folded := strings.ToLower(name)
	for _, marker := range corporateMarkers {
		folded = strings.ReplaceAll(folded, marker, " ")
	}

	tokens := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '&'
	})

	var b strings.Builder
	for _, token := range tokens {
		if _, ok := corporateSuffixes[token]; ok {
			continue
		}
		b.WriteString(token)
	}
	return b.String()
}

func aliasKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeDomain reduces a URL or host to its bare lowercase host without "www.".
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}

	if strings.Contains(domain, "://") {
		if u, err := url.Parse(domain); err == nil {
			domain = u.Host
		}
	}
	if idx := strings.IndexAny(domain, "/?#"); idx >= 0 {
		domain = domain[:idx]
	}
	if idx := strings.LastIndex(domain, ":"); idx >= 0 {
		domain = domain[:idx]
	}
	return strings.TrimPrefix(domain, "www.")
}
