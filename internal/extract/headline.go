package extract

import (
	"strings"

	"sourcing-advisor/internal/normalize"
)

// Separators that end a company segment inside a headline.
var headlineSeparators = []string{" | ", " · ", " • ", " – ", " — ", ";", ","}

// CompanyFromHeadline pulls an employer out of free-form headline text.
// Internal priority: "X at Company" (stopping at separators), then
// "X @ Company", then a last-resort "Title | Company" pair split. The pipe
// split only fires when it positively isolates a company-shaped segment; a
// 3+-segment skill soup like "Total Rewards | Compensation | People Equity"
// yields "".
func CompanyFromHeadline(headline string) string {
	h := normalize.Clean(headline)
	if h == "" {
		return ""
	}

	if c := afterMarker(h, " at "); c != "" {
		return c
	}
	if c := afterMarker(h, " @ "); c != "" {
		return c
	}
	if c := afterMarker(h, "@"); c != "" {
		return c
	}

	segments := strings.Split(h, "|")
	if len(segments) != 2 {
		return ""
	}
	c := StripEmploymentQualifiers(normalize.Clean(segments[1]))
	if looksLikeCompany(c) && !hasGeoQualifier(c) {
		return c
	}
	return ""
}

// afterMarker takes the text following the first marker occurrence, cut at
// the next separator, and vets it as a company name.
func afterMarker(h, marker string) string {
	idx := strings.Index(strings.ToLower(h), marker)
	if idx < 0 {
		return ""
	}
	rest := h[idx+len(marker):]
	for _, sep := range headlineSeparators {
		if j := strings.Index(rest, sep); j >= 0 {
			rest = rest[:j]
		}
	}
	c := StripEmploymentQualifiers(normalize.Clean(rest))
	if !looksLikeCompany(c) {
		return ""
	}
	return c
}
