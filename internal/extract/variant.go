package extract

import "strings"

// Variant identifies which of the source's page layouts is being read. It is
// computed once per navigation and threaded through extraction, never
// re-derived ad hoc.
type Variant string

const (
	VariantStandard  Variant = "standard"
	VariantRecruiter Variant = "recruiter"
	VariantSalesNav  Variant = "salesnav"
	VariantNone      Variant = "not_applicable"
)

// VariantForURL classifies a navigation target. Anything unrecognized is
// VariantNone and is left unscanned.
func VariantForURL(rawURL string) Variant {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "/talent/") || strings.Contains(u, "/recruiter/"):
		return VariantRecruiter
	case strings.Contains(u, "/sales/"):
		return VariantSalesNav
	case strings.Contains(u, "/in/"):
		return VariantStandard
	default:
		return VariantNone
	}
}

// IsListURL reports a search/results view, which is scanned card-by-card
// rather than as a single profile.
func IsListURL(rawURL string) bool {
	u := strings.ToLower(rawURL)
	return strings.Contains(u, "/search/") || strings.Contains(u, "/results/")
}
