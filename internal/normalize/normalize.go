package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Clean collapses whitespace (including NBSP) and trims.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Normalize lowers the case and strips combining diacritics, so
// "São Paulo" and "sao paulo" compare equal. Empty input yields "".
func Normalize(s string) string {
	s = Clean(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		// fall back to the lowercased form; matching still works
		return s
	}
	return Clean(out)
}

// Corporate legal-form suffixes stripped from company names, longest first so
// "incorporated" wins over "inc" and "corporation" over "corp".
var companySuffixes = []string{
	"incorporated",
	"corporation",
	"limited",
	"company",
	"corp.",
	"gmbh",
	"s.a.",
	"inc.",
	"ltd.",
	"llc.",
	"corp",
	"pty",
	"plc",
	"llc",
	"ltd",
	"inc",
	"co.",
	"ag",
	"sa",
	"co",
}

// CompanyName normalizes and then strips trailing corporate legal-form
// suffixes to a fixed point, so "Acme Corp LLC" reduces the same way
// "Acme" does. Real company names chain several legal tokens, which is why
// a single pass is not enough.
func CompanyName(s string) string {
	s = Normalize(s)
	for {
		stripped := stripOneSuffix(s)
		if stripped == s {
			return s
		}
		s = stripped
	}
}

func stripOneSuffix(s string) string {
	for _, suf := range companySuffixes {
		if !strings.HasSuffix(s, suf) {
			continue
		}
		head := s[:len(s)-len(suf)]
		trimmed := strings.TrimRight(head, " ,.-")
		// require a boundary so "tupperware" doesn't lose its "co"
		if trimmed == head && head != "" {
			continue
		}
		if trimmed == "" {
			// the whole name is a legal token; leave it alone
			continue
		}
		return trimmed
	}
	return s
}
