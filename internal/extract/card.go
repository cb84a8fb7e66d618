package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sourcing-advisor/internal/normalize"
)

// CompanySignal is one employer mention found on a list-view card, tagged
// with whether the affiliation is currently held. Former employers are kept
// so the scanner can prove it excluded them, but rules only fire on current
// ones.
type CompanySignal struct {
	Name    string
	Current bool
}

// CardText returns the card's cleaned text; the scanner uses its length as
// the rendered-content check that separates real-but-slow cards from empty
// placeholder rows.
func CardText(card *goquery.Selection) string {
	if card == nil {
		return ""
	}
	return normalize.Clean(card.Text())
}

// CardSignals extracts the location plus every company signal from one
// list-view card. Sources of company signals, in order: explicit
// "Current:"/"Past:" summary lines, and a headline-derived employer whose
// "ex-"/"former" prefix marks it former.
func CardSignals(card *goquery.Selection) (location string, companies []CompanySignal) {
	if card == nil {
		return "", nil
	}

	card.Find("p, span, div, dd").Each(func(_ int, el *goquery.Selection) {
		if el.Children().Length() > 0 {
			return
		}
		txt := normalize.Clean(el.Text())
		if txt == "" || len(txt) > 200 {
			return
		}
		low := strings.ToLower(txt)

		switch {
		case strings.HasPrefix(low, "current:"):
			for _, name := range companiesFromSummary(txt[len("current:"):]) {
				companies = append(companies, CompanySignal{Name: name, Current: true})
			}
		case strings.HasPrefix(low, "past:"):
			for _, name := range companiesFromSummary(txt[len("past:"):]) {
				companies = append(companies, CompanySignal{Name: name, Current: false})
			}
		case location == "" && !LooksLikeJobTitle(txt) && !LooksLikeDateRange(txt) && LooksLikeLocation(txt) && hasGeoQualifier(txt):
			location = txt
		}
	})

	// Headline-derived employer, when the card shows one.
	if headline := firstText(card, headlineSel); headline != "" {
		if name := CompanyFromHeadline(headline); name != "" {
			companies = append(companies, CompanySignal{
				Name:    strings.TrimPrefix(strings.TrimPrefix(name, "ex-"), "Ex-"),
				Current: !formerPrefixed(headline, name),
			})
		}
	}

	return location, dedupeSignals(companies)
}

// companiesFromSummary splits "Senior Eng at Acme" / "Acme, Globex" style
// summary fragments into company names.
func companiesFromSummary(s string) []string {
	s = normalize.Clean(s)
	if s == "" {
		return nil
	}
	// "Title at Company" keeps only the company
	if c := afterMarker(s, " at "); c != "" {
		return []string{c}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = StripEmploymentQualifiers(normalize.Clean(part))
		part = strings.TrimPrefix(strings.TrimPrefix(part, "ex-"), "Ex-")
		if looksLikeCompany(part) {
			out = append(out, part)
		}
	}
	return out
}

// formerPrefixed reports an "ex-Acme" / "former Acme" marking in the headline
// for the extracted company name.
func formerPrefixed(headline, company string) bool {
	low := strings.ToLower(headline)
	comp := strings.ToLower(company)
	for _, p := range []string{"ex-", "ex "} {
		if strings.Contains(low, p+comp) {
			return true
		}
	}
	return strings.Contains(low, "former "+comp) || strings.Contains(low, "formerly "+comp)
}

func dedupeSignals(in []CompanySignal) []CompanySignal {
	seen := map[string]bool{}
	var out []CompanySignal
	for _, sig := range in {
		key := strings.ToLower(sig.Name)
		if sig.Current {
			key += "|current"
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sig)
	}
	return out
}

// NameAnchor locates the card's identifying link for badge placement: the
// first short, name-shaped anchor, skipping the whole-card wrapper link and
// icon-only controls. Anchored on link shape, not class names, so it survives
// markup churn.
func NameAnchor(card *goquery.Selection) *goquery.Selection {
	if card == nil {
		return nil
	}
	cardLen := len(CardText(card))

	var found *goquery.Selection
	card.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		txt := normalize.Clean(a.Text())
		if txt == "" {
			return true // icon-only control
		}
		n := len([]rune(txt))
		if n < 2 || n > 60 || len(strings.Fields(txt)) > 5 {
			return true
		}
		// the outer wrapper link carries most of the card's text
		if cardLen > 0 && n*2 >= cardLen {
			return true
		}
		if LooksLikeDateRange(txt) || isNumeric(txt) {
			return true
		}
		found = a
		return false
	})
	return found
}
