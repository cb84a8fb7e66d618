// Package extract turns the live rendered page into the candidate's
// {location, company} pair. Every selector here is a guess about a
// third-party layout that changes without notice, so each field runs an
// ordered fallback chain and a failed chain yields "", never an error.
package extract

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/normalize"
)

// strategy is one rung of a field's fallback ladder: a named selector whose
// first match's text is offered to the field's plausibility gate. Strategies
// are plain data so variant tables stay diffable when the source changes.
type strategy struct {
	name string
	sel  string
}

// Chains are ordered: stable test-attribute hooks first, then accessibility
// hooks, then semantic class names, then broad structural guesses.
var locationChains = map[Variant][]strategy{
	VariantStandard: {
		{"test-hook", `[data-test-id='profile-location']`},
		{"aria-hook", `[aria-label='Profile location']`},
		{"topcard-class", `.profile-topcard__location, .top-card__location`},
		{"subline", `.top-card__subline-item`},
		{"body-small", `header .text-body-small`},
	},
	VariantRecruiter: {
		{"test-hook", `[data-test-row-location], [data-test-id='candidate-location']`},
		{"aria-hook", `[aria-label='Candidate location']`},
		{"info-class", `.profile-info__location, .candidate-insights__location`},
		{"meta-row", `.profile-summary .meta-item`},
	},
	VariantSalesNav: {
		{"anonymize-hook", `[data-anonymize='location']`},
		{"aria-hook", `[aria-label='Location']`},
		{"topcard-class", `.profile-topcard__location-data`},
		{"summary", `.profile-topcard__summary-item`},
	},
}

var companyChains = map[Variant][]strategy{
	VariantStandard: {
		{"test-hook", `[data-test-id='current-company']`},
		{"aria-hook", `[aria-label='Current company']`},
		{"topcard-link", `.top-card__current-positions a, .profile-topcard__current-position`},
		{"right-rail", `.pv-text-details__right-panel a`},
	},
	VariantRecruiter: {
		{"test-hook", `[data-test-row-company], [data-test-id='candidate-company']`},
		{"aria-hook", `[aria-label='Current employer']`},
		{"info-class", `.profile-info__company, .candidate-insights__company`},
	},
	VariantSalesNav: {
		{"anonymize-hook", `[data-anonymize='company-name']`},
		{"aria-hook", `[aria-label='Company']`},
		{"topcard-class", `.profile-topcard__company-name`},
	},
}

// Labels recognized by the structured key/value fallback.
var (
	locationLabels = []string{"position location", "location", "candidate location"}
	companyLabels  = []string{"company name", "company", "current employer", "employer"}
	headlineSel    = `[data-test-id='headline'], .top-card__headline, .profile-topcard__headline, h2.headline, .text-body-medium.break-words`
	topCardSel     = `header, .top-card, .profile-topcard, .profile-summary`
)

// Extract reads one candidate off the page for the declared variant. It never
// panics; a field that defeats every strategy is "". Both fields empty is the
// extraction-failure outcome the caller must report distinctly.
func Extract(doc *goquery.Document, v Variant) domain.Candidate {
	if doc == nil || v == VariantNone {
		return domain.Candidate{}
	}
	c := domain.Candidate{
		Location: extractLocation(doc, v),
		Company:  extractCompany(doc, v),
	}
	if c.Failed() {
		log.Printf("[extract] no readable fields (variant=%s)", v)
	}
	return c
}

func extractLocation(doc *goquery.Document, v Variant) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[extract] location pass panicked (variant=%s): %v", v, r)
			out = ""
		}
	}()

	for _, st := range locationChains[v] {
		if val := firstText(doc.Selection, st.sel); val != "" && LooksLikeLocation(val) {
			return val
		}
	}

	if val := fromDetailList(doc, locationLabels); val != "" && LooksLikeLocation(val) {
		return val
	}

	if val := fromHeadingWalk(doc, locationLabels); val != "" && LooksLikeLocation(val) {
		return val
	}

	if val := fromTopCard(doc, func(s string) bool {
		return LooksLikeLocation(s) && !LooksLikeJobTitle(s)
	}); val != "" {
		return val
	}

	log.Printf("[extract] location not found (variant=%s)", v)
	return ""
}

func extractCompany(doc *goquery.Document, v Variant) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[extract] company pass panicked (variant=%s): %v", v, r)
			out = ""
		}
	}()

	for _, st := range companyChains[v] {
		val := StripEmploymentQualifiers(firstText(doc.Selection, st.sel))
		if val != "" && looksLikeCompany(val) {
			return val
		}
	}

	if val := fromDetailList(doc, companyLabels); val != "" {
		val = StripEmploymentQualifiers(val)
		if looksLikeCompany(val) {
			return val
		}
	}

	if val := currentExperienceCompany(doc); val != "" {
		return val
	}

	if val := fromHeadingWalk(doc, companyLabels); val != "" {
		val = StripEmploymentQualifiers(val)
		if looksLikeCompany(val) {
			return val
		}
	}

	if headline := firstText(doc.Selection, headlineSel); headline != "" {
		if val := CompanyFromHeadline(headline); val != "" {
			return val
		}
	}

	if val := fromTopCard(doc, func(s string) bool {
		return looksLikeCompany(s) && !LooksLikeLocation(s)
	}); val != "" {
		return val
	}

	log.Printf("[extract] company not found (variant=%s)", v)
	return ""
}

// firstText returns the cleaned text of the first element matching sel.
func firstText(root *goquery.Selection, sel string) string {
	return normalize.Clean(root.Find(sel).First().Text())
}

// fromDetailList scans definition-style key/value pairs for a known label,
// accepting the value only from an entry that is presently held (guarded by
// an open-ended "… - Present" range in the same entry). This keeps a past
// employer's row from being read as the current one.
func fromDetailList(doc *goquery.Document, labels []string) string {
	var out string
	doc.Find("dl").EachWithBreak(func(_ int, dl *goquery.Selection) bool {
		if !HasOpenEndedRange(dl.Text()) {
			return true
		}
		dts := dl.Find("dt")
		dds := dl.Find("dd")
		n := dts.Length()
		if dds.Length() < n {
			n = dds.Length()
		}
		for i := 0; i < n; i++ {
			key := strings.ToLower(normalize.Clean(dts.Eq(i).Text()))
			for _, label := range labels {
				if key == label {
					if val := normalize.Clean(dds.Eq(i).Text()); val != "" {
						out = val
						return false
					}
				}
			}
		}
		return true
	})
	return out
}

// currentExperienceCompany walks experience-style list entries and takes the
// company line of the first entry with an open-ended date range. Several
// plausible company lines inside one entry are tried in document order.
func currentExperienceCompany(doc *goquery.Document) string {
	var out string
	doc.Find("section li, .experience-item, [data-test-id='experience-entry']").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if !HasOpenEndedRange(li.Text()) {
			return true
		}
		li.Find("span, a, div, p").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if el.Children().Length() > 0 {
				return true
			}
			val := StripEmploymentQualifiers(normalize.Clean(el.Text()))
			if val == "" || !looksLikeCompany(val) || LooksLikeJobTitle(val) {
				return true
			}
			out = val
			return false
		})
		return out == ""
	})
	return out
}

// fromHeadingWalk looks for heading-like elements whose text is a known field
// label and takes the adjacent text.
func fromHeadingWalk(doc *goquery.Document, labels []string) string {
	var out string
	doc.Find("h1, h2, h3, h4, h5, h6, dt, strong").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		key := strings.ToLower(normalize.Clean(h.Text()))
		matched := false
		for _, label := range labels {
			if key == label || key == label+":" {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
		if val := normalize.Clean(h.Next().Text()); val != "" {
			out = val
			return false
		}
		// label and value share a parent: take the parent text minus the label
		parent := normalize.Clean(h.Parent().Text())
		if rest := normalize.Clean(strings.TrimPrefix(parent, normalize.Clean(h.Text()))); rest != "" {
			out = strings.TrimLeft(rest, ": ")
			return false
		}
		return true
	})
	return out
}

// fromTopCard scans short leaf strings in the bounded top-card region for the
// first one the caller's predicate accepts. The predicate must also reject
// strings shaped like the other field to avoid cross-contamination.
func fromTopCard(doc *goquery.Document, accept func(string) bool) string {
	var out string
	doc.Find(topCardSel).First().Find("span, div, p").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		val := normalize.Clean(el.Text())
		if val == "" || len(val) > 120 {
			return true
		}
		if accept(val) {
			out = val
			return false
		}
		return true
	})
	return out
}
