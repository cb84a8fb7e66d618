package match

import (
	"strings"
	"time"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/normalize"
	"sourcing-advisor/internal/rules"
)

// Locations returns every active location rule that matches the candidate
// text. A rule matches when the normalized candidate contains any of the
// rule's normalized comma-separated alternatives as a substring; the first
// hit short-circuits the rest of that rule's alternatives. Matching is
// deliberately plain substring, not fuzzy: a missed restriction is caught by
// manual review, a false hit silently blocks legitimate sourcing.
func Locations(candidate string, rs []rules.Rule) []rules.MatchResult {
	cand := normalize.Normalize(candidate)
	if cand == "" {
		return nil
	}

	var out []rules.MatchResult
	for _, r := range rs {
		if !r.Active {
			continue
		}
		for _, alt := range r.Alternatives() {
			needle := normalize.Normalize(alt)
			if needle == "" {
				continue
			}
			if strings.Contains(cand, needle) {
				out = append(out, result(r, "Restricted location"))
				break
			}
		}
	}
	return out
}

// Companies returns every active, non-expired company rule matching the
// candidate employer. Containment is bidirectional after legal-suffix
// stripping, so rule "Acme" hits "Acme Global Holdings" and rule
// "Acme Worldwide Holdings Inc" hits "Acme Worldwide". Expiry is evaluated
// against now, not at load time.
func Companies(candidate string, rs []rules.Rule, now time.Time) []rules.MatchResult {
	cand := normalize.CompanyName(candidate)
	if cand == "" {
		return nil
	}

	var out []rules.MatchResult
	for _, r := range rs {
		if !r.Usable(now) {
			continue
		}
		for _, alt := range r.Alternatives() {
			needle := normalize.CompanyName(alt)
			if needle == "" {
				continue
			}
			if strings.Contains(cand, needle) || strings.Contains(needle, cand) {
				out = append(out, result(r, "Restricted employer"))
				break
			}
		}
	}
	return out
}

func result(r rules.Rule, fallback string) rules.MatchResult {
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = fallback
	}
	return rules.MatchResult{Severity: r.Severity, Message: msg, RuleID: r.ID}
}

// Resolve picks the single highest-severity result; the first occurrence wins
// ties. Empty input resolves to the green default.
func Resolve(matches []rules.MatchResult) rules.MatchResult {
	if len(matches) == 0 {
		return rules.Clear()
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Severity.Rank() > best.Severity.Rank() {
			best = m
		}
	}
	return best
}

// Evaluate is the pure matching pass: no rendering, no status push. The
// list-view scanner uses it to probe many candidates without side effects.
func Evaluate(cand domain.Candidate, loc, comp []rules.Rule, now time.Time) rules.MatchResult {
	var all []rules.MatchResult
	if cand.Location != "" {
		all = append(all, Locations(cand.Location, loc)...)
	}
	if cand.Company != "" {
		all = append(all, Companies(cand.Company, comp, now)...)
	}
	return Resolve(all)
}

// ProbeCompanies evaluates several current-employer signals for one entity
// and keeps the highest-severity outcome. A secondary ongoing affiliation can
// be the restricted one even when the primary is clear.
func ProbeCompanies(names []string, comp []rules.Rule, now time.Time) rules.MatchResult {
	best := rules.Clear()
	for _, name := range names {
		got := Resolve(Companies(name, comp, now))
		if got.Severity.Rank() > best.Severity.Rank() {
			best = got
		}
	}
	return best
}
