package extract

import (
	"strings"

	"sourcing-advisor/internal/normalize"
)

// Geographic qualifier words that mark a string as location-like even without
// a comma ("Greater Boston Area", "Bengaluru Region").
var geoWords = []string{
	"area", "region", "district", "greater", "metropolitan", "metro",
	"county", "province", "state", "city", "remote",
}

// Role/seniority vocabulary used to reject job titles posing as locations or
// company names.
var titleWords = []string{
	"engineer", "developer", "architect", "scientist", "analyst", "designer",
	"manager", "director", "president", "officer", "founder", "consultant",
	"recruiter", "specialist", "administrator", "technician", "strategist",
	"vp", "cto", "ceo", "cfo", "coo", "head of",
	"senior", "junior", "principal", "staff", "lead", "intern",
}

var monthWords = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
}

// Employment-type qualifiers the source appends around company names.
var employmentQualifiers = []string{
	"full-time", "full time", "part-time", "part time", "contract",
	"internship", "temporary", "freelance", "self-employed", "apprenticeship",
	"permanent", "seasonal",
}

// LooksLikeLocation is the plausibility gate for location candidates:
// 2–200 chars, at most 12 words, and either comma/geo-qualifier evidence or a
// short string that is neither a job title nor a bare number.
func LooksLikeLocation(s string) bool {
	s = normalize.Clean(s)
	n := len([]rune(s))
	if n < 2 || n > 200 {
		return false
	}
	words := strings.Fields(s)
	if len(words) > 12 {
		return false
	}

	low := strings.ToLower(s)
	if strings.Contains(s, ",") {
		return true
	}
	for _, w := range geoWords {
		if containsWord(low, w) {
			return true
		}
	}
	if len(words) <= 5 && !LooksLikeJobTitle(s) && !isNumeric(s) {
		return true
	}
	return false
}

// hasGeoQualifier reports comma or geographic-qualifier evidence, the
// stronger of the two location signals. List-card scanning requires it
// because a person's bare name also passes the short-string location gate.
func hasGeoQualifier(s string) bool {
	if strings.Contains(s, ",") {
		return true
	}
	low := strings.ToLower(normalize.Clean(s))
	for _, w := range geoWords {
		if containsWord(low, w) {
			return true
		}
	}
	return false
}

// LooksLikeJobTitle reports role/seniority vocabulary anywhere in s.
func LooksLikeJobTitle(s string) bool {
	low := strings.ToLower(normalize.Clean(s))
	if low == "" {
		return false
	}
	for _, w := range titleWords {
		if containsWord(low, w) {
			return true
		}
	}
	return false
}

// LooksLikeDateRange recognizes employment-duration text: month names,
// "Present", 4-digit year ranges, and duration expressions like "3 yrs 2 mos".
func LooksLikeDateRange(s string) bool {
	low := strings.ToLower(normalize.Clean(s))
	if low == "" {
		return false
	}
	if containsWord(low, "present") {
		return true
	}
	for _, m := range monthWords {
		if containsWord(low, m) {
			return true
		}
	}
	for _, d := range []string{"yr", "yrs", "year", "years", "mo", "mos", "month", "months"} {
		if containsWord(low, d) && strings.IndexFunc(low, isDigit) >= 0 {
			return true
		}
	}
	return hasYearRange(low)
}

// HasOpenEndedRange reports a "2019 - Present" style range, the guard used to
// pick the currently-held entry out of a structured experience list.
func HasOpenEndedRange(s string) bool {
	return containsWord(strings.ToLower(normalize.Clean(s)), "present")
}

// StripEmploymentQualifiers removes leading/trailing employment-type tokens
// ("Full-time", "Contract", ...) plus their separators from a company
// candidate.
func StripEmploymentQualifiers(s string) string {
	s = normalize.Clean(s)
	for {
		trimmed := stripOneQualifier(s)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func stripOneQualifier(s string) string {
	low := strings.ToLower(s)
	for _, q := range employmentQualifiers {
		if strings.HasPrefix(low, q) {
			rest := s[len(q):]
			return normalize.Clean(strings.TrimLeft(rest, " ·•|-,"))
		}
		if strings.HasSuffix(low, q) {
			rest := s[:len(s)-len(q)]
			return normalize.Clean(strings.TrimRight(rest, " ·•|-,"))
		}
	}
	return s
}

// looksLikeCompany is the acceptance gate for company candidates pulled from
// free text: short, not a title, not duration text, not obviously a location.
func looksLikeCompany(s string) bool {
	s = normalize.Clean(s)
	n := len([]rune(s))
	if n < 2 || n > 100 {
		return false
	}
	if len(strings.Fields(s)) > 6 {
		return false
	}
	if LooksLikeJobTitle(s) || LooksLikeDateRange(s) || isNumeric(s) {
		return false
	}
	return true
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) && r != '.' && r != ',' && r != '+' && r != '-' {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func hasYearRange(low string) bool {
	// cheap scan for "2019 - 2023" / "2019-2023" / "2019 – 2023"
	digits := 0
	sawFirstYear := false
	sawDash := false
	for _, r := range low {
		switch {
		case isDigit(r):
			digits++
			if digits == 4 {
				if sawFirstYear && sawDash {
					return true
				}
				sawFirstYear = true
			}
		case r == '-' || r == '–' || r == '—':
			if sawFirstYear {
				sawDash = true
			}
			digits = 0
		case r == ' ':
			digits = 0
		default:
			digits = 0
		}
	}
	return false
}

// containsWord checks for whole-word-ish match in a cheap way.
// This avoids "vp" matching inside "vproduction", etc.
func containsWord(haystackLower, needleLower string) bool {
	bounds := func(r byte) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '/', '\\', '(', ')', '[', ']', '{', '}', ',', '.', ':', ';', '|':
			return true
		default:
			return false
		}
	}

	idx := strings.Index(haystackLower, needleLower)
	for idx != -1 {
		leftOK := idx == 0 || bounds(haystackLower[idx-1])
		rightIdx := idx + len(needleLower)
		rightOK := rightIdx == len(haystackLower) || bounds(haystackLower[rightIdx])
		if leftOK && rightOK {
			return true
		}
		next := strings.Index(haystackLower[idx+1:], needleLower)
		if next == -1 {
			break
		}
		idx = idx + 1 + next
	}
	return false
}
