package rules

import (
	"strings"
	"time"

	"sourcing-advisor/internal/normalize"
)

// Kind says which candidate field a rule applies to.
type Kind string

const (
	KindLocation Kind = "location"
	KindCompany  Kind = "company"
)

// Severity of an advisory. Red strictly outranks amber; green means clear.
type Severity string

const (
	SeverityRed   Severity = "red"
	SeverityAmber Severity = "amber"
	SeverityGreen Severity = "green"
)

// Rank orders severities for resolution: red=2, amber=1, green=0.
func (s Severity) Rank() int {
	switch s {
	case SeverityRed:
		return 2
	case SeverityAmber:
		return 1
	default:
		return 0
	}
}

// ValidSeverity reports whether s is a severity rule authors may set.
func ValidSeverity(s Severity) bool {
	return s == SeverityRed || s == SeverityAmber
}

// DefaultClearMessage is shown when no rule matched.
const DefaultClearMessage = "No sourcing restrictions detected"

// Rule is one row of the team rule set. The engine treats rules as read-only
// input; writes happen through the admin API.
type Rule struct {
	ID        int64      `json:"id"`
	Kind      Kind       `json:"kind"`
	Pattern   string     `json:"pattern"` // comma-separated alternatives
	Severity  Severity   `json:"severity"`
	Message   string     `json:"message,omitempty"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"` // company rules only
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Alternatives splits the pattern on commas and drops blanks. A rule whose
// pattern normalizes to nothing matches nothing.
func (r Rule) Alternatives() []string {
	var out []string
	for _, alt := range strings.Split(r.Pattern, ",") {
		alt = normalize.Clean(alt)
		if alt == "" {
			continue
		}
		out = append(out, alt)
	}
	return out
}

// ExpiredAt reports whether the rule is past its expiry as of now. Expiry is
// end-of-day in the engine's local zone, so a rule expiring today still
// matches all day, and the check happens at match time rather than load time.
func (r Rule) ExpiredAt(now time.Time) bool {
	if r.ExpiresAt == nil {
		return false
	}
	d := *r.ExpiresAt
	endOfDay := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), now.Location())
	return now.After(endOfDay)
}

// Usable reports whether the rule participates in matching right now.
func (r Rule) Usable(now time.Time) bool {
	return r.Active && !r.ExpiredAt(now)
}

// MatchResult is the outcome of one matching pass.
type MatchResult struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	RuleID   int64    `json:"ruleId,omitempty"`
}

// Clear is the default no-restriction result.
func Clear() MatchResult {
	return MatchResult{Severity: SeverityGreen, Message: DefaultClearMessage}
}

// ParseExpiry parses an expiry date in the store's YYYY-MM-DD form.
// The zero return with ok=false covers blank and unparseable values, which
// are treated as "no expiry" by callers that tolerate malformed rows.
func ParseExpiry(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
