package match

import (
	"testing"
	"time"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/rules"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)

func locRule(pattern string, sev rules.Severity) rules.Rule {
	return rules.Rule{Kind: rules.KindLocation, Pattern: pattern, Severity: sev, Active: true}
}

func compRule(pattern string, sev rules.Severity) rules.Rule {
	return rules.Rule{Kind: rules.KindCompany, Pattern: pattern, Severity: sev, Active: true}
}

func TestLocationsCommaAlternatives(t *testing.T) {
	rs := []rules.Rule{locRule("India, Bengaluru", rules.SeverityRed)}

	if got := Locations("Bengaluru, Karnataka, India", rs); len(got) != 1 {
		t.Fatalf("expected one match, got %v", got)
	}
	if got := Locations("Mumbai", rs); len(got) != 0 {
		t.Fatalf("expected no match, got %v", got)
	}

	// Documented substring semantics: "India" IS inside "Indianapolis".
	// Rule authors are expected to pick specific-enough patterns.
	if got := Locations("Indianapolis, USA", rs); len(got) != 1 {
		t.Fatalf("substring semantics changed: got %v", got)
	}
}

func TestLocationsDiacritics(t *testing.T) {
	rs := []rules.Rule{locRule("São Paulo", rules.SeverityAmber)}
	if got := Locations("sao paulo, Brazil", rs); len(got) != 1 {
		t.Fatalf("diacritic-insensitive match failed: %v", got)
	}
}

func TestLocationsSkipsInactiveAndBlank(t *testing.T) {
	rs := []rules.Rule{
		{Kind: rules.KindLocation, Pattern: "Poland", Severity: rules.SeverityRed, Active: false},
		locRule(" , ,", rules.SeverityRed), // no usable alternatives
	}
	if got := Locations("Warsaw, Poland", rs); len(got) != 0 {
		t.Fatalf("inactive/blank rules must not match: %v", got)
	}
}

func TestCompaniesBidirectional(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		candidate string
		match     bool
	}{
		{"rule inside candidate", "Acme", "Acme Global Holdings", true},
		{"candidate inside rule", "Acme Worldwide Holdings", "Acme Worldwide", true},
		{"suffixes ignored both ways", "Acme Worldwide Holdings Inc", "Acme Worldwide", true},
		{"unrelated", "Acme", "Initech", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := []rules.Rule{compRule(tt.pattern, rules.SeverityRed)}
			got := Companies(tt.candidate, rs, testNow)
			if (len(got) == 1) != tt.match {
				t.Errorf("Companies(%q ~ %q) = %v, want match=%v", tt.candidate, tt.pattern, got, tt.match)
			}
		})
	}
}

func TestCompaniesExpiry(t *testing.T) {
	past := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local)
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)

	expired := compRule("Acme Corp", rules.SeverityRed)
	expired.ExpiresAt = &past
	if got := Companies("Acme Corporation", []rules.Rule{expired}, testNow); len(got) != 0 {
		t.Fatalf("expired rule matched: %v", got)
	}

	live := compRule("Acme Corp", rules.SeverityRed)
	live.ExpiresAt = &today
	if got := Companies("Acme Corporation", []rules.Rule{live}, testNow); len(got) != 1 {
		t.Fatalf("rule expiring today should still match: %v", got)
	}
}

func TestResolve(t *testing.T) {
	amber := rules.MatchResult{Severity: rules.SeverityAmber, Message: "a"}
	red1 := rules.MatchResult{Severity: rules.SeverityRed, Message: "first red"}
	red2 := rules.MatchResult{Severity: rules.SeverityRed, Message: "second red"}

	if got := Resolve([]rules.MatchResult{amber, red1, amber}); got.Severity != rules.SeverityRed {
		t.Errorf("Resolve picked %v, want red", got)
	}
	if got := Resolve(nil); got.Severity != rules.SeverityGreen || got.Message != rules.DefaultClearMessage {
		t.Errorf("empty Resolve = %v, want green default", got)
	}
	if got := Resolve([]rules.MatchResult{red1, red2}); got.Message != "first red" {
		t.Errorf("tie broken to %q, want first occurrence", got.Message)
	}
}

func TestEvaluateScenarios(t *testing.T) {
	loc := []rules.Rule{
		locRule("India", rules.SeverityRed),
		locRule("Poland", rules.SeverityAmber),
	}

	got := Evaluate(domain.Candidate{Location: "Warsaw, Poland"}, loc, nil, testNow)
	if got.Severity != rules.SeverityAmber {
		t.Errorf("Warsaw scenario = %v, want amber", got)
	}

	past := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.Local)
	expired := compRule("Acme Corp", rules.SeverityRed)
	expired.ExpiresAt = &past
	got = Evaluate(domain.Candidate{Company: "Acme Corporation"}, nil, []rules.Rule{expired}, testNow)
	if got.Severity != rules.SeverityGreen {
		t.Errorf("expired-rule scenario = %v, want green", got)
	}
}

func TestProbeCompanies(t *testing.T) {
	comp := []rules.Rule{
		compRule("Initech", rules.SeverityAmber),
		compRule("Acme", rules.SeverityRed),
	}
	got := ProbeCompanies([]string{"Globex", "Initech LLC", "Acme Holdings"}, comp, testNow)
	if got.Severity != rules.SeverityRed {
		t.Errorf("ProbeCompanies = %v, want red kept across signals", got)
	}
	if got := ProbeCompanies(nil, comp, testNow); got.Severity != rules.SeverityGreen {
		t.Errorf("no signals should resolve green, got %v", got)
	}
}

type recordingStatus struct{ last domain.ScanStatus }

func (r *recordingStatus) Push(st domain.ScanStatus) { r.last = st }

type recordingRenderer struct {
	shown  []rules.MatchResult
	badges map[string]rules.Severity
}

func (r *recordingRenderer) Show(res rules.MatchResult) { r.shown = append(r.shown, res) }
func (r *recordingRenderer) Badge(id string, sev rules.Severity) {
	if r.badges == nil {
		r.badges = map[string]rules.Severity{}
	}
	r.badges[id] = sev
}
func (r *recordingRenderer) Dismiss() {}
func (r *recordingRenderer) Destroy() {}

type staticSource struct{ loc, comp []rules.Rule }

func (s staticSource) ActiveLocationRules() []rules.Rule { return s.loc }
func (s staticSource) ActiveCompanyRules() []rules.Rule  { return s.comp }

func TestCheckerNoData(t *testing.T) {
	st := &recordingStatus{}
	rd := &recordingRenderer{}
	c := &Checker{Rules: staticSource{}, Renderer: rd, Status: st, Now: func() time.Time { return testNow }}

	got := c.Check(domain.Candidate{})
	if got.Severity != rules.SeverityGreen {
		t.Errorf("no-data check returned %v", got)
	}
	if st.last.Status != domain.ScanNoData {
		t.Errorf("status = %v, want no_data", st.last.Status)
	}
	if len(rd.shown) != 0 {
		t.Error("no advisory should render for an unreadable profile")
	}
}

func TestCheckerRendersAndReports(t *testing.T) {
	st := &recordingStatus{}
	rd := &recordingRenderer{}
	c := &Checker{
		Rules:    staticSource{loc: []rules.Rule{locRule("Poland", rules.SeverityAmber)}},
		Renderer: rd,
		Status:   st,
		Now:      func() time.Time { return testNow },
	}

	got := c.Check(domain.Candidate{Location: "Warsaw, Poland", Company: "Initech"})
	if got.Severity != rules.SeverityAmber {
		t.Fatalf("Check = %v, want amber", got)
	}
	if len(rd.shown) != 1 || rd.shown[0].Severity != rules.SeverityAmber {
		t.Errorf("renderer saw %v", rd.shown)
	}
	if st.last.Status != domain.ScanSuccess || st.last.Severity != "amber" {
		t.Errorf("status = %+v", st.last)
	}
}

type panickyRenderer struct{ recordingRenderer }

func (p *panickyRenderer) Show(rules.MatchResult) { panic("channel closed") }

func TestCheckerSurvivesCollaboratorPanic(t *testing.T) {
	c := &Checker{
		Rules:    staticSource{loc: []rules.Rule{locRule("Poland", rules.SeverityRed)}},
		Renderer: &panickyRenderer{},
		Status:   &recordingStatus{},
		Now:      func() time.Time { return testNow },
	}
	got := c.Check(domain.Candidate{Location: "Poland"})
	if got.Severity != rules.SeverityRed {
		t.Errorf("result lost after renderer failure: %v", got)
	}
}
