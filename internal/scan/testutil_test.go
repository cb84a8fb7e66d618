package scan

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/rules"
)

// fakeDoc is an in-memory Document whose HTML and URL can be swapped
// mid-test, standing in for the live mutating page.
type fakeDoc struct {
	mu            sync.Mutex
	html          string
	url           string
	mutations     chan struct{}
	intersections chan struct{}
	scrolls       chan struct{}
}

func newFakeDoc(html, url string) *fakeDoc {
	return &fakeDoc{
		html:          html,
		url:           url,
		mutations:     make(chan struct{}, 4),
		intersections: make(chan struct{}, 4),
		scrolls:       make(chan struct{}, 4),
	}
}

func (d *fakeDoc) SetHTML(html string) {
	d.mu.Lock()
	d.html = html
	d.mu.Unlock()
}

func (d *fakeDoc) SetURL(url string) {
	d.mu.Lock()
	d.url = url
	d.mu.Unlock()
}

func (d *fakeDoc) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *fakeDoc) Root() *goquery.Document {
	d.mu.Lock()
	html := d.html
	d.mu.Unlock()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

func (d *fakeDoc) Mutations() <-chan struct{}     { return d.mutations }
func (d *fakeDoc) Intersections() <-chan struct{} { return d.intersections }
func (d *fakeDoc) Scrolls() <-chan struct{}       { return d.scrolls }

// fakeRules is a RuleSource whose rule lists can be swapped mid-test.
type fakeRules struct {
	mu      sync.Mutex
	loc     []rules.Rule
	comp    []rules.Rule
	changes chan struct{}
}

func newFakeRules(loc, comp []rules.Rule) *fakeRules {
	return &fakeRules{loc: loc, comp: comp, changes: make(chan struct{}, 1)}
}

func (f *fakeRules) ActiveLocationRules() []rules.Rule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loc
}

func (f *fakeRules) ActiveCompanyRules() []rules.Rule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comp
}

func (f *fakeRules) Changes() <-chan struct{} { return f.changes }

func (f *fakeRules) Swap(loc, comp []rules.Rule) {
	f.mu.Lock()
	f.loc, f.comp = loc, comp
	f.mu.Unlock()
	select {
	case f.changes <- struct{}{}:
	default:
	}
}

// memRenderer records every Show and Badge call.
type memRenderer struct {
	mu     sync.Mutex
	shown  []rules.MatchResult
	badges []badgeCall
}

type badgeCall struct {
	id  string
	sev rules.Severity
}

func (r *memRenderer) Show(res rules.MatchResult) {
	r.mu.Lock()
	r.shown = append(r.shown, res)
	r.mu.Unlock()
}

func (r *memRenderer) Badge(id string, sev rules.Severity) {
	r.mu.Lock()
	r.badges = append(r.badges, badgeCall{id, sev})
	r.mu.Unlock()
}

func (r *memRenderer) Dismiss() {}
func (r *memRenderer) Destroy() {}

func (r *memRenderer) showCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shown)
}

func (r *memRenderer) lastShown(t *testing.T) rules.MatchResult {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shown) == 0 {
		t.Fatal("nothing rendered")
	}
	return r.shown[len(r.shown)-1]
}

func (r *memRenderer) badgeCalls() []badgeCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]badgeCall, len(r.badges))
	copy(out, r.badges)
	return out
}

// memStatus records status pushes.
type memStatus struct {
	mu     sync.Mutex
	pushes []domain.ScanStatus
}

func (s *memStatus) Push(st domain.ScanStatus) {
	s.mu.Lock()
	s.pushes = append(s.pushes, st)
	s.mu.Unlock()
}

func (s *memStatus) last(t *testing.T) domain.ScanStatus {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pushes) == 0 {
		t.Fatal("no status pushed")
	}
	return s.pushes[len(s.pushes)-1]
}

// clock is a hand-cranked time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
