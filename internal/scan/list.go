package scan

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sourcing-advisor/internal/extract"
	"sourcing-advisor/internal/match"
	"sourcing-advisor/internal/rules"
)

type cardPhase int

const (
	cardPending cardPhase = iota
	cardDone
)

// cardState is the per-card annotation bookkeeping. It lives only as long as
// the list view; navigation tears it down.
type cardState struct {
	phase        cardPhase
	firstEmptyAt time.Time
	location     string
	companies    []extract.CompanySignal
	severity     rules.Severity
	hasData      bool
}

// ListScanner applies the pipeline card-by-card over a search/results view
// whose entries render progressively. Cards below the content threshold stay
// pending however many passes they survive: a retry-count cutoff would
// silently abandon slow-rendering cards, which is a false negative a
// compliance tool cannot afford. Only the staleness clock may retire an
// empty card.
type ListScanner struct {
	Doc      Document
	Rules    RuleSource
	Renderer match.Renderer

	// CardSelector identifies result cards in the list view.
	CardSelector string

	// MinCardChars separates rendered cards from placeholder rows.
	MinCardChars int

	// Staleness retires a card that never gains content (ad slot, footer).
	Staleness time.Duration

	Quiet          time.Duration
	MaxWait        time.Duration
	SafetyInterval time.Duration

	Now func() time.Time

	mu    sync.Mutex
	epoch int
	url   string
	cards map[string]*cardState
}

const (
	defaultCardSelector   = "li.search-result, .entity-result, .result-card, [data-test-id='search-result']"
	defaultMinCardChars   = 30
	defaultStaleness      = 30 * time.Second
	defaultSafetyInterval = 10 * time.Second
)

func (s *ListScanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ListScanner) cardSelector() string {
	if s.CardSelector != "" {
		return s.CardSelector
	}
	return defaultCardSelector
}

func (s *ListScanner) minCardChars() int {
	if s.MinCardChars > 0 {
		return s.MinCardChars
	}
	return defaultMinCardChars
}

func (s *ListScanner) staleness() time.Duration {
	if s.Staleness > 0 {
		return s.Staleness
	}
	return defaultStaleness
}

func (s *ListScanner) quiet() time.Duration {
	if s.Quiet > 0 {
		return s.Quiet
	}
	return defaultQuiet
}

func (s *ListScanner) maxWait() time.Duration {
	if s.MaxWait > 0 {
		return s.MaxWait
	}
	return defaultMaxWait
}

func (s *ListScanner) safetyInterval() time.Duration {
	if s.SafetyInterval > 0 {
		return s.SafetyInterval
	}
	return defaultSafetyInterval
}

// Run drives list scanning until ctx is done. Every pass runs on this
// goroutine; card state is never mutated by two passes at once.
func (s *ListScanner) Run(ctx context.Context) {
	deb := NewDebouncer(s.quiet(), s.maxWait())
	defer deb.Stop()

	safety := time.NewTicker(s.safetyInterval())
	defer safety.Stop()

	s.Reset(s.Doc.URL())
	s.ScanOnce()

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			return
		case <-s.Doc.Mutations():
			deb.Trigger()
		case <-s.Doc.Scrolls():
			deb.Trigger()
		case <-s.Doc.Intersections():
			deb.Trigger()
		case <-deb.C():
			s.checkNavigation()
			s.ScanOnce()
		case <-safety.C:
			// cheap no-op when nothing is pending
			s.checkNavigation()
			s.ScanOnce()
		case <-s.Rules.Changes():
			s.Rematch()
		}
	}
}

// Reset clears all card state and badges for a fresh list view.
func (s *ListScanner) Reset(url string) {
	s.mu.Lock()
	s.epoch++
	s.url = url
	s.cards = make(map[string]*cardState)
	s.mu.Unlock()
	if s.Renderer != nil {
		s.Renderer.Dismiss()
	}
}

func (s *ListScanner) checkNavigation() {
	cur := s.Doc.URL()
	s.mu.Lock()
	changed := cur != s.url
	s.mu.Unlock()
	if changed {
		log.Printf("[scan] list navigation detected: %s", cur)
		s.Reset(cur)
	}
}

// ScanOnce walks every card once: skip done cards, probe rendered pending
// cards, age empty ones toward staleness.
func (s *ListScanner) ScanOnce() {
	root := s.Doc.Root()
	if root == nil {
		return
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	now := s.now()
	loc := s.Rules.ActiveLocationRules()
	comp := s.Rules.ActiveCompanyRules()

	root.Find(s.cardSelector()).Each(func(i int, card *goquery.Selection) {
		key := cardKey(card, i)

		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		st, ok := s.cards[key]
		if !ok {
			st = &cardState{}
			s.cards[key] = st
		}
		done := st.phase == cardDone
		s.mu.Unlock()
		if done {
			return
		}

		text := extract.CardText(card)
		if len(text) < s.minCardChars() {
			s.ageEmptyCard(key, epoch, now)
			return
		}

		location, companies := extract.CardSignals(card)
		if location == "" && len(companies) == 0 {
			// rendered but carrying no candidate signals; treat like an
			// empty row and let the staleness clock retire it
			s.ageEmptyCard(key, epoch, now)
			return
		}

		res := evaluateCard(location, companies, loc, comp, now)

		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		st.phase = cardDone
		st.hasData = true
		st.location = location
		st.companies = companies
		st.severity = res.Severity
		s.mu.Unlock()

		s.badge(key, res.Severity)
	})
}

// ageEmptyCard starts or advances a card's empty clock and retires it once
// the staleness window elapses.
func (s *ListScanner) ageEmptyCard(key string, epoch int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	st, ok := s.cards[key]
	if !ok || st.phase == cardDone {
		return
	}
	if st.firstEmptyAt.IsZero() {
		st.firstEmptyAt = now
		return
	}
	if now.Sub(st.firstEmptyAt) >= s.staleness() {
		// genuinely contentless row (ad slot, footer); never probed again
		st.phase = cardDone
		st.hasData = false
	}
}

// Rematch re-runs matching over every completed card's cached signals
// without re-extracting; used when the rule set changes.
func (s *ListScanner) Rematch() {
	now := s.now()
	loc := s.Rules.ActiveLocationRules()
	comp := s.Rules.ActiveCompanyRules()

	type redo struct {
		key string
		sev rules.Severity
	}
	var changed []redo

	s.mu.Lock()
	for key, st := range s.cards {
		if st.phase != cardDone || !st.hasData {
			continue
		}
		res := evaluateCard(st.location, st.companies, loc, comp, now)
		if res.Severity != st.severity {
			st.severity = res.Severity
			changed = append(changed, redo{key, res.Severity})
		}
	}
	s.mu.Unlock()

	for _, r := range changed {
		s.badge(r.key, r.sev)
	}
}

// PendingCount reports cards still awaiting content; exposed for the host's
// status surface.
func (s *ListScanner) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.cards {
		if st.phase == cardPending {
			n++
		}
	}
	return n
}

func (s *ListScanner) badge(key string, sev rules.Severity) {
	if s.Renderer == nil {
		return
	}
	s.Renderer.Badge(key, sev)
}

func (s *ListScanner) teardown() {
	if s.Renderer != nil {
		s.Renderer.Destroy()
	}
}

// evaluateCard matches one card's signals: the location plus every
// current-affiliation company, keeping the highest severity. Former
// employers never fire a rule.
func evaluateCard(location string, companies []extract.CompanySignal, loc, comp []rules.Rule, now time.Time) rules.MatchResult {
	best := match.Resolve(match.Locations(location, loc))

	var current []string
	for _, sig := range companies {
		if sig.Current {
			current = append(current, sig.Name)
		}
	}
	if got := match.ProbeCompanies(current, comp, now); got.Severity.Rank() > best.Severity.Rank() {
		best = got
	}
	return best
}

// cardKey derives a stable identity for a card: its name anchor's href when
// present, otherwise its position.
func cardKey(card *goquery.Selection, i int) string {
	if a := extract.NameAnchor(card); a != nil {
		if href, ok := a.Attr("href"); ok && href != "" {
			return href
		}
	}
	if id, ok := card.Attr("data-entity-id"); ok && id != "" {
		return id
	}
	return fmt.Sprintf("card-%d", i)
}
