package scan

import (
	"context"
	"log"
	"sync"
	"time"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/extract"
	"sourcing-advisor/internal/match"
)

// PageScanner runs the extract→match→render pipeline over one profile view.
// It owns all per-page state (last candidate, navigation identity); nothing
// else mutates it, and navigating away resets it to a clean slate.
type PageScanner struct {
	Doc      Document
	Rules    RuleSource
	Renderer match.Renderer
	Status   match.StatusReporter

	// Quiet is the debounce window for mutation bursts; MaxWait bounds how
	// long a continuous storm can postpone a pass. PollInterval is the URL
	// safety-net cadence. Zero values take defaults.
	Quiet        time.Duration
	MaxWait      time.Duration
	PollInterval time.Duration

	Now func() time.Time

	mu       sync.Mutex
	epoch    int
	url      string
	variant  extract.Variant
	lastCand domain.Candidate
	haveLast bool
	lastRes  string // severity of last rendered advisory, for log context
}

const (
	defaultQuiet        = 250 * time.Millisecond
	defaultMaxWait      = 2 * time.Second
	defaultPollInterval = 1500 * time.Millisecond
)

func (s *PageScanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PageScanner) quiet() time.Duration {
	if s.Quiet > 0 {
		return s.Quiet
	}
	return defaultQuiet
}

func (s *PageScanner) maxWait() time.Duration {
	if s.MaxWait > 0 {
		return s.MaxWait
	}
	return defaultMaxWait
}

func (s *PageScanner) pollInterval() time.Duration {
	if s.PollInterval > 0 {
		return s.PollInterval
	}
	return defaultPollInterval
}

// Run drives the scanner until ctx is done. All passes execute on this
// goroutine, so no two passes for the page overlap and every completion is
// checked against the current navigation identity before it may mutate state.
func (s *PageScanner) Run(ctx context.Context) {
	deb := NewDebouncer(s.quiet(), s.maxWait())
	defer deb.Stop()

	poll := time.NewTicker(s.pollInterval())
	defer poll.Stop()

	s.Navigate(s.Doc.URL())
	s.ScanOnce()

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			return
		case <-s.Doc.Mutations():
			deb.Trigger()
		case <-deb.C():
			s.checkNavigation()
			s.ScanOnce()
		case <-poll.C:
			if s.checkNavigation() {
				s.ScanOnce()
			}
		case <-s.Rules.Changes():
			s.Rematch()
		}
	}
}

// Navigate declares a new navigation target: pending work for the old
// identity is invalidated and per-page state cleared. Hosts with an explicit
// back/forward hook call this directly; Run also detects URL drift by poll.
func (s *PageScanner) Navigate(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.url = url
	s.variant = extract.VariantForURL(url)
	s.lastCand = domain.Candidate{}
	s.haveLast = false
	s.lastRes = ""
}

func (s *PageScanner) checkNavigation() bool {
	cur := s.Doc.URL()
	s.mu.Lock()
	changed := cur != s.url
	s.mu.Unlock()
	if changed {
		log.Printf("[scan] navigation detected: %s", cur)
		s.Navigate(cur)
	}
	return changed
}

// ScanOnce performs one full extract→match→render pass. Safe to call from a
// host that drives scanning itself instead of using Run.
func (s *PageScanner) ScanOnce() {
	s.mu.Lock()
	epoch := s.epoch
	variant := s.variant
	s.mu.Unlock()

	if variant == extract.VariantNone {
		return
	}

	cand := extract.Extract(s.Doc.Root(), variant)

	s.mu.Lock()
	if s.epoch != epoch {
		// navigated away while extracting; result belongs to a dead identity
		s.mu.Unlock()
		return
	}
	if s.haveLast && cand.Equal(s.lastCand) && !cand.Failed() {
		// identical to the last matched pass: skip re-match and re-render to
		// avoid advisory flicker from redundant mutation signals
		s.mu.Unlock()
		return
	}
	s.lastCand = cand
	s.haveLast = !cand.Failed()
	s.mu.Unlock()

	res := s.checker().Check(cand)

	s.mu.Lock()
	if s.epoch == epoch {
		s.lastRes = string(res.Severity)
	}
	s.mu.Unlock()
}

// Rematch re-runs the match step against the last extracted candidate
// without touching the page; used when the rule set changes.
func (s *PageScanner) Rematch() {
	s.mu.Lock()
	cand := s.lastCand
	have := s.haveLast
	s.mu.Unlock()
	if !have {
		return
	}
	log.Printf("[scan] rules changed, re-matching cached candidate")
	res := s.checker().Check(cand)
	s.mu.Lock()
	s.lastRes = string(res.Severity)
	s.mu.Unlock()
}

func (s *PageScanner) checker() *match.Checker {
	return &match.Checker{Rules: s.Rules, Renderer: s.Renderer, Status: s.Status, Now: s.Now}
}

func (s *PageScanner) teardown() {
	if s.Renderer != nil {
		s.Renderer.Destroy()
	}
}
