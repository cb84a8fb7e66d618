package scan

import (
	"github.com/PuerkitoBio/goquery"

	"sourcing-advisor/internal/match"
)

// Document is the live-page collaborator: the rendered structure the
// extractor queries plus the page's change signals. The engine never mutates
// the document; badges and banners are the renderer collaborator's problem.
type Document interface {
	// URL returns the current navigation target. Scanners poll it as a
	// safety net because not every in-page navigation fires an event.
	URL() string

	// Root returns the current parse of the rendered page. Implementations
	// re-read/re-parse as needed; scanners treat each call as a fresh view.
	Root() *goquery.Document

	// Mutations delivers structural-change notifications. Senders must not
	// assume the channel is drained promptly.
	Mutations() <-chan struct{}

	// Intersections delivers a signal when a list card crosses into the
	// viewport (with margin). May be a nil channel for documents without
	// viewport semantics.
	Intersections() <-chan struct{}

	// Scrolls delivers coalesced scroll notifications. May be nil.
	Scrolls() <-chan struct{}
}

// RuleSource is the rule-store collaborator as scanners see it: read-only
// rule snapshots plus a change signal that re-runs matching (not extraction).
type RuleSource interface {
	match.Source
	Changes() <-chan struct{}
}
