package cmd

import (
	"log"
	"sync/atomic"
	"time"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/events"
	"sourcing-advisor/internal/httpapi"
	"sourcing-advisor/internal/notify"
	"sourcing-advisor/internal/rules"
)

// consoleRenderer is the CLI's advisory surface: advisories go to the log,
// onto the event hub for SSE clients, and (red only) to the mailer.
type consoleRenderer struct {
	hub    *events.Hub
	mailer *notify.Mailer
}

func (r consoleRenderer) Show(res rules.MatchResult) {
	log.Printf("[advisory] %s: %s", res.Severity, res.Message)
	if r.hub != nil {
		r.hub.Publish(events.MakeEvent("", events.TypeAdvisory, 1, res))
	}
	if r.mailer != nil {
		r.mailer.RedAdvisory(res)
	}
}

func (r consoleRenderer) Badge(cardID string, severity rules.Severity) {
	log.Printf("[advisory] card %s: %s", cardID, severity)
	if r.hub != nil {
		r.hub.Publish(events.MakeEvent("", events.TypeAdvisory, 1, map[string]any{
			"card": cardID, "severity": severity,
		}))
	}
}

func (r consoleRenderer) Dismiss() {}
func (r consoleRenderer) Destroy() {}

// hubStatus mirrors every status push into the /status snapshot and onto the
// event hub.
type hubStatus struct {
	val     *atomic.Value // stores httpapi.ScanSnapshot
	hub     *events.Hub
	url     func() string
	pending func() int
}

func (s *hubStatus) Push(st domain.ScanStatus) {
	snap := httpapi.ScanSnapshot{
		LastScanAt: time.Now().Format(time.RFC3339),
		Last:       &st,
	}
	if s.url != nil {
		snap.URL = s.url()
	}
	if s.pending != nil {
		snap.PendingCards = s.pending()
	}
	if s.val != nil {
		s.val.Store(snap)
	}
	if s.hub != nil {
		s.hub.Publish(events.MakeEvent("", events.TypeScanStatus, 1, st))
	}
}
