package httpapi

import (
	"net/http"
	"sync/atomic"

	"sourcing-advisor/internal/domain"
)

// ScanSnapshot is the advisor's externally visible scan state. It carries the
// outcome shape only, never raw page content beyond the last pass's fields.
type ScanSnapshot struct {
	LastScanAt   string             `json:"last_scan_at"`
	URL          string             `json:"url,omitempty"`
	Variant      string             `json:"variant,omitempty"`
	Last         *domain.ScanStatus `json:"last,omitempty"`
	PendingCards int                `json:"pending_cards"`
}

type StatusHandler struct {
	ScanStatus *atomic.Value // stores ScanSnapshot
}

func (h StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, _ := h.ScanStatus.Load().(ScanSnapshot)
	writeJSON(w, snap)
}
