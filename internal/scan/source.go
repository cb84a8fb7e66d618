package scan

import (
	"context"
	"encoding/json"

	"sourcing-advisor/internal/events"
	"sourcing-advisor/internal/rules"
)

// CacheSource adapts the rule cache plus the event hub into the RuleSource
// contract: rule reads come from the cache snapshot, and rules_changed events
// on the hub become change signals.
type CacheSource struct {
	cache   *rules.Cache
	changes chan struct{}
	cancel  context.CancelFunc
}

func NewCacheSource(cache *rules.Cache, hub *events.Hub) *CacheSource {
	ctx, cancel := context.WithCancel(context.Background())
	s := &CacheSource{
		cache:   cache,
		changes: make(chan struct{}, 1),
		cancel:  cancel,
	}
	if hub != nil {
		go s.forward(ctx, hub)
	}
	return s
}

func (s *CacheSource) ActiveLocationRules() []rules.Rule { return s.cache.ActiveLocationRules() }
func (s *CacheSource) ActiveCompanyRules() []rules.Rule  { return s.cache.ActiveCompanyRules() }
func (s *CacheSource) Changes() <-chan struct{}          { return s.changes }

// Close stops forwarding hub events.
func (s *CacheSource) Close() { s.cancel() }

func (s *CacheSource) forward(ctx context.Context, hub *events.Hub) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			var e events.Event
			if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Type != events.TypeRulesChanged {
				continue
			}
			select {
			case s.changes <- struct{}{}:
			default:
			}
		}
	}
}
