package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync/atomic"

	"sourcing-advisor/internal/config"
	"sourcing-advisor/internal/events"
	"sourcing-advisor/internal/rules"
	"sourcing-advisor/internal/secrets"
	"sourcing-advisor/internal/store"
)

// app bundles everything serve and scan both need: loaded config, the rule
// cache over sqlite, and the event hub.
type app struct {
	cfg     config.Config
	cfgVal  *atomic.Value
	cfgPath string
	db      *store.DB
	hub     *events.Hub
	cache   *rules.Cache
}

func openApp() (*app, error) {
	cfgPath, err := config.EnsureUserConfig(dataDir, "")
	if err != nil {
		return nil, fmt.Errorf("config bootstrap failed: %w", err)
	}

	raw, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	cfg, vr := config.NormalizeAndValidate(raw)
	for _, warn := range vr.Warnings {
		log.Printf("[config] warning: %s", warn)
	}
	if !vr.OK() {
		return nil, fmt.Errorf("config invalid (%s): %v", cfgPath, vr.Errors)
	}

	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)

	db, err := store.Open(filepath.Join(dataDir, "advisor.db"))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	hub := events.NewHub()
	cache, err := rules.NewCache(db, hub)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{cfg: cfg, cfgVal: cfgVal, cfgPath: cfgPath, db: db, hub: hub, cache: cache}
	if err := a.seedRules(); err != nil {
		log.Printf("[rules] seed load failed: %v", err)
	}
	return a, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

// seedRules imports rules.yml into an empty cache so a fresh install has a
// working rule set before the remote store is configured.
func (a *app) seedRules() error {
	if len(a.cache.List(rules.KindLocation)) > 0 || len(a.cache.List(rules.KindCompany)) > 0 {
		return nil
	}
	seeds, err := config.LoadSeedRules(filepath.Join(dataDir, "rules.yml"))
	if err != nil || len(seeds) == 0 {
		return err
	}

	added := 0
	for _, s := range seeds {
		r := rules.Rule{
			Kind:     rules.Kind(s.Kind),
			Pattern:  s.Pattern,
			Severity: rules.Severity(s.Severity),
			Message:  s.Message,
			Active:   true,
		}
		if t, ok := rules.ParseExpiry(s.Expires); ok {
			r.ExpiresAt = &t
		}
		if _, err := a.cache.Create(context.Background(), r); err != nil {
			log.Printf("[rules] skipping seed %q: %v", s.Pattern, err)
			continue
		}
		added++
	}
	if added > 0 {
		log.Printf("[rules] seeded %d rules from rules.yml", added)
	}
	return nil
}

// loadConfig re-reads the user's config file; the API stores the result in
// cfgVal after a successful save.
func (a *app) loadConfig() (config.Config, error) {
	raw, err := config.Load(a.cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg, vr := config.NormalizeAndValidate(raw)
	if !vr.OK() {
		return config.Config{}, fmt.Errorf("config invalid: %v", vr.Errors)
	}
	return cfg, nil
}

// remoteSync builds the remote rule-store sync function, or nil when the
// store is disabled or its token is missing.
func (a *app) remoteSync() func(ctx context.Context) error {
	rs := a.cfg.RuleStore
	if !rs.Enabled {
		return nil
	}
	token, err := secrets.GetRuleStoreToken(secrets.RuleStoreAccount(rs.Team))
	if err != nil {
		log.Printf("[rules] remote store disabled: %v", err)
		return nil
	}
	rc := rules.NewRemoteClient(rs.BaseURL, rs.Team, token)
	return func(ctx context.Context) error {
		return rc.Sync(ctx, a.cache)
	}
}
