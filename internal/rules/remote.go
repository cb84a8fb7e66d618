package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// RemoteClient mirrors the team's central rule store into the local cache.
// Only one fetch is outstanding at a time; overlapping refresh triggers
// (timer, admin "sync now", startup) collapse into the in-flight call.
type RemoteClient struct {
	BaseURL string
	Team    string
	Token   string

	HTTPClient *http.Client
	Timeout    time.Duration

	group   singleflight.Group
	limiter *rate.Limiter
}

func NewRemoteClient(baseURL, team, token string) *RemoteClient {
	return &RemoteClient{
		BaseURL:    baseURL,
		Team:       team,
		Token:      token,
		HTTPClient: &http.Client{},
		Timeout:    10 * time.Second,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 2),
	}
}

// remoteRule is the wire shape of one rule row from the central store.
type remoteRule struct {
	Pattern   string `json:"pattern"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Active    bool   `json:"active"`
	ExpiresAt string `json:"expiresAt,omitempty"` // YYYY-MM-DD
}

type remoteRuleSet struct {
	Locations []remoteRule `json:"locations"`
	Companies []remoteRule `json:"companies"`
	Revision  string       `json:"revision,omitempty"`
}

// Sync fetches the team rule set and writes it through the cache. Malformed
// rows are skipped individually; a transport failure leaves the cache as-is.
func (rc *RemoteClient) Sync(ctx context.Context, cache *Cache) error {
	_, err, _ := rc.group.Do("sync", func() (any, error) {
		set, err := rc.fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := cache.ReplaceKind(ctx, KindLocation, convertRemote(set.Locations, KindLocation)); err != nil {
			return nil, err
		}
		if err := cache.ReplaceKind(ctx, KindCompany, convertRemote(set.Companies, KindCompany)); err != nil {
			return nil, err
		}
		if err := cache.db.SetState(ctx, "last_synced_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
			log.Printf("[rules] recording sync time: %v", err)
		}
		if set.Revision != "" {
			_ = cache.db.SetState(ctx, "remote_revision", set.Revision)
		}
		log.Printf("[rules] synced remote rule set (rev=%s, loc=%d, comp=%d)",
			set.Revision, len(set.Locations), len(set.Companies))
		return nil, nil
	})
	return err
}

func (rc *RemoteClient) fetch(ctx context.Context) (remoteRuleSet, error) {
	var set remoteRuleSet

	if err := rc.limiter.Wait(ctx); err != nil {
		return set, err
	}

	ctx, cancel := context.WithTimeout(ctx, rc.Timeout)
	defer cancel()

	u := fmt.Sprintf("%s/teams/%s/rules", rc.BaseURL, url.PathEscape(rc.Team))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return set, err
	}
	if rc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+rc.Token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := rc.HTTPClient.Do(req)
	if err != nil {
		return set, fmt.Errorf("rule store fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return set, fmt.Errorf("rule store fetch: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return set, fmt.Errorf("rule store decode: %w", err)
	}
	return set, nil
}

func convertRemote(in []remoteRule, kind Kind) []Rule {
	out := make([]Rule, 0, len(in))
	for _, rr := range in {
		r := Rule{
			Kind:     kind,
			Pattern:  rr.Pattern,
			Severity: Severity(rr.Severity),
			Message:  rr.Message,
			Active:   rr.Active,
		}
		if kind == KindCompany {
			if t, ok := ParseExpiry(rr.ExpiresAt); ok {
				r.ExpiresAt = &t
			} else if rr.ExpiresAt != "" {
				// unparseable expiry: skip this row rather than matching forever
				log.Printf("[rules] skipping company rule with bad expiry %q", rr.ExpiresAt)
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
