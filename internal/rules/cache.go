package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"sourcing-advisor/internal/events"
	"sourcing-advisor/internal/store"
)

// ErrNotFound is returned for writes against a rule id that does not exist.
var ErrNotFound = errors.New("rule not found")

// Cache is the write-through rule cache. Reads are served from an in-memory
// snapshot; every write goes to sqlite first, then refreshes the snapshot and
// publishes a rules_changed event so scanners re-match without re-extracting.
type Cache struct {
	db  *store.DB
	hub *events.Hub

	mu        sync.RWMutex
	locations []Rule
	companies []Rule
}

func NewCache(db *store.DB, hub *events.Hub) (*Cache, error) {
	c := &Cache{db: db, hub: hub}
	if err := c.Reload(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// ActiveLocationRules returns the active location rules in stable id order.
// The slice is a copy; callers may not see later writes.
func (c *Cache) ActiveLocationRules() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterActive(c.locations)
}

// ActiveCompanyRules returns the active company rules. Expiry is not applied
// here; the matcher checks it per call so expiry stays current without a
// cache refresh.
func (c *Cache) ActiveCompanyRules() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterActive(c.companies)
}

func filterActive(in []Rule) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// List returns all rules of one kind, including inactive ones (admin view).
func (c *Cache) List(kind Kind) []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var src []Rule
	if kind == KindCompany {
		src = c.companies
	} else {
		src = c.locations
	}
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}

func validateRule(r Rule) error {
	if r.Kind != KindLocation && r.Kind != KindCompany {
		return fmt.Errorf("invalid kind %q", r.Kind)
	}
	if !ValidSeverity(r.Severity) {
		return fmt.Errorf("invalid severity %q", r.Severity)
	}
	if len(r.Alternatives()) == 0 {
		return errors.New("pattern has no usable alternatives")
	}
	if r.ExpiresAt != nil && r.Kind != KindCompany {
		return errors.New("expiry is only supported on company rules")
	}
	return nil
}

func (c *Cache) Create(ctx context.Context, r Rule) (Rule, error) {
	if err := validateRule(r); err != nil {
		return Rule{}, err
	}
	now := time.Now().UTC()
	res, err := c.db.Pool.ExecContext(ctx, `
INSERT INTO rules(kind, pattern, severity, message, active, expires_at, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?);`,
		string(r.Kind), strings.TrimSpace(r.Pattern), string(r.Severity), r.Message,
		boolInt(r.Active), expiryString(r.ExpiresAt),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return Rule{}, err
	}
	r.ID, _ = res.LastInsertId()
	r.CreatedAt, r.UpdatedAt = now, now
	return r, c.refreshAndNotify(ctx)
}

func (c *Cache) Update(ctx context.Context, id int64, r Rule) (Rule, error) {
	r.ID = id
	if err := validateRule(r); err != nil {
		return Rule{}, err
	}
	now := time.Now().UTC()
	res, err := c.db.Pool.ExecContext(ctx, `
UPDATE rules SET kind=?, pattern=?, severity=?, message=?, active=?, expires_at=?, updated_at=?
WHERE id=?;`,
		string(r.Kind), strings.TrimSpace(r.Pattern), string(r.Severity), r.Message,
		boolInt(r.Active), expiryString(r.ExpiresAt), now.Format(time.RFC3339), id)
	if err != nil {
		return Rule{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Rule{}, ErrNotFound
	}
	r.UpdatedAt = now
	return r, c.refreshAndNotify(ctx)
}

func (c *Cache) Delete(ctx context.Context, id int64) error {
	res, err := c.db.Pool.ExecContext(ctx, `DELETE FROM rules WHERE id=?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return c.refreshAndNotify(ctx)
}

// ReplaceKind swaps in a full rule set for one kind; used by remote sync.
func (c *Cache) ReplaceKind(ctx context.Context, kind Kind, incoming []Rule) error {
	tx, err := c.db.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE kind=?;`, string(kind)); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range incoming {
		r.Kind = kind
		if err := validateRule(r); err != nil {
			// malformed remote rows are skipped, not fatal
			continue
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO rules(kind, pattern, severity, message, active, expires_at, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?);`,
			string(kind), strings.TrimSpace(r.Pattern), string(r.Severity), r.Message,
			boolInt(r.Active), expiryString(r.ExpiresAt), now, now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return c.refreshAndNotify(ctx)
}

// Reload refreshes the in-memory snapshot from sqlite.
func (c *Cache) Reload(ctx context.Context) error {
	rows, err := c.db.Pool.QueryContext(ctx, `
SELECT id, kind, pattern, severity, message, active, expires_at, created_at, updated_at
FROM rules ORDER BY id;`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var loc, comp []Rule
	for rows.Next() {
		var r Rule
		var kind, severity, expires, created, updated string
		var active int
		if err := rows.Scan(&r.ID, &kind, &r.Pattern, &severity, &r.Message, &active, &expires, &created, &updated); err != nil {
			return err
		}
		r.Kind = Kind(kind)
		r.Severity = Severity(severity)
		r.Active = active != 0
		if t, ok := ParseExpiry(expires); ok {
			r.ExpiresAt = &t
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		if r.Kind == KindCompany {
			comp = append(comp, r)
		} else {
			loc = append(loc, r)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.locations, c.companies = loc, comp
	c.mu.Unlock()
	return nil
}

func (c *Cache) refreshAndNotify(ctx context.Context) error {
	if err := c.Reload(ctx); err != nil {
		return err
	}
	if c.hub != nil {
		c.hub.Publish(events.MakeEvent("", events.TypeRulesChanged, 1, nil))
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func expiryString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
