package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sourcing-advisor/internal/rules"
)

type RulesHandler struct {
	Cache     *rules.Cache
	SyncRules func(ctx context.Context) error
}

// List returns all rules of one kind, inactive and expired included; the
// admin view needs the full picture, not just what matches today.
func (h RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := rules.Kind(r.URL.Query().Get("kind"))
	switch kind {
	case rules.KindLocation, rules.KindCompany:
		writeJSON(w, h.Cache.List(kind))
	case "":
		writeJSON(w, map[string]any{
			"locations": h.Cache.List(rules.KindLocation),
			"companies": h.Cache.List(rules.KindCompany),
		})
	default:
		WriteError(w, r, http.StatusBadRequest, "bad_kind", "kind must be location or company")
	}
}

func (h RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var incoming rules.Rule
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid JSON: "+err.Error())
		return
	}

	created, err := h.Cache.Create(r.Context(), incoming)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_rule", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

func (h RulesHandler) UpdateByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleID(w, r)
	if !ok {
		return
	}

	var incoming rules.Rule
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid JSON: "+err.Error())
		return
	}

	updated, err := h.Cache.Update(r.Context(), id, incoming)
	if errors.Is(err, rules.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such rule")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_rule", err.Error())
		return
	}
	writeJSON(w, updated)
}

func (h RulesHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleID(w, r)
	if !ok {
		return
	}

	err := h.Cache.Delete(r.Context(), id)
	if errors.Is(err, rules.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such rule")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

// Sync pulls the team rule set from the remote store immediately instead of
// waiting for the next scheduled refresh.
func (h RulesHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.SyncRules == nil {
		WriteError(w, r, http.StatusConflict, "sync_disabled", "remote rule store is not configured")
		return
	}
	if err := h.SyncRules(r.Context()); err != nil {
		WriteError(w, r, http.StatusBadGateway, "sync_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func ruleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, "/rules/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid rule id")
		return 0, false
	}
	return id, true
}
