package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"sourcing-advisor/internal/config"
	"sourcing-advisor/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setRuleStoreTokenReq struct {
	Token string `json:"token"`
}

// SetRuleStoreToken stores the remote rule-store bearer token in the OS
// keychain; it never touches the config file.
func (h SecretsHandler) SetRuleStoreToken(w http.ResponseWriter, r *http.Request) {
	var req setRuleStoreTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetRuleStoreToken(secrets.RuleStoreAccount(cfg.RuleStore.Team), req.Token); err != nil {
		http.Error(w, "failed to store token: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
