package api

import (
	"encoding/json"
	"net/http"

	"github.com/sydlexius/zonecast/internal/provider"
)

// handleListProviders returns the registered providers. By default only
// providers whose playback engine is present on this host are listed;
// ?all=true includes the rest.
func (r *Router) handleListProviders(w http.ResponseWriter, req *http.Request) {
	all := req.URL.Query().Get("all") == "true"
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": r.providerRegistry.Info(!all),
		"default":   r.providerRegistry.DefaultProvider(),
	})
}

// handleGetDefaultProvider returns the configured default provider and,
// separately, the provider new players should actually use on this host.
func (r *Router) handleGetDefaultProvider(w http.ResponseWriter, req *http.Request) {
	effective, ok := r.providerRegistry.DefaultAvailableProvider()
	resp := map[string]any{
		"default":   r.providerRegistry.DefaultProvider(),
		"effective": effective,
		"available": ok,
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetDefaultProvider changes the default provider type.
func (r *Router) handleSetDefaultProvider(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Provider == "" {
		writeError(w, http.StatusBadRequest, "provider is required")
		return
	}
	if !r.providerRegistry.HasProvider(body.Provider) {
		writeError(w, http.StatusBadRequest, "unknown provider")
		return
	}

	r.providerRegistry.SetDefaultProvider(body.Provider)
	r.logger.Info("default provider changed", "provider", body.Provider)
	if r.eventBus != nil {
		r.publishDefaultChanged(body.Provider)
	}
	writeJSON(w, http.StatusOK, map[string]string{"default": body.Provider})
}

// handleValidatePlayerConfig runs a player config through its provider's
// validation without creating anything.
func (r *Router) handleValidatePlayerConfig(w http.ResponseWriter, req *http.Request) {
	var cfg provider.Config
	if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, msg := r.providerRegistry.ValidatePlayerConfig(cfg)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   valid,
		"message": msg,
	})
}

// handlePreparePlayerConfig fills a player config with provider defaults.
func (r *Router) handlePreparePlayerConfig(w http.ResponseWriter, req *http.Request) {
	var cfg provider.Config
	if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"config": r.providerRegistry.PreparePlayerConfig(cfg),
	})
}
