package handlers

import (
	"net/http"

	"github.com/bobmcallan/vire-tracker/internal/common"
)

// HealthStats reports provider and cache state.
type HealthStats interface {
	ProviderNames() []string
	NewsProviderNames() []string
	CacheStats() map[string]int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *common.Logger
	stats  HealthStats
}

// NewHealthHandler creates a new health handler. stats may be nil.
func NewHealthHandler(logger *common.Logger, stats HealthStats) *HealthHandler {
	return &HealthHandler{logger: logger, stats: stats}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	body := map[string]interface{}{
		"status": "ok",
	}
	if h.stats != nil {
		body["providers"] = h.stats.ProviderNames()
		body["news_providers"] = h.stats.NewsProviderNames()
		body["cache"] = h.stats.CacheStats()
	}
	WriteJSON(w, http.StatusOK, body)
}
