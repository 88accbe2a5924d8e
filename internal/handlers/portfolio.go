package handlers

import (
	"fmt"
	"net/http"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// PortfolioHandler serves valuations and manages holdings.
type PortfolioHandler struct {
	logger    *common.Logger
	portfolio interfaces.PortfolioService
	holdings  interfaces.HoldingStorage
	currency  string
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(logger *common.Logger, portfolio interfaces.PortfolioService, holdings interfaces.HoldingStorage, currency string) *PortfolioHandler {
	return &PortfolioHandler{
		logger:    logger,
		portfolio: portfolio,
		holdings:  holdings,
		currency:  currency,
	}
}

// HandlePortfolio handles GET /api/portfolio.
func (h *PortfolioHandler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	summary, err := h.portfolio.GetPortfolioValue(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"display": map[string]string{
			"total_value":        common.FormatMoney(summary.TotalValue, h.currency),
			"total_cost":         common.FormatMoney(summary.TotalCost, h.currency),
			"total_gain":         common.FormatSignedMoney(summary.TotalGain.Absolute, h.currency),
			"total_gain_percent": common.FormatSignedPct(summary.TotalGain.Percent),
		},
	})
}

// HandleHistory handles GET /api/portfolio/history?range=1M.
func (h *PortfolioHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	raw := r.URL.Query().Get("range")
	rng, ok := models.ParseRange(raw)
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid range %q", raw))
		return
	}

	points, err := h.portfolio.GetPortfolioHistory(r.Context(), rng)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"range":  rng,
		"points": points,
	})
}

// ListHoldings handles GET /api/holdings.
func (h *PortfolioHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdings.ListHoldings(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"holdings": holdings})
}

// SaveHolding handles POST /api/holdings. An existing holding for the symbol is replaced.
func (h *PortfolioHandler) SaveHolding(w http.ResponseWriter, r *http.Request) {
	var holding models.Holding
	if err := DecodeJSON(r, &holding); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	if err := holding.Validate(); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	if err := h.holdings.SaveHolding(r.Context(), holding); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, holding)
}

// DeleteHolding handles DELETE /api/holdings/{symbol}.
func (h *PortfolioHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	symbol := PathParam(r, "/api/holdings/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if err := h.holdings.DeleteHolding(r.Context(), symbol); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
