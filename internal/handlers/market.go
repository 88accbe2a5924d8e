package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// MarketHandler serves quotes, series, search and news.
type MarketHandler struct {
	logger *common.Logger
	market interfaces.MarketService
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(logger *common.Logger, market interfaces.MarketService) *MarketHandler {
	return &MarketHandler{logger: logger, market: market}
}

// HandleQuotes handles GET /api/quotes?symbols=AAPL,MSFT.
func (h *MarketHandler) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	quotes, err := h.market.GetStockQuotes(r.Context(), SplitSymbols(r.URL.Query().Get("symbols")))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"quotes": quotes})
}

// HandleCachedQuotes handles GET /api/quotes/cached?symbols=AAPL. It never calls a provider.
func (h *MarketHandler) HandleCachedQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbols := SplitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		WriteError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"quotes": h.market.CachedQuotes(symbols)})
}

// HandleSeries handles GET /api/series?symbol=AAPL&range=1M.
func (h *MarketHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	q := r.URL.Query()
	rng, ok := models.ParseRange(q.Get("range"))
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid range %q", q.Get("range")))
		return
	}

	symbol := strings.TrimSpace(q.Get("symbol"))
	points, err := h.market.GetSeries(r.Context(), symbol, rng)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": models.NormalizeSymbol(symbol),
		"range":  rng,
		"points": points,
	})
}

// HandleSearch handles GET /api/search?q=apple.
func (h *MarketHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	results, err := h.market.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// HandleNews handles GET /api/news?category=general.
func (h *MarketHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	category := r.URL.Query().Get("category")
	items, err := h.market.FetchMarketNews(r.Context(), category)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	if category == "" {
		category = models.NewsGeneral
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"category": strings.ToLower(category),
		"items":    items,
	})
}
