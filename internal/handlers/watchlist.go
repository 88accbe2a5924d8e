package handlers

import (
	"net/http"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// WatchlistHandler manages the watchlist.
type WatchlistHandler struct {
	logger    *common.Logger
	watchlist interfaces.WatchlistService
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(logger *common.Logger, watchlist interfaces.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{logger: logger, watchlist: watchlist}
}

type watchlistRow struct {
	models.WatchlistItem
	Quote models.Quote `json:"quote"`
}

// GetWatchlist handles GET /api/watchlist. Add ?format=markdown for a markdown table.
func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	wl, quotes, err := h.watchlist.Get(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		byKey := make(map[string]models.Quote, len(quotes))
		for _, q := range quotes {
			byKey[q.Symbol] = q
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(wl.ToMarkdown(byKey)))
		return
	}

	rows := make([]watchlistRow, len(wl.Items))
	for i, item := range wl.Items {
		rows[i] = watchlistRow{WatchlistItem: item}
		if i < len(quotes) {
			rows[i].Quote = quotes[i]
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": rows})
}

type addWatchlistRequest struct {
	Symbol string `json:"symbol"`
	Notes  string `json:"notes"`
}

// AddItem handles POST /api/watchlist.
func (h *WatchlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addWatchlistRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	item, err := h.watchlist.Add(r.Context(), req.Symbol, req.Notes)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /api/watchlist/{symbol}.
func (h *WatchlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.watchlist.Remove(r.Context(), PathParam(r, "/api/watchlist/")); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
