package handlers

import (
	"net/http"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
)

// RecommendationHandler serves BUY/HOLD/SELL suggestions.
type RecommendationHandler struct {
	logger    *common.Logger
	recommend interfaces.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(logger *common.Logger, recommend interfaces.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{logger: logger, recommend: recommend}
}

// ServeHTTP handles GET /api/recommendations?symbols=AAPL,TSLA. Held symbols are always included.
func (h *RecommendationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	recs, err := h.recommend.Recommend(r.Context(), SplitSymbols(r.URL.Query().Get("symbols")))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}
