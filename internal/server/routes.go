package server

import (
	"net/http"

	"github.com/bobmcallan/vire-tracker/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Service routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// Market data
	market := s.app.MarketHandler
	mux.HandleFunc("/api/quotes", market.HandleQuotes)
	mux.HandleFunc("/api/quotes/cached", market.HandleCachedQuotes)
	mux.HandleFunc("/api/series", market.HandleSeries)
	mux.HandleFunc("/api/search", market.HandleSearch)
	mux.HandleFunc("/api/news", market.HandleNews)

	// Portfolio
	portfolio := s.app.PortfolioHandler
	mux.HandleFunc("/api/portfolio", portfolio.HandlePortfolio)
	mux.HandleFunc("/api/portfolio/history", portfolio.HandleHistory)
	mux.HandleFunc("/api/holdings", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, portfolio.ListHoldings, portfolio.SaveHolding)
	})
	mux.HandleFunc("/api/holdings/", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, nil, portfolio.SaveHolding, portfolio.DeleteHolding)
	})

	// Watchlist
	watchlist := s.app.WatchlistHandler
	mux.HandleFunc("/api/watchlist", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, watchlist.GetWatchlist, watchlist.AddItem)
	})
	mux.HandleFunc("/api/watchlist/", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, nil, nil, watchlist.RemoveItem)
	})

	mux.HandleFunc("/api/recommendations", s.app.RecommendationHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "The requested endpoint does not exist")
}
