package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/handlers"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/mcp"
	"github.com/bobmcallan/vire-tracker/internal/resolver"
	"github.com/bobmcallan/vire-tracker/internal/services/market"
	"github.com/bobmcallan/vire-tracker/internal/services/portfolio"
	"github.com/bobmcallan/vire-tracker/internal/services/recommend"
	"github.com/bobmcallan/vire-tracker/internal/services/watchlist"
	"github.com/bobmcallan/vire-tracker/internal/storage"
)

// App holds all application components and dependencies.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	// Services
	Market    *market.Service
	Portfolio *portfolio.Service
	Watchlist *watchlist.Service
	Recommend *recommend.Service

	// HTTP handlers
	HealthHandler         *handlers.HealthHandler
	VersionHandler        *handlers.VersionHandler
	MarketHandler         *handlers.MarketHandler
	PortfolioHandler      *handlers.PortfolioHandler
	WatchlistHandler      *handlers.WatchlistHandler
	RecommendationHandler *handlers.RecommendationHandler
	MCPHandler            *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Validate environment setting
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if env != "prod" && env != "dev" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}
	for _, issue := range cfg.Validate() {
		logger.Warn().Str("issue", issue).Msg("Configuration issue")
	}

	store, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = store

	if err := a.initServices(); err != nil {
		store.Close()
		return nil, err
	}
	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initServices builds the provider chain and the services on top of it.
func (a *App) initServices() error {
	quotes := resolver.New(a.Logger, quoteProviders(a.Config, a.Logger)...)
	news := resolver.New(a.Logger, newsProviders(a.Config, a.Logger)...)

	a.Market = market.NewService(quotes, news, market.Options{TTL: a.Config.Cache.GetTTL()}, a.Logger)

	sectors, err := portfolio.LoadSectors(a.Config.Portfolio.SectorsFile)
	if err != nil {
		return err
	}
	holdings := a.Storage.HoldingStorage()
	a.Portfolio = portfolio.NewService(a.Market, holdings, sectors, a.Logger)
	a.Watchlist = watchlist.NewService(a.Storage.WatchlistStorage(), a.Market, a.Logger)

	var narrator recommend.Narrator
	gemini, err := recommend.NewGeminiNarrator(context.Background(), a.Config.Recommend.Gemini)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Gemini narrator unavailable, using template rationales")
	} else if gemini != nil {
		narrator = gemini
	}
	a.Recommend = recommend.NewService(a.Market, holdings, narrator, a.Config.Portfolio.Currency, a.Logger)

	a.Logger.Info().
		Strs("providers", a.Market.ProviderNames()).
		Strs("news_providers", a.Market.NewsProviderNames()).
		Dur("cache_ttl", a.Config.Cache.GetTTL()).
		Bool("narrator", narrator != nil).
		Msg("Services initialized")
	return nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Market)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.MarketHandler = handlers.NewMarketHandler(a.Logger, a.Market)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.Logger, a.Portfolio, a.Storage.HoldingStorage(), a.Config.Portfolio.Currency)
	a.WatchlistHandler = handlers.NewWatchlistHandler(a.Logger, a.Watchlist)
	a.RecommendationHandler = handlers.NewRecommendationHandler(a.Logger, a.Recommend)

	a.MCPHandler = mcp.NewHandler(mcp.Services{
		Market:    a.Market,
		Portfolio: a.Portfolio,
		Recommend: a.Recommend,
	}, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
