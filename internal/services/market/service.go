// Package market serves quotes, series, search and news through the
// provider fallback chain with a freshness cache in front of it.
package market

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bobmcallan/vire-tracker/internal/cache"
	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
	"github.com/bobmcallan/vire-tracker/internal/resolver"
)

// Service is the cached market-data facade used by every consumer.
type Service struct {
	providers *resolver.Resolver[interfaces.ProviderClient]
	news      *resolver.Resolver[interfaces.NewsProvider]

	quotes   *cache.Store[models.Quote]
	series   *cache.Store[[]models.HistoricalPoint]
	searches *cache.Store[[]models.SearchResult]
	articles *cache.Store[[]models.NewsItem]

	logger *common.Logger
}

// Options configures a Service.
type Options struct {
	TTL   time.Duration
	Clock cache.Clock
}

// NewService creates a market service over the given resolvers.
func NewService(providers *resolver.Resolver[interfaces.ProviderClient], news *resolver.Resolver[interfaces.NewsProvider], opts Options, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if providers == nil {
		providers = resolver.New[interfaces.ProviderClient](logger)
	}
	if news == nil {
		news = resolver.New[interfaces.NewsProvider](logger)
	}
	return &Service{
		providers: providers,
		news:      news,
		quotes:    cache.New[models.Quote](opts.TTL, opts.Clock),
		series:    cache.New[[]models.HistoricalPoint](opts.TTL, opts.Clock),
		searches:  cache.New[[]models.SearchResult](opts.TTL, opts.Clock),
		articles:  cache.New[[]models.NewsItem](opts.TTL, opts.Clock),
		logger:    logger,
	}
}

// ProviderNames returns the quote providers in priority order.
func (s *Service) ProviderNames() []string { return s.providers.Names() }

// NewsProviderNames returns the news providers in priority order.
func (s *Service) NewsProviderNames() []string { return s.news.Names() }

// CacheStats returns the number of cached keys per payload kind.
func (s *Service) CacheStats() map[string]int {
	return map[string]int{
		"quotes": s.quotes.Len(),
		"series": s.series.Len(),
		"search": s.searches.Len(),
		"news":   s.articles.Len(),
	}
}

// normalizeSymbols trims and upper-cases symbols, dropping empties.
func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if n := models.NormalizeSymbol(sym); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// GetStockQuotes returns one quote per requested symbol, in request order.
// Fresh cached quotes are served directly; stale or missing symbols are
// fetched once through the provider chain. Error-flagged quotes are never
// cached and a stale good quote is served in their place.
//
// When every provider fails, stale quotes are served and uncached symbols
// get an error-flagged quote. The AllProvidersFailedError is returned only
// when none of the requested symbols had cached data.
func (s *Service) GetStockQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	syms := normalizeSymbols(symbols)
	if len(syms) == 0 {
		return nil, fmt.Errorf("%w: at least one symbol is required", models.ErrInvalidInput)
	}

	now := s.quotes.Now()
	out := make([]models.Quote, len(syms))
	resolved := make([]bool, len(syms))
	seen := make(map[string]bool, len(syms))
	var missing []string

	for i, sym := range syms {
		if s.quotes.IsFresh(sym, now) {
			e, _ := s.quotes.Get(sym)
			out[i] = e.Payload
			resolved[i] = true
			continue
		}
		if !seen[sym] {
			seen[sym] = true
			missing = append(missing, sym)
		}
	}

	if len(missing) == 0 {
		s.logger.Debug().Int("symbols", len(syms)).Msg("Quotes served from cache")
		return out, nil
	}

	fetched, source, err := resolver.FetchQuotes(ctx, s.providers, missing)
	if err != nil {
		if !resolver.IsAllProvidersFailed(err) {
			return nil, err
		}
		return s.serveStaleQuotes(syms, out, resolved, err)
	}

	fetchedAt := s.quotes.Now()
	byKey := make(map[string]models.Quote, len(fetched))
	for _, q := range fetched {
		if q.Valid() {
			s.quotes.Set(q.Symbol, q, fetchedAt)
		} else if e, ok := s.quotes.Get(q.Symbol); ok {
			s.logger.Debug().Str("symbol", q.Symbol).Str("error", q.Error).Msg("Serving last good quote over error quote")
			q = e.Payload
		}
		byKey[q.Symbol] = q
	}

	for i, sym := range syms {
		if !resolved[i] {
			out[i] = byKey[sym]
		}
	}

	s.logger.Debug().Str("provider", source).Int("fetched", len(missing)).Int("symbols", len(syms)).Msg("Quotes resolved")
	return out, nil
}

// serveStaleQuotes fills unresolved slots from the cache after a total provider failure.
func (s *Service) serveStaleQuotes(syms []string, out []models.Quote, resolved []bool, cause error) ([]models.Quote, error) {
	hadData := false
	for i := range resolved {
		if resolved[i] {
			hadData = true
		}
	}

	for i, sym := range syms {
		if resolved[i] {
			continue
		}
		if e, ok := s.quotes.Get(sym); ok {
			out[i] = e.Payload
			hadData = true
			continue
		}
		out[i] = models.ErrorQuote(sym, "", "quote unavailable")
	}

	if !hadData {
		return nil, cause
	}
	s.logger.Warn().Err(cause).Int("symbols", len(syms)).Msg("All providers failed, serving cached quotes")
	return out, nil
}

// CachedQuotes reads quotes straight from the cache, stale included.
// Symbols never fetched get an error-flagged quote.
func (s *Service) CachedQuotes(symbols []string) []models.Quote {
	syms := normalizeSymbols(symbols)
	out := make([]models.Quote, len(syms))
	for i, sym := range syms {
		if e, ok := s.quotes.Get(sym); ok {
			out[i] = e.Payload
			continue
		}
		out[i] = models.ErrorQuote(sym, "", "not cached")
	}
	return out
}

// GetSeries returns the daily series for symbol trimmed to rng, newest-first.
// The full series is cached per symbol.
func (s *Service) GetSeries(ctx context.Context, symbol string, rng models.Range) ([]models.HistoricalPoint, error) {
	sym := models.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}

	points, err := load(ctx, s, s.series, sym, resolver.OpSeries, func(ctx context.Context) ([]models.HistoricalPoint, string, error) {
		return resolver.FetchSeries(ctx, s.providers, sym)
	})
	if err != nil {
		return nil, err
	}
	return models.TrimSeries(points, rng.Since(s.series.Now())), nil
}

// Search returns symbol matches for query, cached per normalized query.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", models.ErrInvalidInput)
	}

	key := strings.ToLower(q)
	return load(ctx, s, s.searches, key, resolver.OpSearch, func(ctx context.Context) ([]models.SearchResult, string, error) {
		return resolver.Search(ctx, s.providers, q)
	})
}

// FetchMarketNews returns news for one of the supported categories. An empty
// category means general.
func (s *Service) FetchMarketNews(ctx context.Context, category string) ([]models.NewsItem, error) {
	cat := strings.ToLower(strings.TrimSpace(category))
	if cat == "" {
		cat = models.NewsGeneral
	}
	if !models.ValidNewsCategory(cat) {
		return nil, fmt.Errorf("%w: unknown news category %q", models.ErrInvalidInput, category)
	}

	return load(ctx, s, s.articles, cat, resolver.OpNews, func(ctx context.Context) ([]models.NewsItem, string, error) {
		return resolver.FetchNews(ctx, s.news, cat)
	})
}

// load serves key from store when fresh, otherwise refetches. A stale entry is
// served when every provider fails. Callers get a copy of the cached slice.
func load[E any](ctx context.Context, s *Service, store *cache.Store[[]E], key, op string, fetch func(context.Context) ([]E, string, error)) ([]E, error) {
	if e, ok := store.Fresh(key); ok {
		return slices.Clone(e.Payload), nil
	}

	v, source, err := fetch(ctx)
	if err != nil {
		if e, ok := store.Get(key); ok && resolver.IsAllProvidersFailed(err) {
			s.logger.Warn().Str("op", op).Str("key", key).Err(err).Msg("All providers failed, serving stale entry")
			return slices.Clone(e.Payload), nil
		}
		return nil, err
	}

	store.Set(key, v, store.Now())
	s.logger.Debug().Str("op", op).Str("key", key).Str("provider", source).Msg("Cache refreshed")
	return slices.Clone(v), nil
}
