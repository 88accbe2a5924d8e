// Package resolver tries market-data providers in strict priority order.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// Operation names used in errors and logs.
const (
	OpQuotes = "quotes"
	OpSeries = "series"
	OpSearch = "search"
	OpNews   = "news"
)

// ProviderError is a single provider's failed batch call.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AllProvidersFailedError is returned when every configured provider failed an operation.
type AllProvidersFailedError struct {
	Op     string
	Errors []*ProviderError
}

func (e *AllProvidersFailedError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("all providers failed for %s: no providers configured", e.Op)
	}
	parts := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		parts[i] = fmt.Sprintf("%s (%v)", pe.Provider, pe.Err)
	}
	return fmt.Sprintf("all providers failed for %s: %s", e.Op, strings.Join(parts, "; "))
}

// Providers returns the names of the failed providers in attempt order.
func (e *AllProvidersFailedError) Providers() []string {
	names := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		names[i] = pe.Provider
	}
	return names
}

func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

// IsAllProvidersFailed reports whether err is or wraps an AllProvidersFailedError.
func IsAllProvidersFailed(err error) bool {
	var apf *AllProvidersFailedError
	return errors.As(err, &apf)
}

// Named is anything with a provider name.
type Named interface {
	Name() string
}

// Resolver holds an ordered provider list.
type Resolver[P Named] struct {
	providers []P
	logger    *common.Logger
}

// New creates a Resolver over providers in priority order.
func New[P Named](logger *common.Logger, providers ...P) *Resolver[P] {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Resolver[P]{providers: providers, logger: logger}
}

// Names returns the provider names in priority order.
func (r *Resolver[P]) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Len returns the number of providers.
func (r *Resolver[P]) Len() int { return len(r.providers) }

// Do invokes call against each provider in order and returns the first success
// together with the provider's name. Each provider gets exactly one attempt.
// Context cancellation stops the chain and is returned unwrapped.
func Do[P Named, T any](ctx context.Context, r *Resolver[P], op string, call func(context.Context, P) (T, error)) (T, string, error) {
	var zero T
	if len(r.providers) == 0 {
		return zero, "", &AllProvidersFailedError{Op: op}
	}

	failed := make([]*ProviderError, 0, len(r.providers))
	for _, p := range r.providers {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		result, err := call(ctx, p)
		if err == nil {
			if len(failed) > 0 {
				r.logger.Info().Str("op", op).Str("provider", p.Name()).Int("failed", len(failed)).Msg("Provider fallback succeeded")
			}
			return result, p.Name(), nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, "", ctxErr
		}

		r.logger.Warn().Str("op", op).Str("provider", p.Name()).Err(err).Msg("Provider call failed, trying next")
		failed = append(failed, &ProviderError{Provider: p.Name(), Op: op, Err: err})
	}

	return zero, "", &AllProvidersFailedError{Op: op, Errors: failed}
}

// FetchQuotes resolves a quote batch. A provider that returns a different number
// of quotes than requested is treated as failed. Quotes are stamped with the
// provider name and re-keyed to the requested symbols.
func FetchQuotes(ctx context.Context, r *Resolver[interfaces.ProviderClient], symbols []string) ([]models.Quote, string, error) {
	return Do(ctx, r, OpQuotes, func(ctx context.Context, p interfaces.ProviderClient) ([]models.Quote, error) {
		quotes, err := p.FetchQuotes(ctx, symbols)
		if err != nil {
			return nil, err
		}
		if len(quotes) != len(symbols) {
			return nil, fmt.Errorf("returned %d quotes for %d symbols", len(quotes), len(symbols))
		}
		out := make([]models.Quote, len(quotes))
		for i, q := range quotes {
			q.Symbol = symbols[i]
			if q.Source == "" {
				q.Source = p.Name()
			}
			out[i] = q
		}
		return out, nil
	})
}

// FetchSeries resolves a daily series for one symbol.
func FetchSeries(ctx context.Context, r *Resolver[interfaces.ProviderClient], symbol string) ([]models.HistoricalPoint, string, error) {
	return Do(ctx, r, OpSeries, func(ctx context.Context, p interfaces.ProviderClient) ([]models.HistoricalPoint, error) {
		return p.FetchSeries(ctx, symbol)
	})
}

// Search resolves a symbol search.
func Search(ctx context.Context, r *Resolver[interfaces.ProviderClient], query string) ([]models.SearchResult, string, error) {
	return Do(ctx, r, OpSearch, func(ctx context.Context, p interfaces.ProviderClient) ([]models.SearchResult, error) {
		return p.Search(ctx, query)
	})
}

// FetchNews resolves a news category.
func FetchNews(ctx context.Context, r *Resolver[interfaces.NewsProvider], category string) ([]models.NewsItem, string, error) {
	return Do(ctx, r, OpNews, func(ctx context.Context, p interfaces.NewsProvider) ([]models.NewsItem, error) {
		return p.FetchNews(ctx, category)
	})
}
