// Package alpaca implements a market-data and news provider on the Alpaca data API.
package alpaca

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// Name is the provider identifier.
const Name = "alpaca"

// feed is the free IEX feed; SIP requires a paid subscription.
const feed = "iex"

const (
	seriesLookback = 5 * 365 * 24 * time.Hour
	newsLimit      = 50
)

// marketDataAPI is the subset of *marketdata.Client used here.
type marketDataAPI interface {
	GetSnapshots(symbols []string, req marketdata.GetSnapshotRequest) (map[string]*marketdata.Snapshot, error)
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

// Client adapts the Alpaca SDK to the provider contracts.
type Client struct {
	api     marketDataAPI
	timeout time.Duration
	logger  *common.Logger
	now     func() time.Time
}

// New creates an Alpaca client from its provider config.
func New(cfg config.ProviderConfig, logger *common.Logger) *Client {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.BaseURL != "" {
		opts.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:     marketdata.NewClient(opts),
		timeout: cfg.GetTimeout(),
		logger:  logger,
		now:     time.Now,
	}
}

// Name returns "alpaca".
func (c *Client) Name() string { return Name }

// withTimeout runs fn, giving up when ctx ends or the provider timeout elapses.
// The SDK calls take no context, so an abandoned call finishes in the background.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("alpaca: %w", ctx.Err())
	}
}

// FetchQuotes takes a single snapshot call for the whole batch. Price is the
// latest trade; change is measured against the previous daily close.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	snaps, err := withTimeout(ctx, c.timeout, func() (map[string]*marketdata.Snapshot, error) {
		return c.api.GetSnapshots(symbols, marketdata.GetSnapshotRequest{Feed: feed})
	})
	if err != nil {
		return nil, fmt.Errorf("snapshots: %w", err)
	}

	quotes := make([]models.Quote, len(symbols))
	for i, sym := range symbols {
		quotes[i] = toQuote(sym, snaps[sym])
	}
	c.logger.Debug().Int("symbols", len(symbols)).Msg("Fetched alpaca snapshots")
	return quotes, nil
}

func toQuote(symbol string, s *marketdata.Snapshot) models.Quote {
	if s == nil {
		return models.ErrorQuote(symbol, Name, "symbol not found")
	}

	var price float64
	switch {
	case s.LatestTrade != nil && s.LatestTrade.Price > 0:
		price = s.LatestTrade.Price
	case s.DailyBar != nil:
		price = s.DailyBar.Close
	}
	if price <= 0 {
		return models.ErrorQuote(symbol, Name, "no recent trade")
	}

	q := models.Quote{Symbol: symbol, Price: price, Source: Name}
	if s.PrevDailyBar != nil && s.PrevDailyBar.Close > 0 {
		q.Change = price - s.PrevDailyBar.Close
		q.PercentChange = q.Change / s.PrevDailyBar.Close * 100
	}
	return q
}

// FetchSeries returns daily bar closes, newest-first.
func (c *Client) FetchSeries(ctx context.Context, symbol string) ([]models.HistoricalPoint, error) {
	end := c.now()
	bars, err := withTimeout(ctx, c.timeout, func() ([]marketdata.Bar, error) {
		return c.api.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     end.Add(-seriesLookback),
			End:       end,
			Feed:      feed,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for %s", symbol)
	}

	// Bars arrive oldest-first.
	points := make([]models.HistoricalPoint, 0, len(bars))
	for i := len(bars) - 1; i >= 0; i-- {
		points = append(points, models.HistoricalPoint{
			Date:  bars[i].Timestamp.UTC().Format(models.DateLayout),
			Value: bars[i].Close,
		})
	}
	return points, nil
}

// Search is not offered by the data API.
func (c *Client) Search(_ context.Context, _ string) ([]models.SearchResult, error) {
	return nil, interfaces.ErrUnsupported
}

// FetchNews returns the latest general market news. Other categories are unsupported.
func (c *Client) FetchNews(ctx context.Context, category string) ([]models.NewsItem, error) {
	if category != models.NewsGeneral {
		return nil, fmt.Errorf("category %q: %w", category, interfaces.ErrUnsupported)
	}

	end := c.now()
	news, err := withTimeout(ctx, c.timeout, func() ([]marketdata.News, error) {
		return c.api.GetNews(marketdata.GetNewsRequest{
			Start:              end.Add(-72 * time.Hour),
			End:                end,
			TotalLimit:         newsLimit,
			ExcludeContentless: true,
			Sort:               marketdata.SortDesc,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}

	items := make([]models.NewsItem, 0, len(news))
	for _, n := range news {
		items = append(items, models.NewsItem{
			ID:       strconv.Itoa(n.ID),
			Headline: n.Headline,
			Summary:  summary(n),
			Source:   n.Source,
			Datetime: n.CreatedAt.UTC(),
			URL:      n.URL,
			Category: category,
		})
	}
	return items, nil
}

func summary(n marketdata.News) string {
	if n.Summary != "" {
		return n.Summary
	}
	if len(n.Symbols) > 0 {
		return "Related: " + strings.Join(n.Symbols, ", ")
	}
	return ""
}
