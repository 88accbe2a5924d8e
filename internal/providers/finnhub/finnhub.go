// Package finnhub implements the Finnhub market-data and news provider.
package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vire-tracker/internal/client"
	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// Name is the provider identifier.
const Name = "finnhub"

// maxConcurrent bounds the per-symbol quote fan-out.
const maxConcurrent = 5

// seriesLookback is how far back FetchSeries reaches.
const seriesLookback = 5 * 365 * 24 * time.Hour

// Client talks to the Finnhub REST API.
type Client struct {
	http   *client.JSONClient
	apiKey string
	logger *common.Logger
	now    func() time.Time
}

// New creates a Finnhub client from its provider config.
func New(cfg config.ProviderConfig, logger *common.Logger) *Client {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Client{
		http:   client.NewJSONClient(Name, cfg.BaseURL, cfg.GetTimeout()),
		apiKey: cfg.APIKey,
		logger: logger,
		now:    time.Now,
	}
}

// Name returns "finnhub".
func (c *Client) Name() string { return Name }

type quoteResponse struct {
	Current       float64  `json:"c"`
	Change        *float64 `json:"d"`
	PercentChange *float64 `json:"dp"`
	PrevClose     float64  `json:"pc"`
	Timestamp     int64    `json:"t"`
}

// FetchQuotes fetches /quote for each symbol concurrently. A symbol Finnhub
// does not know comes back with a zero price and becomes an error quote; any
// transport or parse failure fails the batch.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	quotes := make([]models.Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, sym := range symbols {
		g.Go(func() error {
			var resp quoteResponse
			if err := c.http.GetJSON(gctx, "/quote", c.query(url.Values{"symbol": {sym}}), &resp); err != nil {
				return fmt.Errorf("quote %s: %w", sym, err)
			}
			quotes[i] = toQuote(sym, resp)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug().Int("symbols", len(symbols)).Msg("Fetched finnhub quotes")
	return quotes, nil
}

func toQuote(symbol string, r quoteResponse) models.Quote {
	if r.Current == 0 && r.Change == nil {
		return models.ErrorQuote(symbol, Name, "symbol not found")
	}
	q := models.Quote{Symbol: symbol, Price: r.Current, Source: Name}
	if r.Change != nil {
		q.Change = *r.Change
	} else if r.PrevClose > 0 {
		q.Change = r.Current - r.PrevClose
	}
	if r.PercentChange != nil {
		q.PercentChange = *r.PercentChange
	} else if r.PrevClose > 0 {
		q.PercentChange = q.Change / r.PrevClose * 100
	}
	return q
}

type candleResponse struct {
	Close     []float64 `json:"c"`
	Timestamp []int64   `json:"t"`
	Status    string    `json:"s"`
}

// FetchSeries fetches daily candles and returns closes newest-first.
func (c *Client) FetchSeries(ctx context.Context, symbol string) ([]models.HistoricalPoint, error) {
	now := c.now()
	q := url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {strconv.FormatInt(now.Add(-seriesLookback).Unix(), 10)},
		"to":         {strconv.FormatInt(now.Unix(), 10)},
	}

	var resp candleResponse
	if err := c.http.GetJSON(ctx, "/stock/candle", c.query(q), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("no candle data for %s (status %q)", symbol, resp.Status)
	}
	if len(resp.Close) != len(resp.Timestamp) {
		return nil, fmt.Errorf("malformed candle response for %s", symbol)
	}

	points := make([]models.HistoricalPoint, len(resp.Close))
	for i := range resp.Close {
		points[i] = models.HistoricalPoint{
			Date:  time.Unix(resp.Timestamp[i], 0).UTC().Format(models.DateLayout),
			Value: resp.Close[i],
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date > points[j].Date })
	return points, nil
}

type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Description   string `json:"description"`
		DisplaySymbol string `json:"displaySymbol"`
		Symbol        string `json:"symbol"`
		Type          string `json:"type"`
	} `json:"result"`
}

// Search queries /search.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var resp searchResponse
	if err := c.http.GetJSON(ctx, "/search", c.query(url.Values{"q": {query}}), &resp); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, models.SearchResult{
			Symbol: r.Symbol,
			Name:   r.Description,
			Type:   r.Type,
		})
	}
	return results, nil
}

type newsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// FetchNews queries /news for a category.
func (c *Client) FetchNews(ctx context.Context, category string) ([]models.NewsItem, error) {
	var resp []newsItem
	if err := c.http.GetJSON(ctx, "/news", c.query(url.Values{"category": {category}}), &resp); err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(resp))
	for _, n := range resp {
		items = append(items, models.NewsItem{
			ID:       strconv.FormatInt(n.ID, 10),
			Headline: n.Headline,
			Summary:  n.Summary,
			Source:   n.Source,
			Datetime: time.Unix(n.Datetime, 0).UTC(),
			URL:      n.URL,
			Category: category,
		})
	}
	return items, nil
}

func (c *Client) query(q url.Values) url.Values {
	q.Set("token", c.apiKey)
	return q
}
