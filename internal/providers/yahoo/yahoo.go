// Package yahoo implements the Yahoo Finance chart/search provider.
// Responses are decoded untyped and read with JSONPath expressions.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vire-tracker/internal/client"
	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// Name is the provider identifier.
const Name = "yahoo"

const maxConcurrent = 4

// JSONPath expressions into the v8 chart payload.
const (
	pathPrice     = "$.chart.result[0].meta.regularMarketPrice"
	pathPrevClose = "$.chart.result[0].meta.chartPreviousClose"
	pathTimestamp = "$.chart.result[0].timestamp"
	pathClose     = "$.chart.result[0].indicators.quote[0].close"
	pathQuotes    = "$.quotes"
)

// Client talks to the unofficial Yahoo Finance endpoints.
type Client struct {
	http   *client.JSONClient
	logger *common.Logger
}

// New creates a Yahoo client from its provider config.
func New(cfg config.ProviderConfig, logger *common.Logger) *Client {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Client{
		http:   client.NewJSONClient(Name, cfg.BaseURL, cfg.GetTimeout(), client.WithUserAgent("Mozilla/5.0 (compatible; vire-tracker)")),
		logger: logger,
	}
}

// Name returns "yahoo".
func (c *Client) Name() string { return Name }

// chart fetches the v8 chart document for symbol. A 404 means Yahoo does not know the symbol.
func (c *Client) chart(ctx context.Context, symbol, rng string) (interface{}, error) {
	q := url.Values{"range": {rng}, "interval": {"1d"}}
	body, err := c.http.GetRaw(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yahoo chart: %w", err)
	}
	return doc, nil
}

func isNotFound(err error) bool {
	var se *client.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// FetchQuotes reads the current price and previous close from each symbol's 1d chart.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	quotes := make([]models.Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, sym := range symbols {
		g.Go(func() error {
			doc, err := c.chart(gctx, sym, "1d")
			if isNotFound(err) {
				quotes[i] = models.ErrorQuote(sym, Name, "symbol not found")
				return nil
			}
			if err != nil {
				return fmt.Errorf("quote %s: %w", sym, err)
			}

			price, err := getFloat(pathPrice, doc)
			if err != nil {
				quotes[i] = models.ErrorQuote(sym, Name, "no price available")
				return nil
			}
			q := models.Quote{Symbol: sym, Price: price, Source: Name}
			if prev, err := getFloat(pathPrevClose, doc); err == nil && prev > 0 {
				q.Change = price - prev
				q.PercentChange = q.Change / prev * 100
			}
			quotes[i] = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug().Int("symbols", len(symbols)).Msg("Fetched yahoo quotes")
	return quotes, nil
}

// FetchSeries reads five years of daily closes, skipping null bars.
func (c *Client) FetchSeries(ctx context.Context, symbol string) ([]models.HistoricalPoint, error) {
	doc, err := c.chart(ctx, symbol, "5y")
	if err != nil {
		return nil, err
	}

	stamps, err := getList(pathTimestamp, doc)
	if err != nil {
		return nil, fmt.Errorf("no timestamps for %s: %w", symbol, err)
	}
	closes, err := getList(pathClose, doc)
	if err != nil {
		return nil, fmt.Errorf("no closes for %s: %w", symbol, err)
	}
	if len(stamps) != len(closes) {
		return nil, fmt.Errorf("malformed chart for %s", symbol)
	}

	points := make([]models.HistoricalPoint, 0, len(stamps))
	for i := range stamps {
		ts, ok1 := stamps[i].(float64)
		v, ok2 := closes[i].(float64)
		if !ok1 || !ok2 {
			continue
		}
		points = append(points, models.HistoricalPoint{
			Date:  time.Unix(int64(ts), 0).UTC().Format(models.DateLayout),
			Value: v,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date > points[j].Date })
	return points, nil
}

// Search queries v1/finance/search.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q := url.Values{"q": {query}, "quotesCount": {"10"}, "newsCount": {"0"}}
	body, err := c.http.GetRaw(ctx, "/v1/finance/search", q)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yahoo search: %w", err)
	}

	hits, err := getList(pathQuotes, doc)
	if err != nil {
		return []models.SearchResult{}, nil
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		m, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		r := models.SearchResult{
			Symbol:   str(m, "symbol"),
			Name:     str(m, "longname"),
			Type:     str(m, "quoteType"),
			Exchange: str(m, "exchange"),
		}
		if r.Name == "" {
			r.Name = str(m, "shortname")
		}
		if r.Symbol != "" {
			results = append(results, r)
		}
	}
	return results, nil
}

// getFloat evaluates path and returns a float. JSONPath may return a list
// of one answer or the answer itself; both are accepted.
func getFloat(path string, doc interface{}) (float64, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, err
	}
	if list, ok := v.([]interface{}); ok && len(list) > 0 {
		v = list[0]
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: not a number: %v", path, v)
	}
	return f, nil
}

func getList(path string, doc interface{}) ([]interface{}, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: not a list", path)
	}
	return list, nil
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
