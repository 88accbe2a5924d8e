// Package alphavantage implements the Alpha Vantage market-data provider.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vire-tracker/internal/client"
	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// Name is the provider identifier.
const Name = "alphavantage"

// maxConcurrent is kept low; the free tier allows a handful of calls per minute.
const maxConcurrent = 2

// ErrThrottled is returned when Alpha Vantage answers with a Note or Information envelope.
var ErrThrottled = errors.New("alphavantage throttled")

// Client talks to the Alpha Vantage query endpoint.
type Client struct {
	http   *client.JSONClient
	apiKey string
	logger *common.Logger
}

// New creates an Alpha Vantage client from its provider config.
func New(cfg config.ProviderConfig, logger *common.Logger) *Client {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Client{
		http:   client.NewJSONClient(Name, cfg.BaseURL, cfg.GetTimeout()),
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// Name returns "alphavantage".
func (c *Client) Name() string { return Name }

// call runs one query function and decodes the body into out after checking
// for the throttle and error envelopes Alpha Vantage returns with HTTP 200.
func (c *Client) call(ctx context.Context, q url.Values, out interface{}) error {
	q.Set("apikey", c.apiKey)
	body, err := c.http.GetRaw(ctx, "/query", q)
	if err != nil {
		return err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse alphavantage response: %w", err)
	}
	for _, key := range []string{"Note", "Information"} {
		if raw, ok := envelope[key]; ok {
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return fmt.Errorf("%w: %s", ErrThrottled, msg)
		}
	}
	if raw, ok := envelope["Error Message"]; ok {
		var msg string
		_ = json.Unmarshal(raw, &msg)
		return &apiError{msg: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse alphavantage response: %w", err)
	}
	return nil
}

// apiError is an "Error Message" envelope, usually an invalid symbol.
type apiError struct{ msg string }

func (e *apiError) Error() string { return "alphavantage: " + e.msg }

type globalQuoteResponse struct {
	Quote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// FetchQuotes calls GLOBAL_QUOTE per symbol. An empty quote object or an
// invalid-symbol error marks that symbol unavailable; throttling fails the batch.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	quotes := make([]models.Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, sym := range symbols {
		g.Go(func() error {
			var resp globalQuoteResponse
			err := c.call(gctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {sym}}, &resp)
			var apiErr *apiError
			switch {
			case errors.As(err, &apiErr):
				quotes[i] = models.ErrorQuote(sym, Name, apiErr.msg)
				return nil
			case err != nil:
				return fmt.Errorf("quote %s: %w", sym, err)
			}
			q, err := toQuote(sym, resp)
			if err != nil {
				return fmt.Errorf("quote %s: %w", sym, err)
			}
			quotes[i] = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug().Int("symbols", len(symbols)).Msg("Fetched alphavantage quotes")
	return quotes, nil
}

func toQuote(symbol string, r globalQuoteResponse) (models.Quote, error) {
	if r.Quote.Price == "" {
		return models.ErrorQuote(symbol, Name, "symbol not found"), nil
	}
	price, err := strconv.ParseFloat(r.Quote.Price, 64)
	if err != nil {
		return models.Quote{}, fmt.Errorf("bad price %q: %w", r.Quote.Price, err)
	}
	change, _ := strconv.ParseFloat(r.Quote.Change, 64)
	pct, _ := strconv.ParseFloat(strings.TrimSuffix(r.Quote.ChangePercent, "%"), 64)
	return models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		PercentChange: pct,
		Source:        Name,
	}, nil
}

type dailyResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

// FetchSeries calls TIME_SERIES_DAILY with the full output size.
func (c *Client) FetchSeries(ctx context.Context, symbol string) ([]models.HistoricalPoint, error) {
	var resp dailyResponse
	q := url.Values{"function": {"TIME_SERIES_DAILY"}, "symbol": {symbol}, "outputsize": {"full"}}
	if err := c.call(ctx, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Series) == 0 {
		return nil, fmt.Errorf("no daily series for %s", symbol)
	}

	points := make([]models.HistoricalPoint, 0, len(resp.Series))
	for date, bar := range resp.Series {
		v, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("bad close %q on %s: %w", bar.Close, date, err)
		}
		points = append(points, models.HistoricalPoint{Date: date, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date > points[j].Date })
	return points, nil
}

type searchResponse struct {
	BestMatches []struct {
		Symbol   string `json:"1. symbol"`
		Name     string `json:"2. name"`
		Type     string `json:"3. type"`
		Region   string `json:"4. region"`
		Currency string `json:"8. currency"`
	} `json:"bestMatches"`
}

// Search calls SYMBOL_SEARCH.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var resp searchResponse
	if err := c.call(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {query}}, &resp); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		results = append(results, models.SearchResult{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Type:     m.Type,
			Exchange: m.Region,
			Currency: m.Currency,
		})
	}
	return results, nil
}
