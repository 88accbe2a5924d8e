package alpaca

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// fakeAPI is an in-memory marketDataAPI.
type fakeAPI struct {
	snaps    map[string]*marketdata.Snapshot
	bars     []marketdata.Bar
	news     []marketdata.News
	err      error
	delay    time.Duration
	lastBars marketdata.GetBarsRequest
}

func (f *fakeAPI) GetSnapshots(_ []string, _ marketdata.GetSnapshotRequest) (map[string]*marketdata.Snapshot, error) {
	time.Sleep(f.delay)
	return f.snaps, f.err
}

func (f *fakeAPI) GetBars(_ string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.lastBars = req
	return f.bars, f.err
}

func (f *fakeAPI) GetNews(_ marketdata.GetNewsRequest) ([]marketdata.News, error) {
	return f.news, f.err
}

func newTestClient(api *fakeAPI) *Client {
	return &Client{
		api:     api,
		timeout: time.Second,
		logger:  common.NewSilentLogger(),
		now:     func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) },
	}
}

func TestFetchQuotes(t *testing.T) {
	api := &fakeAPI{snaps: map[string]*marketdata.Snapshot{
		"AAPL": {
			LatestTrade:  &marketdata.Trade{Price: 210},
			PrevDailyBar: &marketdata.Bar{Close: 200},
		},
		"HALT": {},
	}}
	c := newTestClient(api)

	quotes, err := c.FetchQuotes(context.Background(), []string{"NOPE", "AAPL", "HALT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}
	if quotes[0].Error == "" {
		t.Errorf("expected error quote for NOPE, got %+v", quotes[0])
	}
	if quotes[1].Price != 210 || quotes[1].Change != 10 || quotes[1].PercentChange != 5 {
		t.Errorf("unexpected AAPL quote: %+v", quotes[1])
	}
	if quotes[2].Error == "" {
		t.Errorf("expected error quote for HALT, got %+v", quotes[2])
	}
}

func TestFetchQuotes_ErrorFailsBatch(t *testing.T) {
	c := newTestClient(&fakeAPI{err: errors.New("forbidden")})

	if _, err := c.FetchQuotes(context.Background(), []string{"AAPL"}); err == nil {
		t.Fatal("expected batch error")
	}
}

func TestFetchQuotes_Timeout(t *testing.T) {
	c := newTestClient(&fakeAPI{delay: 200 * time.Millisecond})
	c.timeout = 10 * time.Millisecond

	_, err := c.FetchQuotes(context.Background(), []string{"AAPL"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestFetchSeries_NewestFirst(t *testing.T) {
	api := &fakeAPI{bars: []marketdata.Bar{
		{Timestamp: time.Date(2026, 3, 5, 5, 0, 0, 0, time.UTC), Close: 10},
		{Timestamp: time.Date(2026, 3, 6, 5, 0, 0, 0, time.UTC), Close: 11},
	}}
	c := newTestClient(api)

	points, err := c.FetchSeries(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 || points[0].Date != "2026-03-06" || points[1].Value != 10 {
		t.Errorf("unexpected points: %+v", points)
	}
	if api.lastBars.TimeFrame != marketdata.OneDay {
		t.Errorf("expected daily timeframe, got %v", api.lastBars.TimeFrame)
	}
}

func TestSearch_Unsupported(t *testing.T) {
	c := newTestClient(&fakeAPI{})

	if _, err := c.Search(context.Background(), "apple"); !errors.Is(err, interfaces.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFetchNews(t *testing.T) {
	api := &fakeAPI{news: []marketdata.News{
		{ID: 42, Headline: "Fed holds rates", Source: "benzinga", URL: "https://example.com/n", CreatedAt: time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC), Symbols: []string{"SPY"}},
	}}
	c := newTestClient(api)

	items, err := c.FetchNews(context.Background(), models.NewsGeneral)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "42" || items[0].Category != "general" {
		t.Errorf("unexpected items: %+v", items)
	}
	if items[0].Summary != "Related: SPY" {
		t.Errorf("expected symbol summary fallback, got %q", items[0].Summary)
	}

	if _, err := c.FetchNews(context.Background(), models.NewsCrypto); !errors.Is(err, interfaces.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for crypto, got %v", err)
	}
}
