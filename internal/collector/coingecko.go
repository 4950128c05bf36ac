package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CoinRadar/internal/model"
)

// DefaultCoinGeckoURL is the public API root.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoFetcher implements Fetcher using the CoinGecko public API.
type CoinGeckoFetcher struct {
	BaseURL  string
	APIKey   string
	Currency string
	Client   *http.Client
}

// NewCoinGeckoFetcher creates a new fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *CoinGeckoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CoinGeckoFetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Currency: "usd",
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// cgMarket is one entry of /coins/markets.
type cgMarket struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	TotalVolume              float64 `json:"total_volume"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	SparklineIn7d            struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

type cgGlobal struct {
	Data struct {
		TotalMarketCap      map[string]float64 `json:"total_market_cap"`
		TotalVolume         map[string]float64 `json:"total_volume"`
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
	} `json:"data"`
}

type cgMarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (f *CoinGeckoFetcher) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := f.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("coingecko decode: %w", err)
	}
	return nil
}

func (f *CoinGeckoFetcher) FetchMarkets(ctx context.Context, perPage int) ([]model.AssetSnapshot, error) {
	q := url.Values{}
	q.Set("vs_currency", f.Currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", "1")
	q.Set("sparkline", "true")
	q.Set("price_change_percentage", "24h")

	var markets []cgMarket
	if err := f.getJSON(ctx, "/coins/markets", q, &markets); err != nil {
		return nil, err
	}

	now := time.Now()
	snaps := make([]model.AssetSnapshot, 0, len(markets))
	for _, m := range markets {
		snaps = append(snaps, model.AssetSnapshot{
			ID:             m.ID,
			Name:           m.Name,
			Symbol:         m.Symbol,
			Image:          m.Image,
			CurrentPrice:   m.CurrentPrice,
			PriceChange24h: m.PriceChangePercentage24h,
			MarketCap:      m.MarketCap,
			TotalVolume:    m.TotalVolume,
			Prices:         m.SparklineIn7d.Price,
			FetchedAt:      now,
		})
	}
	return snaps, nil
}

func (f *CoinGeckoFetcher) FetchGlobal(ctx context.Context) (*model.MarketOverview, error) {
	var g cgGlobal
	if err := f.getJSON(ctx, "/global", nil, &g); err != nil {
		return nil, err
	}
	return &model.MarketOverview{
		TotalMarketCap: g.Data.TotalMarketCap[f.Currency],
		TotalVolume:    g.Data.TotalVolume[f.Currency],
		BTCDominance:   g.Data.MarketCapPercentage["btc"],
		FetchedAt:      time.Now(),
	}, nil
}

func (f *CoinGeckoFetcher) FetchMarketChart(ctx context.Context, id string, days int) ([]float64, []float64, error) {
	q := url.Values{}
	q.Set("vs_currency", f.Currency)
	q.Set("days", fmt.Sprint(days))

	var chart cgMarketChart
	if err := f.getJSON(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &chart); err != nil {
		return nil, nil, err
	}

	// Align on the shorter of the two series, keeping the most recent points.
	n := min(len(chart.Prices), len(chart.TotalVolumes))
	if n == 0 {
		return nil, nil, fmt.Errorf("coingecko: empty market chart for %s", id)
	}
	pp := chart.Prices[len(chart.Prices)-n:]
	vv := chart.TotalVolumes[len(chart.TotalVolumes)-n:]

	prices := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		prices[i] = pp[i][1]
		volumes[i] = vv[i][1]
	}
	return prices, volumes, nil
}
