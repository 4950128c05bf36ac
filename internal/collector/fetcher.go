package collector

import (
	"context"

	"CoinRadar/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchMarkets returns the top coins by market cap with their trailing price series.
	FetchMarkets(ctx context.Context, perPage int) ([]model.AssetSnapshot, error)
	// FetchGlobal returns the global market overview.
	FetchGlobal(ctx context.Context) (*model.MarketOverview, error)
	// FetchMarketChart returns aligned price and volume series for one coin.
	FetchMarketChart(ctx context.Context, id string, days int) (prices, volumes []float64, err error)
	Name() string
}
