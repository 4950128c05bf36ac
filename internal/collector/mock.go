package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"CoinRadar/internal/model"
)

// MockFetcher returns deterministic synthetic data for development and testing.
type MockFetcher struct {
	Snapshots []model.AssetSnapshot
	Overview  *model.MarketOverview
	Err       error
	Points    int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMarkets(_ context.Context, perPage int) ([]model.AssetSnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Snapshots != nil {
		if perPage > 0 && len(m.Snapshots) > perPage {
			return m.Snapshots[:perPage], nil
		}
		return m.Snapshots, nil
	}
	return generateMockSnapshots(perPage, m.points()), nil
}

func (m *MockFetcher) FetchGlobal(_ context.Context) (*model.MarketOverview, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Overview != nil {
		return m.Overview, nil
	}
	return &model.MarketOverview{
		TotalMarketCap: 2.4e12,
		TotalVolume:    9.5e10,
		BTCDominance:   52.3,
		FetchedAt:      time.Now(),
	}, nil
}

func (m *MockFetcher) FetchMarketChart(_ context.Context, id string, _ int) ([]float64, []float64, error) {
	if m.Err != nil {
		return nil, nil, m.Err
	}
	seed := 0
	for _, r := range id {
		seed += int(r)
	}
	prices := mockSeries(100+float64(seed%50), seed, m.points())
	volumes := make([]float64, len(prices))
	for i := range volumes {
		volumes[i] = 1e6 * (1 + 0.5*math.Cos(float64(i+seed)*0.3))
	}
	return prices, volumes, nil
}

func (m *MockFetcher) points() int {
	if m.Points > 0 {
		return m.Points
	}
	return 168
}

// mockSeries is a trend plus a phase-shifted oscillation; no randomness.
func mockSeries(base float64, seed, n int) []float64 {
	out := make([]float64, n)
	drift := float64(seed%7-3) * 0.001
	for i := range out {
		out[i] = base * (1 + drift*float64(i) + 0.04*math.Sin(float64(i)*0.15+float64(seed)))
	}
	return out
}

func generateMockSnapshots(count, points int) []model.AssetSnapshot {
	if count <= 0 {
		count = 10
	}
	now := time.Now()
	snaps := make([]model.AssetSnapshot, count)
	for i := range snaps {
		base := 1000 / float64(i+1)
		prices := mockSeries(base, i, points)
		last := prices[len(prices)-1]
		snaps[i] = model.AssetSnapshot{
			ID:             fmt.Sprintf("mock-%d", i),
			Name:           fmt.Sprintf("Mock Coin %d", i),
			Symbol:         fmt.Sprintf("mk%d", i),
			CurrentPrice:   last,
			PriceChange24h: (last - prices[len(prices)-25]) / prices[len(prices)-25] * 100,
			MarketCap:      base * 1e7,
			TotalVolume:    base * 1e5,
			Prices:         prices,
			FetchedAt:      now,
		}
	}
	return snaps
}
