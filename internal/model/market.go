package model

import "time"

// AssetSnapshot is one asset's point-in-time capture from a refresh cycle.
// Prices is the trailing series (oldest first); Volumes is either nil or aligned one-to-one with Prices.
type AssetSnapshot struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	Image          string    `json:"image,omitempty"`
	CurrentPrice   float64   `json:"current_price"`
	PriceChange24h float64   `json:"price_change_24h"`
	MarketCap      float64   `json:"market_cap"`
	TotalVolume    float64   `json:"total_volume"`
	Prices         []float64 `json:"prices"`
	Volumes        []float64 `json:"volumes,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// HasVolumes reports whether the snapshot carries a volume series aligned with its prices.
func (s *AssetSnapshot) HasVolumes() bool {
	return len(s.Volumes) > 0 && len(s.Volumes) == len(s.Prices)
}

// MarketOverview holds the global market figures shown next to the board.
type MarketOverview struct {
	TotalMarketCap float64   `json:"total_market_cap"`
	TotalVolume    float64   `json:"total_volume"`
	BTCDominance   float64   `json:"btc_dominance"`
	FetchedAt      time.Time `json:"fetched_at"`
}
