package collector

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"CoinRadar/internal/model"
)

// Batch is one refresh cycle's raw market data.
type Batch struct {
	Snapshots []model.AssetSnapshot
	Overview  *model.MarketOverview
}

// Collector orchestrates data fetching and snapshot sanitisation.
type Collector struct {
	Fetcher Fetcher
	// PerPage is the number of coins requested per cycle.
	PerPage int
	// VolumeDetailLimit is how many of the leading coins get a detailed price+volume chart.
	VolumeDetailLimit int
	ChartDays         int

	log zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, perPage, volumeDetailLimit int, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:           fetcher,
		PerPage:           perPage,
		VolumeDetailLimit: volumeDetailLimit,
		ChartDays:         7,
		log:               log,
	}
}

// Collect fetches the market board and the global overview.
// Overview and chart failures are logged and degrade the batch; a failed market fetch is returned.
func (c *Collector) Collect(ctx context.Context) (*Batch, error) {
	snaps, err := c.Fetcher.FetchMarkets(ctx, c.PerPage)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	for i := 0; i < len(snaps) && i < c.VolumeDetailLimit; i++ {
		if ctx.Err() != nil {
			break
		}
		prices, volumes, err := c.Fetcher.FetchMarketChart(ctx, snaps[i].ID, c.ChartDays)
		if err != nil {
			c.log.Warn().Err(err).Str("coin", snaps[i].ID).Msg("market chart unavailable, using sparkline")
			continue
		}
		snaps[i].Prices = prices
		snaps[i].Volumes = volumes
	}

	batch := &Batch{Snapshots: Sanitize(snaps)}
	if dropped := len(snaps) - len(batch.Snapshots); dropped > 0 {
		c.log.Warn().Int("dropped", dropped).Msg("snapshots without a usable price")
	}

	overview, err := c.Fetcher.FetchGlobal(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("global overview unavailable")
	} else {
		batch.Overview = overview
	}
	return batch, nil
}

// Sanitize returns cleaned copies of the snapshots. A price series with any
// non-finite or non-positive sample is emptied, so its indicators abstain.
// A volume series that is malformed or not aligned with the prices is dropped.
// A missing current price falls back to the last series sample; snapshots with
// no usable price at all are removed.
func Sanitize(snaps []model.AssetSnapshot) []model.AssetSnapshot {
	out := make([]model.AssetSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if !validSeries(s.Prices, false) {
			s.Prices = nil
		}
		if len(s.Volumes) != len(s.Prices) || !validSeries(s.Volumes, true) {
			s.Volumes = nil
		}
		if !positive(s.CurrentPrice) && len(s.Prices) > 0 {
			s.CurrentPrice = s.Prices[len(s.Prices)-1]
		}
		if !positive(s.CurrentPrice) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func validSeries(values []float64, allowZero bool) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || (v == 0 && !allowZero) {
			return false
		}
	}
	return true
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
