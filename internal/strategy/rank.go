package strategy

import (
	"sort"
	"sync"

	"CoinRadar/internal/model"
)

// DefaultWorkers bounds ScoreBatch when no worker count is given.
const DefaultWorkers = 10

// ScoreBatch scores every snapshot, fanning out over at most workers goroutines.
// Results keep the input order.
func ScoreBatch(snapshots []model.AssetSnapshot, workers int) []model.ScoredAsset {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	out := make([]model.ScoredAsset, len(snapshots))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range snapshots {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out[i] = model.ScoredAsset{
				Snapshot: snapshots[i],
				Signal:   ComputeSignal(&snapshots[i]),
			}
		}(i)
	}
	wg.Wait()
	return out
}

// Rank keeps entries at or above floor, sorts them by confidence descending and
// truncates to k. Ties keep their batch order. k <= 0 selects nothing.
func Rank(scored []model.ScoredAsset, floor, k int) model.RankedSelection {
	if k <= 0 {
		return model.RankedSelection{}
	}
	out := make(model.RankedSelection, 0, len(scored))
	for _, s := range scored {
		if s.Signal.ConfidencePercent >= floor {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Signal.ConfidencePercent > out[j].Signal.ConfidencePercent
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// RankTopSignals scores a batch and returns its top-k selection.
func RankTopSignals(snapshots []model.AssetSnapshot, floor, k int) model.RankedSelection {
	return Rank(ScoreBatch(snapshots, DefaultWorkers), floor, k)
}
