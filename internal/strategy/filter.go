package strategy

import (
	"fmt"
	"strings"

	"CoinRadar/internal/model"
)

// FilterMode selects a subset of the scored board.
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterStrong   FilterMode = "strong"
	FilterPositive FilterMode = "positive"
	FilterNegative FilterMode = "negative"
)

// StrongConfidence is the minimum confidence of a strong buy.
const StrongConfidence = 70

// ParseFilterMode accepts the mode names, case-insensitive. Empty means all.
func ParseFilterMode(s string) (FilterMode, error) {
	switch m := FilterMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FilterAll, nil
	case FilterAll, FilterStrong, FilterPositive, FilterNegative:
		return m, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

// Filter returns the entries matching mode, preserving order.
func Filter(scored []model.ScoredAsset, mode FilterMode) []model.ScoredAsset {
	out := make([]model.ScoredAsset, 0, len(scored))
	for _, s := range scored {
		var keep bool
		switch mode {
		case FilterStrong:
			keep = IsStrong(s.Signal)
		case FilterPositive:
			keep = s.Snapshot.PriceChange24h > 0
		case FilterNegative:
			keep = s.Snapshot.PriceChange24h < 0
		default:
			keep = true
		}
		if keep {
			out = append(out, s)
		}
	}
	return out
}

// IsStrong reports a buy signal at or above StrongConfidence.
func IsStrong(sig model.Signal) bool {
	return sig.Type == model.SignalBuy && sig.ConfidencePercent >= StrongConfidence
}

// Search matches query against name or symbol, case-insensitive. An empty query matches everything.
func Search(scored []model.ScoredAsset, query string) []model.ScoredAsset {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return scored
	}
	out := make([]model.ScoredAsset, 0)
	for _, s := range scored {
		if strings.Contains(strings.ToLower(s.Snapshot.Name), q) ||
			strings.Contains(strings.ToLower(s.Snapshot.Symbol), q) {
			out = append(out, s)
		}
	}
	return out
}

// Lookup finds an entry by symbol or id, case-insensitive.
func Lookup(scored []model.ScoredAsset, symbol string) (model.ScoredAsset, bool) {
	sym := strings.ToLower(strings.TrimSpace(symbol))
	for _, s := range scored {
		if strings.ToLower(s.Snapshot.Symbol) == sym || strings.ToLower(s.Snapshot.ID) == sym {
			return s, true
		}
	}
	return model.ScoredAsset{}, false
}
