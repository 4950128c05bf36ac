package strategy

import (
	"math"

	"CoinRadar/internal/calculator"
	"CoinRadar/internal/model"
)

// ComputeSignal computes the indicator set of a snapshot and scores it.
func ComputeSignal(snap *model.AssetSnapshot) model.Signal {
	set := calculator.Compute(snap)
	return Evaluate(&set, snap.CurrentPrice)
}

// Evaluate runs the weighted rubric over an indicator set.
// Every category's weight counts toward MaxPossiblePoints, including abstaining ones.
func Evaluate(set *model.IndicatorSet, price float64) model.Signal {
	factors := []model.FactorScore{
		scoreBands(CategoryRSI, 20, set.RSI, rsiBands),
		scoreMATrend(set, price),
		scoreMACD(set),
		scoreBollinger(set),
		scoreBands(CategoryWilliamsR, 10, set.WilliamsR, williamsBands),
		scoreBands(CategoryCCI, 10, set.CCI, cciBands),
		scoreStochastic(set),
		scoreBands(CategoryStochRSI, 10, set.StochRSI, bounded100Bands),
		scoreBands(CategoryMFI, 10, set.MFI, bounded100Bands),
		scoreSupportResistance(set, price),
		scoreVolatility(set, price),
	}

	sig := model.Signal{
		Factors:             factors,
		ContributingFactors: make([]string, 0, len(factors)),
	}
	for _, f := range factors {
		sig.MaxPossiblePoints += f.Weight
		switch f.Side {
		case model.SideBuy:
			sig.BuyPoints += f.Points
		case model.SideSell:
			sig.SellPoints += f.Points
		}
		if !f.Abstained {
			sig.ContributingFactors = append(sig.ContributingFactors, f.Category+":"+f.Commentary)
		}
	}

	switch {
	case sig.BuyPoints > sig.SellPoints:
		sig.Type = model.SignalBuy
	case sig.SellPoints > sig.BuyPoints:
		sig.Type = model.SignalSell
	default:
		sig.Type = model.SignalHold
	}
	sig.ConfidencePercent = confidence(max(sig.BuyPoints, sig.SellPoints), sig.MaxPossiblePoints)
	return sig
}

// confidence maps winning points to an integer percentage in [0, 100].
func confidence(points, maxPossible int) int {
	if maxPossible <= 0 {
		return 0
	}
	pct := int(math.Round(float64(points) / float64(maxPossible) * 100))
	return min(max(pct, 0), 100)
}
