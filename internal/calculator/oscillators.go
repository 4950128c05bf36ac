package calculator

import (
	"math"

	"CoinRadar/internal/model"
)

// CalculateStochastic computes %K over the trailing window. %D is reported equal to %K.
// A flat window reports the midpoint, 50.
func CalculateStochastic(prices []float64, period int) model.Reading[model.Stochastic] {
	if period <= 0 || len(prices) < period {
		return model.Insufficient[model.Stochastic]()
	}
	low, high := minMax(prices[len(prices)-period:])
	k := percentK(prices[len(prices)-1], low, high)
	return model.Present(model.Stochastic{K: k, D: k})
}

// CalculateWilliamsR computes ((high - last) / (high - low)) * -100 over the trailing window.
// Range is [-100, 0]; a flat window reports -50.
func CalculateWilliamsR(prices []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) < period {
		return model.Insufficient[float64]()
	}
	low, high := minMax(prices[len(prices)-period:])
	if high == low {
		return model.Present(-50.0)
	}
	last := prices[len(prices)-1]
	wr := (high - last) / (high - low) * -100
	if wr == 0 {
		wr = 0 // drop the sign of -0 at the high
	}
	return model.Present(wr)
}

// CalculateCCI computes the commodity channel index of the last price over the trailing window.
// Zero mean deviation reports 0.
func CalculateCCI(prices []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) < period {
		return model.Insufficient[float64]()
	}
	window := prices[len(prices)-period:]
	sma := mean(window)

	var dev float64
	for _, p := range window {
		dev += math.Abs(p - sma)
	}
	meanDev := dev / float64(period)
	if meanDev == 0 {
		return model.Present(0.0)
	}
	last := prices[len(prices)-1]
	return model.Present((last - sma) / (0.015 * meanDev))
}

func percentK(current, low, high float64) float64 {
	if high == low {
		return 50.0
	}
	return (current - low) / (high - low) * 100
}

func minMax(values []float64) (low, high float64) {
	low, high = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	return low, high
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
