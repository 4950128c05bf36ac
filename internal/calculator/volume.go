package calculator

import "CoinRadar/internal/model"

// CalculateOBV accumulates volume across the whole series: added on a price increase,
// subtracted on a decrease, unchanged on a tie. Requires an aligned volume series.
func CalculateOBV(prices, volumes []float64) model.Reading[float64] {
	if len(prices) < 2 || len(volumes) != len(prices) {
		return model.Insufficient[float64]()
	}
	var obv float64
	for i := 1; i < len(prices); i++ {
		switch {
		case prices[i] > prices[i-1]:
			obv += volumes[i]
		case prices[i] < prices[i-1]:
			obv -= volumes[i]
		}
	}
	return model.Present(obv)
}

// CalculateMFI computes the money flow index over the trailing period transitions.
// Saturates to 100 when there is no negative flow.
func CalculateMFI(prices, volumes []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) < period+1 || len(volumes) != len(prices) {
		return model.Insufficient[float64]()
	}

	var positive, negative float64
	for i := len(prices) - period; i < len(prices); i++ {
		flow := prices[i] * volumes[i]
		switch {
		case prices[i] > prices[i-1]:
			positive += flow
		case prices[i] < prices[i-1]:
			negative += flow
		}
	}

	if negative == 0 {
		return model.Present(100.0)
	}
	ratio := positive / negative
	return model.Present(100 - 100/(1+ratio))
}
