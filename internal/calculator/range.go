package calculator

import (
	"math"

	"CoinRadar/internal/model"
)

// CalculateATR averages the absolute successive-sample differences over the trailing
// period differences. It is a price-delta proxy for true range; no high/low data is used.
func CalculateATR(prices []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) < period+1 {
		return model.Insufficient[float64]()
	}
	var sum float64
	for i := len(prices) - period; i < len(prices); i++ {
		sum += math.Abs(prices[i] - prices[i-1])
	}
	return model.Present(sum / float64(period))
}

// CalculateNaiveVWAP is a VWAP proxy: the arithmetic mean of the full series.
// No volume weighting is applied.
func CalculateNaiveVWAP(prices []float64) model.Reading[float64] {
	if len(prices) == 0 {
		return model.Insufficient[float64]()
	}
	return model.Present(mean(prices))
}

// CalculateSupportResistance returns the minimum and maximum of the full series.
func CalculateSupportResistance(prices []float64) model.Reading[model.SupportResistance] {
	if len(prices) == 0 {
		return model.Insufficient[model.SupportResistance]()
	}
	low, high := minMax(prices)
	return model.Present(model.SupportResistance{Support: low, Resistance: high})
}
