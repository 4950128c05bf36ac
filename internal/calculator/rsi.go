package calculator

import "CoinRadar/internal/model"

// CalculateRSI computes the relative strength index over the first period transitions
// of the series. Requires at least period+1 prices. Saturates to 100 when there are no losses.
func CalculateRSI(prices []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) < period+1 {
		return model.Insufficient[float64]()
	}
	return model.Present(rsiWindow(prices[:period+1], period))
}

// CalculateStochRSI builds an RSI value for every trailing window of period+1 samples
// and applies the stochastic %K formula to the last period of them.
func CalculateStochRSI(prices []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) < period+1 {
		return model.Insufficient[float64]()
	}

	values := make([]float64, 0, len(prices)-period)
	for i := period; i < len(prices); i++ {
		values = append(values, rsiWindow(prices[i-period:i+1], period))
	}
	if len(values) < period {
		return model.Insufficient[float64]()
	}

	low, high := minMax(values[len(values)-period:])
	return model.Present(percentK(values[len(values)-1], low, high))
}

func rsiWindow(window []float64, period int) float64 {
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change >= 0 {
			gains += change
		} else {
			losses -= change // make positive
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
