package calculator

import (
	"CoinRadar/internal/model"

	"github.com/markcheno/go-talib"
)

// CalculateSMA computes the arithmetic mean of the trailing period prices.
func CalculateSMA(prices []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) < period {
		return model.Insufficient[float64]()
	}
	out := talib.Sma(prices[len(prices)-period:], period)
	return model.Present(out[len(out)-1])
}

// CalculateEMA computes the exponential moving average over the full series,
// seeded with the first sample and smoothed with k = 2/(period+1).
func CalculateEMA(prices []float64, period int) model.Reading[float64] {
	if period <= 0 || len(prices) == 0 {
		return model.Insufficient[float64]()
	}
	k := 2.0 / float64(period+1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = p*k + ema*(1-k)
	}
	return model.Present(ema)
}

// CalculateMACD returns EMA(12) - EMA(26) as the line. The signal line is EMA(9) over
// the trailing 9 raw prices, not over the MACD line series.
func CalculateMACD(prices []float64) model.Reading[model.MACD] {
	if len(prices) < MACDSlowPeriod {
		return model.Insufficient[model.MACD]()
	}
	fast, _ := CalculateEMA(prices, MACDFastPeriod).Get()
	slow, _ := CalculateEMA(prices, MACDSlowPeriod).Get()
	signal, _ := CalculateEMA(prices[len(prices)-MACDSignalPeriod:], MACDSignalPeriod).Get()

	line := fast - slow
	return model.Present(model.MACD{
		Line:      line,
		Signal:    signal,
		Histogram: line - signal,
	})
}
