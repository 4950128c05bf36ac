package calculator

import (
	"CoinRadar/internal/model"

	"github.com/markcheno/go-talib"
)

// CalculateBollingerBands computes the bands around the trailing period mean using the
// population standard deviation, and classifies the last price against them.
func CalculateBollingerBands(prices []float64, period int, mult float64) model.Reading[model.Bollinger] {
	if period <= 0 || len(prices) < period {
		return model.Insufficient[model.Bollinger]()
	}
	window := prices[len(prices)-period:]

	middle := talib.Sma(window, period)[period-1]
	stdDev := talib.StdDev(window, period, 1.0)[period-1]

	bb := model.Bollinger{
		Upper:  middle + mult*stdDev,
		Middle: middle,
		Lower:  middle - mult*stdDev,
	}

	last := prices[len(prices)-1]
	switch {
	case last >= bb.Upper:
		bb.Position = model.BandUpper
	case last <= bb.Lower:
		bb.Position = model.BandLower
	default:
		bb.Position = model.BandMiddle
	}
	return model.Present(bb)
}
