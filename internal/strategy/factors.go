package strategy

import (
	"fmt"

	"CoinRadar/internal/model"
)

// Category names, also used as the NAME part of contributing factors.
const (
	CategoryRSI        = "RSI"
	CategoryMATrend    = "MA"
	CategoryMACD       = "MACD"
	CategoryBollinger  = "BB"
	CategoryWilliamsR  = "W%R"
	CategoryCCI        = "CCI"
	CategoryStochastic = "Stoch"
	CategoryStochRSI   = "StochRSI"
	CategoryMFI        = "MFI"
	CategorySR         = "S/R"
	CategoryVolatility = "ATR"
)

// band is one row of a category's rubric. Bands are evaluated in table order
// and the first match wins.
type band struct {
	side   model.Side
	points int
	match  func(v float64) bool
}

func below(limit float64) func(float64) bool { return func(v float64) bool { return v < limit } }
func above(limit float64) func(float64) bool { return func(v float64) bool { return v > limit } }

// Oscillator rubrics, ordered full-buy, full-sell, half-buy, half-sell.
var (
	rsiBands = []band{
		{model.SideBuy, 20, below(30)},
		{model.SideSell, 20, above(70)},
		{model.SideBuy, 10, below(45)},
		{model.SideSell, 10, above(55)},
	}
	williamsBands = []band{
		{model.SideBuy, 10, below(-80)},
		{model.SideSell, 10, above(-20)},
		{model.SideBuy, 5, below(-60)},
		{model.SideSell, 5, above(-40)},
	}
	cciBands = []band{
		{model.SideBuy, 10, below(-100)},
		{model.SideSell, 10, above(100)},
		{model.SideBuy, 5, below(-50)},
		{model.SideSell, 5, above(50)},
	}
	// Shared by Stochastic, StochRSI and MFI.
	bounded100Bands = []band{
		{model.SideBuy, 10, below(20)},
		{model.SideSell, 10, above(80)},
		{model.SideBuy, 5, below(30)},
		{model.SideSell, 5, above(70)},
	}
)

func abstain(category string, weight int) model.FactorScore {
	return model.FactorScore{Category: category, Side: model.SideNone, Weight: weight, Abstained: true}
}

func neutral(category string, weight int, commentary string) model.FactorScore {
	return model.FactorScore{Category: category, Side: model.SideNone, Weight: weight, Commentary: commentary}
}

// scoreBands applies an ordered rubric to a single-valued reading.
func scoreBands(category string, weight int, r model.Reading[float64], bands []band) model.FactorScore {
	v, ok := r.Get()
	if !ok {
		return abstain(category, weight)
	}
	f := neutral(category, weight, fmt.Sprintf("%.1f", v))
	for _, b := range bands {
		if b.match(v) {
			f.Side, f.Points = b.side, b.points
			break
		}
	}
	return f
}

// scoreMATrend compares the current price against MA7 > MA14 > MA30.
// Weight: 15. Needs MA7 and MA14; without MA30 only the partial stack can score.
func scoreMATrend(set *model.IndicatorSet, price float64) model.FactorScore {
	const weight = 15
	ma7, ok7 := set.MA7.Get()
	ma14, ok14 := set.MA14.Get()
	if !ok7 || !ok14 {
		return abstain(CategoryMATrend, weight)
	}
	ma30, ok30 := set.MA30.Get()

	f := neutral(CategoryMATrend, weight, fmt.Sprintf("%.4g/%.4g", ma7, ma14))
	if ok30 {
		f.Commentary = fmt.Sprintf("%.4g/%.4g/%.4g", ma7, ma14, ma30)
	}

	switch {
	case ok30 && price > ma7 && ma7 > ma14 && ma14 > ma30:
		f.Side, f.Points = model.SideBuy, 15
	case ok30 && price < ma7 && ma7 < ma14 && ma14 < ma30:
		f.Side, f.Points = model.SideSell, 15
	case price > ma7 && ma7 > ma14:
		f.Side, f.Points = model.SideBuy, 10
	case price < ma7 && ma7 < ma14:
		f.Side, f.Points = model.SideSell, 10
	}
	return f
}

// scoreMACD scores histogram direction, confirmed by line vs signal.
// Weight: 15. A zero histogram awards nothing.
func scoreMACD(set *model.IndicatorSet) model.FactorScore {
	const weight = 15
	m, ok := set.MACD.Get()
	if !ok {
		return abstain(CategoryMACD, weight)
	}
	f := neutral(CategoryMACD, weight, fmt.Sprintf("%.4g", m.Histogram))

	switch {
	case m.Histogram > 0 && m.Line > m.Signal:
		f.Side, f.Points = model.SideBuy, 15
	case m.Histogram < 0 && m.Line < m.Signal:
		f.Side, f.Points = model.SideSell, 15
	case m.Histogram > 0:
		f.Side, f.Points = model.SideBuy, 8
	case m.Histogram < 0:
		f.Side, f.Points = model.SideSell, 8
	}
	return f
}

// scoreBollinger awards the full weight at either band.
// Weight: 10
func scoreBollinger(set *model.IndicatorSet) model.FactorScore {
	const weight = 10
	bb, ok := set.Bollinger.Get()
	if !ok {
		return abstain(CategoryBollinger, weight)
	}
	f := neutral(CategoryBollinger, weight, string(bb.Position))

	switch bb.Position {
	case model.BandLower:
		f.Side, f.Points = model.SideBuy, 10
	case model.BandUpper:
		f.Side, f.Points = model.SideSell, 10
	}
	return f
}

// scoreStochastic requires %K and %D to agree on the band.
// Weight: 10
func scoreStochastic(set *model.IndicatorSet) model.FactorScore {
	const weight = 10
	st, ok := set.Stochastic.Get()
	if !ok {
		return abstain(CategoryStochastic, weight)
	}
	f := neutral(CategoryStochastic, weight, fmt.Sprintf("%.1f", st.K))
	for _, b := range bounded100Bands {
		if b.match(st.K) && b.match(st.D) {
			f.Side, f.Points = b.side, b.points
			break
		}
	}
	return f
}

// scoreSupportResistance scores proximity to the series extremes, in percent.
// Weight: 10
// distSupport = (price - support) / support; distResistance = (resistance - price) / price
func scoreSupportResistance(set *model.IndicatorSet, price float64) model.FactorScore {
	const weight = 10
	sr, ok := set.SupportResistance.Get()
	if !ok || sr.Support <= 0 || price <= 0 {
		return abstain(CategorySR, weight)
	}
	distSupport := (price - sr.Support) / sr.Support * 100
	distResistance := (sr.Resistance - price) / price * 100

	f := neutral(CategorySR, weight, fmt.Sprintf("%.1f%%/%.1f%%", distSupport, distResistance))
	switch {
	case distSupport < 3:
		f.Side, f.Points = model.SideBuy, 10
	case distResistance < 3:
		f.Side, f.Points = model.SideSell, 10
	case distSupport < 8:
		f.Side, f.Points = model.SideBuy, 5
	case distResistance < 8:
		f.Side, f.Points = model.SideSell, 5
	}
	return f
}

// scoreVolatility compares ATR to the current price.
// Weight: 10. Calm markets favour buying; a very wide range is a half-weight sell.
func scoreVolatility(set *model.IndicatorSet, price float64) model.FactorScore {
	const weight = 10
	atr, ok := set.ATR.Get()
	if !ok || price <= 0 {
		return abstain(CategoryVolatility, weight)
	}
	f := neutral(CategoryVolatility, weight, fmt.Sprintf("%.2f%%", atr/price*100))

	switch {
	case atr < price*0.015:
		f.Side, f.Points = model.SideBuy, 10
	case atr > price*0.05:
		f.Side, f.Points = model.SideSell, 5
	}
	return f
}
