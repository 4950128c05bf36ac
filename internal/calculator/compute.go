package calculator

import "CoinRadar/internal/model"

// Default indicator periods.
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	BollingerPeriod  = 20
	BollingerMult    = 2.0
	ATRPeriod        = 14
	StochasticPeriod = 14
	WilliamsRPeriod  = 14
	CCIPeriod        = 20
	StochRSIPeriod   = 14
	MFIPeriod        = 14
	MAShortPeriod    = 7
	MAMediumPeriod   = 14
	MALongPeriod     = 30
)

// Compute runs every indicator over the snapshot's series.
func Compute(snap *model.AssetSnapshot) model.IndicatorSet {
	prices := snap.Prices
	var volumes []float64
	if snap.HasVolumes() {
		volumes = snap.Volumes
	}

	return model.IndicatorSet{
		RSI:               CalculateRSI(prices, RSIPeriod),
		MACD:              CalculateMACD(prices),
		Bollinger:         CalculateBollingerBands(prices, BollingerPeriod, BollingerMult),
		WilliamsR:         CalculateWilliamsR(prices, WilliamsRPeriod),
		CCI:               CalculateCCI(prices, CCIPeriod),
		StochRSI:          CalculateStochRSI(prices, StochRSIPeriod),
		MFI:               CalculateMFI(prices, volumes, MFIPeriod),
		OBV:               CalculateOBV(prices, volumes),
		MA7:               CalculateSMA(prices, MAShortPeriod),
		MA14:              CalculateSMA(prices, MAMediumPeriod),
		MA30:              CalculateSMA(prices, MALongPeriod),
		ATR:               CalculateATR(prices, ATRPeriod),
		VWAP:              CalculateNaiveVWAP(prices),
		SupportResistance: CalculateSupportResistance(prices),
		Stochastic:        CalculateStochastic(prices, StochasticPeriod),
	}
}
