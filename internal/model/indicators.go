package model

// BandPosition is where the last price sits relative to the Bollinger bands.
type BandPosition string

const (
	BandUpper  BandPosition = "upper"
	BandMiddle BandPosition = "middle"
	BandLower  BandPosition = "lower"
)

// MACD holds the line, the signal line and their difference.
type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bollinger holds the bands and the last price's position.
type Bollinger struct {
	Upper    float64      `json:"upper"`
	Middle   float64      `json:"middle"`
	Lower    float64      `json:"lower"`
	Position BandPosition `json:"position"`
}

// Stochastic holds %K and %D.
type Stochastic struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// SupportResistance holds the series extremes.
type SupportResistance struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// IndicatorSet holds every indicator computed for one snapshot.
type IndicatorSet struct {
	RSI               Reading[float64]           `json:"rsi"`
	MACD              Reading[MACD]              `json:"macd"`
	Bollinger         Reading[Bollinger]         `json:"bollinger"`
	WilliamsR         Reading[float64]           `json:"williams_r"`
	CCI               Reading[float64]           `json:"cci"`
	StochRSI          Reading[float64]           `json:"stoch_rsi"`
	MFI               Reading[float64]           `json:"mfi"`
	OBV               Reading[float64]           `json:"obv"`
	MA7               Reading[float64]           `json:"ma7"`
	MA14              Reading[float64]           `json:"ma14"`
	MA30              Reading[float64]           `json:"ma30"`
	ATR               Reading[float64]           `json:"atr"`
	VWAP              Reading[float64]           `json:"vwap"`
	SupportResistance Reading[SupportResistance] `json:"support_resistance"`
	Stochastic        Reading[Stochastic]        `json:"stochastic"`
}
