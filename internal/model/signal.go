package model

// SignalType is the discrete classification of a snapshot.
type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
	SignalHold SignalType = "hold"
)

// Side is the accumulator a rubric band awards its points to.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
	SideNone Side = "none"
)

// FactorScore represents a single rubric category's outcome.
type FactorScore struct {
	Category   string `json:"category"`
	Side       Side   `json:"side"`
	Points     int    `json:"points"`
	Weight     int    `json:"weight"`
	Abstained  bool   `json:"abstained"`
	Commentary string `json:"commentary,omitempty"`
}

// Signal is the output of the scoring engine for one snapshot.
type Signal struct {
	Type                SignalType    `json:"type"`
	ConfidencePercent   int           `json:"confidence_percent"`
	BuyPoints           int           `json:"buy_points"`
	SellPoints          int           `json:"sell_points"`
	MaxPossiblePoints   int           `json:"max_possible_points"`
	ContributingFactors []string      `json:"contributing_factors"`
	Factors             []FactorScore `json:"factors"`
}

// ScoredAsset pairs a snapshot with the signal computed from it.
type ScoredAsset struct {
	Snapshot AssetSnapshot `json:"snapshot"`
	Signal   Signal        `json:"signal"`
}

// RankedSelection is the top-K confidence-filtered, confidence-sorted subset of a scored batch.
type RankedSelection []ScoredAsset
