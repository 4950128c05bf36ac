package notifier

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"CoinRadar/internal/model"
)

// FormatPrice renders 4 decimals under $1, otherwise 2 decimals with thousands separators.
func FormatPrice(p float64) string {
	v := decimal.NewFromFloat(p)
	if p < 1 {
		return "$" + v.StringFixed(4)
	}
	intPart, frac, _ := strings.Cut(v.StringFixed(2), ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return "$" + v.StringFixed(2)
	}
	return "$" + humanize.Comma(n) + "." + frac
}

// FormatLargeUSD renders market caps and volumes as $1.23T, $45.60B, $7.89M.
func FormatLargeUSD(v float64) string {
	value, prefix := humanize.ComputeSI(v)
	switch prefix {
	case "G":
		prefix = "B"
	case "k":
		prefix = "K"
	}
	return "$" + decimal.NewFromFloat(value).StringFixed(2) + prefix
}

// FormatChange renders a 24h percentage change with an arrow.
func FormatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("↗ %.2f%%", pct)
	}
	return fmt.Sprintf("↘ %.2f%%", -pct)
}

func signalLabel(t model.SignalType) string {
	switch t {
	case model.SignalBuy:
		return "🟢 BUY"
	case model.SignalSell:
		return "🔴 SELL"
	default:
		return "🟡 HOLD"
	}
}

func strengthLabel(confidence int) string {
	switch {
	case confidence >= 70:
		return "strong"
	case confidence >= 50:
		return "moderate"
	default:
		return "weak"
	}
}

func writeSignalLine(b *strings.Builder, i int, a model.ScoredAsset) {
	fmt.Fprintf(b, "%d. <b>%s</b> %s %s · %s %d%%\n",
		i+1, html.EscapeString(strings.ToUpper(a.Snapshot.Symbol)),
		FormatPrice(a.Snapshot.CurrentPrice), FormatChange(a.Snapshot.PriceChange24h),
		signalLabel(a.Signal.Type), a.Signal.ConfidencePercent)
	if len(a.Signal.ContributingFactors) > 0 {
		fmt.Fprintf(b, "   <i>%s</i>\n", html.EscapeString(strings.Join(a.Signal.ContributingFactors, ", ")))
	}
}

// FormatRanking formats the top-K selection.
func FormatRanking(ranking model.RankedSelection, floor int, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>CoinRadar top signals</b> | %s\n", generatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "confidence ≥ %d%%\n\n", floor)
	if len(ranking) == 0 {
		b.WriteString("No signal reached the confidence floor.\n")
		return b.String()
	}
	for i, a := range ranking {
		writeSignalLine(&b, i, a)
	}
	return b.String()
}

// FormatStrongSignals formats the strong buy list sent after each cycle.
func FormatStrongSignals(strong []model.ScoredAsset, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 <b>Strong buy signals</b> | %s\n\n", generatedAt.Format("2006-01-02 15:04"))
	if len(strong) == 0 {
		b.WriteString("No strong buy signals right now.\n")
		return b.String()
	}
	for i, a := range strong {
		writeSignalLine(&b, i, a)
	}
	return b.String()
}

// FormatMarket formats the global market overview.
func FormatMarket(o *model.MarketOverview) string {
	var b strings.Builder
	b.WriteString("🌐 <b>Market overview</b>\n\n")
	fmt.Fprintf(&b, "Total market cap: %s\n", FormatLargeUSD(o.TotalMarketCap))
	fmt.Fprintf(&b, "24h volume: %s\n", FormatLargeUSD(o.TotalVolume))
	fmt.Fprintf(&b, "BTC dominance: %.1f%%\n", o.BTCDominance)
	fmt.Fprintf(&b, "Updated %s\n", humanize.Time(o.FetchedAt))
	return b.String()
}

func readingText[T any](r model.Reading[T], f func(T) string) string {
	v, ok := r.Get()
	if !ok {
		return "N/A"
	}
	return f(v)
}

func oneDecimal(v float64) string { return fmt.Sprintf("%.1f", v) }

// FormatCoinDetail formats one asset with its indicators and rubric breakdown.
func FormatCoinDetail(a model.ScoredAsset, set model.IndicatorSet) string {
	s := a.Snapshot
	sig := a.Signal

	var b strings.Builder
	fmt.Fprintf(&b, "🔎 <b>%s</b> (%s)\n", html.EscapeString(s.Name), html.EscapeString(strings.ToUpper(s.Symbol)))
	fmt.Fprintf(&b, "Price: %s %s\n", FormatPrice(s.CurrentPrice), FormatChange(s.PriceChange24h))
	fmt.Fprintf(&b, "Market cap: %s | Volume: %s\n\n", FormatLargeUSD(s.MarketCap), FormatLargeUSD(s.TotalVolume))

	fmt.Fprintf(&b, "<b>Signal:</b> %s %d%% (%s)\n", signalLabel(sig.Type), sig.ConfidencePercent, strengthLabel(sig.ConfidencePercent))
	fmt.Fprintf(&b, "Buy %d / Sell %d of %d\n\n", sig.BuyPoints, sig.SellPoints, sig.MaxPossiblePoints)

	b.WriteString("📈 <b>Rubric:</b>\n")
	for _, f := range sig.Factors {
		if f.Abstained {
			fmt.Fprintf(&b, "  %s: n/a (0/%d)\n", html.EscapeString(f.Category), f.Weight)
			continue
		}
		fmt.Fprintf(&b, "  %s(%s): %s %d/%d\n",
			html.EscapeString(f.Category), html.EscapeString(f.Commentary), f.Side, f.Points, f.Weight)
	}

	b.WriteString("\n📐 <b>Levels:</b>\n")
	fmt.Fprintf(&b, "  MA7 %s | MA14 %s | MA30 %s\n",
		readingText(set.MA7, FormatPrice), readingText(set.MA14, FormatPrice), readingText(set.MA30, FormatPrice))
	fmt.Fprintf(&b, "  VWAP %s | ATR %s\n", readingText(set.VWAP, FormatPrice), readingText(set.ATR, FormatPrice))
	fmt.Fprintf(&b, "  Support %s | Resistance %s\n",
		readingText(set.SupportResistance, func(sr model.SupportResistance) string { return FormatPrice(sr.Support) }),
		readingText(set.SupportResistance, func(sr model.SupportResistance) string { return FormatPrice(sr.Resistance) }))
	fmt.Fprintf(&b, "  OBV %s | MFI %s\n",
		readingText(set.OBV, func(v float64) string { return humanize.Commaf(float64(int64(v))) }),
		readingText(set.MFI, oneDecimal))
	return b.String()
}
