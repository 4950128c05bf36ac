package calculator

import (
	"math"
	"testing"

	"CoinRadar/internal/model"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

func mustGet[T any](t *testing.T, label string, r model.Reading[T]) T {
	t.Helper()
	v, ok := r.Get()
	if !ok {
		t.Fatalf("%s: expected a value, got insufficient data", label)
	}
	return v
}

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

// flatThenJump is 29 samples at 10 followed by a single 20.
func flatThenJump() []float64 {
	p := series(29, func(int) float64 { return 10 })
	return append(p, 20)
}

// fallThenRise is 20 samples falling 100 to 81, then 20 rising back from 81 to 100.
func fallThenRise() []float64 {
	return series(40, func(i int) float64 {
		if i < 20 {
			return float64(100 - i)
		}
		return float64(81 + i - 20)
	})
}

func wave(n int) []float64 {
	return series(n, func(i int) float64 {
		return 100 + 10*math.Sin(float64(i)*0.7) + float64(i)*0.3
	})
}

func TestCalculateSMA(t *testing.T) {
	prices := series(10, func(i int) float64 { return float64(i + 1) })

	assertClose(t, "SMA(3)", mustGet(t, "SMA(3)", CalculateSMA(prices, 3)), 9, 1e-9)
	assertClose(t, "SMA(10)", mustGet(t, "SMA(10)", CalculateSMA(prices, 10)), 5.5, 1e-9)

	if CalculateSMA(prices, 11).Ok() {
		t.Error("expected insufficient data for period > len")
	}
	if CalculateSMA(nil, 3).Ok() {
		t.Error("expected insufficient data for empty series")
	}
}

func TestCalculateEMA(t *testing.T) {
	// k = 0.5: 1 -> 1.5 -> 2.25
	assertClose(t, "EMA(3)", mustGet(t, "EMA", CalculateEMA([]float64{1, 2, 3}, 3)), 2.25, 1e-9)
	assertClose(t, "EMA single", mustGet(t, "EMA", CalculateEMA([]float64{7}, 12)), 7, 1e-9)

	if CalculateEMA(nil, 12).Ok() {
		t.Error("expected insufficient data for empty series")
	}
}

func TestCalculateRSI(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{"no losses saturates", flatThenJump(), 14, 100},
		{"flat saturates", series(15, func(int) float64 { return 5 }), 14, 100},
		{"balanced", []float64{1, 2, 1}, 2, 50},
		{"two to one", []float64{10, 11, 12, 11}, 3, 100 - 100.0/3},
		{"only losses", []float64{5, 4, 3}, 2, 0},
		{"first transitions only", []float64{1, 100, 10, 11, 12, 11}, 3, 100 - 100/(1+100.0/90)},
		{"falling head, rising tail", fallThenRise(), 14, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertClose(t, tt.name, mustGet(t, tt.name, CalculateRSI(tt.prices, tt.period)), tt.want, 1e-9)
		})
	}

	if CalculateRSI(series(14, func(i int) float64 { return float64(i) }), 14).Ok() {
		t.Error("RSI(14) needs 15 samples")
	}
}

func TestCalculateMACD(t *testing.T) {
	if CalculateMACD(series(25, func(int) float64 { return 10 })).Ok() {
		t.Error("MACD needs 26 samples")
	}

	flat := mustGet(t, "MACD flat", CalculateMACD(series(26, func(int) float64 { return 10 })))
	assertClose(t, "line", flat.Line, 0, 1e-9)
	assertClose(t, "signal", flat.Signal, 10, 1e-9)
	assertClose(t, "histogram", flat.Histogram, -10, 1e-9)

	jump := mustGet(t, "MACD jump", CalculateMACD(flatThenJump()))
	wantLine := 10*2.0/13 - 10*2.0/27
	assertClose(t, "jump line", jump.Line, wantLine, 1e-9)
	assertClose(t, "jump signal", jump.Signal, 12, 1e-9)
	assertClose(t, "jump histogram", jump.Histogram, wantLine-12, 1e-9)
}

func TestCalculateBollingerBands(t *testing.T) {
	ramp := series(20, func(i int) float64 { return float64(i + 1) })
	bb := mustGet(t, "ramp", CalculateBollingerBands(ramp, 20, 2))
	sd := math.Sqrt(399.0 / 12)
	assertClose(t, "middle", bb.Middle, 10.5, 1e-9)
	assertClose(t, "upper", bb.Upper, 10.5+2*sd, 1e-6)
	assertClose(t, "lower", bb.Lower, 10.5-2*sd, 1e-6)
	if bb.Position != model.BandMiddle {
		t.Errorf("position: got %s, want middle", bb.Position)
	}

	spike := mustGet(t, "spike", CalculateBollingerBands(flatThenJump(), 20, 2))
	if spike.Position != model.BandUpper {
		t.Errorf("spike position: got %s, want upper", spike.Position)
	}

	drop := append(series(19, func(int) float64 { return 10 }), 0)
	if got := mustGet(t, "drop", CalculateBollingerBands(drop, 20, 2)).Position; got != model.BandLower {
		t.Errorf("drop position: got %s, want lower", got)
	}

	if CalculateBollingerBands(ramp[:19], 20, 2).Ok() {
		t.Error("Bollinger(20) needs 20 samples")
	}
}

func TestOscillators(t *testing.T) {
	up := series(14, func(i int) float64 { return float64(i + 1) })
	down := series(14, func(i int) float64 { return float64(14 - i) })
	flat := series(14, func(int) float64 { return 3 })

	tests := []struct {
		name      string
		prices    []float64
		wantK     float64
		wantWillR float64
	}{
		{"rising", up, 100, 0},
		{"falling", down, 0, -100},
		{"flat", flat, 50, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := mustGet(t, "stochastic", CalculateStochastic(tt.prices, 14))
			assertClose(t, "K", st.K, tt.wantK, 1e-9)
			assertClose(t, "D", st.D, st.K, 0)
			assertClose(t, "W%R", mustGet(t, "W%R", CalculateWilliamsR(tt.prices, 14)), tt.wantWillR, 1e-9)
		})
	}

	assertClose(t, "W%R mid", mustGet(t, "W%R", CalculateWilliamsR([]float64{0, 10, 5}, 3)), -50, 1e-9)
	if wr := mustGet(t, "W%R at high", CalculateWilliamsR(flatThenJump(), 14)); wr != 0 || math.Signbit(wr) {
		t.Errorf("W%%R at the high: got %v, want +0", wr)
	}

	if CalculateStochastic(up[:13], 14).Ok() || CalculateWilliamsR(up[:13], 14).Ok() {
		t.Error("14-period oscillators need 14 samples")
	}
}

func TestCalculateCCI(t *testing.T) {
	// mean 2, mean deviation 2/3
	assertClose(t, "ramp", mustGet(t, "CCI", CalculateCCI([]float64{1, 2, 3}, 3)), 100, 1e-9)
	assertClose(t, "flat", mustGet(t, "CCI", CalculateCCI(series(20, func(int) float64 { return 4 }), 20)), 0, 0)
	assertClose(t, "spike", mustGet(t, "CCI", CalculateCCI(flatThenJump(), 20)), 9.5/(0.015*0.95), 1e-6)

	if CalculateCCI(series(19, func(int) float64 { return 4 }), 20).Ok() {
		t.Error("CCI(20) needs 20 samples")
	}
}

func TestCalculateStochRSI(t *testing.T) {
	if CalculateStochRSI(wave(27), 14).Ok() {
		t.Error("StochRSI(14) needs 14 RSI values (28 samples)")
	}
	if !CalculateStochRSI(wave(28), 14).Ok() {
		t.Error("StochRSI(14) should be present at 28 samples")
	}
	// every sub-window saturates at 100, so the range is degenerate
	assertClose(t, "flat RSI range", mustGet(t, "StochRSI", CalculateStochRSI(flatThenJump(), 14)), 50, 0)
}

func TestVolumeIndicators(t *testing.T) {
	assertClose(t, "OBV", mustGet(t, "OBV", CalculateOBV([]float64{1, 2, 2, 1}, []float64{10, 20, 30, 40})), -20, 0)
	assertClose(t, "MFI", mustGet(t, "MFI", CalculateMFI([]float64{1, 2, 1}, []float64{1, 1, 1}, 2)), 100-100.0/3, 1e-9)
	assertClose(t, "MFI no outflow", mustGet(t, "MFI", CalculateMFI([]float64{1, 2, 3}, []float64{1, 1, 1}, 2)), 100, 0)

	if CalculateOBV([]float64{1, 2, 3}, []float64{1, 1}).Ok() {
		t.Error("OBV with misaligned volumes must abstain")
	}
	if CalculateMFI([]float64{1, 2, 3}, nil, 2).Ok() {
		t.Error("MFI without volumes must abstain")
	}
	if CalculateMFI([]float64{1, 2}, []float64{1, 1}, 2).Ok() {
		t.Error("MFI(2) needs 3 samples")
	}
}

func TestRangeIndicators(t *testing.T) {
	assertClose(t, "ATR", mustGet(t, "ATR", CalculateATR([]float64{1, 2, 4}, 2)), 1.5, 1e-9)
	assertClose(t, "ATR spike", mustGet(t, "ATR", CalculateATR(flatThenJump(), 14)), 10.0/14, 1e-9)
	if CalculateATR([]float64{1, 2}, 2).Ok() {
		t.Error("ATR(2) needs 3 samples")
	}

	assertClose(t, "VWAP", mustGet(t, "VWAP", CalculateNaiveVWAP([]float64{1, 2, 3})), 2, 1e-9)
	if CalculateNaiveVWAP(nil).Ok() {
		t.Error("VWAP of empty series must abstain")
	}

	sr := mustGet(t, "S/R", CalculateSupportResistance([]float64{3, 1, 2}))
	if sr.Support != 1 || sr.Resistance != 3 {
		t.Errorf("S/R: got %+v, want {1 3}", sr)
	}
}

func TestIndicatorRanges(t *testing.T) {
	for n := 28; n <= 60; n += 4 {
		prices := wave(n)
		volumes := series(n, func(i int) float64 { return 1000 + float64(i%5)*250 })
		set := Compute(&model.AssetSnapshot{CurrentPrice: prices[n-1], Prices: prices, Volumes: volumes})

		rsi := mustGet(t, "RSI", set.RSI)
		if rsi < 0 || rsi > 100 {
			t.Errorf("n=%d RSI out of range: %f", n, rsi)
		}
		wr := mustGet(t, "W%R", set.WilliamsR)
		if wr < -100 || wr > 0 {
			t.Errorf("n=%d W%%R out of range: %f", n, wr)
		}
		st := mustGet(t, "Stoch", set.Stochastic)
		if st.K < 0 || st.K > 100 {
			t.Errorf("n=%d Stoch out of range: %f", n, st.K)
		}
		srsi := mustGet(t, "StochRSI", set.StochRSI)
		if srsi < 0 || srsi > 100 {
			t.Errorf("n=%d StochRSI out of range: %f", n, srsi)
		}
		mfi := mustGet(t, "MFI", set.MFI)
		if mfi < 0 || mfi > 100 {
			t.Errorf("n=%d MFI out of range: %f", n, mfi)
		}
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	prices := wave(40)
	orig := append([]float64(nil), prices...)
	Compute(&model.AssetSnapshot{CurrentPrice: prices[39], Prices: prices})

	for i := range prices {
		if prices[i] != orig[i] {
			t.Fatalf("prices[%d] changed: %f -> %f", i, orig[i], prices[i])
		}
	}
}

func TestComputeAbstention(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		absent []string
	}{
		{"empty", 0, []string{"RSI", "MACD", "BB", "MA7", "VWAP", "S/R"}},
		{"short", 10, []string{"RSI", "MACD", "BB", "MA14", "MA30", "ATR", "Stoch"}},
		{"no MA30", 29, []string{"MA30"}},
		{"no volumes", 30, []string{"MFI", "OBV"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Compute(&model.AssetSnapshot{Prices: wave(tt.n)})
			present := map[string]bool{
				"RSI":   set.RSI.Ok(),
				"MACD":  set.MACD.Ok(),
				"BB":    set.Bollinger.Ok(),
				"MA7":   set.MA7.Ok(),
				"MA14":  set.MA14.Ok(),
				"MA30":  set.MA30.Ok(),
				"ATR":   set.ATR.Ok(),
				"Stoch": set.Stochastic.Ok(),
				"VWAP":  set.VWAP.Ok(),
				"S/R":   set.SupportResistance.Ok(),
				"MFI":   set.MFI.Ok(),
				"OBV":   set.OBV.Ok(),
			}
			for _, name := range tt.absent {
				if present[name] {
					t.Errorf("%s: expected insufficient data at n=%d", name, tt.n)
				}
			}
		})
	}
}
