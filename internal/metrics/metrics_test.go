package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordCycle("ok", 2*time.Second)
	r.RecordCycle("ok", time.Second)
	r.RecordCycle("error", time.Second)
	r.RecordBoard(100, 6)
	r.RecordSignal("buy")
	r.RecordSignal("buy")
	r.RecordSinkError("redis")
	r.RecordFallback()

	got := gather(t, reg)
	want := map[string]float64{
		"coinradar_refresh_cycles_total/ok":        2,
		"coinradar_refresh_cycles_total/error":     1,
		"coinradar_refresh_cycle_duration_seconds": 3,
		"coinradar_assets_scored":                  100,
		"coinradar_ranked_signals":                 6,
		"coinradar_signals_total/buy":              2,
		"coinradar_sink_errors_total/redis":        1,
		"coinradar_fetch_fallbacks_total":          1,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %v, want %v", k, got[k], v)
		}
	}
}
