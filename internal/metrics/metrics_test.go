package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/atlas-desktop/recall-agent/internal/metrics"
)

func TestCounters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.SignalGenerated("moving_average", "buy")
	m.SignalGenerated("moving_average", "buy")
	m.SignalFiltered()
	m.TradeExecuted("WETH", "buy")
	m.TradeFailed("WETH", "sell")
	m.StrategyFault("simple_trigger")
	m.CycleCompleted(150 * time.Millisecond)

	if got := testutil.ToFloat64(m.SignalsGenerated.WithLabelValues("moving_average", "buy")); got != 2 {
		t.Errorf("signals generated = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SignalsFiltered); got != 1 {
		t.Errorf("signals filtered = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StrategyFaults.WithLabelValues("simple_trigger")); got != 1 {
		t.Errorf("strategy faults = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Cycles); got != 1 {
		t.Errorf("cycles = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.SignalGenerated("x", "buy")
	m.SignalFiltered()
	m.TradeExecuted("x", "buy")
	m.TradeFailed("x", "buy")
	m.StrategyFault("x")
	m.CycleCompleted(time.Second)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.SignalFiltered()

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "recall_agent_signals_filtered_total 1") {
		t.Errorf("metrics output missing filtered counter:\n%s", body)
	}
}
