package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRunRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.ObserveRun("ac", true, 10*time.Millisecond)
	collector.ObserveRun("ac", false, time.Millisecond)
	collector.ObserveRun("dc", true, time.Millisecond)

	if got := testutil.ToFloat64(collector.AnalysisRuns.WithLabelValues("ac", OutcomeSuccess)); got != 1 {
		t.Fatalf("audiospice_analysis_runs_total{ac,success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.AnalysisRuns.WithLabelValues("ac", OutcomeFailure)); got != 1 {
		t.Fatalf("audiospice_analysis_runs_total{ac,failure} = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "audiospice_analysis_duration_seconds", map[string]string{"kind": "ac"}); count != 2 {
		t.Fatalf("audiospice_analysis_duration_seconds{ac} sample_count = %d, want 2", count)
	}
}

func TestCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.ObserveLookup(false)
	collector.ObserveLookup(true)
	collector.ObserveLookup(true)
	collector.SetCacheEntries(4)
	collector.ObserverFailed()

	if got := testutil.ToFloat64(collector.CacheLookups.WithLabelValues("hit")); got != 2 {
		t.Fatalf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.CacheLookups.WithLabelValues("miss")); got != 1 {
		t.Fatalf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CacheEntries); got != 4 {
		t.Fatalf("cache entries = %v, want 4", got)
	}
	if got := testutil.ToFloat64(collector.ObserverFailures); got != 1 {
		t.Fatalf("observer failures = %v, want 1", got)
	}
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	second, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("second NewEngineCollector: %v", err)
	}

	first.ObserveLookup(true)
	if got := testutil.ToFloat64(second.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("second collector should share counters, got %v", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var collector *EngineCollector
	collector.ObserveRun("dc", true, time.Millisecond)
	collector.ObserveLookup(true)
	collector.SetCacheEntries(1)
	collector.ObserverFailed()
}

func TestMetricsHandlerExposesEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	collector.ObserveRun("noise", true, time.Millisecond)
	collector.ObserveLookup(false)
	collector.SetCacheEntries(7)
	collector.ObserverFailed()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"audiospice_analysis_runs_total",
		"audiospice_analysis_duration_seconds",
		"audiospice_cache_lookups_total",
		"audiospice_cache_entries 7",
		"audiospice_observer_failures_total 1",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output:\n%s", metric, body)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
