package observability

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Outcome labels for audiospice_analysis_runs_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// EngineCollector bundles Prometheus metrics for the analysis engine.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	AnalysisRuns      *prometheus.CounterVec
	AnalysisDurations *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
	CacheEntries      prometheus.Gauge
	ObserverFailures  prometheus.Counter
}

// NewEngineCollector registers engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Registering twice against the same registry reuses the existing metrics.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audiospice_analysis_runs_total",
		Help: "Analyses computed by the engine, labeled by kind and outcome. Cache hits are not counted.",
	}, []string{"kind", "outcome"}), "audiospice_analysis_runs_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audiospice_analysis_duration_seconds",
		Help:    "Time spent computing an analysis, in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"kind"}), "audiospice_analysis_duration_seconds")
	if err != nil {
		return nil, err
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audiospice_cache_lookups_total",
		Help: "Result cache lookups, labeled hit or miss.",
	}, []string{"result"}), "audiospice_cache_lookups_total")
	if err != nil {
		return nil, err
	}

	entries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audiospice_cache_entries",
		Help: "Current number of cached analysis results.",
	}), "audiospice_cache_entries")
	if err != nil {
		return nil, err
	}

	observerFailures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audiospice_observer_failures_total",
		Help: "Observer callbacks that returned an error or panicked.",
	}), "audiospice_observer_failures_total")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:          gatherer,
		AnalysisRuns:      runs,
		AnalysisDurations: durations,
		CacheLookups:      lookups,
		CacheEntries:      entries,
		ObserverFailures:  observerFailures,
	}, nil
}

// ObserveRun records one computed analysis.
func (c *EngineCollector) ObserveRun(kind string, success bool, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	c.AnalysisRuns.WithLabelValues(kind, outcome).Inc()
	c.AnalysisDurations.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (c *EngineCollector) ObserveLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

func (c *EngineCollector) SetCacheEntries(n int) {
	if c == nil {
		return
	}
	c.CacheEntries.Set(float64(n))
}

func (c *EngineCollector) ObserverFailed() {
	if c == nil {
		return
	}
	c.ObserverFailures.Inc()
}

func (c *EngineCollector) gathererOrDefault() prometheus.Gatherer {
	if c == nil || c.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gathererOrDefault(), promhttp.HandlerOpts{})
}

// WriteText writes the audiospice_* families in the Prometheus text format.
func (c *EngineCollector) WriteText(w io.Writer) error {
	families, err := c.gathererOrDefault().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "audiospice_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
