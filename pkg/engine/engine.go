// Package engine dispatches analysis requests to their strategies, memoizes
// successful results by request fingerprint and notifies observers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/edp1096/audio-spice/internal/logging"
	"github.com/edp1096/audio-spice/internal/observability"
	"github.com/edp1096/audio-spice/pkg/analysis"
	"github.com/edp1096/audio-spice/pkg/response"
)

var ErrNoSource = errors.New("engine: topology source is required")

type cacheEntry struct {
	canonical string
	result    *analysis.Result
}

type kindStats struct {
	successful int
	failed     int
}

// Engine is safe for concurrent use. A single lock serialises cache lookup,
// computation and insertion, so each fingerprint is computed at most once
// until ClearCache.
type Engine struct {
	src       TopologySource
	log       logging.Logger
	collector *observability.EngineCollector
	tracer    trace.Tracer
	opts      analysis.Options

	mu        sync.Mutex
	cache     map[uint64]cacheEntry
	stats     map[analysis.Kind]*kindStats
	runs      int
	totalTime time.Duration

	obsMu     sync.RWMutex
	observers []subscription
	nextObsID uint64
}

func New(src TopologySource, cfg Config) (*Engine, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = analysis.DefaultWorkers()
	}
	if cfg.TracerName == "" {
		cfg.TracerName = defaultTracerName
	}
	if cfg.Model == nil {
		cfg.Model = response.NewModel()
	}

	var collector *observability.EngineCollector
	if cfg.Registerer != nil {
		c, err := observability.NewEngineCollector(cfg.Registerer)
		if err != nil {
			return nil, fmt.Errorf("engine: register metrics: %w", err)
		}
		collector = c
	}

	return &Engine{
		src:       src,
		log:       cfg.Logger.With(logging.String("component", "engine")),
		collector: collector,
		tracer:    otel.Tracer(cfg.TracerName),
		opts:      analysis.Options{Model: cfg.Model, Workers: cfg.Workers},
		cache:     make(map[uint64]cacheEntry),
		stats:     make(map[analysis.Kind]*kindStats),
	}, nil
}

// Run parses an untyped parameter map for kind and dispatches it.
func (e *Engine) Run(ctx context.Context, kind string, params map[string]any) *analysis.Result {
	req, err := analysis.ParseRequest(kind, params)
	if err != nil {
		res := analysis.Failed(analysis.Kind(kind), params, err)
		e.mu.Lock()
		e.record(res)
		e.mu.Unlock()
		e.log.Warn(ctx, "analysis request rejected",
			logging.String("kind", kind),
			logging.Err(err),
		)
		e.notify(ctx, res)
		return res
	}
	return e.RunSimulation(ctx, req)
}

// RunSimulation returns the cached result for an identical earlier request
// or computes a new one. It never returns nil and never panics.
func (e *Engine) RunSimulation(ctx context.Context, req analysis.Request) *analysis.Result {
	var kind analysis.Kind
	if req != nil {
		kind = req.Kind()
	}
	ctx, span := e.tracer.Start(ctx, "analysis."+string(kind),
		trace.WithAttributes(attribute.String("analysis.kind", string(kind))))
	defer span.End()

	res, hit := e.dispatch(ctx, req)

	span.SetAttributes(
		attribute.String("analysis.fingerprint", res.Metadata.Fingerprint),
		attribute.Bool("analysis.cache_hit", hit),
		attribute.Bool("analysis.success", res.Success),
	)
	if !res.Success {
		span.SetStatus(codes.Error, res.ErrorMessage)
	}

	if !hit {
		e.notify(ctx, res)
	}
	return res
}

func (e *Engine) dispatch(ctx context.Context, req analysis.Request) (*analysis.Result, bool) {
	fp, fpErr := analysis.FingerprintOf(req)

	e.mu.Lock()
	defer e.mu.Unlock()

	if fpErr == nil {
		if entry, ok := e.cache[fp.Hash]; ok && entry.canonical == fp.Canonical {
			e.collector.ObserveLookup(true)
			e.log.Debug(ctx, "analysis cache hit",
				logging.String("kind", string(req.Kind())),
				logging.String("fingerprint", fp.String()),
			)
			return entry.result, true
		}
		e.collector.ObserveLookup(false)
		e.log.Debug(ctx, "analysis cache miss",
			logging.String("kind", string(req.Kind())),
			logging.String("fingerprint", fp.String()),
		)
	}

	res := e.compute(ctx, req, fp, fpErr)
	e.record(res)
	e.collector.ObserveRun(string(res.Kind), res.Success, res.Metadata.ExecutionTime)

	if !res.Success {
		e.log.Warn(ctx, "analysis failed",
			logging.String("kind", string(res.Kind)),
			logging.String("error", res.ErrorMessage),
		)
		return res, false
	}

	// a colliding hash keeps the first entry
	if _, taken := e.cache[fp.Hash]; !taken {
		e.cache[fp.Hash] = cacheEntry{canonical: fp.Canonical, result: res}
		e.collector.SetCacheEntries(len(e.cache))
	}
	e.log.Info(ctx, "analysis completed",
		logging.String("kind", string(res.Kind)),
		logging.String("fingerprint", res.Metadata.Fingerprint),
		logging.Float("elapsed_ms", float64(res.Metadata.ExecutionTime)/float64(time.Millisecond)),
	)
	return res, false
}

func (e *Engine) compute(ctx context.Context, req analysis.Request, fp analysis.Fingerprint, fpErr error) *analysis.Result {
	if fpErr != nil {
		// Run reports the malformed request
		return analysis.Run(ctx, req, nil, e.opts)
	}

	topo, err := snapshot(ctx, e.src)
	if err != nil {
		res := analysis.Failed(req.Kind(), analysis.Parameters(req), err)
		res.Metadata.Fingerprint = fp.String()
		return res
	}
	return analysis.Run(ctx, req, topo, e.opts)
}

// record must be called with e.mu held.
func (e *Engine) record(res *analysis.Result) {
	if res.Kind == "" {
		return
	}
	s, ok := e.stats[res.Kind]
	if !ok {
		s = &kindStats{}
		e.stats[res.Kind] = s
	}
	if res.Success {
		s.successful++
	} else {
		s.failed++
	}
	if res.Metadata.ExecutionTime > 0 {
		e.runs++
		e.totalTime += res.Metadata.ExecutionTime
	}
}

// ClearCache drops every cached result. Run statistics are kept.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.cache)
	e.collector.SetCacheEntries(0)
}

// Metrics summarises the engine's cache and run history.
type Metrics struct {
	CacheSize            int                   `json:"cacheSize"`
	Successful           map[analysis.Kind]int `json:"successful"`
	Failed               map[analysis.Kind]int `json:"failed"`
	AverageExecutionTime time.Duration         `json:"averageExecutionTime"`
}

func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := Metrics{
		CacheSize:  len(e.cache),
		Successful: make(map[analysis.Kind]int, len(e.stats)),
		Failed:     make(map[analysis.Kind]int, len(e.stats)),
	}
	for kind, s := range e.stats {
		m.Successful[kind] = s.successful
		m.Failed[kind] = s.failed
	}
	if e.runs > 0 {
		m.AverageExecutionTime = e.totalTime / time.Duration(e.runs)
	}
	return m
}

// MetricsHandler serves the engine's Prometheus metrics. It answers 404
// when the engine was built without a Registerer.
func (e *Engine) MetricsHandler() http.Handler {
	if e.collector == nil {
		return http.NotFoundHandler()
	}
	return e.collector.Handler()
}

// WriteMetrics writes the engine's Prometheus metrics as text. Nothing is
// written when the engine was built without a Registerer.
func (e *Engine) WriteMetrics(w io.Writer) error {
	if e.collector == nil {
		return nil
	}
	return e.collector.WriteText(w)
}
