// Package metrics backs the observability hooks with Prometheus collectors.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/graphscope/pkg/observability"
)

// Collector bundles the graphscope metrics. It implements every hook
// interface of pkg/observability.
type Collector struct {
	gatherer prometheus.Gatherer

	IndexBuilds   *prometheus.HistogramVec
	IndexEntries  *prometheus.GaugeVec
	IndexQueries  *prometheus.CounterVec
	Settles       prometheus.Counter
	SettleScale   prometheus.Gauge
	VisibleNodes  prometheus.Gauge
	VisibleLinks  prometheus.Gauge
	LODRadius     prometheus.Gauge
	FocusChanges  *prometheus.CounterVec
	Frames        prometheus.Histogram
	NodesMoved    prometheus.Counter
	LayoutRuns    *prometheus.CounterVec
	LayoutSeconds *prometheus.HistogramVec
	CacheOps      *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPSeconds   *prometheus.HistogramVec
	Sessions      prometheus.Gauge
}

// New registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice against the same registry reuses
// the existing collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	c := &Collector{gatherer: gatherer}
	r := registrar{reg: reg}

	c.IndexBuilds = register(&r, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphscope_index_build_seconds",
		Help:    "Spatial index bulk load time, by index kind.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"kind"}))
	c.IndexEntries = register(&r, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "graphscope_index_entries",
		Help: "Entries loaded by the last index build, by index kind.",
	}, []string{"kind"}))
	c.IndexQueries = register(&r, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "graphscope_index_queries_total",
		Help: "Spatial index queries, by index kind and operation.",
	}, []string{"kind", "op"}))
	c.Settles = register(&r, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphscope_view_settles_total",
		Help: "Viewport settles (view:reset).",
	}))
	c.SettleScale = register(&r, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "graphscope_view_scale",
		Help: "Scale of the last settled viewport.",
	}))
	c.VisibleNodes = register(&r, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "graphscope_visible_nodes",
		Help: "Nodes in the last computed visible set.",
	}))
	c.VisibleLinks = register(&r, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "graphscope_visible_links",
		Help: "Links in the last computed visible set.",
	}))
	c.LODRadius = register(&r, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "graphscope_lod_radius",
		Help: "Screen-space spacing of the last computed visible set.",
	}))
	c.FocusChanges = register(&r, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "graphscope_focus_changes_total",
		Help: "Hit-test focus changes, by focused kind.",
	}, []string{"kind"}))
	c.Frames = register(&r, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphscope_frame_seconds",
		Help:    "Time spent in one frame of the scene loop.",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066},
	}))
	c.NodesMoved = register(&r, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphscope_nodes_moved_total",
		Help: "Node position changes applied by layout steps.",
	}))
	c.LayoutRuns = register(&r, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "graphscope_layout_runs_total",
		Help: "Layout computations, by engine and result.",
	}, []string{"engine", "result"}))
	c.LayoutSeconds = register(&r, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphscope_layout_seconds",
		Help:    "Layout computation time, by engine.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"engine"}))
	c.CacheOps = register(&r, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "graphscope_cache_operations_total",
		Help: "Layout cache operations, by key type and outcome.",
	}, []string{"key_type", "op"}))
	c.HTTPRequests = register(&r, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "graphscope_http_requests_total",
		Help: "Handled API requests, by method, route and status code.",
	}, []string{"method", "route", "code"}))
	c.HTTPSeconds = register(&r, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphscope_http_request_duration_seconds",
		Help:    "API request latency, by method and route.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	}, []string{"method", "route"}))
	c.Sessions = register(&r, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "graphscope_sessions",
		Help: "Open API sessions.",
	}))

	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

// Install makes c the backend of every observability hook.
func (c *Collector) Install() {
	observability.SetIndexHooks(c)
	observability.SetViewHooks(c)
	observability.SetLayoutHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

// Handler exposes the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// SetSessions records the number of open sessions.
func (c *Collector) SetSessions(n int) { c.Sessions.Set(float64(n)) }

func (c *Collector) OnIndexBuild(kind string, entries int, d time.Duration) {
	c.IndexBuilds.WithLabelValues(kind).Observe(d.Seconds())
	c.IndexEntries.WithLabelValues(kind).Set(float64(entries))
}

func (c *Collector) OnIndexQuery(kind, op string, _ int) {
	c.IndexQueries.WithLabelValues(kind, op).Inc()
}

func (c *Collector) OnSettle(scale float64) {
	c.Settles.Inc()
	c.SettleScale.Set(scale)
}

func (c *Collector) OnElements(nodes, links int, radius float64) {
	c.VisibleNodes.Set(float64(nodes))
	c.VisibleLinks.Set(float64(links))
	c.LODRadius.Set(radius)
}

func (c *Collector) OnFocus(kind string) { c.FocusChanges.WithLabelValues(kind).Inc() }

func (c *Collector) OnFrame(d time.Duration, moved int) {
	c.Frames.Observe(d.Seconds())
	c.NodesMoved.Add(float64(moved))
}

func (c *Collector) OnLayoutStart(context.Context, string, int) {}

func (c *Collector) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.LayoutRuns.WithLabelValues(engine, result).Inc()
	c.LayoutSeconds.WithLabelValues(engine).Observe(d.Seconds())
}

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, _ int) {
	c.CacheOps.WithLabelValues(keyType, "set").Inc()
}

func (c *Collector) OnRequest(context.Context, string, string) {}

func (c *Collector) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// registrar keeps the first registration error so New can register every
// collector in a row.
type registrar struct {
	reg prometheus.Registerer
	err error
}

// register adds col to the registry, returning the already registered
// collector of the same type when there is one.
func register[T prometheus.Collector](r *registrar, col T) T {
	if r.err != nil {
		return col
	}
	if err := r.reg.Register(col); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			r.err = err
			return col
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			r.err = fmt.Errorf("collector %T already registered with incompatible type", col)
			return col
		}
		return existing
	}
	return col
}
