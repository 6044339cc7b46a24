package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "beenmap_sessions_active",
		Help: "Number of mounted map sessions",
	})
	SessionsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beenmap_sessions_expired_total",
		Help: "Total sessions unmounted by the idle sweeper",
	})
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beenmap_events_total",
		Help: "Map events dispatched by type",
	}, []string{"type"})
	IntentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beenmap_intents_total",
		Help: "toggleVisited intents by outcome",
	}, []string{"outcome"})
	TopologyLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "beenmap_topology_load_duration_ms",
		Help:    "Topology fetch and decode duration in milliseconds",
		Buckets: []float64{5, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	TopologyLoadFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beenmap_topology_load_fail_total",
		Help: "Total failed topology loads",
	})
	TopologyCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beenmap_topology_cache_hits_total",
		Help: "Total raw topology cache hits",
	})
	TopologyCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beenmap_topology_cache_misses_total",
		Help: "Total raw topology cache misses",
	})
	RenderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "beenmap_render_duration_ms",
		Help:    "Frame build and encode duration in milliseconds",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
	}, []string{"format"})
)

func init() {
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(SessionsExpiredTotal)
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(IntentsTotal)
	prometheus.MustRegister(TopologyLoadDurationMs)
	prometheus.MustRegister(TopologyLoadFailTotal)
	prometheus.MustRegister(TopologyCacheHitsTotal)
	prometheus.MustRegister(TopologyCacheMissesTotal)
	prometheus.MustRegister(RenderDurationMs)
}

// 文档注释：返回 Prometheus 指标监听器，在主入口挂载到 API 前缀下的 /metrics
func Handler() http.Handler { return promhttp.Handler() }
