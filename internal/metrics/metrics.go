// Package metrics exposes Prometheus collectors for the preview service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farlinker"

// Lookup results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	castLookups   *prometheus.CounterVec
	upstreamTime  *prometheus.HistogramVec
	plans         *prometheus.CounterVec
	renderTime    *prometheus.HistogramVec
	imageCache    *prometheus.CounterVec
	imageFailures prometheus.Counter
	degraded      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_requests_total",
			Help:      "Rewritten link requests by visitor kind and platform.",
		}, []string{"visitor", "platform"}),
		castLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cast_lookups_total",
			Help:      "Cast lookups by cache result.",
		}, []string{"result"}),
		upstreamTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Content API request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_plans_total",
			Help:      "Preview plans by image kind.",
		}, []string{"image_kind"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Composite image render duration.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"composite"}),
		imageCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_total",
			Help:      "Rendered image cache lookups by result.",
		}, []string{"result"}),
		imageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_render_failures_total",
			Help:      "Composite renders that returned an error.",
		}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_renders_total",
			Help:      "Composites drawn with placeholder images and left uncached.",
		}, []string{"composite"}),
	}

	reg.MustRegister(
		m.requests,
		m.castLookups,
		m.upstreamTime,
		m.plans,
		m.renderTime,
		m.imageCache,
		m.imageFailures,
		m.degraded,
	)
	return m
}

// LinkRequest counts a request to a rewritten link.
func (m *Metrics) LinkRequest(bot bool, platform string) {
	if m == nil {
		return
	}
	visitor := "human"
	if bot {
		visitor = "bot"
	}
	m.requests.WithLabelValues(visitor, platform).Inc()
}

// CastLookup counts a cast cache lookup.
func (m *Metrics) CastLookup(result string) {
	if m == nil {
		return
	}
	m.castLookups.WithLabelValues(result).Inc()
}

// UpstreamRequest observes a content API call.
func (m *Metrics) UpstreamRequest(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTime.WithLabelValues(status).Observe(d.Seconds())
}

// Plan counts a selected preview plan.
func (m *Metrics) Plan(imageKind string) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(imageKind).Inc()
}

// Render observes a composite render.
func (m *Metrics) Render(composite string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.renderTime.WithLabelValues(composite).Observe(d.Seconds())
	if err != nil {
		m.imageFailures.Inc()
	}
}

// ImageCache counts a rendered image cache lookup.
func (m *Metrics) ImageCache(result string) {
	if m == nil {
		return
	}
	m.imageCache.WithLabelValues(result).Inc()
}

// Degraded counts a composite drawn with placeholder images.
func (m *Metrics) Degraded(composite string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(composite).Inc()
}
