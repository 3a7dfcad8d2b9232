// Package metrics exposes Prometheus instrumentation for the itinerary API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// Collector owns a private registry so tests and multiple servers in one
// process never collide on the default one.
type Collector struct {
	reg *prometheus.Registry

	Mutations          *prometheus.CounterVec // action label: create|update|delete
	ValidationRejects  prometheus.Counter
	StaleCompletions   prometheus.Counter
	EditorsOpen        prometheus.Gauge
	Waypoints          prometheus.Gauge
	RenderDuration     prometheus.Histogram
	NotifyPublished    prometheus.Counter
	NotifyPublishErrs  prometheus.Counter
	NotifyConnected    prometheus.Gauge
	NotifyPublishTimes prometheus.Histogram
}

// NewCollector creates and registers every metric.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itinerary_mutations_total",
			Help: "Waypoint mutations applied to the store.",
		}, []string{"action"}),
		ValidationRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_validation_rejections_total",
			Help: "Submits rejected by the save gate.",
		}),
		StaleCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_stale_completions_total",
			Help: "Save or delete completions dropped because their editor was gone.",
		}),
		EditorsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "itinerary_editor_open",
			Help: "1 while an editor is open or saving, 0 otherwise.",
		}),
		Waypoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "itinerary_waypoints",
			Help: "Waypoints on the last rendered board.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "itinerary_render_duration_seconds",
			Help:    "Time to build and mount the board.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		NotifyPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_nats_published_total",
			Help: "Change notifications published to NATS.",
		}),
		NotifyPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_nats_publish_errors_total",
			Help: "Change notifications that failed to publish.",
		}),
		NotifyConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "itinerary_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		NotifyPublishTimes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "itinerary_nats_publish_duration_seconds",
			Help:    "Time to marshal and publish a change notification.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.Mutations, c.ValidationRejects, c.StaleCompletions,
		c.EditorsOpen, c.Waypoints, c.RenderDuration,
		c.NotifyPublished, c.NotifyPublishErrs, c.NotifyConnected, c.NotifyPublishTimes,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// ---- service.Metrics -------------------------------------------------------

func (c *Collector) MutationApplied(action domain.ChangeAction) {
	c.Mutations.WithLabelValues(string(action)).Inc()
}

func (c *Collector) ValidationRejected() { c.ValidationRejects.Inc() }

func (c *Collector) StaleCompletion() { c.StaleCompletions.Inc() }

func (c *Collector) Rendered(waypoints int, took time.Duration) {
	c.Waypoints.Set(float64(waypoints))
	c.RenderDuration.Observe(took.Seconds())
}

func (c *Collector) EditorOpen(open bool) { c.EditorsOpen.Set(boolGauge(open)) }

// ---- publisher.Metrics -----------------------------------------------------

func (c *Collector) PublishedInc() { c.NotifyPublished.Inc() }

func (c *Collector) PublishErrInc() { c.NotifyPublishErrs.Inc() }

func (c *Collector) PublishObserve(d time.Duration) { c.NotifyPublishTimes.Observe(d.Seconds()) }

func (c *Collector) SetConnected(connected bool) { c.NotifyConnected.Set(boolGauge(connected)) }

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
