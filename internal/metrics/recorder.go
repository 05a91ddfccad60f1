// Package metrics exposes session counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campusmap"

// Recorder implements display.Metrics and store.LoadObserver.
type Recorder struct {
	registry *prometheus.Registry

	markersCreated prometheus.Counter
	markersRemoved prometheus.Counter
	filters        prometheus.Counter
	visible        prometheus.Gauge
	activations    *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	loadedTotal    prometheus.Gauge
	loadFailures   prometheus.Counter
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		markersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "markers_created_total",
			Help: "Markers added to the map surface.",
		}),
		markersRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "markers_removed_total",
			Help: "Markers removed from the map surface.",
		}),
		filters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "filter_applications_total",
			Help: "Filter values applied to the display.",
		}),
		visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "visible_buildings",
			Help: "Buildings matching the current filter.",
		}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "marker_activations_total",
			Help: "Marker activations by outcome.",
		}, []string{"outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "load_duration_seconds",
			Help:    "Time taken by the initial building load.",
			Buckets: prometheus.DefBuckets,
		}),
		loadedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "buildings_loaded",
			Help: "Buildings returned by the initial load.",
		}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "load_failures_total",
			Help: "Failed initial loads.",
		}),
	}
	r.registry.MustRegister(
		r.markersCreated, r.markersRemoved, r.filters, r.visible,
		r.activations, r.loadDuration, r.loadedTotal, r.loadFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) MarkersCreated(n int) { r.markersCreated.Add(float64(n)) }
func (r *Recorder) MarkersRemoved(n int) { r.markersRemoved.Add(float64(n)) }

func (r *Recorder) FilterApplied(visible int) {
	r.filters.Inc()
	r.visible.Set(float64(visible))
}

func (r *Recorder) MarkerActivated(found bool) {
	outcome := "shown"
	if !found {
		outcome = "ignored"
	}
	r.activations.WithLabelValues(outcome).Inc()
}

func (r *Recorder) LoadFinished(d time.Duration, count int, err error) {
	r.loadDuration.Observe(d.Seconds())
	if err != nil {
		r.loadFailures.Inc()
		return
	}
	r.loadedTotal.Set(float64(count))
}

// Registry exposes the registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
