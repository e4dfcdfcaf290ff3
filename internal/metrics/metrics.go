// Package metrics exposes render and browser lifecycle counters to
// Prometheus. A *Metrics satisfies html2pdf.Observer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "html2pdf"

// Metrics holds the collectors, registered on one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	pages          prometheus.Histogram
	launches       *prometheus.CounterVec
	launchDuration prometheus.Histogram
	closes         *prometheus.CounterVec
	active         prometheus.Gauge
	rejected       *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWith(reg, reg)
}

// NewWith registers the collectors on reg and serves them from g.
func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: g,
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Render attempts by outcome and failing stage.",
		}, []string{"outcome", "stage"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Wall time of a render, browser acquisition included.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		pages: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_pages",
			Help:      "Page count of generated documents.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		launches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "browser_launches_total",
			Help:      "Browser process launches by result.",
		}, []string{"result"}),
		launchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "browser_launch_duration_seconds",
			Help:      "Time to start a browser process and connect to it.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		closes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "browser_closes_total",
			Help:      "Browser process teardowns by reason.",
		}, []string{"reason"}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "browser_active",
			Help:      "Browser processes currently running.",
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rejected_total",
			Help:      "Requests rejected before rendering, by status code.",
		}, []string{"status"}),
	}
}

// BrowserLaunched records a launch attempt.
func (m *Metrics) BrowserLaunched(d time.Duration, err error) {
	if err != nil {
		m.launches.WithLabelValues("failure").Inc()
		return
	}
	m.launches.WithLabelValues("success").Inc()
	m.launchDuration.Observe(d.Seconds())
	m.active.Inc()
}

// BrowserClosed records a teardown of a launched process.
func (m *Metrics) BrowserClosed(reason string) {
	m.closes.WithLabelValues(reason).Inc()
	m.active.Dec()
}

// RenderCompleted records a finished render. stage is empty on success.
func (m *Metrics) RenderCompleted(stage string, d time.Duration, pages int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.renders.WithLabelValues(outcome, stage).Inc()
	m.renderDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if err == nil && pages > 0 {
		m.pages.Observe(float64(pages))
	}
}

// InputRejected records a request refused before rendering.
func (m *Metrics) InputRejected(status int) {
	m.rejected.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
