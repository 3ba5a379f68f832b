package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "raktsetu/core/metrics"
)

// PromSink records notification events in Prometheus metrics.
type PromSink struct {
	events   *prometheus.CounterVec
	distance *prometheus.HistogramVec
}

// NewPromSink registers dispatch metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_events_total",
		Help: "Total number of notification events",
	}, []string{"urgency", "blood_type", "sent"})
	distance := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "selected_donor_distance_km",
		Help:    "Distance of notified donors to the requesting hospital",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250},
	}, []string{"urgency"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(distance); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			distance = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{events: events, distance: distance}, nil
}

// RecordNotificationResult increments the counter for each event.
func (s *PromSink) RecordNotificationResult(res []coremetrics.NotificationResult) error {
	for _, r := range res {
		if r.Skipped {
			continue
		}
		s.events.WithLabelValues(r.Urgency.String(), r.BloodType.String(), strconv.FormatBool(r.Sent)).Inc()
		s.distance.WithLabelValues(r.Urgency.String()).Observe(r.DistanceKM)
	}
	return nil
}

// StartPromServer exposes /metrics on the given port. It blocks.
func StartPromServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
