package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sendLatency      *prometheus.HistogramVec
	donorsNotified   *prometheus.CounterVec
	deliveryRate     *prometheus.GaugeVec
	transportSuccess prometheus.Counter
	transportFailure prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.GaugeVec, prometheus.Counter, prometheus.Counter) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_send_latency_seconds",
			Help:    "Latency of notification sends from handoff to transport result",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"urgency"},
	)
	notified := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donors_notified_total",
			Help: "Number of donors handed to the notification transport",
		},
		[]string{"urgency"},
	)
	rate := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "delivery_rate",
			Help: "Fraction of notification sends that succeeded per dispatch",
		},
		[]string{"urgency"},
	)
	suc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transport_send_success_total",
			Help: "Number of successful transport send operations",
		},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transport_send_failure_total",
			Help: "Number of failed transport send operations",
		},
	)
	return lat, notified, rate, suc, fail
}

func init() {
	sendLatency, donorsNotified, deliveryRate, transportSuccess, transportFailure = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(sendLatency, donorsNotified, deliveryRate, transportSuccess, transportFailure)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	sendLatency, donorsNotified, deliveryRate, transportSuccess, transportFailure = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
