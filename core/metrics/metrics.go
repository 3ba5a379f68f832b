package metrics

import (
	"time"

	"raktsetu/core/model"
)

// NotificationResult represents a per-donor dispatch event to be recorded.
type NotificationResult struct {
	RequestID  string
	DonorID    string
	BloodType  model.BloodType
	Urgency    model.Urgency
	DistanceKM float64
	Sent       bool
	Skipped    bool // donor opted out of notifications
	Latency    time.Duration
	Time       time.Time
}

// Sink records dispatch outcomes for observability purposes.
type Sink interface {
	RecordNotificationResult(results []NotificationResult) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordNotificationResult([]NotificationResult) error { return nil }

// MultiSink fans records out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordNotificationResult(res []NotificationResult) error {
	var first error
	for _, s := range m.sinks {
		if err := s.RecordNotificationResult(res); err != nil && first == nil {
			first = err
		}
	}
	return first
}
