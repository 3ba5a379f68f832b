package metrics

import (
	coremetrics "raktsetu/core/metrics"
)

// NewFromConfig builds the sink described by cfg. Multiple enabled backends
// are combined into a MultiSink; none yields a NopSink.
func NewFromConfig(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		s, err := NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return coremetrics.NewMultiSink(sinks...), nil
	}
}
