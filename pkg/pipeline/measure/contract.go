package measure

import "time"

// Measure keeps one metric per component.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the durations of one component across pipeline runs.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddTransportDuration(inputComponentName string, elapsed time.Duration)
	AVGDuration() time.Duration
	AVGTransportDuration() map[string]*TransportInfo
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	AllTransports() map[string]*TransportInfo
	Runs() int64
}
