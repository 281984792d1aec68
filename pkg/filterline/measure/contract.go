package measure

import "time"

// Measure aggregates timing metrics for every filter of a pipeline.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric collects the durations of one filter across requests, broken down
// by stage phase.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddPhaseDuration(phase string, elapsed time.Duration)
	AVGDuration() time.Duration
	AVGPhaseDuration() map[string]*PhaseInfo
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	AllPhases() map[string]*PhaseInfo
}
