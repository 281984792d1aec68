package model

import "time"

// Option defines the interface for pipeline options. Options observe the
// pipeline lifecycle: they are initialised when the pipeline is created, told
// about every filter the first time it is materialized, notified after each
// stage phase a filter runs, and finished when the pipeline is closed.
type Option interface {
	// New initialises the pipeline option.
	New() error
	// PrepareFilter runs the first time a filter is materialized for a target.
	PrepareFilter(target string, info *FilterInfo) error
	// OnPhase runs after a filter's stage phase returns.
	OnPhase(info *FilterInfo, stage StageType, phase Phase, elapsed time.Duration) error
	// Finish runs when the pipeline is closed.
	Finish(total time.Duration) error
}
