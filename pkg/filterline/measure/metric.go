package measure

import (
	"sync"
	"time"
)

// PhaseInfo accumulates the time spent in one stage phase of a filter.
type PhaseInfo struct {
	Elapsed time.Duration
	total   int64
}

type DefaultMetric struct {
	allPhases   map[string]*PhaseInfo
	mu          *sync.Mutex
	EndDuration time.Duration
	elapsed     time.Duration
	total       int64
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.EndDuration = endDuration
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.EndDuration
}

func (mt *DefaultMetric) AddPhaseDuration(phase string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.allPhases[phase] == nil {
		mt.allPhases[phase] = &PhaseInfo{}
	}
	info := mt.allPhases[phase]
	info.Elapsed += elapsed
	info.total++
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

func (mt *DefaultMetric) AVGPhaseDuration() map[string]*PhaseInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]*PhaseInfo, len(mt.allPhases))
	for phase, info := range mt.allPhases {
		if info.total == 0 {
			out[phase] = &PhaseInfo{}
			continue
		}
		out[phase] = &PhaseInfo{
			Elapsed: round(time.Duration(float64(info.Elapsed) / float64(info.total))),
			total:   info.total,
		}
	}

	return out
}

func (mt *DefaultMetric) AllPhases() map[string]*PhaseInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.allPhases
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Hour:
		d = d.Round(time.Hour)
	}

	return d
}
