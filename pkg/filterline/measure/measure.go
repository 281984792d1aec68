package measure

import (
	"sync"
)

type DefaultMeasure struct {
	mu      sync.Mutex
	Filters map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Filters: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.Filters[name]; ok {
		return mt
	}

	mt := &DefaultMetric{
		mu:        &sync.Mutex{},
		allPhases: make(map[string]*PhaseInfo),
	}
	m.Filters[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Filters[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metric, len(m.Filters))
	for name, mt := range m.Filters {
		out[name] = mt
	}

	return out
}

var _ Measure = (*DefaultMeasure)(nil)
