package measure

import (
	"sync"
)

type DefaultMeasure struct {
	mu         sync.Mutex
	Components map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Components: make(map[string]Metric),
	}
}

// AddMetric registers a metric for the component. An existing metric is kept.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.Components[name]; ok {
		return mt
	}
	mt := &DefaultMetric{
		mu:            &sync.Mutex{},
		allTransports: make(map[string]*TransportInfo),
	}
	m.Components[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Components[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metric, len(m.Components))
	for name, mt := range m.Components {
		out[name] = mt
	}

	return out
}

var _ Measure = (*DefaultMeasure)(nil)
