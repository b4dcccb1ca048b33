package measure

import (
	"sync"
	"time"
)

type TransportInfo struct {
	Elapsed time.Duration
	total   int64
}

type DefaultMetric struct {
	allTransports map[string]*TransportInfo
	mu            *sync.Mutex
	EndDuration   time.Duration
	elapsed       time.Duration
	total         int64
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) Runs() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
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

func (mt *DefaultMetric) AddTransportDuration(inputComponentName string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.allTransports[inputComponentName] == nil {
		mt.allTransports[inputComponentName] = &TransportInfo{}
	}
	ch := mt.allTransports[inputComponentName]
	ch.Elapsed += elapsed
	ch.total++
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

// AVGTransportDuration returns the average wait per sender. The accumulated values are left untouched.
func (mt *DefaultMetric) AVGTransportDuration() map[string]*TransportInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	avg := make(map[string]*TransportInfo, len(mt.allTransports))
	for name, ch := range mt.allTransports {
		info := &TransportInfo{total: ch.total}
		if ch.total > 0 {
			info.Elapsed = round(time.Duration(float64(ch.Elapsed) / float64(ch.total)))
		}
		avg[name] = info
	}

	return avg
}

func (mt *DefaultMetric) AllTransports() map[string]*TransportInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]*TransportInfo, len(mt.allTransports))
	for name, ch := range mt.allTransports {
		out[name] = &TransportInfo{Elapsed: ch.Elapsed, total: ch.total}
	}

	return out
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Minute:
		d = d.Round(time.Second)
	case d > time.Second:
		d = d.Round(time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
