package commands

import (
	"sort"
	"sync"
	"time"
)

// Meter aggregates per-command usage: calls, failures, cumulative handler
// latency, and when the command last ran.
type Meter struct {
	mu     sync.RWMutex
	meters map[string]*CommandMeter
}

// CommandMeter tracks one command's usage.
type CommandMeter struct {
	Name         string
	Calls        int64
	Errors       int64
	TotalLatency time.Duration
	LastInvoked  time.Time
}

func NewMeter() *Meter {
	return &Meter{
		meters: make(map[string]*CommandMeter),
	}
}

// Record adds one invocation to the meter.
func (m *Meter) Record(name string, latency time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cm, ok := m.meters[name]
	if !ok {
		cm = &CommandMeter{Name: name}
		m.meters[name] = cm
	}

	cm.Calls++
	if err != nil {
		cm.Errors++
	}
	cm.TotalLatency += latency
	cm.LastInvoked = time.Now()
}

// Get returns a copy of one command's meter.
func (m *Meter) Get(name string) (CommandMeter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cm, ok := m.meters[name]
	if !ok {
		return CommandMeter{}, false
	}
	return *cm, true
}

// Snapshot returns copies of all meters sorted by command name.
func (m *Meter) Snapshot() []CommandMeter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CommandMeter, 0, len(m.meters))
	for _, cm := range m.meters {
		out = append(out, *cm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
