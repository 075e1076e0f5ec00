package metrics

import (
	"math"

	"github.com/anggasct/trafficsim/pkg/engine"
	"github.com/anggasct/trafficsim/pkg/utils"
)

// DefaultSnapshotInterval is the virtual time between two samples
const DefaultSnapshotInterval = 5.0

// Sampler is the process that snapshots a collector at a fixed interval,
// starting at the time it is registered.
type Sampler struct {
	collector *Collector
	interval  float64
	handle    *engine.Handle
	taken     int
}

// NewSampler registers a sampler for c on eng. A zero interval uses
// DefaultSnapshotInterval.
func NewSampler(eng *engine.Engine, c *Collector, interval float64) (*Sampler, error) {
	if c == nil {
		return nil, utils.NewConfigurationError("sampler", "a collector is required")
	}
	if math.IsNaN(interval) || math.IsInf(interval, 0) || interval < 0 {
		return nil, utils.NewConfigurationError("sampler", "snapshot interval must be positive").
			WithDetail("interval", interval)
	}
	if interval == 0 {
		interval = DefaultSnapshotInterval
	}

	s := &Sampler{collector: c, interval: interval}
	s.handle = eng.Register("metrics/sampler", s)
	return s, nil
}

// Resume implements engine.Process
func (s *Sampler) Resume(now float64) engine.Yield {
	s.collector.TakeSnapshot(now)
	s.taken++
	return engine.Timeout(s.interval)
}

// Interval returns the sampling interval
func (s *Sampler) Interval() float64 { return s.interval }

// Taken returns how many sampling rounds have run
func (s *Sampler) Taken() int { return s.taken }
