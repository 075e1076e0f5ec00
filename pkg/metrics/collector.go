// Package metrics samples road state over virtual time and summarizes a run
package metrics

import (
	"math"
	"sync"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/utils"
)

// DefaultCongestionThreshold is the queue length above which a sample counts as congested
const DefaultCongestionThreshold = 10

// Observed is the read-only view of a road the collector samples
type Observed interface {
	Name() string
	QueueLength() int
	PassedCount() int
	Passed() []*core.Vehicle
}

// Snapshot is one sample of one road
type Snapshot struct {
	Time        float64 `json:"time" yaml:"time"`
	Road        string  `json:"road" yaml:"road"`
	QueueLength int     `json:"queue_length" yaml:"queue_length"`
	PassedCount int     `json:"passed_count" yaml:"passed_count"`
}

// RoadStats summarizes one road at the end of a run
type RoadStats struct {
	Road        string `json:"road" yaml:"road"`
	TotalPassed int    `json:"total_passed" yaml:"total_passed"`
	// AvgWaitTime is NaN when no vehicle has been served
	AvgWaitTime float64 `json:"avg_wait_time" yaml:"avg_wait_time"`
	// AvgServiceTime is NaN when no vehicle has departed
	AvgServiceTime float64 `json:"avg_service_time" yaml:"avg_service_time"`
	// AvgQueueLength is 0 when the road was never sampled
	AvgQueueLength float64 `json:"avg_queue_length" yaml:"avg_queue_length"`
	MaxQueueLength int     `json:"max_queue_length" yaml:"max_queue_length"`
	Samples        int     `json:"samples" yaml:"samples"`
}

// Collector records snapshots of a fixed set of roads
type Collector struct {
	roads        []Observed
	snapshots    []Snapshot
	maxSnapshots int
	observers    *core.ObserverManager
	mutex        sync.RWMutex
}

// NewCollector creates a collector over roads, in reporting order
func NewCollector(roads ...Observed) *Collector {
	return &Collector{
		roads:     roads,
		snapshots: make([]Snapshot, 0),
	}
}

// SetObservers routes every snapshot to the given observers
func (c *Collector) SetObservers(om *core.ObserverManager) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.observers = om
}

// SetMaxSnapshots caps the history at n sampling rounds, one snapshot per
// road each; the oldest rounds are dropped first. Zero or less keeps every
// sample.
func (c *Collector) SetMaxSnapshots(n int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.maxSnapshots = n
	c.trim()
}

// Roads returns the names of the sampled roads
func (c *Collector) Roads() []string {
	return lo.Map(c.roads, func(r Observed, _ int) string { return r.Name() })
}

// TakeSnapshot records one sample per road at time now
func (c *Collector) TakeSnapshot(now float64) {
	c.mutex.Lock()
	taken := make([]Snapshot, 0, len(c.roads))
	for _, r := range c.roads {
		taken = append(taken, Snapshot{
			Time:        now,
			Road:        r.Name(),
			QueueLength: r.QueueLength(),
			PassedCount: r.PassedCount(),
		})
	}
	c.snapshots = append(c.snapshots, taken...)
	c.trim()
	om := c.observers
	c.mutex.Unlock()

	for _, s := range taken {
		om.NotifySnapshot(s.Road, s.QueueLength, s.PassedCount, s.Time)
	}
}

func (c *Collector) trim() {
	limit := c.maxSnapshots * len(c.roads)
	if limit > 0 && len(c.snapshots) > limit {
		c.snapshots = append([]Snapshot(nil), c.snapshots[len(c.snapshots)-limit:]...)
	}
}

// Snapshots returns a copy of the history in sampling order
func (c *Collector) Snapshots() []Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]Snapshot, len(c.snapshots))
	copy(result, c.snapshots)
	return result
}

// SnapshotsFor returns the samples of one road in sampling order
func (c *Collector) SnapshotsFor(road string) []Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return lo.Filter(c.snapshots, func(s Snapshot, _ int) bool { return s.Road == road })
}

// FinalStats summarizes every road, in the order given to NewCollector
func (c *Collector) FinalStats() []RoadStats {
	c.mutex.RLock()
	byRoad := lo.GroupBy(c.snapshots, func(s Snapshot) string { return s.Road })
	c.mutex.RUnlock()

	result := make([]RoadStats, 0, len(c.roads))
	for _, r := range c.roads {
		passed := r.Passed()
		samples := lo.Map(byRoad[r.Name()], func(s Snapshot, _ int) int { return s.QueueLength })

		stats := RoadStats{
			Road:           r.Name(),
			TotalPassed:    len(passed),
			AvgWaitTime:    mean(lo.FilterMap(passed, waitTime)),
			AvgServiceTime: mean(lo.FilterMap(passed, serviceTime)),
			MaxQueueLength: lo.Max(samples),
			Samples:        len(samples),
		}
		if len(samples) > 0 {
			stats.AvgQueueLength = stat.Mean(lo.Map(samples, toFloat), nil)
		}
		result = append(result, stats)
	}
	return result
}

// CongestionProbability returns, per sampled road, the fraction of samples
// whose queue length is strictly greater than threshold. Roads without
// samples are absent.
func (c *Collector) CongestionProbability(threshold int) map[string]float64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]float64)
	for road, samples := range lo.GroupBy(c.snapshots, func(s Snapshot) string { return s.Road }) {
		congested := lo.CountBy(samples, func(s Snapshot) bool { return s.QueueLength > threshold })
		result[road] = float64(congested) / float64(len(samples))
	}
	return result
}

// AverageWaitTime returns the mean wait of the vehicles served on road, or
// an error matching utils.ErrUndefinedStatistic when none has been served.
func (c *Collector) AverageWaitTime(road string) (float64, error) {
	r, ok := lo.Find(c.roads, func(r Observed) bool { return r.Name() == road })
	if !ok {
		return math.NaN(), utils.NewConfigurationError("metrics", "unknown road").WithDetail("road", road)
	}

	waits := lo.FilterMap(r.Passed(), waitTime)
	if len(waits) == 0 {
		return math.NaN(), utils.NewUndefinedStatisticError("average wait time", road)
	}
	return stat.Mean(waits, nil), nil
}

func waitTime(v *core.Vehicle, _ int) (float64, bool) { return v.WaitTime() }

func serviceTime(v *core.Vehicle, _ int) (float64, bool) { return v.ServiceTime() }

func toFloat(n int, _ int) float64 { return float64(n) }

// mean is NaN for an empty sample
func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}
