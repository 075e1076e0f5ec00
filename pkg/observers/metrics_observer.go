package observers

import (
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

type phaseEntry struct {
	phase core.Phase
	at    float64
}

// MetricsObserver collects counters about a simulation run. Time is virtual
// time as reported by the callbacks.
type MetricsObserver struct {
	core.BaseObserver

	phaseVisits    map[string]int
	phaseTimeSpent map[string]float64
	arrivals       map[string]int
	departures     map[string]int
	extensions     int
	extensionTime  float64
	errorCount     int
	lastPhaseEntry map[string]phaseEntry
	mutex          sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		phaseVisits:    make(map[string]int),
		phaseTimeSpent: make(map[string]float64),
		arrivals:       make(map[string]int),
		departures:     make(map[string]int),
		lastPhaseEntry: make(map[string]phaseEntry),
	}
}

// OnPhaseChange records phase visits and closes the previous phase of the light
func (o *MetricsObserver) OnPhaseChange(light string, from, to core.Phase, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.closePhase(light, at)
	o.phaseVisits[to.String()]++
	o.lastPhaseEntry[light] = phaseEntry{phase: to, at: at}
}

func (o *MetricsObserver) closePhase(light string, at float64) {
	if entry, ok := o.lastPhaseEntry[light]; ok {
		o.phaseTimeSpent[entry.phase.String()] += at - entry.at
		delete(o.lastPhaseEntry, light)
	}
}

// OnGreenExtended records adaptive extensions
func (o *MetricsObserver) OnGreenExtended(light string, queueLength int, extension, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.extensions++
	o.extensionTime += extension
}

// OnVehicleArrived counts arrivals per road
func (o *MetricsObserver) OnVehicleArrived(road string, v *core.Vehicle, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.arrivals[road]++
}

// OnVehicleDeparted counts departures per road
func (o *MetricsObserver) OnVehicleDeparted(road string, v *core.Vehicle, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.departures[road]++
}

// OnRunFinished closes every open phase at the horizon
func (o *MetricsObserver) OnRunFinished(run core.RunInfo, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	for light := range o.lastPhaseEntry {
		o.closePhase(light, at)
	}
}

// OnError records error metrics
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.errorCount++
}

// GetPhaseVisitCounts returns the number of times each phase was entered
func (o *MetricsObserver) GetPhaseVisitCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int)
	for phase, count := range o.phaseVisits {
		result[phase] = count
	}
	return result
}

// GetPhaseTimeSpent returns the virtual time spent in each completed phase
func (o *MetricsObserver) GetPhaseTimeSpent() map[string]float64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]float64)
	for phase, spent := range o.phaseTimeSpent {
		result[phase] = spent
	}
	return result
}

// GetArrivalCounts returns the number of arrivals per road
func (o *MetricsObserver) GetArrivalCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int)
	for road, count := range o.arrivals {
		result[road] = count
	}
	return result
}

// GetDepartureCounts returns the number of departures per road
func (o *MetricsObserver) GetDepartureCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int)
	for road, count := range o.departures {
		result[road] = count
	}
	return result
}

// GetExtensions returns how many greens were extended and the total time added
func (o *MetricsObserver) GetExtensions() (int, float64) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.extensions, o.extensionTime
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.errorCount
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.phaseVisits = make(map[string]int)
	o.phaseTimeSpent = make(map[string]float64)
	o.arrivals = make(map[string]int)
	o.departures = make(map[string]int)
	o.extensions = 0
	o.extensionTime = 0
	o.errorCount = 0
	o.lastPhaseEntry = make(map[string]phaseEntry)
}
