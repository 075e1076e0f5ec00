package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

// ValidationObserver checks a run against the rules of a signalized approach
// while it happens: lights only take allowed transitions, watched roads only
// start service under a green light, queues are served in arrival order and
// vehicle timestamps never go backwards.
type ValidationObserver struct {
	core.BaseObserver

	expectedPhases     map[core.Phase]bool
	visitedPhases      map[core.Phase]bool
	allowedTransitions map[core.Phase]map[core.Phase]bool
	lightPhase         map[string]core.Phase
	roadLight          map[string]string
	waiting            map[string][]uint64
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a new validation observer with no rules
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		expectedPhases:     make(map[core.Phase]bool),
		visitedPhases:      make(map[core.Phase]bool),
		allowedTransitions: make(map[core.Phase]map[core.Phase]bool),
		lightPhase:         make(map[string]core.Phase),
		roadLight:          make(map[string]string),
		waiting:            make(map[string][]uint64),
		violations:         make([]string, 0),
	}
}

// NewCycleValidationObserver expects every phase and allows only
// RED -> GREEN -> YELLOW -> RED
func NewCycleValidationObserver() *ValidationObserver {
	o := NewValidationObserver()
	for _, p := range []core.Phase{core.PhaseRed, core.PhaseGreen, core.PhaseYellow} {
		o.AddExpectedPhase(p)
		o.AddAllowedTransition(p, p.Next())
	}
	return o
}

// AddExpectedPhase adds a phase that must be visited during the run
func (o *ValidationObserver) AddExpectedPhase(p core.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.expectedPhases[p] = true
}

// AddAllowedTransition adds an allowed transition
func (o *ValidationObserver) AddAllowedTransition(from, to core.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[core.Phase]bool)
	}

	o.allowedTransitions[from][to] = true
}

// WatchRoad requires that road only starts service while light is GREEN
func (o *ValidationObserver) WatchRoad(road, light string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.roadLight[road] = light
}

func (o *ValidationObserver) violate(format string, args ...interface{}) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// OnPhaseChange validates transitions
func (o *ValidationObserver) OnPhaseChange(light string, from, to core.Phase, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases[to] = true
	_, seen := o.lightPhase[light]
	o.lightPhase[light] = to

	// the first change of a light reports its initial phase
	if !seen {
		return
	}

	if allowed, exists := o.allowedTransitions[from]; exists {
		if !allowed[to] {
			o.violate("t=%.2f: invalid transition of %s from %s to %s", at, light, from, to)
		}
	}
}

// OnRunStarted forgets the light phases and queues of a previous run,
// keeping the rules and the violations found so far
func (o *ValidationObserver) OnRunStarted(run core.RunInfo) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.lightPhase = make(map[string]core.Phase)
	o.waiting = make(map[string][]uint64)
}

// OnVehicleArrived records the queue order
func (o *ValidationObserver) OnVehicleArrived(road string, v *core.Vehicle, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if v.ArrivalTime > at {
		o.violate("t=%.2f: vehicle %d on %s arrives in the future (%.2f)", at, v.ID, road, v.ArrivalTime)
	}
	o.waiting[road] = append(o.waiting[road], v.ID)
}

// OnServiceStarted validates the light and the queue order
func (o *ValidationObserver) OnServiceStarted(road string, v *core.Vehicle, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if light, watched := o.roadLight[road]; watched {
		if phase := o.lightPhase[light]; phase != core.PhaseGreen {
			o.violate("t=%.2f: %s started serving vehicle %d while %s is %s", at, road, v.ID, light, phase)
		}
	}

	queue := o.waiting[road]
	for i, id := range queue {
		if id != v.ID {
			continue
		}
		if i != 0 {
			o.violate("t=%.2f: %s served vehicle %d ahead of vehicle %d", at, road, v.ID, queue[0])
		}
		o.waiting[road] = append(queue[:i], queue[i+1:]...)
		break
	}
}

// OnVehicleDeparted validates the vehicle timestamps
func (o *ValidationObserver) OnVehicleDeparted(road string, v *core.Vehicle, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if v.StartServiceTime == nil || v.DepartureTime == nil {
		o.violate("t=%.2f: vehicle %d left %s without service timestamps", at, v.ID, road)
		return
	}
	if v.ArrivalTime > *v.StartServiceTime || *v.StartServiceTime > *v.DepartureTime {
		o.violate("t=%.2f: vehicle %d on %s has unordered timestamps %.2f/%.2f/%.2f",
			at, v.ID, road, v.ArrivalTime, *v.StartServiceTime, *v.DepartureTime)
	}
}

// OnError records errors as violations
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violate("error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedPhases returns phases that were expected but not visited
func (o *ValidationObserver) GetUnvisitedPhases() []core.Phase {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []core.Phase
	for _, p := range []core.Phase{core.PhaseRed, core.PhaseGreen, core.PhaseYellow} {
		if o.expectedPhases[p] && !o.visitedPhases[p] {
			unvisited = append(unvisited, p)
		}
	}
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases = make(map[core.Phase]bool)
	o.lightPhase = make(map[string]core.Phase)
	o.waiting = make(map[string][]uint64)
	o.violations = make([]string, 0)
}
