package core

import "fmt"

// RunInfo identifies one simulation run for observers
type RunInfo struct {
	ID      string
	Mode    string
	Seed    uint64
	Horizon float64
}

// Observer represents an entity that observes a running simulation
type Observer interface {
	// Required methods

	// OnPhaseChange is called when a light enters a new phase. The first
	// call of a run reports the initial RED with from == to.
	OnPhaseChange(light string, from Phase, to Phase, at float64)

	// OnVehicleDeparted is called when a road finishes serving a vehicle
	OnVehicleDeparted(road string, vehicle *Vehicle, at float64)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnVehicleArrived is called when a vehicle joins a road queue
	OnVehicleArrived(road string, vehicle *Vehicle, at float64)

	// OnServiceStarted is called when a road starts serving a vehicle
	OnServiceStarted(road string, vehicle *Vehicle, at float64)

	// OnGreenExtended is called when an adaptive light lengthens its green phase
	OnGreenExtended(light string, queueLength int, extension float64, at float64)

	// OnSnapshot is called for each road sample taken by the metrics collector
	OnSnapshot(road string, queueLength int, passed int, at float64)

	// OnRunStarted is called before the clock starts
	OnRunStarted(run RunInfo)

	// OnRunFinished is called once the horizon is reached
	OnRunFinished(run RunInfo, at float64)

	// OnError is called when an error occurs during processing
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnPhaseChange implements the required Observer method
func (o *BaseObserver) OnPhaseChange(light string, from Phase, to Phase, at float64) {}

// OnVehicleDeparted implements the required Observer method
func (o *BaseObserver) OnVehicleDeparted(road string, vehicle *Vehicle, at float64) {}

// OnVehicleArrived implements the optional ExtendedObserver method
func (o *BaseObserver) OnVehicleArrived(road string, vehicle *Vehicle, at float64) {}

// OnServiceStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnServiceStarted(road string, vehicle *Vehicle, at float64) {}

// OnGreenExtended implements the optional ExtendedObserver method
func (o *BaseObserver) OnGreenExtended(light string, queueLength int, extension float64, at float64) {
}

// OnSnapshot implements the optional ExtendedObserver method
func (o *BaseObserver) OnSnapshot(road string, queueLength int, passed int, at float64) {}

// OnRunStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnRunStarted(run RunInfo) {}

// OnRunFinished implements the optional ExtendedObserver method
func (o *BaseObserver) OnRunFinished(run RunInfo, at float64) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers. A panicking observer is
// reported through OnError and never stops the simulation.
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	if om == nil {
		return 0
	}
	return len(om.observers)
}

func (om *ObserverManager) each(hook string, fn func(Observer)) {
	if om == nil {
		return
	}
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { recover() }()
							extObs.OnError(fmt.Errorf("observer panic in %s: %v", hook, r))
						}()
					}
				}
			}()
			fn(observer)
		}()
	}
}

func (om *ObserverManager) eachExtended(hook string, fn func(ExtendedObserver)) {
	om.each(hook, func(o Observer) {
		if extObs, ok := o.(ExtendedObserver); ok {
			fn(extObs)
		}
	})
}

// NotifyPhaseChange notifies all observers of a phase change
func (om *ObserverManager) NotifyPhaseChange(light string, from, to Phase, at float64) {
	om.each("OnPhaseChange", func(o Observer) { o.OnPhaseChange(light, from, to, at) })
}

// NotifyVehicleDeparted notifies all observers of a completed service
func (om *ObserverManager) NotifyVehicleDeparted(road string, v *Vehicle, at float64) {
	om.each("OnVehicleDeparted", func(o Observer) { o.OnVehicleDeparted(road, v, at) })
}

// NotifyVehicleArrived notifies all observers of a vehicle joining a queue
func (om *ObserverManager) NotifyVehicleArrived(road string, v *Vehicle, at float64) {
	om.eachExtended("OnVehicleArrived", func(o ExtendedObserver) { o.OnVehicleArrived(road, v, at) })
}

// NotifyServiceStarted notifies all observers of a service start
func (om *ObserverManager) NotifyServiceStarted(road string, v *Vehicle, at float64) {
	om.eachExtended("OnServiceStarted", func(o ExtendedObserver) { o.OnServiceStarted(road, v, at) })
}

// NotifyGreenExtended notifies all observers of an adaptive green extension
func (om *ObserverManager) NotifyGreenExtended(light string, queueLength int, extension, at float64) {
	om.eachExtended("OnGreenExtended", func(o ExtendedObserver) { o.OnGreenExtended(light, queueLength, extension, at) })
}

// NotifySnapshot notifies all observers of a road sample
func (om *ObserverManager) NotifySnapshot(road string, queueLength, passed int, at float64) {
	om.eachExtended("OnSnapshot", func(o ExtendedObserver) { o.OnSnapshot(road, queueLength, passed, at) })
}

// NotifyRunStarted notifies all observers that a run is starting
func (om *ObserverManager) NotifyRunStarted(run RunInfo) {
	om.eachExtended("OnRunStarted", func(o ExtendedObserver) { o.OnRunStarted(run) })
}

// NotifyRunFinished notifies all observers that a run reached its horizon
func (om *ObserverManager) NotifyRunFinished(run RunInfo, at float64) {
	om.eachExtended("OnRunFinished", func(o ExtendedObserver) { o.OnRunFinished(run, at) })
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	if om == nil {
		return
	}
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(err)
			}()
		}
	}
}
