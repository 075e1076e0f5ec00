package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type PhaseChangeEvent struct {
	Light string
	From  Phase
	To    Phase
	At    float64
}

type VehicleEvent struct {
	Road    string
	Vehicle *Vehicle
	At      float64
}

type ExtensionEvent struct {
	Light       string
	QueueLength int
	Extension   float64
	At          float64
}

// TestObserver captures every callback for assertions
type TestObserver struct {
	mutex        sync.RWMutex
	PhaseChanges []PhaseChangeEvent
	Arrivals     []VehicleEvent
	Starts       []VehicleEvent
	Departures   []VehicleEvent
	Extensions   []ExtensionEvent
	Errors       []error

	// onStart runs inside OnServiceStarted when set
	onStart func(VehicleEvent)
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnPhaseChange(light string, from, to Phase, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.PhaseChanges = append(o.PhaseChanges, PhaseChangeEvent{Light: light, From: from, To: to, At: at})
}

func (o *TestObserver) OnVehicleDeparted(road string, v *Vehicle, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Departures = append(o.Departures, VehicleEvent{Road: road, Vehicle: v, At: at})
}

func (o *TestObserver) OnVehicleArrived(road string, v *Vehicle, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Arrivals = append(o.Arrivals, VehicleEvent{Road: road, Vehicle: v, At: at})
}

func (o *TestObserver) OnServiceStarted(road string, v *Vehicle, at float64) {
	o.mutex.Lock()
	ev := VehicleEvent{Road: road, Vehicle: v, At: at}
	o.Starts = append(o.Starts, ev)
	hook := o.onStart
	o.mutex.Unlock()

	if hook != nil {
		hook(ev)
	}
}

func (o *TestObserver) OnGreenExtended(light string, queueLength int, extension, at float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Extensions = append(o.Extensions, ExtensionEvent{Light: light, QueueLength: queueLength, Extension: extension, At: at})
}

func (o *TestObserver) OnSnapshot(road string, queueLength, passed int, at float64) {}

func (o *TestObserver) OnRunStarted(run RunInfo) {}

func (o *TestObserver) OnRunFinished(run RunInfo, at float64) {}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// Phases returns the sequence of entered phases
func (o *TestObserver) Phases() []Phase {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	result := make([]Phase, len(o.PhaseChanges))
	for i, pc := range o.PhaseChanges {
		result[i] = pc.To
	}
	return result
}

// stubRoad is a Controlled with a fixed queue length
type stubRoad struct {
	queue     int
	threshold int
	phases    []Phase
}

func (s *stubRoad) Name() string           { return "stub" }
func (s *stubRoad) SetPhase(p Phase)       { s.phases = append(s.phases, p) }
func (s *stubRoad) QueueLength() int       { return s.queue }
func (s *stubRoad) AdaptiveThreshold() int { return s.threshold }

// newTestEnv returns a seeded environment with a TestObserver attached
func newTestEnv(seed uint64) (*Env, *TestObserver) {
	env := NewSeededEnv(seed)
	obs := NewTestObserver()
	env.Observers.AddObserver(obs)
	return env, obs
}

// runUntil runs env to the given horizon and fails the test on error
func runUntil(t *testing.T, env *Env, until float64) {
	t.Helper()
	require.NoError(t, env.Engine.Run(context.Background(), until))
}
