package core

import (
	"fmt"
	"math"

	"github.com/anggasct/trafficsim/pkg/engine"
	"github.com/anggasct/trafficsim/pkg/utils"
)

const (
	// DefaultAdaptiveThreshold is the queue length above which an adaptive light extends green
	DefaultAdaptiveThreshold = 5
	// DefaultPollInterval is how long an idle server waits before checking again
	DefaultPollInterval = 0.5
	// MinDepartureRate floors the aggregate service rate so service time stays finite
	MinDepartureRate = 1e-6
)

// RoadConfig configures one approach
type RoadConfig struct {
	Name              string  `yaml:"name"`
	Lanes             int     `yaml:"lanes"`
	ServiceRate       float64 `yaml:"service_rate"`
	AdaptiveThreshold int     `yaml:"adaptive_threshold"`
	PollInterval      float64 `yaml:"poll_interval"`
	// WakeOnChange parks an idle server until a vehicle arrives or the light
	// turns green instead of polling.
	WakeOnChange bool `yaml:"wake_on_change"`
}

// Location says where a vehicle currently is on a road
type Location int

const (
	NotOnRoad Location = iota
	InQueue
	InService
	HasPassed
)

// String returns the location name
func (l Location) String() string {
	switch l {
	case InQueue:
		return "queue"
	case InService:
		return "service"
	case HasPassed:
		return "passed"
	default:
		return "none"
	}
}

// Road is one signalized approach: a FIFO queue, a single logical departure
// server and the phase last written by the light that controls it.
type Road struct {
	env    *Env
	cfg    RoadConfig
	handle *engine.Handle

	queue   []*Vehicle
	serving *Vehicle
	passed  []*Vehicle
	phase   Phase
}

// NewRoad creates a road and registers its server process
func NewRoad(env *Env, cfg RoadConfig) (*Road, error) {
	if cfg.Name == "" {
		return nil, utils.NewConfigurationError("road", "name is required")
	}
	if cfg.AdaptiveThreshold < 0 {
		return nil, utils.NewConfigurationError("road", "adaptive threshold must not be negative").
			WithDetail("adaptive_threshold", cfg.AdaptiveThreshold)
	}
	if cfg.AdaptiveThreshold == 0 {
		cfg.AdaptiveThreshold = DefaultAdaptiveThreshold
	}
	if math.IsNaN(cfg.PollInterval) || cfg.PollInterval < 0 {
		return nil, utils.NewConfigurationError("road", "poll interval must not be negative").
			WithDetail("poll_interval", cfg.PollInterval)
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	r := &Road{
		env:    env,
		cfg:    cfg,
		queue:  make([]*Vehicle, 0),
		passed: make([]*Vehicle, 0),
		phase:  PhaseRed,
	}
	r.handle = env.Engine.Register(fmt.Sprintf("%s/server", cfg.Name), engine.ProcessFunc(r.serve))
	return r, nil
}

// Name returns the road name
func (r *Road) Name() string { return r.cfg.Name }

// Config returns the effective configuration
func (r *Road) Config() RoadConfig { return r.cfg }

// AdaptiveThreshold returns the queue length an adaptive light compares against
func (r *Road) AdaptiveThreshold() int { return r.cfg.AdaptiveThreshold }

// DepartureRate is the aggregate service rate: lanes times the per-lane rate,
// floored at MinDepartureRate.
func (r *Road) DepartureRate() float64 {
	if r.cfg.Lanes <= 0 || r.cfg.ServiceRate <= 0 {
		return MinDepartureRate
	}
	return math.Max(MinDepartureRate, float64(r.cfg.Lanes)*r.cfg.ServiceRate)
}

// Phase returns the phase last written by the controlling light
func (r *Road) Phase() Phase { return r.phase }

// SetPhase records the phase shown to this road
func (r *Road) SetPhase(p Phase) {
	r.phase = p
	if p == PhaseGreen {
		r.wake()
	}
}

// Enqueue appends a vehicle at the tail of the queue
func (r *Road) Enqueue(v *Vehicle) {
	r.queue = append(r.queue, v)
	r.env.Observers.NotifyVehicleArrived(r.cfg.Name, v, r.env.Now())
	r.wake()
}

// QueueLength returns the number of vehicles waiting, excluding the one in service
func (r *Road) QueueLength() int { return len(r.queue) }

// Queue returns a copy of the waiting vehicles in service order
func (r *Road) Queue() []*Vehicle {
	result := make([]*Vehicle, len(r.queue))
	copy(result, r.queue)
	return result
}

// InService returns the vehicle being served, if any
func (r *Road) InService() *Vehicle { return r.serving }

// Passed returns a copy of the served vehicles in departure order
func (r *Road) Passed() []*Vehicle {
	result := make([]*Vehicle, len(r.passed))
	copy(result, r.passed)
	return result
}

// PassedCount returns the cumulative number of departures
func (r *Road) PassedCount() int { return len(r.passed) }

// Locate returns where the vehicle with the given ID is
func (r *Road) Locate(id uint64) Location {
	if r.serving != nil && r.serving.ID == id {
		return InService
	}
	for _, v := range r.queue {
		if v.ID == id {
			return InQueue
		}
	}
	for _, v := range r.passed {
		if v.ID == id {
			return HasPassed
		}
	}
	return NotOnRoad
}

func (r *Road) wake() {
	if r.cfg.WakeOnChange && r.handle != nil {
		r.env.Engine.Wake(r.handle)
	}
}

// serve is the departure server. Each resume first completes the service in
// progress, then starts the next one if the phase is green.
func (r *Road) serve(now float64) engine.Yield {
	if v := r.serving; v != nil {
		v.depart(now)
		r.serving = nil
		r.passed = append(r.passed, v)
		r.env.Observers.NotifyVehicleDeparted(r.cfg.Name, v, now)
	}

	if r.phase == PhaseGreen && len(r.queue) > 0 {
		v := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]

		v.startService(now)
		r.serving = v
		r.env.Observers.NotifyServiceStarted(r.cfg.Name, v, now)

		return engine.Timeout(r.env.exponential(1 / r.DepartureRate()))
	}

	if r.cfg.WakeOnChange {
		return engine.Passivate()
	}
	return engine.Timeout(r.cfg.PollInterval)
}
