package core

import (
	"fmt"
	"math"

	"github.com/anggasct/trafficsim/pkg/engine"
	"github.com/anggasct/trafficsim/pkg/utils"
)

// Enqueuer accepts arriving vehicles
type Enqueuer interface {
	Name() string
	Enqueue(v *Vehicle)
}

// ArrivalConfig configures a Poisson arrival stream
type ArrivalConfig struct {
	// Rate is the mean number of vehicles per time unit
	Rate float64 `yaml:"rate"`
	// MaxVehicles stops the stream after that many vehicles; 0 means no limit
	MaxVehicles int                     `yaml:"max_vehicles"`
	Mix         map[VehicleType]float64 `yaml:"vehicle_mix"`
}

// ArrivalProcess generates vehicles with exponential inter-arrival gaps
type ArrivalProcess struct {
	env    *Env
	cfg    ArrivalConfig
	target Enqueuer
	mix    *VehicleMix
	handle *engine.Handle

	generated int
	due       bool
}

// NewArrivalProcess validates cfg and registers the arrival process
func NewArrivalProcess(env *Env, target Enqueuer, cfg ArrivalConfig) (*ArrivalProcess, error) {
	if target == nil {
		return nil, utils.NewConfigurationError("arrivals", "a target road is required")
	}
	if math.IsNaN(cfg.Rate) || math.IsInf(cfg.Rate, 0) || cfg.Rate <= 0 {
		return nil, utils.NewConfigurationError("arrivals", "arrival rate must be positive").
			WithDetail("rate", cfg.Rate)
	}
	if cfg.MaxVehicles < 0 {
		return nil, utils.NewConfigurationError("arrivals", "max vehicles must not be negative").
			WithDetail("max_vehicles", cfg.MaxVehicles)
	}
	if cfg.Mix == nil {
		cfg.Mix = DefaultVehicleMix()
	}

	mix, err := NewVehicleMix(cfg.Mix, env.Source)
	if err != nil {
		return nil, err
	}

	a := &ArrivalProcess{
		env:    env,
		cfg:    cfg,
		target: target,
		mix:    mix,
	}
	a.handle = env.Engine.Register(fmt.Sprintf("%s/arrivals", target.Name()), engine.ProcessFunc(a.run))
	return a, nil
}

// run delivers the vehicle whose gap just elapsed, then draws the next gap
func (a *ArrivalProcess) run(now float64) engine.Yield {
	if a.due {
		a.due = false
		v := NewVehicle(a.env.IDs, now, a.mix.Sample())
		a.target.Enqueue(v)
		a.generated++
	}

	if a.cfg.MaxVehicles > 0 && a.generated >= a.cfg.MaxVehicles {
		return engine.Exit()
	}

	a.due = true
	return engine.Timeout(a.env.exponential(1 / a.cfg.Rate))
}

// Generated returns how many vehicles have arrived so far
func (a *ArrivalProcess) Generated() int { return a.generated }

// Done reports whether the stream reached MaxVehicles
func (a *ArrivalProcess) Done() bool {
	return a.handle.State() == engine.ProcessExited
}
