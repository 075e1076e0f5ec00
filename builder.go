package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
)

// ScenarioBuilder provides a fluent interface for building a Config.
// It starts from DefaultConfig.
//
//	cfg, err := trafficsim.NewScenario("rush-hour").
//		Adaptive().
//		Road("Main").Lanes(2).ServiceRate(0.8).
//		Timings(25, 4, 30).
//		ArrivalRate(1.1).
//		Build()
type ScenarioBuilder struct {
	cfg Config
}

// NewScenario creates a builder for a named scenario
func NewScenario(name string) *ScenarioBuilder {
	cfg := DefaultConfig()
	cfg.Name = name
	return &ScenarioBuilder{cfg: cfg}
}

// FromConfig continues building from an existing configuration
func FromConfig(cfg Config) *ScenarioBuilder {
	return &ScenarioBuilder{cfg: cfg}
}

// Mode sets the light mode
func (b *ScenarioBuilder) Mode(m Mode) *ScenarioBuilder {
	b.cfg.Mode = m
	return b
}

// Fixed runs the light on its configured durations
func (b *ScenarioBuilder) Fixed() *ScenarioBuilder { return b.Mode(ModeFixed) }

// Adaptive lets the light extend green for long queues
func (b *ScenarioBuilder) Adaptive() *ScenarioBuilder { return b.Mode(ModeAdaptive) }

// Seed sets the random seed
func (b *ScenarioBuilder) Seed(seed uint64) *ScenarioBuilder {
	b.cfg.Seed = seed
	return b
}

// Horizon sets how long the run lasts in virtual seconds
func (b *ScenarioBuilder) Horizon(h float64) *ScenarioBuilder {
	b.cfg.Horizon = h
	return b
}

// InitialQueue sets how many cars wait at time zero
func (b *ScenarioBuilder) InitialQueue(n int) *ScenarioBuilder {
	b.cfg.InitialQueue = n
	return b
}

// Road names the approach
func (b *ScenarioBuilder) Road(name string) *ScenarioBuilder {
	b.cfg.Road.Name = name
	return b
}

// Lanes sets the number of lanes served in parallel
func (b *ScenarioBuilder) Lanes(n int) *ScenarioBuilder {
	b.cfg.Road.Lanes = n
	return b
}

// ServiceRate sets the per-lane departure rate during green
func (b *ScenarioBuilder) ServiceRate(mu float64) *ScenarioBuilder {
	b.cfg.Road.ServiceRate = mu
	return b
}

// AdaptiveThreshold sets the queue length above which green is extended
func (b *ScenarioBuilder) AdaptiveThreshold(n int) *ScenarioBuilder {
	b.cfg.Road.AdaptiveThreshold = n
	return b
}

// PollInterval sets how often an idle server checks the light
func (b *ScenarioBuilder) PollInterval(d float64) *ScenarioBuilder {
	b.cfg.Road.PollInterval = d
	return b
}

// WakeOnChange makes the idle server sleep until an arrival or a green light
func (b *ScenarioBuilder) WakeOnChange() *ScenarioBuilder {
	b.cfg.Road.WakeOnChange = true
	return b
}

// Timings sets green, yellow and red durations
func (b *ScenarioBuilder) Timings(green, yellow, red float64) *ScenarioBuilder {
	b.cfg.Light.Green = green
	b.cfg.Light.Yellow = yellow
	b.cfg.Light.Red = red
	return b
}

// ArrivalRate sets the mean number of arrivals per second
func (b *ScenarioBuilder) ArrivalRate(lambda float64) *ScenarioBuilder {
	b.cfg.Arrivals.Rate = lambda
	return b
}

// MaxVehicles stops arrivals after n vehicles; 0 means no limit
func (b *ScenarioBuilder) MaxVehicles(n int) *ScenarioBuilder {
	b.cfg.Arrivals.MaxVehicles = n
	return b
}

// VehicleMix sets the share of each vehicle type
func (b *ScenarioBuilder) VehicleMix(mix map[core.VehicleType]float64) *ScenarioBuilder {
	b.cfg.Arrivals.Mix = mix
	return b
}

// SnapshotEvery sets the sampling interval
func (b *ScenarioBuilder) SnapshotEvery(d float64) *ScenarioBuilder {
	b.cfg.SnapshotInterval = d
	return b
}

// MaxSnapshots caps the snapshot history
func (b *ScenarioBuilder) MaxSnapshots(n int) *ScenarioBuilder {
	b.cfg.MaxSnapshots = n
	return b
}

// CongestionThreshold sets the queue length that counts as congested
func (b *ScenarioBuilder) CongestionThreshold(n int) *ScenarioBuilder {
	b.cfg.CongestionThreshold = n
	return b
}

// Build validates and returns the configuration
func (b *ScenarioBuilder) Build() (Config, error) {
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}
