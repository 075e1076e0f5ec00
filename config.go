package trafficsim

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/metrics"
	"github.com/anggasct/trafficsim/pkg/utils"
)

// Mode selects how the light decides its green time
type Mode string

const (
	// ModeFixed runs the configured durations unchanged
	ModeFixed Mode = "fixed"
	// ModeAdaptive extends green by the queue excess over the road threshold
	ModeAdaptive Mode = "adaptive"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeFixed || m == ModeAdaptive
}

// Config describes one simulation run. Mode decides whether the light is
// adaptive; Light.Adaptive is ignored.
type Config struct {
	Name                string  `yaml:"name"`
	Mode                Mode    `yaml:"mode"`
	Seed                uint64  `yaml:"seed"`
	Horizon             float64 `yaml:"horizon"`
	InitialQueue        int     `yaml:"initial_queue"`
	SnapshotInterval    float64 `yaml:"snapshot_interval"`
	MaxSnapshots        int     `yaml:"max_snapshots"`
	CongestionThreshold int     `yaml:"congestion_threshold"`

	Road     core.RoadConfig    `yaml:"road"`
	Light    core.LightConfig   `yaml:"light"`
	Arrivals core.ArrivalConfig `yaml:"arrivals"`
}

// DefaultConfig returns a single-lane approach with a 20/3/20 light, 100
// vehicles arriving at 0.5/s, a 1.2/s service rate and 10 vehicles already
// waiting, observed for 600 seconds.
func DefaultConfig() Config {
	return Config{
		Name:                "default",
		Mode:                ModeFixed,
		Seed:                42,
		Horizon:             600,
		InitialQueue:        10,
		SnapshotInterval:    metrics.DefaultSnapshotInterval,
		CongestionThreshold: metrics.DefaultCongestionThreshold,
		Road: core.RoadConfig{
			Name:              "MainRoad",
			Lanes:             1,
			ServiceRate:       1.2,
			AdaptiveThreshold: core.DefaultAdaptiveThreshold,
			PollInterval:      core.DefaultPollInterval,
		},
		Light: core.LightConfig{
			Green:  20,
			Yellow: 3,
			Red:    20,
		},
		Arrivals: core.ArrivalConfig{
			Rate:        0.5,
			MaxVehicles: 100,
		},
	}
}

// LoadConfig reads a YAML scenario file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, utils.NewConfigurationError("config", "cannot read scenario file").
			WithDetail("path", path).
			WithCause(err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML scenario on top of DefaultConfig and validates it.
// Red defaults to the scenario's green when the file leaves it out.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	// an omitted red follows the scenario's green
	cfg.Light.Red = 0
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, utils.NewConfigurationError("config", "malformed scenario").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Timings returns the configured light durations, red defaulting to green
func (c Config) Timings() core.Timings {
	red := c.Light.Red
	if red == 0 {
		red = c.Light.Green
	}
	return core.Timings{Green: c.Light.Green, Red: red, Yellow: c.Light.Yellow}
}

// Validate reports every problem in c at once
func (c Config) Validate() error {
	ec := utils.NewErrorCollector()
	invalid := func(component, field string, value interface{}, message string) {
		ec.Add(utils.NewConfigurationError(component, message).WithDetail(field, value))
	}

	if !c.Mode.Valid() {
		invalid("config", "mode", c.Mode, fmt.Sprintf("mode must be %q or %q", ModeFixed, ModeAdaptive))
	}
	if !positive(c.Horizon) {
		invalid("config", "horizon", c.Horizon, "horizon must be positive")
	}
	if c.InitialQueue < 0 {
		invalid("config", "initial_queue", c.InitialQueue, "initial queue must not be negative")
	}
	if !nonNegative(c.SnapshotInterval) {
		invalid("metrics", "snapshot_interval", c.SnapshotInterval, "snapshot interval must not be negative")
	}
	if c.MaxSnapshots < 0 {
		invalid("metrics", "max_snapshots", c.MaxSnapshots, "max snapshots must not be negative")
	}

	if c.Road.Name == "" {
		ec.Add(utils.NewConfigurationError("road", "name is required"))
	}
	if c.Road.AdaptiveThreshold < 0 {
		invalid("road", "adaptive_threshold", c.Road.AdaptiveThreshold, "adaptive threshold must not be negative")
	}
	if !nonNegative(c.Road.PollInterval) {
		invalid("road", "poll_interval", c.Road.PollInterval, "poll interval must not be negative")
	}

	durations := []struct {
		name  string
		value float64
	}{{"green", c.Light.Green}, {"yellow", c.Light.Yellow}, {"red", c.Light.Red}}
	for _, d := range durations {
		if !nonNegative(d.value) {
			invalid("traffic_light", d.name, d.value, fmt.Sprintf("%s duration must be a non-negative number", d.name))
		}
	}
	if t := c.Timings(); !positive(t.CycleLength()) {
		ec.Add(utils.NewConfigurationError("traffic_light", "cycle length must be positive"))
	}

	if !positive(c.Arrivals.Rate) {
		invalid("arrivals", "rate", c.Arrivals.Rate, "arrival rate must be positive")
	}
	if c.Arrivals.MaxVehicles < 0 {
		invalid("arrivals", "max_vehicles", c.Arrivals.MaxVehicles, "max vehicles must not be negative")
	}
	if c.Arrivals.Mix != nil {
		ec.Add(core.ValidateMix(c.Arrivals.Mix))
	}

	return ec.Err()
}

func positive(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x > 0
}

func nonNegative(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}
