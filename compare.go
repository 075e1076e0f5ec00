package trafficsim

import (
	"context"

	"github.com/anggasct/trafficsim/pkg/core"
)

// Comparison holds a fixed run and an adaptive run of the same scenario
type Comparison struct {
	Fixed    *Result `yaml:"fixed"`
	Adaptive *Result `yaml:"adaptive"`

	// AdaptiveTimings were derived from the initial queue and the rates
	AdaptiveTimings core.Timings `yaml:"adaptive_timings"`
}

// AdaptiveConfig derives the adaptive counterpart of cfg: the light
// durations come from ComputeAdaptiveTimings over the initial queue, the
// arrival rate and the per-lane service rate.
func AdaptiveConfig(cfg Config) Config {
	t := core.ComputeAdaptiveTimings(cfg.InitialQueue, cfg.Arrivals.Rate, cfg.Road.ServiceRate, core.DefaultBaseTimings)

	adaptive := cfg
	adaptive.Mode = ModeAdaptive
	adaptive.Light.Green = t.Green
	adaptive.Light.Yellow = t.Yellow
	adaptive.Light.Red = t.Red
	return adaptive
}

// Compare runs cfg with its configured fixed durations, then the adaptive
// counterpart from AdaptiveConfig. Both runs use the same seed.
func Compare(ctx context.Context, cfg Config, observers ...core.Observer) (*Comparison, error) {
	fixedCfg := cfg
	fixedCfg.Mode = ModeFixed

	fixed, err := Run(ctx, fixedCfg, observers...)
	if err != nil {
		return nil, err
	}

	adaptiveCfg := AdaptiveConfig(cfg)
	adaptive, err := Run(ctx, adaptiveCfg, observers...)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		Fixed:           fixed,
		Adaptive:        adaptive,
		AdaptiveTimings: adaptiveCfg.Timings(),
	}, nil
}
