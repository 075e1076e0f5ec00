package trafficsim

import (
	"context"

	"github.com/google/uuid"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/metrics"
	"github.com/anggasct/trafficsim/pkg/utils"
)

// Result is what a finished run reports
type Result struct {
	RunID   string  `yaml:"run_id"`
	Name    string  `yaml:"name"`
	Mode    Mode    `yaml:"mode"`
	Seed    uint64  `yaml:"seed"`
	Horizon float64 `yaml:"horizon"`

	// Timings are the base light durations the run used
	Timings core.Timings `yaml:"timings"`

	Snapshots  []metrics.Snapshot  `yaml:"snapshots"`
	Stats      []metrics.RoadStats `yaml:"stats"`
	Congestion map[string]float64  `yaml:"congestion"`

	// Vehicles holds every vehicle that reached the road: served ones in
	// departure order, then the one in service, then the queue.
	Vehicles  []*core.Vehicle `yaml:"-"`
	Generated int             `yaml:"generated"`
	Cycles    int             `yaml:"cycles"`
}

// StatsFor returns the summary of one road
func (r *Result) StatsFor(road string) (metrics.RoadStats, bool) {
	for _, s := range r.Stats {
		if s.Road == road {
			return s, true
		}
	}
	return metrics.RoadStats{}, false
}

// Simulation is one wired run: a road, its light, the arrival stream and
// the sampler, all sharing one clock and one random source.
type Simulation struct {
	cfg   Config
	runID string
	env   *core.Env

	road      *core.Road
	light     *core.TrafficLight
	arrivals  *core.ArrivalProcess
	collector *metrics.Collector
	sampler   *metrics.Sampler

	ran bool
}

// NewSimulation validates cfg and wires the processes.
func NewSimulation(cfg Config, observers ...core.Observer) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env := core.NewSeededEnv(cfg.Seed)
	for _, o := range observers {
		env.Observers.AddObserver(o)
	}

	s := &Simulation{
		cfg:   cfg,
		runID: uuid.NewString(),
		env:   env,
	}

	var err error
	if s.road, err = core.NewRoad(env, cfg.Road); err != nil {
		return nil, err
	}

	lightCfg := cfg.Light
	lightCfg.Adaptive = cfg.Mode == ModeAdaptive
	if s.light, err = core.NewTrafficLight(env, s.road, lightCfg); err != nil {
		return nil, err
	}

	if s.arrivals, err = core.NewArrivalProcess(env, s.road, cfg.Arrivals); err != nil {
		return nil, err
	}

	s.collector = metrics.NewCollector(s.road)
	s.collector.SetObservers(env.Observers)
	s.collector.SetMaxSnapshots(cfg.MaxSnapshots)
	if s.sampler, err = metrics.NewSampler(env.Engine, s.collector, cfg.SnapshotInterval); err != nil {
		return nil, err
	}

	return s, nil
}

// RunID returns the identifier reported to observers
func (s *Simulation) RunID() string { return s.runID }

// Road returns the simulated approach
func (s *Simulation) Road() *core.Road { return s.road }

// Light returns the light controlling the road
func (s *Simulation) Light() *core.TrafficLight { return s.light }

// Collector returns the metrics collector
func (s *Simulation) Collector() *metrics.Collector { return s.collector }

// Env returns the shared environment
func (s *Simulation) Env() *core.Env { return s.env }

func (s *Simulation) info() core.RunInfo {
	return core.RunInfo{
		ID:      s.runID,
		Mode:    string(s.cfg.Mode),
		Seed:    s.cfg.Seed,
		Horizon: s.cfg.Horizon,
	}
}

// Run seeds the initial queue as cars arriving at time zero, advances the
// clock to the horizon and summarizes the run. A simulation runs once.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if s.ran {
		return nil, utils.NewEngineError("simulation already ran").WithDetail("run_id", s.runID)
	}
	s.ran = true

	info := s.info()
	s.env.Observers.NotifyRunStarted(info)

	// observers see the run start before the first arrival
	for i := 0; i < s.cfg.InitialQueue; i++ {
		s.road.Enqueue(core.NewVehicle(s.env.IDs, 0, core.Car))
	}

	if err := s.env.Engine.Run(ctx, s.cfg.Horizon); err != nil {
		s.env.Observers.NotifyError(err)
		return nil, err
	}

	s.env.Observers.NotifyRunFinished(info, s.env.Now())
	return s.result(), nil
}

func (s *Simulation) result() *Result {
	vehicles := s.road.Passed()
	if v := s.road.InService(); v != nil {
		vehicles = append(vehicles, v)
	}
	vehicles = append(vehicles, s.road.Queue()...)

	return &Result{
		RunID:      s.runID,
		Name:       s.cfg.Name,
		Mode:       s.cfg.Mode,
		Seed:       s.cfg.Seed,
		Horizon:    s.cfg.Horizon,
		Timings:    s.cfg.Timings(),
		Snapshots:  s.collector.Snapshots(),
		Stats:      s.collector.FinalStats(),
		Congestion: s.collector.CongestionProbability(s.cfg.CongestionThreshold),
		Vehicles:   vehicles,
		Generated:  s.arrivals.Generated(),
		Cycles:     s.light.Cycles(),
	}
}

// Run builds and runs one simulation
func Run(ctx context.Context, cfg Config, observers ...core.Observer) (*Result, error) {
	sim, err := NewSimulation(cfg, observers...)
	if err != nil {
		return nil, err
	}
	return sim.Run(ctx)
}
