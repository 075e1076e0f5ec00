package core

import (
	"fmt"
	"math"

	"github.com/anggasct/trafficsim/pkg/engine"
	"github.com/anggasct/trafficsim/pkg/utils"
)

// MaxGreenExtension caps how much an adaptive light adds to one green phase
const MaxGreenExtension = 30.0

// Controlled is the road side of a traffic light
type Controlled interface {
	Name() string
	SetPhase(p Phase)
	QueueLength() int
	AdaptiveThreshold() int
}

// LightConfig configures a traffic light. A zero Red means red lasts as long
// as green.
type LightConfig struct {
	Name     string  `yaml:"name"`
	Green    float64 `yaml:"green"`
	Yellow   float64 `yaml:"yellow"`
	Red      float64 `yaml:"red"`
	Adaptive bool    `yaml:"adaptive"`
}

// GreenExtension returns the time an adaptive light adds to green for the
// given queue: the excess over threshold, capped at MaxGreenExtension.
func GreenExtension(queueLength, threshold int) float64 {
	if queueLength <= threshold {
		return 0
	}
	return math.Min(MaxGreenExtension, float64(queueLength-threshold))
}

// phaseState is one state of the light's cycle
type phaseState struct {
	phase    Phase
	duration func(now float64) float64
	onEntry  []func(now float64)
}

// TrafficLight cycles RED, GREEN, YELLOW for the whole run and writes each
// phase onto the road it controls.
type TrafficLight struct {
	env    *Env
	cfg    LightConfig
	road   Controlled
	handle *engine.Handle

	states      map[Phase]*phaseState
	transitions map[Phase]Phase
	current     Phase
	started     bool
	cycles      int
	entries     int
	lastGreen   float64
}

// NewTrafficLight validates cfg and registers the light process. road may be nil.
func NewTrafficLight(env *Env, road Controlled, cfg LightConfig) (*TrafficLight, error) {
	durations := []struct {
		name  string
		value float64
	}{{"green", cfg.Green}, {"yellow", cfg.Yellow}, {"red", cfg.Red}}
	for _, d := range durations {
		if math.IsNaN(d.value) || math.IsInf(d.value, 0) || d.value < 0 {
			return nil, utils.NewConfigurationError("traffic_light", fmt.Sprintf("%s duration must be a non-negative number", d.name)).
				WithDetail(d.name, d.value)
		}
	}
	if cfg.Red == 0 {
		cfg.Red = cfg.Green
	}
	if cfg.Green+cfg.Yellow+cfg.Red <= 0 {
		return nil, utils.NewConfigurationError("traffic_light", "cycle length must be positive")
	}
	if cfg.Name == "" {
		cfg.Name = "light"
		if road != nil {
			cfg.Name = road.Name() + "/light"
		}
	}

	l := &TrafficLight{
		env:     env,
		cfg:     cfg,
		road:    road,
		current: PhaseRed,
	}
	l.buildStates()
	l.handle = env.Engine.Register(cfg.Name, engine.ProcessFunc(l.run))
	return l, nil
}

func (l *TrafficLight) buildStates() {
	mirror := func(p Phase) func(float64) {
		return func(float64) {
			if l.road != nil {
				l.road.SetPhase(p)
			}
		}
	}
	fixed := func(d float64) func(float64) float64 {
		return func(float64) float64 { return d }
	}

	l.states = map[Phase]*phaseState{
		PhaseRed: {
			phase:    PhaseRed,
			duration: fixed(l.cfg.Red),
			onEntry:  []func(float64){mirror(PhaseRed)},
		},
		PhaseGreen: {
			phase:    PhaseGreen,
			duration: l.greenDuration,
			onEntry: []func(float64){
				mirror(PhaseGreen),
				func(float64) { l.cycles++ },
			},
		},
		PhaseYellow: {
			phase:    PhaseYellow,
			duration: fixed(l.cfg.Yellow),
			onEntry:  []func(float64){mirror(PhaseYellow)},
		},
	}

	l.transitions = map[Phase]Phase{
		PhaseRed:    PhaseGreen,
		PhaseGreen:  PhaseYellow,
		PhaseYellow: PhaseRed,
	}
}

// greenDuration is evaluated on entry to GREEN, after the road shows green
func (l *TrafficLight) greenDuration(now float64) float64 {
	d := l.cfg.Green
	if l.cfg.Adaptive && l.road != nil {
		queue := l.road.QueueLength()
		if ext := GreenExtension(queue, l.road.AdaptiveThreshold()); ext > 0 {
			d += ext
			l.env.Observers.NotifyGreenExtended(l.cfg.Name, queue, ext, now)
		}
	}
	l.lastGreen = d
	return d
}

// run enters the next phase and sleeps for its duration
func (l *TrafficLight) run(now float64) engine.Yield {
	from := l.current
	to := PhaseRed
	if l.started {
		to = l.transitions[from]
	}
	l.started = true

	state := l.states[to]
	l.current = to
	l.entries++
	for _, action := range state.onEntry {
		action(now)
	}
	l.env.Observers.NotifyPhaseChange(l.cfg.Name, from, to, now)

	return engine.Timeout(state.duration(now))
}

// Name returns the light name
func (l *TrafficLight) Name() string { return l.cfg.Name }

// Config returns the effective configuration
func (l *TrafficLight) Config() LightConfig { return l.cfg }

// Phase returns the current phase
func (l *TrafficLight) Phase() Phase { return l.current }

// Cycles returns how many times the light has turned green
func (l *TrafficLight) Cycles() int { return l.cycles }

// PhaseEntries returns how many phases have been entered
func (l *TrafficLight) PhaseEntries() int { return l.entries }

// LastGreenDuration returns the length of the most recent green, extension included
func (l *TrafficLight) LastGreenDuration() float64 { return l.lastGreen }

// CycleLength returns red + green + yellow without any adaptive extension
func (l *TrafficLight) CycleLength() float64 {
	return l.cfg.Red + l.cfg.Green + l.cfg.Yellow
}
