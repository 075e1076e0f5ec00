package core

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/anggasct/trafficsim/pkg/engine"
)

// Env bundles what the processes of one simulation run share: the scheduler,
// the random source, the vehicle ID space and the observers.
type Env struct {
	Engine    *engine.Engine
	Source    rand.Source
	IDs       *IDGenerator
	Observers *ObserverManager
}

// NewEnv creates an environment around eng drawing randomness from src
func NewEnv(eng *engine.Engine, src rand.Source) *Env {
	return &Env{
		Engine:    eng,
		Source:    src,
		IDs:       NewIDGenerator(),
		Observers: NewObserverManager(),
	}
}

// NewSeededEnv creates an environment with a fresh engine and a PCG source
// seeded from seed
func NewSeededEnv(seed uint64) *Env {
	return NewEnv(engine.New(), rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Now returns the current virtual time
func (e *Env) Now() float64 {
	return e.Engine.Now()
}

// exponential draws from an exponential distribution with the given mean
func (e *Env) exponential(mean float64) float64 {
	return distuv.Exponential{Rate: 1 / mean, Src: e.Source}.Rand()
}
