package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/trafficsim/pkg/utils"
)

// sink collects enqueued vehicles without serving them
type sink struct {
	vehicles []*Vehicle
}

func (s *sink) Name() string       { return "sink" }
func (s *sink) Enqueue(v *Vehicle) { s.vehicles = append(s.vehicles, v) }

func TestNewArrivalProcess_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  ArrivalConfig
	}{
		{"zero rate", ArrivalConfig{Rate: 0}},
		{"negative rate", ArrivalConfig{Rate: -0.5}},
		{"nan rate", ArrivalConfig{Rate: math.NaN()}},
		{"infinite rate", ArrivalConfig{Rate: math.Inf(1)}},
		{"negative max", ArrivalConfig{Rate: 1, MaxVehicles: -1}},
		{"bad mix", ArrivalConfig{Rate: 1, Mix: map[VehicleType]float64{Car: 0.4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := newTestEnv(1)
			_, err := NewArrivalProcess(env, &sink{}, tt.cfg)
			assert.ErrorIs(t, err, utils.ErrInvalidConfiguration)
			assert.Zero(t, env.Engine.Pending())
		})
	}

	env, _ := newTestEnv(1)
	_, err := NewArrivalProcess(env, nil, ArrivalConfig{Rate: 1})
	assert.ErrorIs(t, err, utils.ErrInvalidConfiguration)
}

func TestArrivalProcess_StopsAtMaxVehicles(t *testing.T) {
	env, _ := newTestEnv(9)
	target := &sink{}
	arrivals, err := NewArrivalProcess(env, target, ArrivalConfig{Rate: 1, MaxVehicles: 5})
	require.NoError(t, err)

	runUntil(t, env, math.Inf(1))

	assert.True(t, arrivals.Done())
	assert.Equal(t, 5, arrivals.Generated())
	require.Len(t, target.vehicles, 5)

	for i, v := range target.vehicles {
		assert.Equal(t, uint64(i+1), v.ID, "ids are assigned in arrival order")
		assert.True(t, v.Type.Valid())
		assert.Greater(t, v.ArrivalTime, 0.0, "the first vehicle arrives after one gap")
		if i > 0 {
			assert.GreaterOrEqual(t, v.ArrivalTime, target.vehicles[i-1].ArrivalTime)
		}
	}
	assert.Equal(t, target.vehicles[4].ArrivalTime, env.Now(), "the run drains at the last arrival")
}

func TestArrivalProcess_MeanGap(t *testing.T) {
	env, _ := newTestEnv(21)
	target := &sink{}
	_, err := NewArrivalProcess(env, target, ArrivalConfig{Rate: 2, MaxVehicles: 4000})
	require.NoError(t, err)

	runUntil(t, env, math.Inf(1))

	require.Len(t, target.vehicles, 4000)
	last := target.vehicles[len(target.vehicles)-1].ArrivalTime
	assert.InEpsilon(t, 2000.0, last, 0.05, "mean gap is 1/rate")
}

func TestArrivalProcess_UnlimitedUntilHorizon(t *testing.T) {
	env, _ := newTestEnv(4)
	target := &sink{}
	arrivals, err := NewArrivalProcess(env, target, ArrivalConfig{Rate: 0.5})
	require.NoError(t, err)

	runUntil(t, env, 200)

	assert.False(t, arrivals.Done())
	assert.NotEmpty(t, target.vehicles)
	for _, v := range target.vehicles {
		assert.Less(t, v.ArrivalTime, 200.0)
	}
}

func TestArrivalProcess_UsesConfiguredMix(t *testing.T) {
	env, _ := newTestEnv(2)
	target := &sink{}
	_, err := NewArrivalProcess(env, target, ArrivalConfig{Rate: 1, MaxVehicles: 50, Mix: map[VehicleType]float64{Bike: 1}})
	require.NoError(t, err)

	runUntil(t, env, math.Inf(1))

	for _, v := range target.vehicles {
		assert.Equal(t, Bike, v.Type)
	}
}

func TestArrivalProcess_IsReproducible(t *testing.T) {
	times := func() []float64 {
		env, _ := newTestEnv(77)
		target := &sink{}
		_, err := NewArrivalProcess(env, target, ArrivalConfig{Rate: 0.7, MaxVehicles: 30})
		require.NoError(t, err)
		runUntil(t, env, math.Inf(1))

		out := make([]float64, len(target.vehicles))
		for i, v := range target.vehicles {
			out[i] = v.ArrivalTime
		}
		return out
	}

	assert.Equal(t, times(), times())
}
