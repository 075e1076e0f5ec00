package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/trafficsim/pkg/utils"
)

func TestGreenExtension(t *testing.T) {
	tests := []struct {
		queue, threshold int
		want             float64
	}{
		{0, 5, 0},
		{5, 5, 0},
		{6, 5, 1},
		{12, 5, 7},
		{35, 5, 30},
		{200, 5, 30},
		{3, 0, 3},
	}

	for _, tt := range tests {
		got := GreenExtension(tt.queue, tt.threshold)
		assert.Equal(t, tt.want, got, "queue=%d threshold=%d", tt.queue, tt.threshold)
		assert.GreaterOrEqual(t, got, 0.0)
	}
}

func TestTrafficLight_FixedCycle(t *testing.T) {
	env, obs := newTestEnv(1)
	road := &stubRoad{queue: 50, threshold: 5}

	light, err := NewTrafficLight(env, road, LightConfig{Green: 20, Yellow: 3, Red: 20})
	require.NoError(t, err)

	runUntil(t, env, 100)

	assert.Equal(t,
		[]Phase{PhaseRed, PhaseGreen, PhaseYellow, PhaseRed, PhaseGreen, PhaseYellow, PhaseRed},
		obs.Phases())
	assert.Equal(t, obs.Phases(), road.phases, "every phase is mirrored onto the road")

	var at []float64
	for _, pc := range obs.PhaseChanges {
		at = append(at, pc.At)
	}
	assert.Equal(t, []float64{0, 20, 40, 43, 63, 83, 86}, at)

	// consecutive RED entries are one cycle apart
	assert.Equal(t, light.CycleLength(), at[3]-at[0])
	assert.Equal(t, light.CycleLength(), at[6]-at[3])
	assert.Equal(t, 43.0, light.CycleLength())
	assert.Equal(t, 2, light.Cycles())
	assert.Empty(t, obs.Extensions, "fixed mode never extends green")
}

func TestTrafficLight_InitialChangeReportsRed(t *testing.T) {
	env, obs := newTestEnv(1)
	_, err := NewTrafficLight(env, nil, LightConfig{Green: 5, Yellow: 1})
	require.NoError(t, err)

	runUntil(t, env, 1)

	require.Len(t, obs.PhaseChanges, 1)
	assert.Equal(t, PhaseRed, obs.PhaseChanges[0].From)
	assert.Equal(t, PhaseRed, obs.PhaseChanges[0].To)
}

func TestTrafficLight_RedDefaultsToGreen(t *testing.T) {
	env, _ := newTestEnv(1)
	light, err := NewTrafficLight(env, nil, LightConfig{Green: 30, Yellow: 3})
	require.NoError(t, err)

	assert.Equal(t, 30.0, light.Config().Red)
	assert.Equal(t, 63.0, light.CycleLength())
	assert.Equal(t, "light", light.Name())
}

func TestTrafficLight_AdaptiveExtension(t *testing.T) {
	tests := []struct {
		name      string
		queue     int
		wantGreen float64
	}{
		{"below threshold", 3, 20},
		{"at threshold", 5, 20},
		{"excess queue", 12, 27},
		{"capped", 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, obs := newTestEnv(1)
			road := &stubRoad{queue: tt.queue, threshold: 5}
			light, err := NewTrafficLight(env, road, LightConfig{Green: 20, Yellow: 3, Red: 10, Adaptive: true})
			require.NoError(t, err)

			runUntil(t, env, 11)
			assert.Equal(t, PhaseGreen, light.Phase())
			assert.Equal(t, tt.wantGreen, light.LastGreenDuration())

			runUntil(t, env, 10+tt.wantGreen+0.5)
			assert.Equal(t, PhaseYellow, light.Phase())

			if tt.wantGreen > 20 {
				require.Len(t, obs.Extensions, 1)
				assert.Equal(t, tt.queue, obs.Extensions[0].QueueLength)
				assert.Equal(t, tt.wantGreen-20, obs.Extensions[0].Extension)
				assert.Equal(t, 10.0, obs.Extensions[0].At)
			} else {
				assert.Empty(t, obs.Extensions)
			}
		})
	}
}

func TestTrafficLight_AdaptiveWithoutRoad(t *testing.T) {
	env, obs := newTestEnv(1)
	light, err := NewTrafficLight(env, nil, LightConfig{Green: 20, Yellow: 3, Red: 10, Adaptive: true})
	require.NoError(t, err)

	runUntil(t, env, 15)
	assert.Equal(t, 20.0, light.LastGreenDuration())
	assert.Empty(t, obs.Extensions)
}

func TestTrafficLight_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  LightConfig
	}{
		{"negative green", LightConfig{Green: -1, Yellow: 3}},
		{"negative yellow", LightConfig{Green: 10, Yellow: -3}},
		{"negative red", LightConfig{Green: 10, Yellow: 3, Red: -1}},
		{"zero cycle", LightConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := newTestEnv(1)
			_, err := NewTrafficLight(env, nil, tt.cfg)
			assert.ErrorIs(t, err, utils.ErrInvalidConfiguration)
			assert.Zero(t, env.Engine.Pending(), "no process is registered on error")
		})
	}
}
