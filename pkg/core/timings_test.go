package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAdaptiveTimings(t *testing.T) {
	got := ComputeAdaptiveTimings(10, 0.5, 1.2, DefaultBaseTimings)

	// red = 10 + 5*(0.5/1.2); green = 10 + 1.5*(10 + 0.5*red)/1.2; yellow = 3 + 2*(0.5/1.2)
	assert.Equal(t, 12.08, got.Red)
	assert.InDelta(t, 30.1, got.Green, 0.06)
	assert.Equal(t, 30.05, got.Green)
	assert.Equal(t, 3.83, got.Yellow)
}

func TestComputeAdaptiveTimings_NonPositiveServiceRate(t *testing.T) {
	got := ComputeAdaptiveTimings(4, 0.5, 0, DefaultBaseTimings)

	assert.Equal(t, 15.0, got.Red, "intensity is clamped to 1")
	assert.Equal(t, 5.0, got.Yellow)
	assert.False(t, math.IsInf(got.Green, 0))
	assert.False(t, math.IsNaN(got.Green))
	assert.Greater(t, got.Green, DefaultBaseTimings.Green)
}

func TestTrafficIntensity(t *testing.T) {
	assert.InDelta(t, 0.5/1.2, TrafficIntensity(0.5, 1.2), 1e-12)
	assert.Equal(t, 1.0, TrafficIntensity(0.5, 0))
	assert.Equal(t, 1.0, TrafficIntensity(0.5, -3))
}

func TestTimings_CycleLength(t *testing.T) {
	assert.Equal(t, 43.0, Timings{Green: 20, Red: 20, Yellow: 3}.CycleLength())
}
