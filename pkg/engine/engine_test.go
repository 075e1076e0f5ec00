package engine

import (
	"context"
	"math"
	"testing"

	"github.com/anggasct/trafficsim/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ticker records the times it is resumed and exits after max resumes
type ticker struct {
	period float64
	max    int
	times  []float64
}

func (t *ticker) Resume(now float64) Yield {
	t.times = append(t.times, now)
	if t.max > 0 && len(t.times) >= t.max {
		return Exit()
	}
	return Timeout(t.period)
}

func TestEngine_ResumesInTimeOrder(t *testing.T) {
	eng := New()
	fast := &ticker{period: 1}
	slow := &ticker{period: 2.5}

	eng.Register("fast", fast)
	eng.Register("slow", slow)

	require.NoError(t, eng.Run(context.Background(), 6))

	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, fast.times)
	assert.Equal(t, []float64{0, 2.5, 5}, slow.times)
	assert.Equal(t, 6.0, eng.Now())
}

func TestEngine_HorizonIsExclusive(t *testing.T) {
	eng := New()
	tk := &ticker{period: 5}
	eng.Register("tick", tk)

	require.NoError(t, eng.Run(context.Background(), 10))

	assert.Equal(t, []float64{0, 5}, tk.times)
	assert.Equal(t, 1, eng.Pending())
}

func TestEngine_RunCanContinue(t *testing.T) {
	eng := New()
	tk := &ticker{period: 1}
	eng.Register("tick", tk)

	require.NoError(t, eng.Run(context.Background(), 2))
	require.NoError(t, eng.Run(context.Background(), 4))

	assert.Equal(t, []float64{0, 1, 2, 3}, tk.times)
}

func TestEngine_StopsWhenNoProcessRemains(t *testing.T) {
	eng := New()
	tk := &ticker{period: 1, max: 3}
	h := eng.Register("tick", tk)

	require.NoError(t, eng.Run(context.Background(), math.Inf(1)))

	assert.Equal(t, []float64{0, 1, 2}, tk.times)
	assert.Equal(t, ProcessExited, h.State())
	assert.Equal(t, 2.0, eng.Now())
	assert.Equal(t, uint64(3), h.Resumes())
}

func TestEngine_SameInstantIsFIFO(t *testing.T) {
	eng := New()
	var order []string

	for _, name := range []string{"a", "b", "c"} {
		name := name
		eng.Register(name, ProcessFunc(func(now float64) Yield {
			order = append(order, name)
			return Exit()
		}))
	}

	require.NoError(t, eng.Run(context.Background(), 1))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEngine_PassivateAndWake(t *testing.T) {
	eng := New()
	var woken []float64

	sleeper := eng.Register("sleeper", ProcessFunc(func(now float64) Yield {
		woken = append(woken, now)
		return Passivate()
	}))

	alarms := 0
	eng.Register("alarm", ProcessFunc(func(now float64) Yield {
		if now > 0 {
			eng.Wake(sleeper)
			eng.Wake(sleeper)
			alarms++
		}
		if alarms == 2 {
			return Exit()
		}
		return Timeout(3)
	}))

	require.NoError(t, eng.Run(context.Background(), 100))

	assert.Equal(t, []float64{0, 3, 6}, woken)
	assert.Equal(t, ProcessPassive, sleeper.State())
}

func TestEngine_WakeIgnoresScheduledProcess(t *testing.T) {
	eng := New()
	tk := &ticker{period: 10}
	h := eng.Register("tick", tk)

	eng.Wake(h)
	require.NoError(t, eng.Run(context.Background(), 5))

	assert.Equal(t, []float64{0}, tk.times)
}

func TestEngine_InvalidDelay(t *testing.T) {
	eng := New()
	h := eng.Register("bad", ProcessFunc(func(now float64) Yield {
		return Timeout(-1)
	}))

	err := eng.Run(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrEngine)
	assert.Equal(t, ProcessExited, h.State())
}

func TestEngine_HorizonBeforeNow(t *testing.T) {
	eng := New()
	require.NoError(t, eng.Run(context.Background(), 5))

	err := eng.Run(context.Background(), 1)
	assert.ErrorIs(t, err, utils.ErrEngine)
}

func TestEngine_ContextCancellation(t *testing.T) {
	eng := New()
	eng.Register("tick", &ticker{period: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Run(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessState_String(t *testing.T) {
	assert.Equal(t, "scheduled", ProcessScheduled.String())
	assert.Equal(t, "passive", ProcessPassive.String())
	assert.Equal(t, "exited", ProcessExited.String())
	assert.Equal(t, "unknown", ProcessState(42).String())
}
