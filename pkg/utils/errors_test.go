package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationError_Format(t *testing.T) {
	err := NewConfigurationError("arrivals", "arrival rate must be positive").
		WithDetail("rate", -1.0).
		WithDetail("lanes", 2)

	msg := err.Error()
	assert.Contains(t, msg, "[CONFIGURATION_ERROR]")
	assert.Contains(t, msg, "component: arrivals")
	assert.Contains(t, msg, "arrival rate must be positive")
	assert.Contains(t, msg, "details: {lanes=2, rate=-1}")
}

func TestSimulationError_IsMatchesByCode(t *testing.T) {
	err := NewConfigurationError("road", "name is required")
	wrapped := fmt.Errorf("building scenario: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInvalidConfiguration))
	assert.False(t, errors.Is(wrapped, ErrEngine))
}

func TestSimulationError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewEngineError("process failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cause: boom")
}

func TestErrorCollector(t *testing.T) {
	t.Run("empty collector", func(t *testing.T) {
		ec := NewErrorCollector()
		ec.Add(nil)

		assert.False(t, ec.HasErrors())
		assert.NoError(t, ec.Err())
		assert.Equal(t, "no errors", ec.Error())
	})

	t.Run("single error is returned as is", func(t *testing.T) {
		ec := NewErrorCollector()
		single := NewConfigurationError("light", "green must not be negative")
		ec.Add(single)

		assert.Same(t, single, ec.Err())
	})

	t.Run("multiple errors", func(t *testing.T) {
		ec := NewErrorCollector()
		ec.Add(NewConfigurationError("road", "name is required"))
		ec.Add(NewConfigurationError("arrivals", "arrival rate must be positive"))

		err := ec.Err()
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "2 errors occurred:"))
		assert.Len(t, ec.GetErrors(), 2)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}
