// Package trafficsim simulates one signalized approach in virtual time:
// vehicles arrive as a Poisson stream, queue in FIFO order and are served
// while a fixed or adaptive light shows green, and a collector samples the
// queue to report waiting times and congestion.
package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/metrics"
	"github.com/anggasct/trafficsim/pkg/observers"
	"github.com/anggasct/trafficsim/pkg/utils"
)

// Core types
type (
	// Vehicle is one vehicle and its timestamps
	Vehicle = core.Vehicle

	// VehicleType is the kind of a vehicle
	VehicleType = core.VehicleType

	// Phase is a light color
	Phase = core.Phase

	// Timings are green, red and yellow durations
	Timings = core.Timings

	// RoadConfig configures the approach
	RoadConfig = core.RoadConfig

	// LightConfig configures the light
	LightConfig = core.LightConfig

	// ArrivalConfig configures the arrival stream
	ArrivalConfig = core.ArrivalConfig

	// RunInfo identifies a run for observers
	RunInfo = core.RunInfo

	// Observer receives phase changes and departures
	Observer = core.Observer

	// ExtendedObserver receives every simulation callback
	ExtendedObserver = core.ExtendedObserver

	// BaseObserver provides no-op callbacks to embed
	BaseObserver = core.BaseObserver
)

// Re-export metrics types
type (
	// Snapshot is one sample of one road
	Snapshot = metrics.Snapshot

	// RoadStats summarizes one road
	RoadStats = metrics.RoadStats
)

// Re-export observer types
type (
	// LoggingObserver logs simulation events
	LoggingObserver = observers.LoggingObserver

	// LogLevel represents the logging level
	LogLevel = observers.LogLevel

	// LogFormatter formats log messages
	LogFormatter = observers.LogFormatter

	// ValidationObserver checks a run while it happens
	ValidationObserver = observers.ValidationObserver

	// MetricsObserver counts phases, extensions and vehicles
	MetricsObserver = observers.MetricsObserver
)

// Re-export error types
type (
	// SimulationError represents a simulation specific error
	SimulationError = utils.SimulationError

	// ErrorCollector collects multiple errors during validation
	ErrorCollector = utils.ErrorCollector
)

// Re-export constants
const (
	PhaseRed    = core.PhaseRed
	PhaseGreen  = core.PhaseGreen
	PhaseYellow = core.PhaseYellow

	Car  = core.Car
	Bus  = core.Bus
	Bike = core.Bike

	// LogError logs only errors
	LogError = observers.LogError

	// LogWarning logs errors and warnings
	LogWarning = observers.LogWarning

	// LogInfo logs errors, warnings, and info
	LogInfo = observers.LogInfo

	// LogDebug logs errors, warnings, info, and debug
	LogDebug = observers.LogDebug
)

// Re-export functions
var (
	// ComputeAdaptiveTimings derives light durations from the queue and the rates
	ComputeAdaptiveTimings = core.ComputeAdaptiveTimings

	// GreenExtension returns the green time an adaptive light adds for a queue
	GreenExtension = core.GreenExtension

	// DefaultVehicleMix returns the default vehicle type shares
	DefaultVehicleMix = core.DefaultVehicleMix

	// DefaultBaseTimings are the base durations of the adaptive formula
	DefaultBaseTimings = core.DefaultBaseTimings
)

// Re-export observer constructors
var (
	// NewLoggingObserver creates a new logging observer with default settings
	NewLoggingObserver = observers.NewDefaultLoggingObserver

	// NewCustomLoggingObserver creates a new logging observer with custom settings
	NewCustomLoggingObserver = observers.NewLoggingObserver

	// DefaultLogFormatter provides default log formatting
	DefaultLogFormatter = observers.DefaultLogFormatter

	// NewValidationObserver creates a validation observer for the light cycle
	NewValidationObserver = observers.NewCycleValidationObserver

	// NewMetricsObserver creates a new metrics observer
	NewMetricsObserver = observers.NewMetricsObserver
)

// Re-export errors
var (
	// ErrInvalidConfiguration matches every configuration error
	ErrInvalidConfiguration = utils.ErrInvalidConfiguration

	// ErrEngine matches every scheduler error
	ErrEngine = utils.ErrEngine

	// ErrUndefinedStatistic matches statistics computed without data
	ErrUndefinedStatistic = utils.ErrUndefinedStatistic
)
