// Package observers provides observers for monitoring simulation runs
package observers

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// String returns the level tag used by DefaultLogFormatter
func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "ERROR"
	case LogWarning:
		return "WARN"
	case LogDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// LoggingObserver logs simulation events
type LoggingObserver struct {
	level     LogLevel
	prefix    string
	out       io.Writer
	mutex     sync.RWMutex
	formatter LogFormatter
}

// LogFormatter formats log messages
type LogFormatter func(level LogLevel, format string, args ...interface{}) string

// DefaultLogFormatter provides default log formatting
func DefaultLogFormatter(level LogLevel, format string, args ...interface{}) string {
	return fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// NewLoggingObserver creates a new logging observer writing to stdout
func NewLoggingObserver(level LogLevel, prefix string) *LoggingObserver {
	return &LoggingObserver{
		level:     level,
		prefix:    prefix,
		out:       os.Stdout,
		formatter: DefaultLogFormatter,
	}
}

// SetFormatter sets the log formatter
func (o *LoggingObserver) SetFormatter(formatter LogFormatter) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.formatter = formatter
}

// SetOutput redirects the log lines
func (o *LoggingObserver) SetOutput(w io.Writer) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.out = w
}

// SetLevel changes the most verbose level that is written
func (o *LoggingObserver) SetLevel(level LogLevel) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.level = level
}

// log logs a message at the specified level
func (o *LoggingObserver) log(level LogLevel, format string, args ...interface{}) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if level > o.level || o.out == nil {
		return
	}

	prefix := ""
	if o.prefix != "" {
		prefix = fmt.Sprintf("[%s] ", o.prefix)
	}

	message := ""
	if o.formatter != nil {
		message = o.formatter(level, format, args...)
	} else {
		message = fmt.Sprintf(format, args...)
	}

	fmt.Fprintf(o.out, "%s%s\n", prefix, message)
}

// OnRunStarted logs the run parameters
func (o *LoggingObserver) OnRunStarted(run core.RunInfo) {
	o.log(LogInfo, "Run %s started: mode=%s seed=%d horizon=%g", run.ID, run.Mode, run.Seed, run.Horizon)
}

// OnRunFinished logs the end of a run
func (o *LoggingObserver) OnRunFinished(run core.RunInfo, at float64) {
	o.log(LogInfo, "Run %s finished at t=%.2f", run.ID, at)
}

// OnPhaseChange logs light phase changes
func (o *LoggingObserver) OnPhaseChange(light string, from, to core.Phase, at float64) {
	if from == to {
		o.log(LogInfo, "t=%.2f %s: starting in %s", at, light, to)
		return
	}
	o.log(LogInfo, "t=%.2f %s: %s -> %s", at, light, from, to)
}

// OnGreenExtended logs adaptive extensions, as a warning once the cap is hit
func (o *LoggingObserver) OnGreenExtended(light string, queueLength int, extension, at float64) {
	if extension >= core.MaxGreenExtension {
		o.log(LogWarning, "t=%.2f %s: green extended by the maximum %gs (queue=%d)", at, light, extension, queueLength)
		return
	}
	o.log(LogInfo, "t=%.2f %s: green extended by %gs (queue=%d)", at, light, extension, queueLength)
}

// OnVehicleArrived logs queue arrivals
func (o *LoggingObserver) OnVehicleArrived(road string, v *core.Vehicle, at float64) {
	o.log(LogDebug, "t=%.2f %s: vehicle %d (%s) arrived", at, road, v.ID, v.Type)
}

// OnServiceStarted logs service starts
func (o *LoggingObserver) OnServiceStarted(road string, v *core.Vehicle, at float64) {
	o.log(LogDebug, "t=%.2f %s: vehicle %d entering the intersection", at, road, v.ID)
}

// OnVehicleDeparted logs departures
func (o *LoggingObserver) OnVehicleDeparted(road string, v *core.Vehicle, at float64) {
	wait, _ := v.WaitTime()
	o.log(LogDebug, "t=%.2f %s: vehicle %d passed after waiting %.2fs", at, road, v.ID, wait)
}

// OnSnapshot logs metric samples
func (o *LoggingObserver) OnSnapshot(road string, queueLength, passed int, at float64) {
	o.log(LogDebug, "t=%.2f %s: queue=%d passed=%d", at, road, queueLength, passed)
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.log(LogError, "Error: %v", err)
}
