// Package utils provides error types shared by the simulation packages
package utils

import (
	"fmt"
	"sort"
	"strings"
)

// Error codes
const (
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeEngine        = "ENGINE_ERROR"
	CodeUndefined     = "UNDEFINED_STATISTIC"
)

// SimulationError represents a simulation specific error
type SimulationError struct {
	Code      string
	Message   string
	Component string
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface
func (e *SimulationError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, fmt.Sprintf("component: %s", e.Component))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		details := make([]string, 0, len(keys))
		for _, k := range keys {
			details = append(details, fmt.Sprintf("%s=%v", k, e.Details[k]))
		}
		parts = append(parts, fmt.Sprintf("details: {%s}", strings.Join(details, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " - ")
}

// Unwrap returns the underlying cause
func (e *SimulationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same error code, so that
// errors.Is(err, ErrInvalidConfiguration) matches any configuration error.
func (e *SimulationError) Is(target error) bool {
	t, ok := target.(*SimulationError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithComponent adds component information to the error
func (e *SimulationError) WithComponent(component string) *SimulationError {
	e.Component = component
	return e
}

// WithCause adds cause information to the error
func (e *SimulationError) WithCause(err error) *SimulationError {
	e.Cause = err
	return e
}

// WithDetail adds a detail to the error
func (e *SimulationError) WithDetail(key string, value interface{}) *SimulationError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

var (
	// ErrInvalidConfiguration matches every configuration error
	ErrInvalidConfiguration = &SimulationError{
		Code:    CodeConfiguration,
		Message: "invalid configuration",
	}

	// ErrEngine matches every scheduler error
	ErrEngine = &SimulationError{
		Code:    CodeEngine,
		Message: "scheduler error",
	}

	// ErrUndefinedStatistic matches statistics computed without data
	ErrUndefinedStatistic = &SimulationError{
		Code:    CodeUndefined,
		Message: "statistic is undefined without data",
	}
)

// NewConfigurationError creates an error for configuration issues
func NewConfigurationError(component, message string) *SimulationError {
	return &SimulationError{
		Code:      CodeConfiguration,
		Component: component,
		Message:   message,
	}
}

// NewEngineError creates an error for scheduler issues
func NewEngineError(message string) *SimulationError {
	return &SimulationError{
		Code:      CodeEngine,
		Component: "engine",
		Message:   message,
	}
}

// NewUndefinedStatisticError creates an error for a statistic with no samples
func NewUndefinedStatisticError(statistic, road string) *SimulationError {
	return &SimulationError{
		Code:      CodeUndefined,
		Component: "metrics",
		Message:   fmt.Sprintf("%s is undefined for road %s", statistic, road),
		Details: map[string]interface{}{
			"road": road,
		},
	}
}

// ErrorCollector collects multiple errors during validation
type ErrorCollector struct {
	errors []error
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collector
func (ec *ErrorCollector) Add(err error) {
	if err != nil {
		ec.errors = append(ec.errors, err)
	}
}

// HasErrors returns whether any errors were collected
func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

// GetErrors returns all collected errors
func (ec *ErrorCollector) GetErrors() []error {
	return ec.errors
}

// Err returns nil when nothing was collected, the single error when one was,
// and the collector itself otherwise.
func (ec *ErrorCollector) Err() error {
	switch len(ec.errors) {
	case 0:
		return nil
	case 1:
		return ec.errors[0]
	default:
		return ec
	}
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (ec *ErrorCollector) Unwrap() []error {
	return ec.errors
}

// Error returns a string representation of all errors
func (ec *ErrorCollector) Error() string {
	if len(ec.errors) == 0 {
		return "no errors"
	}

	if len(ec.errors) == 1 {
		return ec.errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(ec.errors)))

	for i, err := range ec.errors {
		sb.WriteString(fmt.Sprintf("  %d: %v\n", i+1, err))
	}

	return sb.String()
}
