// Package engine provides a single-threaded discrete-event scheduler.
//
// Logical processes are plain values implementing Process. The engine resumes
// them in non-decreasing virtual time; each resume returns a Yield telling the
// engine how the process suspends next: for a fixed duration (Timeout), until
// another process wakes it (Passivate), or for good (Exit).
//
// Processes that become ready at the same instant run in the order they were
// scheduled. Callers must not build correctness on that order.
package engine

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/anggasct/trafficsim/pkg/utils"
)

// Process is a cooperative unit of work driven by the engine
type Process interface {
	Resume(now float64) Yield
}

// ProcessFunc adapts a function to the Process interface
type ProcessFunc func(now float64) Yield

// Resume calls f(now)
func (f ProcessFunc) Resume(now float64) Yield {
	return f(now)
}

type yieldKind int

const (
	yieldTimeout yieldKind = iota
	yieldPassivate
	yieldExit
)

// Yield tells the engine how a process suspends after a resume
type Yield struct {
	kind  yieldKind
	delay float64
}

// Timeout suspends the process for d units of virtual time
func Timeout(d float64) Yield {
	return Yield{kind: yieldTimeout, delay: d}
}

// Passivate suspends the process until Wake is called for it
func Passivate() Yield {
	return Yield{kind: yieldPassivate}
}

// Exit terminates the process
func Exit() Yield {
	return Yield{kind: yieldExit}
}

// ProcessState describes where a registered process is in its lifecycle
type ProcessState int

const (
	// ProcessScheduled has a pending resume in the event queue
	ProcessScheduled ProcessState = iota
	// ProcessPassive waits for Wake
	ProcessPassive
	// ProcessExited will never run again
	ProcessExited
)

// String returns the state name
func (s ProcessState) String() string {
	switch s {
	case ProcessScheduled:
		return "scheduled"
	case ProcessPassive:
		return "passive"
	case ProcessExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Handle identifies a registered process
type Handle struct {
	name    string
	process Process
	state   ProcessState
	resumes uint64
}

// Name returns the name given at registration
func (h *Handle) Name() string { return h.name }

// State returns the current lifecycle state
func (h *Handle) State() ProcessState { return h.state }

// Resumes returns how many times the process has been resumed
func (h *Handle) Resumes() uint64 { return h.resumes }

// Engine owns the virtual clock and the pending events
type Engine struct {
	now     float64
	seq     uint64
	queue   eventQueue
	handles []*Handle
	running *Handle
}

// New creates an engine with the clock at zero
func New() *Engine {
	e := &Engine{queue: eventQueue{}}
	heap.Init(&e.queue)
	return e
}

// Now returns the current virtual time
func (e *Engine) Now() float64 { return e.now }

// Pending returns the number of scheduled resumes
func (e *Engine) Pending() int { return e.queue.Len() }

// Processes returns the handles of all registered processes in registration order
func (e *Engine) Processes() []*Handle {
	result := make([]*Handle, len(e.handles))
	copy(result, e.handles)
	return result
}

// Register adds a process and schedules its first resume at the current time
func (e *Engine) Register(name string, p Process) *Handle {
	h := &Handle{name: name, process: p}
	e.handles = append(e.handles, h)
	e.schedule(h, e.now)
	return h
}

// Wake reschedules a passivated process at the current time. Waking a process
// that is already scheduled, running or exited has no effect.
func (e *Engine) Wake(h *Handle) {
	if h == nil || h.state != ProcessPassive || h == e.running {
		return
	}
	e.schedule(h, e.now)
}

func (e *Engine) schedule(h *Handle, at float64) {
	e.seq++
	h.state = ProcessScheduled
	heap.Push(&e.queue, &event{at: at, seq: e.seq, handle: h})
}

// Run advances the clock, resuming processes whose time is strictly before
// until. When it returns without error the clock reads until. An infinite
// horizon runs until no process is scheduled and leaves the clock at the last
// event.
func (e *Engine) Run(ctx context.Context, until float64) error {
	if math.IsNaN(until) || until < e.now {
		return utils.NewEngineError(fmt.Sprintf("horizon %v is before the current time %v", until, e.now)).
			WithDetail("until", until)
	}

	for e.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := e.queue[0]
		if next.at >= until {
			e.now = until
			return nil
		}

		heap.Pop(&e.queue)
		e.now = next.at
		if err := e.step(next.handle); err != nil {
			return err
		}
	}

	if !math.IsInf(until, 1) {
		e.now = until
	}
	return nil
}

func (e *Engine) step(h *Handle) error {
	e.running = h
	y := h.process.Resume(e.now)
	e.running = nil
	h.resumes++

	switch y.kind {
	case yieldTimeout:
		if math.IsNaN(y.delay) || y.delay < 0 || math.IsInf(y.delay, 0) {
			h.state = ProcessExited
			return utils.NewEngineError(fmt.Sprintf("process %s yielded an invalid delay", h.name)).
				WithDetail("delay", y.delay).
				WithDetail("time", e.now)
		}
		e.schedule(h, e.now+y.delay)
	case yieldPassivate:
		h.state = ProcessPassive
	case yieldExit:
		h.state = ProcessExited
	}
	return nil
}
