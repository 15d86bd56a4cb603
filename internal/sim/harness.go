// Package sim is the external driver the scheduling engine is built
// for: it feeds the engine scripted syscall events, advances virtual
// time and records what the engine decided.
package sim

import (
	"fmt"

	"vtsched/internal/metrics"
	"vtsched/internal/proc"
	"vtsched/internal/sched"
)

// script is the mutable execution state of one simulated process.
type script struct {
	steps []Step
	idx   int
}

// Harness drives one scheduler instance over one workload.
type Harness struct {
	sched   sched.Scheduler
	scripts map[proc.Pid]*script
	clock   int64

	trace     *Trace
	collector *metrics.Collector

	// pendingFork holds the spec of a fork step until Stop returns
	// the child pid it belongs to.
	pendingFork *ProcessSpec
}

// Result summarizes a finished run.
type Result struct {
	Outcome   sched.DecisionKind // Done, Deadlock or Panic
	Clock     int64              // virtual time at the end
	Decisions int64              // Next calls issued
	Idle      int64              // cumulative CPU idle time
}

// NewHarness creates the bootstrap processes of the workload in order,
// so the first spec becomes pid 1. trace and collector may be nil.
func NewHarness(s sched.Scheduler, w Workload, trace *Trace, collector *metrics.Collector) *Harness {
	h := &Harness{
		sched:     s,
		scripts:   make(map[proc.Pid]*script),
		trace:     trace,
		collector: collector,
	}
	for _, spec := range w.Processes {
		pid := s.CreateProcess(spec.Priority, spec.Extra)
		h.register(pid, spec.Steps)
	}
	return h
}

func (h *Harness) register(pid proc.Pid, steps []Step) {
	h.scripts[pid] = &script{steps: append([]Step(nil), steps...)}
	if h.collector != nil {
		h.collector.RecordCreated()
	}
}

// Run drives Next/Stop until the scheduler reports Done, Deadlock or
// Panic. maxDecisions bounds runaway workloads.
func (h *Harness) Run(maxDecisions int64) (Result, error) {
	var decisions int64
	for {
		if decisions >= maxDecisions {
			return Result{}, fmt.Errorf("no terminal decision after %d decisions", maxDecisions)
		}
		d := h.sched.Next()
		decisions++
		h.observeDecision(d)

		switch d.Kind {
		case sched.DecisionRun:
			reason := h.execute(d.Pid, d.Amount)
			consumed := d.Amount
			if reason.Kind == sched.StopSyscall {
				consumed = d.Amount - reason.Remaining
			}
			h.clock += consumed
			h.applyStop(d.Pid, reason)
		case sched.DecisionSleep:
			h.clock += d.Amount
		default:
			return Result{
				Outcome:   d.Kind,
				Clock:     h.clock,
				Decisions: decisions,
				Idle:      h.sched.TotalSlept(),
			}, nil
		}
	}
}

// execute advances the pid's script through the granted timeslice and
// returns the stop reason the virtual CPU would report. Consecutive
// run steps merge into one burst; running off the end of the script
// exits.
func (h *Harness) execute(pid proc.Pid, slice int64) sched.StopReason {
	sc := h.scripts[pid]
	var used int64
	for {
		if sc == nil || sc.idx >= len(sc.steps) {
			return sched.ExitStop(slice - used)
		}
		st := &sc.steps[sc.idx]
		switch {
		case st.Run > 0:
			avail := slice - used
			if st.Run >= avail {
				st.Run -= avail
				if st.Run == 0 {
					sc.idx++
				}
				return sched.Expired()
			}
			used += st.Run
			st.Run = 0
			sc.idx++
		case st.Sleep > 0:
			sc.idx++
			return sched.SleepStop(st.Sleep, slice-used)
		case st.Sleep < 0:
			// malformed sleep, filtered here so the engine never
			// sees a non-positive amount
			sc.idx++
		case st.Wait != nil:
			sc.idx++
			return sched.WaitStop(proc.Event(*st.Wait), slice-used)
		case st.Signal != nil:
			sc.idx++
			return sched.SignalStop(proc.Event(*st.Signal), slice-used)
		case st.Fork != nil:
			h.pendingFork = st.Fork
			sc.idx++
			return sched.ForkStop(st.Fork.Priority, st.Fork.Extra, slice-used)
		default:
			sc.idx++
			return sched.ExitStop(slice - used)
		}
	}
}

// applyStop reports the stop to the scheduler and finishes any fork by
// registering the child's script under the pid the engine assigned.
func (h *Harness) applyStop(pid proc.Pid, reason sched.StopReason) {
	child := h.sched.Stop(reason)
	h.observeStop(pid, reason)

	if reason.Kind != sched.StopSyscall {
		return
	}
	switch reason.Syscall.Kind {
	case sched.SyscallFork:
		if child > 0 && h.pendingFork != nil {
			h.register(child, h.pendingFork.Steps)
		}
		h.pendingFork = nil
	case sched.SyscallExit:
		delete(h.scripts, pid)
		if h.collector != nil {
			h.collector.RecordExited()
		}
	}
}

func (h *Harness) observeDecision(d sched.Decision) {
	h.trace.Record(h.clock, d.Kind.String(), d.Pid, d.Amount, "")
	if h.collector != nil {
		h.collector.RecordDecision(d.Kind.String())
		h.collector.SetVirtualTime(h.clock)
		h.collector.SetIdleTime(h.sched.TotalSlept())
	}
}

func (h *Harness) observeStop(pid proc.Pid, reason sched.StopReason) {
	h.trace.Record(h.clock, "Stop", pid, reason.Remaining, reason.String())
	if h.collector != nil && reason.Kind == sched.StopSyscall {
		h.collector.RecordSyscall(reason.Syscall.Kind.String())
	}
}
