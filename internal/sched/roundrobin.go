package sched

import (
	"vtsched/internal/proc"
)

// RoundRobin runs every ready process in strict arrival order with a
// fixed timeslice, ignoring priorities entirely. A process stopped by
// a fork or signal keeps the CPU as long as its leftover slice is at
// least minRemaining.
type RoundRobin struct {
	core
	timeslice    int64
	minRemaining int64
}

func NewRoundRobin(timeslice, minRemaining int64) *RoundRobin {
	if timeslice <= 0 {
		timeslice = 1
	}
	return &RoundRobin{
		core:         newCore(newFifoQueue()),
		timeslice:    timeslice,
		minRemaining: minRemaining,
	}
}

func (s *RoundRobin) CreateProcess(priority int, extra any) proc.Pid {
	return s.createProcess(priority, extra).Pid
}

func (s *RoundRobin) Next() Decision {
	return s.nextFixed(s.timeslice, s.minRemaining)
}

func (s *RoundRobin) Stop(reason StopReason) proc.Pid {
	return s.handleStop(reason, nil)
}

func (s *RoundRobin) List() []*proc.Process { return s.list() }

// nextFixed is the Next algorithm shared by the round-robin family:
// fold in pending idle time, let a reschedulable occupant keep the
// CPU, otherwise demote it and dispatch the policy head with a fresh
// fixed slice.
func (c *core) nextFixed(timeslice, minRemaining int64) Decision {
	c.advanceIdle()

	if c.running != nil {
		if c.remaining > 0 && c.remaining >= minRemaining {
			return RunDecision(c.running.Pid, c.remaining)
		}
		c.demoteRunning()
	}

	if c.ready.size() > 0 {
		if c.initExited {
			return Decision{Kind: DecisionPanic}
		}
		return c.dispatch(timeslice)
	}
	return c.idleDecision()
}
