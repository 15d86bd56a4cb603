package sched

import (
	"vtsched/internal/proc"
)

// PriorityRoundRobin is round robin over a queue sorted by priority
// descending (FIFO among equals). Priorities breathe: a voluntary
// yield through any syscall except exit earns the process +1 up to
// its default priority, an expired slice costs it -1 down to zero.
type PriorityRoundRobin struct {
	core
	timeslice    int64
	minRemaining int64
}

func NewPriorityRoundRobin(timeslice, minRemaining int64) *PriorityRoundRobin {
	if timeslice <= 0 {
		timeslice = 1
	}
	return &PriorityRoundRobin{
		core:         newCore(newPriorityQueue()),
		timeslice:    timeslice,
		minRemaining: minRemaining,
	}
}

func (s *PriorityRoundRobin) CreateProcess(priority int, extra any) proc.Pid {
	return s.createProcess(priority, extra).Pid
}

func (s *PriorityRoundRobin) Next() Decision {
	return s.nextFixed(s.timeslice, s.minRemaining)
}

func (s *PriorityRoundRobin) Stop(reason StopReason) proc.Pid {
	return s.handleStop(reason, adjustPriority)
}

func (s *PriorityRoundRobin) List() []*proc.Process { return s.list() }

// adjustPriority runs before the stopped process is requeued, so the
// sorted insert sees the new priority.
func adjustPriority(p *proc.Process, r StopReason, _ int64) {
	if r.Kind == StopExpired {
		if p.Priority > 0 {
			p.Priority--
		}
		return
	}
	if r.Syscall.Kind == SyscallExit {
		return
	}
	if p.Priority < p.DefaultPriority {
		p.Priority++
	}
}
