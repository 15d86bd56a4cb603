package sched

import (
	"vtsched/internal/proc"
)

// Fair is the fair-share policy: the ready queue is a red-black tree
// ordered by virtual runtime and the least-served process always runs
// next. Running for c ticks grows a process's vruntime by c/(priority+1),
// so higher-priority processes accumulate vruntime slower and earn a
// proportionally larger CPU share. The timeslice spreads targetLatency
// across the ready processes, floored at minGranularity.
type Fair struct {
	core
	targetLatency  int64
	minGranularity int64
}

func NewFair(targetLatency, minGranularity int64) *Fair {
	if minGranularity <= 0 {
		minGranularity = 1
	}
	if targetLatency < minGranularity {
		targetLatency = minGranularity
	}
	return &Fair{
		core:           newCore(newVruntimeQueue()),
		targetLatency:  targetLatency,
		minGranularity: minGranularity,
	}
}

func (s *Fair) CreateProcess(priority int, extra any) proc.Pid {
	return s.createProcess(priority, extra).Pid
}

func (s *Fair) Next() Decision {
	s.advanceIdle()

	if s.running != nil {
		if s.remaining >= s.minGranularity {
			return RunDecision(s.running.Pid, s.remaining)
		}
		s.demoteRunning()
	}

	if s.ready.size() > 0 {
		if s.initExited {
			return Decision{Kind: DecisionPanic}
		}
		return s.dispatch(s.sliceFor(s.ready.size()))
	}
	return s.idleDecision()
}

func (s *Fair) Stop(reason StopReason) proc.Pid {
	return s.handleStop(reason, growVruntime)
}

func (s *Fair) List() []*proc.Process { return s.list() }

// sliceFor splits the latency target across the nReady contenders.
func (s *Fair) sliceFor(nReady int) int64 {
	slice := s.targetLatency / int64(nReady)
	if slice < s.minGranularity {
		slice = s.minGranularity
	}
	return slice
}

// growVruntime charges the stopped process for the time it consumed,
// weighted by priority. It runs before any requeue so the tree key
// reflects the new vruntime.
func growVruntime(p *proc.Process, _ StopReason, consumed int64) {
	if consumed <= 0 {
		return
	}
	p.Vruntime += float64(consumed) / float64(p.Priority+1)
}
