package sched

import (
	"vtsched/internal/proc"
)

// waitEntry pairs a blocked process with its sleep countdown. The
// countdown is meaningful only while the process is Sleeping; event
// waiters carry zero and are woken by Signal alone.
type waitEntry struct {
	p         *proc.Process
	countdown int64
}

// core is the bookkeeping shared by all three policies: the ready and
// wait queues, the single exclusively-owned running slot, the timing
// advancer and the fatal-condition checks. Policies differ only in
// queue ordering, timeslice computation and per-stop adjustments.
type core struct {
	pids    *proc.PidAllocator
	ready   readyQueue
	wait    []waitEntry
	running *proc.Process

	// remaining is the unconsumed timeslice of the running slot
	// occupant. Meaningless while running is nil.
	remaining int64

	// pendingIdle is CPU idle time announced by a Sleep decision but
	// not yet folded into the timings; the next Next call advances by
	// it first.
	pendingIdle int64

	totalSlept int64
	initExited bool
}

func newCore(ready readyQueue) core {
	return core{
		pids:  proc.NewPidAllocator(),
		ready: ready,
	}
}

// createProcess allocates a pid and enqueues a fresh Ready record.
func (c *core) createProcess(priority int, extra any) *proc.Process {
	p := proc.New(c.pids.Alloc(), priority, extra)
	c.ready.insert(p)
	return p
}

// advance is the timing advancer: every tracked process accrues delta
// on its Total plus the bucket matching its current state, sleep
// countdowns tick down, and sleepers reaching zero move to the ready
// queue in their wait-queue order.
func (c *core) advance(delta int64) {
	if delta <= 0 {
		return
	}
	if c.running != nil {
		c.running.Times.Total += delta
		c.running.Times.Running += delta
	}
	c.ready.each(func(p *proc.Process) {
		p.Times.Total += delta
		p.Times.Ready += delta
	})

	keep := c.wait[:0]
	for _, e := range c.wait {
		e.p.Times.Total += delta
		e.p.Times.Waiting += delta
		if e.p.State == proc.Sleeping {
			e.countdown -= delta
			if e.countdown <= 0 {
				e.p.State = proc.Ready
				c.ready.insert(e.p)
				continue
			}
		}
		keep = append(keep, e)
	}
	c.wait = keep
}

// advanceIdle folds in the idle time announced by the previous Sleep
// decision. Called at the top of every Next.
func (c *core) advanceIdle() {
	d := c.pendingIdle
	c.pendingIdle = 0
	c.advance(d)
}

// consumedBy converts a stop reason into the virtual time the stopped
// process actually ran.
func (c *core) consumedBy(r StopReason) int64 {
	if r.Kind == StopExpired {
		return c.remaining
	}
	consumed := c.remaining - r.Remaining
	if consumed < 0 {
		consumed = 0
	}
	return consumed
}

// demoteRunning moves the running occupant back to the ready queue.
func (c *core) demoteRunning() {
	p := c.running
	c.running = nil
	p.State = proc.Ready
	c.ready.insert(p)
}

// dispatch pops the policy head into the running slot with the given
// timeslice and returns the Run decision.
func (c *core) dispatch(slice int64) Decision {
	p := c.ready.pop()
	p.State = proc.Running
	c.running = p
	c.remaining = slice
	return RunDecision(p.Pid, slice)
}

// idleDecision handles the nothing-ready tail of Next: sleep until the
// nearest wakeup, or report Done, Deadlock or Panic.
func (c *core) idleDecision() Decision {
	if len(c.wait) == 0 {
		return Decision{Kind: DecisionDone}
	}
	if c.initExited {
		return Decision{Kind: DecisionPanic}
	}
	min := int64(-1)
	for _, e := range c.wait {
		if e.p.State != proc.Sleeping {
			continue
		}
		if min < 0 || e.countdown < min {
			min = e.countdown
		}
	}
	if min < 0 {
		// Nobody is sleeping: every waiter needs a signal that no
		// runnable process is left to send.
		return Decision{Kind: DecisionDeadlock}
	}
	c.pendingIdle += min
	c.totalSlept += min
	return SleepDecision(min)
}

// wake readies every process waiting on event, preserving their
// relative order, and rebuilds the wait queue from the rest in one
// pass. Unknown events wake nobody and that is fine.
func (c *core) wake(event proc.Event) {
	keep := c.wait[:0]
	for _, e := range c.wait {
		if e.p.State == proc.Waiting && e.p.Event == event {
			e.p.State = proc.Ready
			c.ready.insert(e.p)
			continue
		}
		keep = append(keep, e)
	}
	c.wait = keep
}

// handleStop is the shared Stop skeleton. adjust runs after the timing
// advance and before any requeue, so policy deltas (priority bumps,
// vruntime growth) are visible to the queue ordering.
func (c *core) handleStop(r StopReason, adjust func(p *proc.Process, r StopReason, consumed int64)) proc.Pid {
	if c.running == nil {
		return 0
	}
	consumed := c.consumedBy(r)
	c.advance(consumed)

	p := c.running
	if adjust != nil {
		adjust(p, r, consumed)
	}

	if r.Kind == StopExpired {
		c.demoteRunning()
		return 0
	}

	switch r.Syscall.Kind {
	case SyscallFork:
		child := c.createProcess(r.Syscall.Priority, r.Syscall.Extra)
		c.remaining = r.Remaining
		return child.Pid
	case SyscallSleep:
		c.running = nil
		p.State = proc.Sleeping
		c.wait = append(c.wait, waitEntry{p: p, countdown: r.Syscall.Amount})
	case SyscallWait:
		c.running = nil
		p.State = proc.Waiting
		p.Event = r.Syscall.Event
		c.wait = append(c.wait, waitEntry{p: p})
	case SyscallSignal:
		c.wake(r.Syscall.Event)
		c.remaining = r.Remaining
	case SyscallExit:
		c.running = nil
		if p.Pid == proc.Init {
			c.initExited = true
		}
	}
	return 0
}

// list snapshots every tracked record: running, then ready in policy
// order, then waiting in queue order.
func (c *core) list() []*proc.Process {
	out := make([]*proc.Process, 0, 1+c.ready.size()+len(c.wait))
	if c.running != nil {
		out = append(out, c.running)
	}
	c.ready.each(func(p *proc.Process) { out = append(out, p) })
	for _, e := range c.wait {
		out = append(out, e.p)
	}
	return out
}

func (c *core) TotalSlept() int64 { return c.totalSlept }
