package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtsched/internal/proc"
)

// requireTimings asserts the bookkeeping identity every record must
// satisfy at any checkpoint.
func requireTimings(t *testing.T, s Scheduler) {
	t.Helper()
	for _, p := range s.List() {
		sum := p.Times.Running + p.Times.Ready + p.Times.Waiting
		require.Equal(t, p.Times.Total, sum,
			"pid %d: total %d != running %d + ready %d + waiting %d",
			p.Pid, p.Times.Total, p.Times.Running, p.Times.Ready, p.Times.Waiting)
	}
}

func TestDeadlockWhenOnlyEventWaitersRemain(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(WaitStop(7, 3))
	requireRun(t, s.Next(), 2, 5)
	s.Stop(WaitStop(9, 3))

	d := s.Next()
	require.Equal(t, DecisionDeadlock, d.Kind)
}

func TestSleeperPreventsDeadlock(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(WaitStop(7, 3))
	requireRun(t, s.Next(), 2, 5)
	s.Stop(SleepStop(4, 3))

	d := s.Next()
	require.Equal(t, DecisionSleep, d.Kind)
	require.Equal(t, int64(4), d.Amount)
}

func TestPanicWhenInitExitsWithProcessesLeft(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(ExitStop(2))

	require.Equal(t, DecisionPanic, s.Next().Kind)
	// The condition latches: asking again does not unpoison anything.
	require.Equal(t, DecisionPanic, s.Next().Kind)
}

func TestPanicWhenOnlyWaitersRemainAfterInitExit(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(Expired())
	requireRun(t, s.Next(), 2, 5)
	s.Stop(SleepStop(50, 3))
	requireRun(t, s.Next(), 1, 5)
	s.Stop(ExitStop(2))

	require.Equal(t, DecisionPanic, s.Next().Kind)
}

func TestDoneWhenInitExitsLast(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(ExitStop(1))

	require.Equal(t, DecisionDone, s.Next().Kind)
}

func TestSignalWakesEveryMatchingWaiter(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(Expired())
	requireRun(t, s.Next(), 2, 5)
	s.Stop(WaitStop(7, 4))
	requireRun(t, s.Next(), 3, 5)
	s.Stop(WaitStop(7, 4))

	requireRun(t, s.Next(), 1, 5)
	s.Stop(SignalStop(7, 3))

	assert.Equal(t, proc.Running, findProc(t, s, 1).State)
	assert.Equal(t, proc.Ready, findProc(t, s, 2).State)
	assert.Equal(t, proc.Ready, findProc(t, s, 3).State)

	// Woken in their original relative order, behind nobody.
	requireRun(t, s.Next(), 1, 3) // signaler keeps its leftover slice
	s.Stop(Expired())
	requireRun(t, s.Next(), 2, 5)
}

func TestSignalNobodyWaitsOnIsANoop(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(WaitStop(7, 3))
	requireRun(t, s.Next(), 2, 5)
	s.Stop(SignalStop(99, 3))

	assert.Equal(t, proc.Waiting, findProc(t, s, 1).State)
	assert.Equal(t, proc.Running, findProc(t, s, 2).State)
}

func TestSignalDoesNotWakeSleepers(t *testing.T) {
	s := NewRoundRobin(5, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 5)
	s.Stop(SleepStop(40, 3))
	requireRun(t, s.Next(), 2, 5)
	s.Stop(SignalStop(0, 3))

	assert.Equal(t, proc.Sleeping, findProc(t, s, 1).State)
}

func TestAtMostOneRunningProcess(t *testing.T) {
	s := NewRoundRobin(3, 1)
	for i := 0; i < 4; i++ {
		s.CreateProcess(0, nil)
	}

	for i := 0; i < 12; i++ {
		d := s.Next()
		require.Equal(t, DecisionRun, d.Kind)

		running := 0
		for _, p := range s.List() {
			if p.State == proc.Running {
				running++
				require.Equal(t, d.Pid, p.Pid)
			}
		}
		require.Equal(t, 1, running)
		s.Stop(Expired())
	}
}

func TestTimingIdentityThroughMixedRun(t *testing.T) {
	s := NewRoundRobin(4, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 4)
	requireTimings(t, s)
	s.Stop(ForkStop(0, nil, 2))
	requireTimings(t, s)

	requireRun(t, s.Next(), 1, 2)
	s.Stop(SleepStop(6, 1))
	requireTimings(t, s)

	requireRun(t, s.Next(), 2, 4)
	s.Stop(Expired())
	requireTimings(t, s)

	requireRun(t, s.Next(), 3, 4)
	s.Stop(WaitStop(5, 2))
	requireTimings(t, s)

	requireRun(t, s.Next(), 2, 4)
	s.Stop(SignalStop(5, 1))
	requireTimings(t, s)

	requireRun(t, s.Next(), 2, 1)
	s.Stop(Expired())
	requireTimings(t, s)

	d := s.Next()
	require.Equal(t, DecisionRun, d.Kind)
	requireTimings(t, s)
}

func TestStopWithoutRunningProcessIsIgnored(t *testing.T) {
	s := NewRoundRobin(4, 1)
	s.CreateProcess(0, nil)

	assert.Equal(t, proc.Pid(0), s.Stop(Expired()))
	requireRun(t, s.Next(), 1, 4)
}

func TestListOrderIsStable(t *testing.T) {
	s := NewRoundRobin(4, 1)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 4)

	a := s.List()
	b := s.List()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Pid, b[i].Pid)
	}
	// Running slot occupant comes first.
	assert.Equal(t, proc.Pid(1), a[0].Pid)
	assert.Equal(t, proc.Running, a[0].State)
}

func TestPidsNeverReusedAcrossExits(t *testing.T) {
	s := NewRoundRobin(4, 1)
	s.CreateProcess(0, nil)

	requireRun(t, s.Next(), 1, 4)
	child := s.Stop(ForkStop(0, nil, 3))
	require.Equal(t, proc.Pid(2), child)

	requireRun(t, s.Next(), 1, 3)
	s.Stop(Expired())
	requireRun(t, s.Next(), 2, 4)
	s.Stop(ExitStop(2)) // pid 2 gone for good

	requireRun(t, s.Next(), 1, 4)
	child = s.Stop(ForkStop(0, nil, 3))
	assert.Equal(t, proc.Pid(3), child, "exited pid must not be recycled")
}
