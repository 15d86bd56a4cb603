package sched

import (
	"fmt"

	"vtsched/internal/proc"
)

// DecisionKind enumerates what the scheduler tells the CPU to do next.
type DecisionKind int

const (
	DecisionRun DecisionKind = iota
	DecisionSleep
	DecisionDone
	DecisionDeadlock
	DecisionPanic
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRun:
		return "Run"
	case DecisionSleep:
		return "Sleep"
	case DecisionDone:
		return "Done"
	case DecisionDeadlock:
		return "Deadlock"
	case DecisionPanic:
		return "Panic"
	default:
		return "Unknown"
	}
}

// Decision is the outcome of one Next call.
//
// Run carries the pid to dispatch and its timeslice in Amount.
// Sleep carries the idle duration in Amount: the CPU has nothing
// runnable and must idle that long before asking again.
// Deadlock and Panic are fatal; the harness decides whether to halt.
type Decision struct {
	Kind   DecisionKind
	Pid    proc.Pid
	Amount int64
}

func RunDecision(pid proc.Pid, timeslice int64) Decision {
	return Decision{Kind: DecisionRun, Pid: pid, Amount: timeslice}
}

func SleepDecision(amount int64) Decision {
	return Decision{Kind: DecisionSleep, Amount: amount}
}

func (d Decision) String() string {
	switch d.Kind {
	case DecisionRun:
		return fmt.Sprintf("Run(%d, %d)", d.Pid, d.Amount)
	case DecisionSleep:
		return fmt.Sprintf("Sleep(%d)", d.Amount)
	default:
		return d.Kind.String()
	}
}

// SyscallKind enumerates the syscalls a running process can issue.
type SyscallKind int

const (
	SyscallFork SyscallKind = iota
	SyscallSleep
	SyscallWait
	SyscallSignal
	SyscallExit
)

func (k SyscallKind) String() string {
	switch k {
	case SyscallFork:
		return "Fork"
	case SyscallSleep:
		return "Sleep"
	case SyscallWait:
		return "Wait"
	case SyscallSignal:
		return "Signal"
	case SyscallExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// Syscall is the payload of a syscall stop.
type Syscall struct {
	Kind     SyscallKind
	Priority int        // Fork: priority of the child
	Extra    any        // Fork: opaque payload of the child
	Amount   int64      // Sleep: virtual duration, always > 0 (filtered upstream)
	Event    proc.Event // Wait, Signal
}

// StopKind says whether the running process was preempted or yielded.
type StopKind int

const (
	StopExpired StopKind = iota
	StopSyscall
)

// StopReason reports why the previously dispatched process stopped.
// Remaining is the unconsumed part of its timeslice as observed by the
// harness; it is zero for an expiry and lets the scheduler compute how
// much virtual time the process actually ran.
type StopReason struct {
	Kind      StopKind
	Syscall   Syscall
	Remaining int64
}

func Expired() StopReason {
	return StopReason{Kind: StopExpired}
}

func ForkStop(priority int, extra any, remaining int64) StopReason {
	return StopReason{
		Kind:      StopSyscall,
		Syscall:   Syscall{Kind: SyscallFork, Priority: priority, Extra: extra},
		Remaining: remaining,
	}
}

func SleepStop(amount, remaining int64) StopReason {
	return StopReason{
		Kind:      StopSyscall,
		Syscall:   Syscall{Kind: SyscallSleep, Amount: amount},
		Remaining: remaining,
	}
}

func WaitStop(event proc.Event, remaining int64) StopReason {
	return StopReason{
		Kind:      StopSyscall,
		Syscall:   Syscall{Kind: SyscallWait, Event: event},
		Remaining: remaining,
	}
}

func SignalStop(event proc.Event, remaining int64) StopReason {
	return StopReason{
		Kind:      StopSyscall,
		Syscall:   Syscall{Kind: SyscallSignal, Event: event},
		Remaining: remaining,
	}
}

func ExitStop(remaining int64) StopReason {
	return StopReason{
		Kind:      StopSyscall,
		Syscall:   Syscall{Kind: SyscallExit},
		Remaining: remaining,
	}
}

func (r StopReason) String() string {
	if r.Kind == StopExpired {
		return "Expired"
	}
	return r.Syscall.Kind.String()
}

// Scheduler is the decision contract shared by every policy. The
// harness drives it strictly sequentially: Next to learn what to do,
// Stop to report why the dispatched process stopped. List is read-only
// introspection over every tracked record.
type Scheduler interface {
	// CreateProcess registers a new Ready process and returns its pid.
	// Used to bootstrap pid 1 and any harness-injected processes.
	CreateProcess(priority int, extra any) proc.Pid

	// Next decides what the CPU should do now.
	Next() Decision

	// Stop reports why the running process stopped. For a Fork it
	// returns the child's pid; otherwise it returns 0.
	Stop(reason StopReason) proc.Pid

	// List returns every tracked record: running first, then ready in
	// policy order, then waiting in queue order.
	List() []*proc.Process

	// TotalSlept is the cumulative virtual time the CPU has idled.
	TotalSlept() int64
}
