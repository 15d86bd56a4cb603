package proc

// Pid identifies a process for the lifetime of one scheduler instance.
// Valid pids are positive; the zero value means "no process".
type Pid int64

// Init is the pid of the bootstrap process. Its exit poisons the
// scheduler for good.
const Init Pid = 1

// Event identifies a wake-up condition a process can wait on.
type Event int64

// State is the lifecycle state of a process.
type State int

const (
	Ready State = iota
	Running
	Sleeping // timed sleep, wakes when its countdown hits zero
	Waiting  // blocked until somebody signals the awaited event
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Sleeping:
		return "Sleeping"
	case Waiting:
		return "Waiting"
	default:
		return "Unknown"
	}
}

// Times holds the cumulative virtual-time accounting of one process.
// Total always equals Running + Ready + Waiting.
type Times struct {
	Total   int64
	Running int64
	Ready   int64
	Waiting int64
}

// Process is one schedulable unit. The scheduler owns the record
// exclusively; callers observe it through List and must not mutate it.
type Process struct {
	Pid   Pid
	State State
	Event Event // event awaited, meaningful only in state Waiting

	Priority        int
	DefaultPriority int // upper clamp for priority recovery

	Times    Times
	Vruntime float64 // fair-share bookkeeping, unused by the round-robin family

	// Extra is an opaque caller payload. The scheduler stores and
	// returns it but never looks inside.
	Extra any
}

// New creates a Ready process with the given pid and priority.
// Negative priorities are clamped to zero, mirroring the legal range.
func New(pid Pid, priority int, extra any) *Process {
	if priority < 0 {
		priority = 0
	}
	return &Process{
		Pid:             pid,
		State:           Ready,
		Priority:        priority,
		DefaultPriority: priority,
		Extra:           extra,
	}
}
