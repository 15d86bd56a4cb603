package proc

// PidAllocator hands out strictly increasing pids starting at 1.
// Pids are never reused within one scheduler instance, so there is no
// release path. The scheduler is single-threaded by contract, hence no
// locking.
type PidAllocator struct {
	next Pid
}

// NewPidAllocator returns an allocator whose first pid is Init (1).
func NewPidAllocator() *PidAllocator {
	return &PidAllocator{next: Init}
}

// Alloc returns the next pid and advances the counter.
func (a *PidAllocator) Alloc() Pid {
	p := a.next
	a.next++
	return p
}
