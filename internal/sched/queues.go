package sched

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/trees/redblacktree"

	"vtsched/internal/proc"
)

// readyQueue is the policy-ordered queue of runnable processes. Each
// policy supplies its own ordering; the shared core only pushes, pops
// and walks it.
type readyQueue interface {
	// insert places p at its policy-ordered position.
	insert(p *proc.Process)
	// pop removes and returns the head, nil when empty.
	pop() *proc.Process
	size() int
	// each visits every queued process in queue order.
	each(fn func(p *proc.Process))
}

// fifoQueue is strict arrival order: append at tail, pop from head.
type fifoQueue struct {
	list *arraylist.List
}

func newFifoQueue() *fifoQueue {
	return &fifoQueue{list: arraylist.New()}
}

func (q *fifoQueue) insert(p *proc.Process) {
	q.list.Add(p)
}

func (q *fifoQueue) pop() *proc.Process {
	v, ok := q.list.Get(0)
	if !ok {
		return nil
	}
	q.list.Remove(0)
	return v.(*proc.Process)
}

func (q *fifoQueue) size() int { return q.list.Size() }

func (q *fifoQueue) each(fn func(p *proc.Process)) {
	q.list.Each(func(_ int, v interface{}) { fn(v.(*proc.Process)) })
}

// priorityQueue keeps processes sorted by priority descending with
// FIFO order among equal priorities: a new entry goes after every
// entry of the same priority and before the first strictly lower one.
type priorityQueue struct {
	list *arraylist.List
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{list: arraylist.New()}
}

func (q *priorityQueue) insert(p *proc.Process) {
	at := -1
	q.list.Each(func(i int, v interface{}) {
		if at < 0 && v.(*proc.Process).Priority < p.Priority {
			at = i
		}
	})
	if at < 0 {
		q.list.Add(p)
		return
	}
	q.list.Insert(at, p)
}

func (q *priorityQueue) pop() *proc.Process {
	v, ok := q.list.Get(0)
	if !ok {
		return nil
	}
	q.list.Remove(0)
	return v.(*proc.Process)
}

func (q *priorityQueue) size() int { return q.list.Size() }

func (q *priorityQueue) each(fn func(p *proc.Process)) {
	q.list.Each(func(_ int, v interface{}) { fn(v.(*proc.Process)) })
}

// vkey orders the fair-share tree by virtual runtime, pid ascending on
// ties so selection stays deterministic.
type vkey struct {
	vruntime float64
	pid      proc.Pid
}

func vkeyCmp(a, b interface{}) int {
	ka, kb := a.(vkey), b.(vkey)
	switch {
	case ka.vruntime < kb.vruntime:
		return -1
	case ka.vruntime > kb.vruntime:
		return 1
	case ka.pid < kb.pid:
		return -1
	case ka.pid > kb.pid:
		return 1
	default:
		return 0
	}
}

// vruntimeQueue is a red-black tree keyed by (vruntime, pid). floor is
// the least vruntime ever dispatched; it only grows, and every insert
// lifts the incoming vruntime up to it so a fresh fork or a long
// sleeper cannot starve the processes already queued.
type vruntimeQueue struct {
	tree  *redblacktree.Tree
	floor float64
}

func newVruntimeQueue() *vruntimeQueue {
	return &vruntimeQueue{tree: redblacktree.NewWith(vkeyCmp)}
}

func (q *vruntimeQueue) insert(p *proc.Process) {
	if p.Vruntime < q.floor {
		p.Vruntime = q.floor
	}
	q.tree.Put(vkey{vruntime: p.Vruntime, pid: p.Pid}, p)
}

func (q *vruntimeQueue) pop() *proc.Process {
	node := q.tree.Left()
	if node == nil {
		return nil
	}
	key := node.Key.(vkey)
	q.tree.Remove(key)
	if key.vruntime > q.floor {
		q.floor = key.vruntime
	}
	return node.Value.(*proc.Process)
}

func (q *vruntimeQueue) size() int { return q.tree.Size() }

func (q *vruntimeQueue) each(fn func(p *proc.Process)) {
	for _, v := range q.tree.Values() {
		fn(v.(*proc.Process))
	}
}
