// Package worker implements the cross-worker tuple space STARTWORKERS
// spins up (spec §4.6): a pool of independent VM instances that share
// nothing but a set of per-type blocking FIFO queues. It registers
// itself into vm.StartWorkersHook rather than being imported directly
// by internal/vm, which would create an import cycle (internal/vm
// needs to trigger worker startup; internal/worker needs to construct
// *vm.VM instances to run workers on).
package worker

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"surge/internal/bytecode"
	"surge/internal/vm"
)

func init() {
	vm.StartWorkersHook = Start
}

// maxWorkerThreads mirrors original_source/vm.cpp's cap on the
// STARTWORKERS thread count.
const maxWorkerThreads = 256

// tupleQueue is one UDT type's FIFO mailbox: WorkerWrite appends,
// WorkerRead blocks until an item is available or the space closes.
type tupleQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  [][]vm.Value
	closed bool
}

func newTupleQueue() *tupleQueue {
	q := &tupleQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *tupleQueue) push(tuple []vm.Value) {
	q.mu.Lock()
	q.items = append(q.items, tuple)
	q.cond.Signal()
	q.mu.Unlock()
}

func (q *tupleQueue) pop() ([]vm.Value, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *tupleQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Space is the shared state a STARTWORKERS call creates: one tupleQueue
// per UDT type index, plus the errgroup tracking the worker VMs
// themselves (spec §4.6). It implements vm.TupleSpaceHost.
type Space struct {
	mu         sync.Mutex
	queues     map[int32]*tupleQueue
	terminated bool
	group      *errgroup.Group
}

// Start launches numThreads independent worker VMs, each running f from
// its entry point with its own heap and stack but sharing this Space,
// and returns the host the calling VM's STARTWORKERS opcode should
// drive (original_source/vm.cpp VM::StartWorkers).
func Start(f *bytecode.File, opts vm.Options, numThreads int64) (vm.TupleSpaceHost, error) {
	if numThreads <= 0 {
		return nil, fmt.Errorf("worker: numthreads must be positive, got %d", numThreads)
	}
	if numThreads > maxWorkerThreads {
		numThreads = maxWorkerThreads
	}

	sp := &Space{queues: make(map[int32]*tupleQueue)}
	g := new(errgroup.Group)
	for i := int64(0); i < numThreads; i++ {
		g.Go(func() error {
			w := vm.New(f, opts)
			w.IsWorker = true
			w.Workers = sp
			_, verr := w.Run()
			if verr != nil {
				return verr
			}
			return nil
		})
	}
	sp.group = g
	return sp, nil
}

func (s *Space) queueFor(typeIdx int32) *tupleQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[typeIdx]
	if !ok {
		q = newTupleQueue()
		if s.terminated {
			q.close()
		}
		s.queues[typeIdx] = q
	}
	return q
}

// Write publishes tuple under typeIdx, waking one blocked reader if any
// (vm.cpp VM::WorkerWrite).
func (s *Space) Write(typeIdx int32, tuple []vm.Value) error {
	s.queueFor(typeIdx).push(tuple)
	return nil
}

// Read blocks until a tuple of typeIdx is available, or the space has
// been terminated with none pending, in which case ok is false
// (vm.cpp VM::WorkerRead).
func (s *Space) Read(typeIdx int32) ([]vm.Value, bool) {
	return s.queueFor(typeIdx).pop()
}

// Terminate closes every queue, waking any blocked readers, then waits
// for all worker VMs to finish running (vm.cpp VM::TerminateWorkers).
// Errors from worker VMs are discarded here; a worker's own VMError
// already ran through its own Run, and STARTWORKERS's caller isn't in
// a position to recover from a peer worker's runtime error.
func (s *Space) Terminate() {
	s.mu.Lock()
	s.terminated = true
	for _, q := range s.queues {
		q.close()
	}
	s.mu.Unlock()
	if s.group != nil {
		_ = s.group.Wait()
	}
}
