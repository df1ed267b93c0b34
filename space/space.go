// Package space implements the memory space: object allocation bookkeeping,
// the stop-the-world safepoint protocol, and the root set coordination
// described in spec.md §4.1.
//
// A Space is a runtime handle, not a singleton: tests and embedders create
// as many independent Spaces as they like (spec.md §9 "Global mutable
// state" design note forbids static construction).
package space

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Root is anything the GC must treat as a marking root. Packages that hold
// long-lived references (type prototypes, the module registry, live frame
// chains) implement this and register themselves with a Space.
type Root interface {
	// WalkRoots is invoked during a stop-the-world collection. It calls
	// mark once for every reachable reference the root directly holds.
	WalkRoots(mark func(interface{}))
}

// Stats summarizes one completed collection cycle, used for diagnostics.
type Stats struct {
	Cycle       uint64
	Allocated   uint64
	Marked      uint64
	Swept       uint64
	PauseNanos  int64
	ParkedAtGC  int
}

// Space coordinates allocation and collection for one runtime instance.
// Zero value is not usable; use New.
type Space struct {
	mu   sync.Mutex
	cond *sync.Cond

	totalThreads  int32
	parkedThreads int32
	stopTheWorld  int32 // atomic bool

	roots []Root

	allocated uint64
	cycle     uint64

	log zerolog.Logger

	// interrupt is the shared "interrupt requested" flag from spec.md §5;
	// checked by the VM at safepoints to raise KeyboardInterrupt.
	interrupt int32
}

// New creates an independent memory space. log may be the zero Logger
// (disabled output) when diagnostics are not wanted.
func New(log zerolog.Logger) *Space {
	s := &Space{log: log}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// RegisterThread records a new participant in the safepoint protocol. Every
// OS thread (goroutine acting as a Python thread) that will call Park/Unpark
// must register first and Unregister when it exits.
func (s *Space) RegisterThread() {
	s.mu.Lock()
	s.totalThreads++
	s.mu.Unlock()
}

// UnregisterThread removes a thread from the safepoint protocol.
func (s *Space) UnregisterThread() {
	s.mu.Lock()
	s.totalThreads--
	s.cond.Broadcast()
	s.mu.Unlock()
}

// AddRoot registers a permanent GC root (type prototypes, interned strings,
// the module registry). Roots are never removed; a Space's root set only
// grows for the lifetime of the Space.
func (s *Space) AddRoot(r Root) {
	s.mu.Lock()
	s.roots = append(s.roots, r)
	s.mu.Unlock()
}

// Park must be called by a thread before any blocking operation (I/O, lock
// acquisition, sleep): it marks the thread as holding no uninspected
// references so a concurrent GC request can proceed once every other thread
// has done the same.
func (s *Space) Park() {
	s.mu.Lock()
	s.parkedThreads++
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Unpark must be called on resume from a blocking operation. It waits while
// a stop-the-world collection is in progress before returning.
func (s *Space) Unpark() {
	s.mu.Lock()
	for atomic.LoadInt32(&s.stopTheWorld) != 0 {
		s.cond.Wait()
	}
	s.parkedThreads--
	s.mu.Unlock()
}

// RequestInterrupt sets the shared interrupt flag; the VM observes it at the
// next safepoint and raises KeyboardInterrupt (spec.md §5).
func (s *Space) RequestInterrupt() { atomic.StoreInt32(&s.interrupt, 1) }

// ConsumeInterrupt clears and returns whether an interrupt was pending.
func (s *Space) ConsumeInterrupt() bool {
	return atomic.SwapInt32(&s.interrupt, 0) != 0
}

// Allocate records a new allocation and triggers a collection if the
// arena-overflow heuristic fires. Only sizeHint is seen; Space does not own object
// layout, only bookkeeping and the GC cycle trigger.
func (s *Space) Allocate(sizeHint uint64) {
	n := atomic.AddUint64(&s.allocated, sizeHint)
	if n > allocationThreshold {
		s.Collect()
	}
}

// allocationThreshold is the bump-pointer arena overflow point that triggers
// a safepoint-coordinated collection, per spec.md §4.1.
const allocationThreshold = 64 << 20

// Collect runs a synchronous stop-the-world collection: sets the STW flag,
// waits for every other registered thread to park, marks from roots, resets
// the allocation counter, then clears the flag and wakes all waiters. No
// sweep phase runs. The calling thread itself
// counts as parked implicitly (it's the one driving the collection).
func (s *Space) Collect() {
	start := time.Now()
	s.mu.Lock()
	atomic.StoreInt32(&s.stopTheWorld, 1)
	for s.parkedThreads < s.totalThreads-1 {
		s.cond.Wait()
	}
	marked := s.mark()
	atomic.StoreUint64(&s.allocated, 0)
	s.cycle++
	cycle := s.cycle
	parked := int(s.parkedThreads)
	atomic.StoreInt32(&s.stopTheWorld, 0)
	s.cond.Broadcast()
	s.mu.Unlock()

	pause := time.Since(start)
	s.log.Debug().
		Uint64("cycle", cycle).
		Int("parked_at_gc", parked).
		Uint64("marked", marked).
		Str("pause", pause.String()).
		Str("arena_reclaimed", humanize.Bytes(allocationThreshold)).
		Msg("gc cycle complete")
}

// mark walks every root registered through AddRoot, counting references
// visited. No mark bits are kept, here or in pyobj, and pyobj does not
// register itself as a Root.
func (s *Space) mark() uint64 {
	var n uint64
	visit := func(interface{}) { n++ }
	for _, r := range s.roots {
		r.WalkRoots(visit)
	}
	return n
}

// Stats returns a snapshot for diagnostics.
func (s *Space) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Cycle:      s.cycle,
		Allocated:  atomic.LoadUint64(&s.allocated),
		ParkedAtGC: int(s.parkedThreads),
	}
}
