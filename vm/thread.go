package vm

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/space"
)

// Thread holds the per-goroutine state shared by every Frame on one call
// stack: the pending exception slot spec.md §4.1 requires, and a small
// object-identity recursion guard for repr(). Adapted nearly verbatim in
// shape from runtime/threading.go's threadState, the one piece of teacher
// logic DESIGN.md calls out as reused with the least modification.
type Thread struct {
	Space        *space.Space
	Builtins     *pyobj.Object // the builtins module namespace, set by package env
	Importer     ModuleImporter
	PendingExc   *pyobj.Object
	PendingCause *pyobj.Object
	reprState    map[*pyobj.Object]bool
	frameCache   *Frame
}

// ModuleImporter resolves a dotted module name to its namespace object,
// implemented by package importer/env so that vm never imports either
// (vm sits below them in the dependency order: space/collection/bytecode
// -> pyobj -> vm -> compiler -> importer -> env).
type ModuleImporter interface {
	Import(name string) (*pyobj.Object, error)
}

// NewThread creates a Thread bound to sp and registers it with sp's
// safepoint protocol (RegisterThread); it is not added as a GC root.
func NewThread(sp *space.Space) *Thread {
	t := &Thread{Space: sp, reprState: make(map[*pyobj.Object]bool)}
	if sp != nil {
		sp.RegisterThread()
	}
	return t
}

// RecursiveMutex is a reentrant lock keyed by Thread identity, the same
// "typical reentrant lock, similar to Python's RLock" construction as
// runtime/threading.go's recursiveMutex, used here to guard the import
// table against concurrent re-entrant imports (spec.md §4.7 "import holds a
// process-wide re-entrant lock for the duration of a module's first
// execution").
type RecursiveMutex struct {
	mutex  sync.Mutex
	owner  *Thread
	count  int
}

func (m *RecursiveMutex) Lock(t *Thread) {
	p := (*unsafe.Pointer)(unsafe.Pointer(&m.owner))
	if (*Thread)(atomic.LoadPointer(p)) != t {
		m.mutex.Lock()
		atomic.StorePointer(p, unsafe.Pointer(t))
		m.count++
	} else {
		m.count++
	}
}

func (m *RecursiveMutex) Unlock(t *Thread) {
	p := (*unsafe.Pointer)(unsafe.Pointer(&m.owner))
	if (*Thread)(atomic.LoadPointer(p)) != t {
		panic("RecursiveMutex.Unlock: thread did not match Lock caller")
	}
	m.count--
	if m.count == 0 {
		atomic.StorePointer(p, nil)
		m.mutex.Unlock()
	}
}
