// Package arenapool implements the arena pool described in SPEC_FULL.md C7
// / §4.6: a small fixed-size pool of arenas behind an atomic
// checkout/return discipline, for host embedders that need to hand
// short-lived arenas to worker goroutines without allocating one per
// request. Slots are tagged with a stable uuid.UUID identity (there is no
// Rust FFI boundary to make pointer identity meaningful here) purely so a
// host can correlate "which slot is checked out" across log lines.
package arenapool

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/evalerr"
)

type slot struct {
	id     uuid.UUID
	arena  *arena.Arena
	inUse  atomic.Bool
}

// Checkout is a handle returned by Pool.Checkout. Release must be called
// exactly once to return the slot to the pool.
type Checkout struct {
	pool *Pool
	idx  int
}

// Arena returns the checked-out arena.
func (c Checkout) Arena() *arena.Arena { return c.pool.slots[c.idx].arena }

// ID returns the stable identity of the checked-out slot.
func (c Checkout) ID() uuid.UUID { return c.pool.slots[c.idx].id }

// Release flips the slot's in_use flag back to false, making it available
// to the next Checkout. It does not reset the arena: Checkout does that on
// acquisition, mirroring the spec's "checkout... resets the arena" order
// (an arena's final contents survive until the next checkout, which can
// be useful for a host inspecting it post-hoc before it's recycled).
func (c Checkout) Release() {
	c.pool.slots[c.idx].inUse.Store(false)
	atomic.AddInt64(&c.pool.active, -1)
}

// Pool is a fixed-size set of arenas behind atomic per-slot checkout
// flags, matching §5's "checkout and drop use atomic compare-and-swap on
// per-slot flags; the pool's active-count is an atomic counter".
type Pool struct {
	slots  []slot
	active int64
}

// New creates a pool of k arenas, each with the given node/argument
// capacity.
func New(k, nodeCapacity, argCapacity int) *Pool {
	p := &Pool{slots: make([]slot, k)}
	for i := range p.slots {
		p.slots[i] = slot{
			id:    uuid.New(),
			arena: arena.New(nodeCapacity, argCapacity),
		}
	}
	return p
}

// Checkout linearly scans for a slot whose in_use flag can be atomically
// flipped false->true, resets its arena, and returns a handle. Returns
// ok=false on exhaustion; callers retry or fail, per §4.6.
func (p *Pool) Checkout() (Checkout, bool) {
	for i := range p.slots {
		if p.slots[i].inUse.CompareAndSwap(false, true) {
			p.slots[i].arena.Reset()
			atomic.AddInt64(&p.active, 1)
			return Checkout{pool: p, idx: i}, true
		}
	}
	return Checkout{}, false
}

// Stats reports the pool's current occupancy, with each in-use slot's
// stable UUID for host diagnostics.
type Stats struct {
	Capacity  int
	Active    int64
	InUseIDs  []uuid.UUID
}

// Stats snapshots the pool's occupancy. Not synchronized against
// concurrent Checkout/Release beyond the atomics backing each field, so
// the InUseIDs list is best-effort.
func (p *Pool) Stats() Stats {
	s := Stats{Capacity: len(p.slots), Active: atomic.LoadInt64(&p.active)}
	for i := range p.slots {
		if p.slots[i].inUse.Load() {
			s.InUseIDs = append(s.InUseIDs, p.slots[i].id)
		}
	}
	return s
}

var (
	global     *Pool
	globalInit atomic.Bool
)

// InitGlobal initializes the single process-wide pool. Subsequent calls
// return AlreadyInitialized rather than silently resizing or replacing it,
// per §9's "implementers must not silently resize".
func InitGlobal(k, nodeCapacity, argCapacity int) error {
	if !globalInit.CompareAndSwap(false, true) {
		return evalerr.NewAlreadyInitialized()
	}
	global = New(k, nodeCapacity, argCapacity)
	return nil
}

// Global returns the process-wide pool, or nil if InitGlobal was never
// called.
func Global() *Pool {
	return global
}
