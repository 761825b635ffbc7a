// Package arena implements the bump allocator described in SPEC_FULL.md
// C1: a linear allocator that hands out ast.Node values (and FunctionCall
// argument pointers) from pre-sized backing slices and frees nothing
// individually. Reset rewinds the high-water mark without releasing the
// backing arrays, mirroring the original Rust implementation's bumpalo::Bump.
package arena

import (
	"unsafe"

	"github.com/perbu/expreval/pkg/ast"
	"github.com/perbu/expreval/pkg/evalerr"
)

// Arena is a bump allocator for ast.Node values and FunctionCall argument
// pointers. It is not safe for concurrent use; an arena handed to one
// batch engine must not be used by another concurrently (see pkg/arenapool
// for the checkout discipline that enforces this across goroutines).
type Arena struct {
	nodes []ast.Node
	args  []*ast.Node
}

// New creates an Arena with fixed node and argument-pointer capacities.
// Exceeding either capacity returns a CapacityExceeded error rather than
// growing, so a caller that sizes the arena once at startup gets the
// zero-allocation guarantee for every subsequent parse or eval.
func New(nodeCapacity, argCapacity int) *Arena {
	return &Arena{
		nodes: make([]ast.Node, 0, nodeCapacity),
		args:  make([]*ast.Node, 0, argCapacity),
	}
}

// Alloc bump-allocates one ast.Node of the given kind and returns a pointer
// into the arena's backing slice. The pointer stays valid until Reset.
func (a *Arena) Alloc(kind ast.Kind) (*ast.Node, error) {
	if len(a.nodes) == cap(a.nodes) {
		return nil, evalerr.NewCapacityExceeded("arena nodes")
	}
	a.nodes = append(a.nodes, ast.Node{Kind: kind})
	return &a.nodes[len(a.nodes)-1], nil
}

// AllocArgs reserves n contiguous argument-pointer slots for a FunctionCall
// node and returns their offset into the shared pool; use SetArg to fill
// them in and Args to read them back.
func (a *Arena) AllocArgs(n int) (int, error) {
	if n == 0 {
		return 0, nil
	}
	if len(a.args)+n > cap(a.args) {
		return 0, evalerr.NewCapacityExceeded("arena args")
	}
	start := len(a.args)
	for i := 0; i < n; i++ {
		a.args = append(a.args, nil)
	}
	return start, nil
}

// SetArg fills in one previously reserved argument slot.
func (a *Arena) SetArg(offset int, node *ast.Node) {
	a.args[offset] = node
}

// Args returns the n argument pointers starting at offset, as reserved by
// a matching AllocArgs call.
func (a *Arena) Args(offset, n int) []*ast.Node {
	return a.args[offset : offset+n]
}

// Reset returns the high-water mark to zero, making the whole capacity
// available for reuse. It does not zero existing slot contents; those are
// overwritten as new allocations claim them.
func (a *Arena) Reset() {
	a.nodes = a.nodes[:0]
	a.args = a.args[:0]
}

var nodeSize = int(unsafe.Sizeof(ast.Node{}))
var argPtrSize = int(unsafe.Sizeof((*ast.Node)(nil)))

// Allocated returns the number of bytes currently bump-allocated, for the
// "arena monotonicity" testable property: after setup, this value must not
// change across any number of subsequent eval cycles.
func (a *Arena) Allocated() int {
	return len(a.nodes)*nodeSize + len(a.args)*argPtrSize
}

// Capacity returns the arena's total byte budget.
func (a *Arena) Capacity() int {
	return cap(a.nodes)*nodeSize + cap(a.args)*argPtrSize
}

// NodeCount and ArgCount expose the raw slot counts, mainly for tests.
func (a *Arena) NodeCount() int { return len(a.nodes) }
func (a *Arena) ArgCount() int  { return len(a.args) }
