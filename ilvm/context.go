package ilvm

import "github.com/reusee/softplc/datatables"

// Signal is the control result of one operation.
type Signal uint8

const (
	SignalNone Signal = iota
	SignalReturn
	SignalEndScan
)

// Operation executes one compiled instruction against a Context.
type Operation func(cx *Context) (Signal, error)

// stateKey identifies per-instruction persistent state: timer accumulators,
// counter edges, previous values for edge contacts.
type stateKey struct {
	Opcode string
	Addr   string
}

type opState struct {
	prevInputs [3]bool
	acc        float64
	seeded     bool
}

// maxCallDepth bounds CALL nesting. The source language does not forbid
// recursive subroutines, so overflow surfaces as a runtime error instead.
const maxCallDepth = 64

// Context is the mutable execution state shared by all operations of one
// interpreter: the data table, the boolean logic stack with its cached top,
// per-instruction state, and the owning interpreter for scan timing.
type Context struct {
	Table *datatables.DataTable

	stack []bool
	top   bool

	subroutines map[string][]*Network
	state       map[stateKey]*opState

	interp    *Interpreter
	callDepth int
}

func newContext(table *datatables.DataTable, subroutines map[string][]*Network) *Context {
	return &Context{
		Table:       table,
		stack:       make([]bool, 0, 32),
		subroutines: subroutines,
		state:       make(map[stateKey]*opState),
	}
}

// resetStack clears the logic stack at the start of each network.
func (cx *Context) resetStack() {
	cx.stack = cx.stack[:0]
	cx.top = false
}

func (cx *Context) push(v bool) {
	cx.stack = append(cx.stack, v)
	cx.top = v
}

func (cx *Context) pop() bool {
	if len(cx.stack) == 0 {
		return false
	}
	v := cx.stack[len(cx.stack)-1]
	cx.stack = cx.stack[:len(cx.stack)-1]
	if len(cx.stack) > 0 {
		cx.top = cx.stack[len(cx.stack)-1]
	} else {
		cx.top = false
	}
	return v
}

// setTop replaces the top of the stack, pushing if the stack is empty.
func (cx *Context) setTop(v bool) {
	if len(cx.stack) == 0 {
		cx.stack = append(cx.stack, v)
	} else {
		cx.stack[len(cx.stack)-1] = v
	}
	cx.top = v
}

// inputs returns the top n stack entries in declaration order: the block's
// first rung input is the deepest of the n. Missing entries read false.
func (cx *Context) inputs(n int) [3]bool {
	var in [3]bool
	for i := 0; i < n; i++ {
		pos := len(cx.stack) - n + i
		if pos >= 0 {
			in[i] = cx.stack[pos]
		}
	}
	return in
}

// stateFor returns the persistent state slot for (opcode, addr), creating it
// on first use.
func (cx *Context) stateFor(opcode, addr string) *opState {
	key := stateKey{Opcode: opcode, Addr: addr}
	s, ok := cx.state[key]
	if !ok {
		s = &opState{}
		cx.state[key] = s
	}
	return s
}

// scanTime returns the previous scan's duration in milliseconds, the time
// base for timer accumulation.
func (cx *Context) scanTime() float64 {
	if cx.interp == nil {
		return 0
	}
	return cx.interp.stats.LastTime
}
