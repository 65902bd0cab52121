package x86

import "fmt"

// env tracks one function's virtual stack pointer and the slot token
// assigned to each local variable id, plus each parameter's fixed
// cdecl offset (spec §4.6 "Locals"/"Calling convention").
type env struct {
	vsp    int         // bytes allocated to locals so far in this frame
	slots  map[int]int // variable id -> byte offset (negative, below the frame base)
	params map[int]int // variable id -> byte offset (positive, caller's frame)
}

func newEnv() *env {
	return &env{slots: make(map[int]int), params: make(map[int]int)}
}

// bindParam records the slot token for the i-th parameter: cdecl
// places the first parameter just above the return address (spec
// §4.6: "parameters are addressed as [esp + 4·(i+1) + esp_offset]").
func (e *env) bindParam(id, i int) {
	e.params[id] = 4 * (i + 1)
}

// declare grows vsp by size and assigns id a fresh slot below the
// current frame base, returning the byte delta the caller must
// materialize via SubESP to make room for it.
func (e *env) declare(id, size int) int {
	e.vsp += size
	e.slots[id] = -e.vsp
	return size
}

// mark/restore bracket a Block: saving vsp on entry and returning the
// byte count to give back via AddESP on exit (spec §4.6: "an
// add esp, (vsp_out − vsp_in) undoes the block's allocations").
func (e *env) mark() int { return e.vsp }

func (e *env) restore(saved int) int {
	delta := e.vsp - saved
	e.vsp = saved
	return delta
}

// allocTemp reserves a scratch slot below the current frame for a
// value with no Javalette variable id (a cast's saved control word, a
// builtin's format buffer) and returns its address token directly.
// freeTemp gives the space back; callers must free in the reverse
// order they allocated, matching the SubESP/AddESP bracket the caller
// wraps around it.
func (e *env) allocTemp(size int) string {
	e.vsp += size
	return fmt.Sprintf("##(%d)", -e.vsp)
}

func (e *env) freeTemp(size int) {
	e.vsp -= size
}

// slotToken is the opaque `##(k)` address token the flattener
// rewrites against the live esp counter, for either a local or a
// parameter binding.
func (e *env) slotToken(id int) string {
	if k, ok := e.slots[id]; ok {
		return fmt.Sprintf("##(%d)", k)
	}
	return fmt.Sprintf("##(%d)", e.params[id])
}
