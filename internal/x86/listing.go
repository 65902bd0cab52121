// Package x86 compiles a Javalette AST to 32-bit x86/NASM text (spec
// §4.6): a tree walk builds an intermediate Listing over a small
// pseudo-op alphabet, then a single flattening pass (Flatten) resolves
// the lazy stack-pointer bookkeeping and renders real NASM source.
package x86

import "fmt"

// Kind identifies one item in a Listing.
type Kind int

const (
	KindLine Kind = iota
	KindLabel
	KindExtern
	KindConst
	KindSyncESP
	KindSubESP
	KindAddESP
	KindReturn
)

// Item is one entry of the listing alphabet `{Const, Extern, Label,
// plain-text line, SyncESP, SubESP(n), AddESP(n), Return}` (spec
// §4.6).
type Item struct {
	Kind   Kind
	Text   string // KindLine: raw instruction text; KindLabel/KindExtern: the symbol
	Public bool   // KindLabel only: emit a GLOBAL directive first
	N      int    // KindSubESP/KindAddESP: the byte delta
	Label  string // KindConst: the constant's pool label
	Bytes  []byte // KindConst: its raw byte content
}

// Listing is an ordered sequence of pseudo-instructions, accumulated
// by a Builder and rendered to NASM text by Flatten.
type Listing []Item

// Builder accumulates a Listing through named helper methods, so
// generator code reads like the operations it emits rather than like
// raw slice literals.
type Builder struct {
	items Listing
	pool  *ConstPool
}

func NewBuilder(pool *ConstPool) *Builder {
	return &Builder{pool: pool}
}

// Line appends one raw NASM instruction, built with fmt.Sprintf so
// callers can inline operands directly.
func (b *Builder) Line(format string, args ...interface{}) {
	b.items = append(b.items, Item{Kind: KindLine, Text: fmt.Sprintf(format, args...)})
}

// Label emits a (possibly public) label.
func (b *Builder) Label(name string, public bool) {
	b.items = append(b.items, Item{Kind: KindLabel, Text: name, Public: public})
}

// Extern declares an external symbol resolved at link time.
func (b *Builder) Extern(sym string) {
	b.items = append(b.items, Item{Kind: KindExtern, Text: sym})
}

// SyncESP discards the flattener's running counters: control flow is
// re-entering from a known, already-materialized stack state.
func (b *Builder) SyncESP() {
	b.items = append(b.items, Item{Kind: KindSyncESP})
}

// SubESP records a pseudo `sub esp, n` not yet materialized.
func (b *Builder) SubESP(n int) {
	b.items = append(b.items, Item{Kind: KindSubESP, N: n})
}

// AddESP records a pseudo `add esp, n` not yet materialized.
func (b *Builder) AddESP(n int) {
	b.items = append(b.items, Item{Kind: KindAddESP, N: n})
}

// Return emits the Return pseudo-op the flattener resolves to a
// stack-restoring `add esp` (if needed) followed by `ret`.
func (b *Builder) Return() {
	b.items = append(b.items, Item{Kind: KindReturn})
}

// ConstBytes reserves (or reuses) a pool slot for raw bytes and
// returns the label to address it by.
func (b *Builder) ConstBytes(data []byte) string {
	return b.pool.Intern(data)
}

// Emit appends another listing's items wholesale, letting sub-walks
// (an expression, a statement, a whole function) compose.
func (b *Builder) Emit(l Listing) {
	b.items = append(b.items, l...)
}

// Listing returns the accumulated items.
func (b *Builder) Listing() Listing {
	return b.items
}
