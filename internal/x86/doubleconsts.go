package x86

import (
	"encoding/binary"
	"math"
)

// oneByteLoader pairs an x87 one-byte constant loader with the exact
// value it pushes, so a double literal matching one avoids a constant
// pool entry entirely (spec §4.4: "a small table of x87 one-byte
// loaders ... for six exact values").
type oneByteLoader struct {
	mnemonic string
	value    float64
}

var oneByteLoaders = []oneByteLoader{
	{"fld1", 1.0},
	{"fldpi", math.Pi},
	{"fldl2e", math.Log2(math.E)},
	{"fldl2t", math.Log2(10)},
	{"fldlg2", math.Log10(2)},
	{"fldln2", math.Ln2},
}

// loadDouble emits the shortest correct sequence to push v onto the
// x87 stack: a bare one-byte loader for one of the six exact
// constants, otherwise an 8-byte literal pulled from the constant
// pool.
func (b *Builder) loadDouble(v float64) {
	for _, l := range oneByteLoaders {
		if v == l.value {
			b.Line(l.mnemonic)
			return
		}
	}
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, math.Float64bits(v))
	label := b.ConstBytes(data)
	b.Line("fld qword [%s]", label)
}
