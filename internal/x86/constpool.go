package x86

import (
	"encoding/hex"
	"fmt"
)

// ConstPool deduplicates constant byte sequences by content, handing
// each distinct value a stable label to be emitted once at the end of
// `.text` (spec §4.6: "bucket its bytes (deduplicated by content) for
// emission at the end of .text").
type ConstPool struct {
	labels map[string]string
	order  []string
	data   map[string][]byte
	next   int
}

func NewConstPool() *ConstPool {
	return &ConstPool{
		labels: make(map[string]string),
		data:   make(map[string][]byte),
	}
}

// Intern returns the label bound to data, minting a fresh one the
// first time a given byte sequence is seen.
func (p *ConstPool) Intern(data []byte) string {
	key := hex.EncodeToString(data)
	if label, ok := p.labels[key]; ok {
		return label
	}
	label := fmt.Sprintf("_const_%d", p.next)
	p.next++
	p.labels[key] = label
	p.data[key] = data
	p.order = append(p.order, key)
	return label
}

// Entries returns (label, bytes) pairs in first-interned order, the
// order Flatten writes them to the output.
func (p *ConstPool) Entries() []struct {
	Label string
	Bytes []byte
} {
	out := make([]struct {
		Label string
		Bytes []byte
	}, len(p.order))
	for i, key := range p.order {
		out[i].Label = p.labels[key]
		out[i].Bytes = p.data[key]
	}
	return out
}
