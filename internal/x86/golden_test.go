package x86

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestGoldenListing snapshots the fully flattened NASM text for a
// handful of representative programs. A diff here means either the
// generator or the lazy-ESP flattener stopped being deterministic
// (Testable Property 2) or silently changed its emission shape.
func TestGoldenListing(t *testing.T) {
	cases := map[string]string{
		"arithmetic": `int main(){ printInt(1+2*3); return 0; }`,
		"while_loop": `int main(){ int i = 0; while (i < 3) { printInt(i); i++; } return 0; }`,
		"if_else":    `int main(){ if (true && (1<2)) printString("ok"); else printString("no"); return 0; }`,
		"double_div": `double f(double a, double b){ return a/b; } int main(){ printDouble(f(1.0,3.0)); return 0; }`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			snaps.MatchSnapshot(t, asmText(t, src))
		})
	}
}
