package x86

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// stackOpDelta maps a real stack-touching mnemonic to the change it
// makes to the flattener's `esp` counter (spec §4.6: "push → +4,
// pop → −4; pushaw/other wide forms unsupported"). The counter tracks
// how far local-slot addressing must reach past the function's
// original frame to account for real pushes/pops emitted since the
// last SyncESP — not the signed direction the CPU register itself
// moves.
var stackOpDelta = map[string]int{
	"push": 4,
	"pop":  -4,
}

var jumpMnemonics = map[string]bool{
	"jmp": true, "je": true, "jne": true, "jz": true, "jnz": true,
	"jl": true, "jle": true, "jg": true, "jge": true,
	"ja": true, "jae": true, "jb": true, "jbe": true,
	"jc": true, "jnc": true, "jo": true, "jno": true,
	"js": true, "jns": true, "jp": true, "jnp": true,
	"call": true,
}

var slotToken = regexp.MustCompile(`##\((-?\d+)\)`)
var espWord = regexp.MustCompile(`\b(e?sp)\b`)

// directESPLine matches the literal "sub esp, N" / "add esp, N" forms
// the generator writes for a real (non-pseudo) frame adjustment, e.g.
// a double argument's `sub esp, 8; fstp qword [esp]` push (spec §4.4).
// Unlike SubESP/AddESP these are never deferred, but the flattener
// still has to fold them into its running `esp` counter so later
// slot-token rewrites stay correct.
var directESPLine = regexp.MustCompile(`^(sub|add)\s+esp,\s*(\d+)$`)

// flattener holds the two running counters the lazy-ESP engine keeps
// between listing items (spec §4.6).
type flattener struct {
	esp     int // bytes consumed by real stack ops since the last sync
	lazyESP int // pending pseudo sub/add not yet materialized
	out     []string
	pool    *ConstPool
}

// Flatten resolves listing's lazy-ESP bookkeeping and renders NASM
// text, followed by the deduplicated constant pool.
func Flatten(listing Listing, pool *ConstPool) string {
	f := &flattener{pool: pool}
	for _, item := range listing {
		f.step(item)
	}
	if f.lazyESP != 0 {
		f.flush()
	}
	f.emitConstants()
	return strings.Join(f.out, "\n") + "\n"
}

func (f *flattener) step(item Item) {
	switch item.Kind {
	case KindConst:
		// Constants are pooled by the builder at the point of use;
		// nothing to emit here (spec §4.6 rule 1).
	case KindExtern:
		f.out = append(f.out, fmt.Sprintf("EXTERN %s", item.Text))
	case KindSubESP:
		f.lazyESP -= item.N
	case KindAddESP:
		f.lazyESP += item.N
	case KindSyncESP:
		f.esp = 0
		f.lazyESP = 0
	case KindLabel:
		f.flush()
		if item.Public {
			f.out = append(f.out, fmt.Sprintf("GLOBAL %s", item.Text))
		}
		f.out = append(f.out, fmt.Sprintf("%s:", item.Text))
	case KindReturn:
		f.flush()
		if f.esp != 0 {
			f.out = append(f.out, fmt.Sprintf("add esp, %d", f.esp))
		}
		f.out = append(f.out, "ret")
		f.esp = 0
	case KindLine:
		f.line(item.Text)
	}
}

// line applies rule 7: adjust esp for a recognized stack op, flush if
// the instruction touches esp/sp or is a jump/call/stack op, then
// rewrite any slot token against the now-current esp.
func (f *flattener) line(text string) {
	mnemonic := firstWord(text)
	if delta, ok := stackOpDelta[mnemonic]; ok {
		f.esp += delta
	} else if m := directESPLine.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		n, _ := strconv.Atoi(m[2])
		if m[1] == "sub" {
			f.esp += n
		} else {
			f.esp -= n
		}
	}

	triggers := jumpMnemonics[mnemonic] || stackOpDelta[mnemonic] != 0 ||
		espWord.MatchString(text)
	if triggers && f.lazyESP != 0 {
		f.flush()
	}

	text = slotToken.ReplaceAllStringFunc(text, func(m string) string {
		k, _ := strconv.Atoi(slotToken.FindStringSubmatch(m)[1])
		return fmt.Sprintf("esp+(%d+%d)", k, f.esp)
	})
	f.out = append(f.out, text)
}

// flush materializes any pending lazy delta as a single `lea`, the
// lone point where pseudo SubESP/AddESP ops become real instructions
// (spec §4.6 rule 7). esp -= lazyESP afterwards, matching original_source/
// x86.py's fold, so a slot-token rewrite computed before this flush and
// one computed after it resolve to the same address.
func (f *flattener) flush() {
	if f.lazyESP == 0 {
		return
	}
	if f.lazyESP < 0 {
		f.out = append(f.out, fmt.Sprintf("lea esp, [esp - %d]", -f.lazyESP))
	} else {
		f.out = append(f.out, fmt.Sprintf("lea esp, [esp + %d]", f.lazyESP))
	}
	f.esp -= f.lazyESP
	f.lazyESP = 0
}

func (f *flattener) emitConstants() {
	for _, e := range f.pool.Entries() {
		f.out = append(f.out, fmt.Sprintf("%s:", e.Label))
		f.out = append(f.out, "DB "+formatBytes(e.Bytes))
	}
}

func formatBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ",")
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:i])
}
