package x86

import "github.com/javalette-lang/jtc/internal/types"

// sizeBytes is each type's stack/slot footprint (spec §4.4): 4 for
// int/bool/string/function pointer, 8 for double, 0 for void.
func sizeBytes(t types.Type) int {
	switch t {
	case types.Double:
		return 8
	case types.Void:
		return 0
	default:
		return 4
	}
}

// isDouble reports whether t lives on the x87 stack rather than in a
// 32-bit GPR.
func isDouble(t types.Type) bool {
	return t == types.Double
}
