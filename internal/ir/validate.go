package ir

import "minilang/internal/symtab"

// resultType implements the "result-type" rule for PLUS/MINUS/
// MULTIPLY/DIVIDE: INTEGER if both operands are INTEGER, else REAL.
func resultType(a, b symtab.Type) symtab.Type {
	if a == symtab.Integer && b == symtab.Integer {
		return symtab.Integer
	}
	return symtab.Real
}

// assignCompatible reports whether a value of type src may be stored
// into a destination of type dst: same type, or INTEGER widening into
// REAL.
func assignCompatible(dst, src symtab.Type) bool {
	if dst == src {
		return true
	}
	return dst == symtab.Real && src == symtab.Integer
}
