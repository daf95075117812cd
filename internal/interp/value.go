package interp

import (
	"fmt"

	"minilang/internal/symtab"
)

// Value is a runtime value tagged with its static type. Only the field
// matching Type is meaningful.
type Value struct {
	Type symtab.Type
	Int  int64
	Real float64
	Bool bool
}

func intValue(v int64) Value    { return Value{Type: symtab.Integer, Int: v} }
func realValue(v float64) Value { return Value{Type: symtab.Real, Real: v} }
func boolValue(v bool) Value    { return Value{Type: symtab.Boolean, Bool: v} }

func zeroValue(t symtab.Type) Value {
	switch t {
	case symtab.Integer:
		return intValue(0)
	case symtab.Real:
		return realValue(0)
	case symtab.Boolean:
		return boolValue(false)
	default:
		return Value{}
	}
}

// AsFloat widens an INTEGER or REAL value to float64.
func (v Value) AsFloat() float64 {
	if v.Type == symtab.Integer {
		return float64(v.Int)
	}
	return v.Real
}

// Format renders a value for display: integer base 10, real to two
// decimals, boolean as true/false.
func (v Value) Format() string {
	switch v.Type {
	case symtab.Integer:
		return fmt.Sprintf("%d", v.Int)
	case symtab.Real:
		return fmt.Sprintf("%.2f", v.Real)
	case symtab.Boolean:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "<invalid>"
	}
}
