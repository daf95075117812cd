// Package interp implements the tree-walking interpreter (INT) that
// executes the structured IR built by internal/ir, re-evaluating a
// while loop's condition on every iteration rather than caching its
// first result.
package interp

import (
	"fmt"
	"strings"

	"minilang/internal/diag"
	"minilang/internal/ir"
	"minilang/internal/symtab"
)

// Interp walks the structured IR, maintaining a runtime value table
// parallel to the symbol table.
type Interp struct {
	Symbols *symtab.Table
	Sink    *diag.Sink

	values     map[*symtab.Entry]Value
	valueOrder []*symtab.Entry

	// TraceLine, when set, is called once per line of execution trace
	// output. The CLI wires this to a file writer and optionally to
	// internal/tracestream for live streaming.
	TraceLine func(line string)

	indent int

	ProgramResult string
	halted        bool
	trapped       *diag.Diagnostic
}

// New creates an interpreter sharing symbols with the builder that
// produced the IR being executed.
func New(symbols *symtab.Table, sink *diag.Sink) *Interp {
	return &Interp{
		Symbols: symbols,
		Sink:    sink,
		values:  make(map[*symtab.Entry]Value),
	}
}

// ValueOf returns the current value of a symbol, if it has been written.
func (in *Interp) ValueOf(e *symtab.Entry) (Value, bool) {
	v, ok := in.values[e]
	return v, ok
}

// ValueTable returns the value-table entries in the order they were
// first written, matching the variable-table dump ordering.
func (in *Interp) ValueTable() []*symtab.Entry {
	return in.valueOrder
}

func (in *Interp) setValue(e *symtab.Entry, v Value) {
	if _, existed := in.values[e]; !existed {
		in.valueOrder = append(in.valueOrder, e)
	}
	in.values[e] = v
}

func (in *Interp) readValue(e *symtab.Entry) Value {
	if v, ok := in.values[e]; ok {
		return v
	}
	return zeroValue(e.Type)
}

func (in *Interp) emitTrace(format string, args ...interface{}) {
	if in.TraceLine == nil {
		return
	}
	in.TraceLine(strings.Repeat("  ", in.indent) + fmt.Sprintf(format, args...))
}

func (in *Interp) trap(line int, format string, args ...interface{}) {
	d := diag.New(diag.BadOp, line, format, args...)
	in.trapped = d
	if in.Sink != nil {
		in.Sink.Report(d)
	}
	in.emitTrace("TRAP: %s", d.Error())
}

// Run walks the top-level statement list and returns the formatted
// program-result string captured at the EXIT node, or an error if a
// runtime trap occurred first.
func (in *Interp) Run(program []*ir.Node) (string, error) {
	in.exec(program)
	if in.trapped != nil {
		return "", in.trapped
	}
	return in.ProgramResult, nil
}

// exec walks one statement list and reports whether the program halted
// (an EXIT node was reached, or a runtime trap occurred) while walking
// it.
func (in *Interp) exec(nodes []*ir.Node) bool {
	markerIdx := -1
	for i, n := range nodes {
		if in.trapped != nil {
			return true
		}
		switch n.Op {
		case ir.MarkerWhile:
			markerIdx = i
		case ir.Nop:
			// no-op
		case ir.If:
			if in.execIf(n) {
				return true
			}
		case ir.While:
			if in.execWhile(n, nodes, markerIdx, i) {
				return true
			}
		case ir.Exit:
			in.execExit(n)
			return true
		default:
			in.execLinear(n)
		}
	}
	return false
}

func (in *Interp) execIf(n *ir.Node) bool {
	cond := in.readValue(n.Operand1)
	in.emitTrace("IF %s = %t", n.Operand1.Name, cond.Bool)
	in.indent++
	defer func() { in.indent-- }()
	if cond.Bool {
		return in.exec(n.Body)
	}
	if n.ElseBody != nil {
		return in.exec(n.ElseBody)
	}
	return false
}

func (in *Interp) execWhile(n *ir.Node, siblings []*ir.Node, markerIdx, whileIdx int) bool {
	localMarker := markerIdx // captured locally so nested while loops never cross their marker
	var condSegment []*ir.Node
	if localMarker >= 0 {
		condSegment = siblings[localMarker+1 : whileIdx]
	}
	for {
		cond := in.readValue(n.Operand1)
		in.emitTrace("WHILE %s = %t", n.Operand1.Name, cond.Bool)
		if !cond.Bool {
			break
		}
		in.indent++
		halted := in.exec(n.Body)
		in.indent--
		if halted {
			return true
		}
		in.replayCondition(condSegment)
		if in.trapped != nil {
			return true
		}
	}
	return false
}

// replayCondition re-executes the linear instructions that sit between
// a captured while-marker and the WHILE node itself: this is what
// simulates re-evaluating the loop condition on every iteration.
func (in *Interp) replayCondition(segment []*ir.Node) {
	for _, n := range segment {
		if in.trapped != nil {
			return
		}
		in.execLinear(n)
	}
}

func (in *Interp) execExit(n *ir.Node) {
	v := in.readValue(n.Operand1)
	in.ProgramResult = v.Format()
	in.emitTrace("RETURN %s = %s", n.Operand1.Name, in.ProgramResult)
}

func (in *Interp) execLinear(n *ir.Node) {
	switch n.Op {
	case ir.IntConstant:
		v := intValue(int64(n.IntConst))
		in.setValue(n.Target, v)
		in.emitTrace("%s := %d := %s", n.Target.Name, n.IntConst, v.Format())
	case ir.FloatConstant:
		v := realValue(n.RealConst)
		in.setValue(n.Target, v)
		in.emitTrace("%s := %.2f := %s", n.Target.Name, n.RealConst, v.Format())
	case ir.BoolConstant:
		v := boolValue(n.BoolConst)
		in.setValue(n.Target, v)
		in.emitTrace("%s := %t := %s", n.Target.Name, n.BoolConst, v.Format())
	case ir.Assign:
		src := in.readValue(n.Operand1)
		v := src
		if n.Target.Type == symtab.Real && src.Type == symtab.Integer {
			v = realValue(src.AsFloat())
		}
		in.setValue(n.Target, v)
		in.emitTrace("%s := %s := %s", n.Target.Name, n.Operand1.Name, v.Format())
	case ir.Increment:
		cur := in.readValue(n.Target)
		v := intValue(cur.Int + 1)
		in.setValue(n.Target, v)
		in.emitTrace("%s := %s + 1 := %s", n.Target.Name, n.Target.Name, v.Format())
	case ir.Decrement:
		cur := in.readValue(n.Target)
		v := intValue(cur.Int - 1)
		in.setValue(n.Target, v)
		in.emitTrace("%s := %s - 1 := %s", n.Target.Name, n.Target.Name, v.Format())
	case ir.Not:
		a := in.readValue(n.Operand1)
		v := boolValue(!a.Bool)
		in.setValue(n.Target, v)
		in.emitTrace("%s := NOT %s := %s", n.Target.Name, n.Operand1.Name, v.Format())
	case ir.And, ir.Or:
		a, b := in.readValue(n.Operand1), in.readValue(n.Operand2)
		var r bool
		if n.Op == ir.And {
			r = a.Bool && b.Bool
		} else {
			r = a.Bool || b.Bool
		}
		v := boolValue(r)
		in.setValue(n.Target, v)
		in.emitTrace("%s := %s %s %s := %s", n.Target.Name, n.Operand1.Name, n.Op, n.Operand2.Name, v.Format())
	case ir.Equal, ir.NotEqual, ir.Less, ir.LessOrEqual, ir.Greater, ir.GreaterOrEqual:
		in.execComparison(n)
	case ir.Plus, ir.Minus, ir.Multiply, ir.Divide:
		in.execArithmetic(n)
	case ir.Modulo:
		in.execModulo(n)
	default:
		in.trap(n.SourceLine, "unexpected op %s in linear execution", n.Op)
	}
}

// opSymbols gives comparison and arithmetic ops the same lexical form
// the listing uses, so trace lines read like listing lines.
var opSymbols = map[ir.Op]string{
	ir.Equal: "==", ir.NotEqual: "!=", ir.Less: "<", ir.LessOrEqual: "<=",
	ir.Greater: ">", ir.GreaterOrEqual: ">=",
	ir.Plus: "+", ir.Minus: "-", ir.Multiply: "*", ir.Divide: "/",
}

func (in *Interp) execComparison(n *ir.Node) {
	a, b := in.readValue(n.Operand1), in.readValue(n.Operand2)
	var r bool
	if a.Type == symtab.Integer && b.Type == symtab.Integer {
		r = compareInt(a.Int, b.Int, n.Op)
	} else {
		r = compareFloat(a.AsFloat(), b.AsFloat(), n.Op)
	}
	v := boolValue(r)
	in.setValue(n.Target, v)
	in.emitTrace("%s := %s %s %s := %s", n.Target.Name, n.Operand1.Name, opSymbols[n.Op], n.Operand2.Name, v.Format())
}

func compareInt(a, b int64, op ir.Op) bool {
	switch op {
	case ir.Equal:
		return a == b
	case ir.NotEqual:
		return a != b
	case ir.Less:
		return a < b
	case ir.LessOrEqual:
		return a <= b
	case ir.Greater:
		return a > b
	case ir.GreaterOrEqual:
		return a >= b
	}
	return false
}

func compareFloat(a, b float64, op ir.Op) bool {
	switch op {
	case ir.Equal:
		return a == b
	case ir.NotEqual:
		return a != b
	case ir.Less:
		return a < b
	case ir.LessOrEqual:
		return a <= b
	case ir.Greater:
		return a > b
	case ir.GreaterOrEqual:
		return a >= b
	}
	return false
}

func (in *Interp) execArithmetic(n *ir.Node) {
	a, b := in.readValue(n.Operand1), in.readValue(n.Operand2)
	var v Value
	if a.Type == symtab.Integer && b.Type == symtab.Integer {
		if n.Op == ir.Divide && b.Int == 0 {
			in.trap(n.SourceLine, "integer division by zero (%s / %s)", n.Operand1.Name, n.Operand2.Name)
			return
		}
		var r int64
		switch n.Op {
		case ir.Plus:
			r = a.Int + b.Int
		case ir.Minus:
			r = a.Int - b.Int
		case ir.Multiply:
			r = a.Int * b.Int
		case ir.Divide:
			r = a.Int / b.Int
		}
		v = intValue(r)
	} else {
		af, bf := a.AsFloat(), b.AsFloat()
		var r float64
		switch n.Op {
		case ir.Plus:
			r = af + bf
		case ir.Minus:
			r = af - bf
		case ir.Multiply:
			r = af * bf
		case ir.Divide:
			r = af / bf
		}
		v = realValue(r)
	}
	if n.Target.Type == symtab.Real && v.Type == symtab.Integer {
		v = realValue(v.AsFloat())
	}
	in.setValue(n.Target, v)
	in.emitTrace("%s := %s %s %s := %s", n.Target.Name, n.Operand1.Name, opSymbols[n.Op], n.Operand2.Name, v.Format())
}

func (in *Interp) execModulo(n *ir.Node) {
	a, b := in.readValue(n.Operand1), in.readValue(n.Operand2)
	if b.Int == 0 {
		in.trap(n.SourceLine, "integer modulo by zero (%s %% %s)", n.Operand1.Name, n.Operand2.Name)
		return
	}
	v := intValue(a.Int % b.Int)
	in.setValue(n.Target, v)
	in.emitTrace("%s := %s %% %s := %s", n.Target.Name, n.Operand1.Name, n.Operand2.Name, v.Format())
}
