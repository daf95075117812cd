package ir

import (
	"minilang/internal/diag"
	"minilang/internal/symtab"
)

// frame is one entry of the builder's explicit open-context stack,
// tracking which IF/WHILE block is currently being appended to instead
// of giving each Node a parent pointer.
type frame struct {
	node     *Node // the IF or WHILE node that owns this context
	list     *[]*Node
	isWhile  bool
	usedElse bool
}

// Builder consumes typed emit calls from a parser and produces a
// structured IR tree, rejecting ill-typed operations before they ever
// enter the tree.
type Builder struct {
	Symbols *symtab.Table
	Sink    *diag.Sink

	top   []*Node
	stack []*frame

	markerOpen bool
	markerLine int
}

// NewBuilder creates a Builder over a (possibly pre-populated) symbol
// table, reporting diagnostics to sink.
func NewBuilder(symbols *symtab.Table, sink *diag.Sink) *Builder {
	return &Builder{Symbols: symbols, Sink: sink}
}

// Program returns the completed top-level statement list.
func (b *Builder) Program() []*Node {
	return b.top
}

func (b *Builder) curList() *[]*Node {
	if len(b.stack) == 0 {
		return &b.top
	}
	return b.stack[len(b.stack)-1].list
}

func (b *Builder) curFrame() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) append(n *Node) {
	l := b.curList()
	*l = append(*l, n)
}

func (b *Builder) fail(kind diag.Kind, line int, format string, args ...interface{}) bool {
	b.Sink.Report(diag.New(kind, line, format, args...))
	return false
}

// --- symbol-table passthroughs ---

func (b *Builder) InternSymbol(name string, typ symtab.Type, declLine int) (*symtab.Entry, bool) {
	e, err := b.Symbols.Intern(name, typ, declLine)
	if err != nil {
		return nil, b.fail(diag.BadName, declLine, "%s", err.Error())
	}
	return e, true
}

func (b *Builder) LookupSymbol(name string) (*symtab.Entry, bool) {
	return b.Symbols.Lookup(name)
}

func (b *Builder) FreshTemp(typ symtab.Type) *symtab.Entry {
	return b.Symbols.FreshTemp(typ)
}

// --- linear emitters ---

var comparisonOps = map[Op]bool{
	Equal: true, NotEqual: true, Less: true, LessOrEqual: true,
	Greater: true, GreaterOrEqual: true,
}

func (b *Builder) EmitNumericComparison(target, op1, op2 *symtab.Entry, op Op, srcLine int) bool {
	if !comparisonOps[op] {
		return b.fail(diag.BadOp, srcLine, "%s is not a comparison op", op)
	}
	if target == nil || op1 == nil || op2 == nil {
		return b.fail(diag.NullArgument, srcLine, "comparison requires target, operand1, operand2")
	}
	if target.Type != symtab.Boolean {
		return b.fail(diag.TypeMismatch, srcLine, "comparison target must be BOOLEAN, got %s", target.Type)
	}
	if !op1.Type.IsNumeric() || !op2.Type.IsNumeric() {
		return b.fail(diag.TypeMismatch, srcLine, "comparison operands must be numeric, got %s and %s", op1.Type, op2.Type)
	}
	b.append(&Node{SourceLine: srcLine, Op: op, Target: target, Operand1: op1, Operand2: op2})
	return true
}

// EmitLogicalCombination handles AND, OR (op2 required) and NOT (op2
// must be absent).
func (b *Builder) EmitLogicalCombination(target, op1, op2 *symtab.Entry, op Op, srcLine int) bool {
	switch op {
	case And, Or:
		if target == nil || op1 == nil || op2 == nil {
			return b.fail(diag.NullArgument, srcLine, "%s requires target, operand1, operand2", op)
		}
		if target.Type != symtab.Boolean || op1.Type != symtab.Boolean || op2.Type != symtab.Boolean {
			return b.fail(diag.TypeMismatch, srcLine, "%s requires BOOLEAN target and operands", op)
		}
		b.append(&Node{SourceLine: srcLine, Op: op, Target: target, Operand1: op1, Operand2: op2})
		return true
	case Not:
		if op2 != nil {
			return b.fail(diag.NullArgument, srcLine, "NOT must not receive a second operand")
		}
		if target == nil || op1 == nil {
			return b.fail(diag.NullArgument, srcLine, "NOT requires target and operand1")
		}
		if target.Type != symtab.Boolean || op1.Type != symtab.Boolean {
			return b.fail(diag.TypeMismatch, srcLine, "NOT requires BOOLEAN target and operand")
		}
		b.append(&Node{SourceLine: srcLine, Op: Not, Target: target, Operand1: op1})
		return true
	default:
		return b.fail(diag.BadOp, srcLine, "%s is not a logical op", op)
	}
}

var arithmeticOps = map[Op]bool{Plus: true, Minus: true, Multiply: true, Divide: true}

func (b *Builder) EmitMath(target, op1, op2 *symtab.Entry, op Op, srcLine int) bool {
	if op == Modulo {
		if target == nil || op1 == nil || op2 == nil {
			return b.fail(diag.NullArgument, srcLine, "MODULO requires target, operand1, operand2")
		}
		if target.Type != symtab.Integer || op1.Type != symtab.Integer || op2.Type != symtab.Integer {
			return b.fail(diag.TypeMismatch, srcLine, "MODULO requires INTEGER target and operands")
		}
		b.append(&Node{SourceLine: srcLine, Op: Modulo, Target: target, Operand1: op1, Operand2: op2})
		return true
	}
	if !arithmeticOps[op] {
		return b.fail(diag.BadOp, srcLine, "%s is not an arithmetic op", op)
	}
	if target == nil || op1 == nil || op2 == nil {
		return b.fail(diag.NullArgument, srcLine, "%s requires target, operand1, operand2", op)
	}
	if !op1.Type.IsNumeric() || !op2.Type.IsNumeric() {
		return b.fail(diag.TypeMismatch, srcLine, "%s operands must be numeric, got %s and %s", op, op1.Type, op2.Type)
	}
	rt := resultType(op1.Type, op2.Type)
	if target.Type != rt && !(rt == symtab.Integer && target.Type == symtab.Real) {
		return b.fail(diag.TypeMismatch, srcLine, "%s target must be %s or REAL, got %s", op, rt, target.Type)
	}
	b.append(&Node{SourceLine: srcLine, Op: op, Target: target, Operand1: op1, Operand2: op2})
	return true
}

func (b *Builder) EmitIncDec(target *symtab.Entry, op Op, srcLine int) bool {
	if op != Increment && op != Decrement {
		return b.fail(diag.BadOp, srcLine, "%s is not an increment/decrement op", op)
	}
	if target == nil {
		return b.fail(diag.NullArgument, srcLine, "%s requires a target", op)
	}
	if target.Type != symtab.Integer {
		return b.fail(diag.TypeMismatch, srcLine, "%s target must be INTEGER, got %s", op, target.Type)
	}
	b.append(&Node{SourceLine: srcLine, Op: op, Target: target})
	return true
}

func (b *Builder) EmitAssign(target, source *symtab.Entry, srcLine int) bool {
	if target == nil || source == nil {
		return b.fail(diag.NullArgument, srcLine, "ASSIGN requires target and source")
	}
	if !assignCompatible(target.Type, source.Type) {
		return b.fail(diag.TypeMismatch, srcLine, "cannot assign %s into %s", source.Type, target.Type)
	}
	b.append(&Node{SourceLine: srcLine, Op: Assign, Target: target, Operand1: source})
	return true
}

func (b *Builder) EmitConstInt(target *symtab.Entry, value int, srcLine int) bool {
	if target == nil {
		return b.fail(diag.NullArgument, srcLine, "INT_CONSTANT requires a target")
	}
	if target.Type != symtab.Integer {
		return b.fail(diag.TypeMismatch, srcLine, "INT_CONSTANT target must be INTEGER, got %s", target.Type)
	}
	b.append(&Node{SourceLine: srcLine, Op: IntConstant, Target: target, IntConst: value})
	return true
}

func (b *Builder) EmitConstFloat(target *symtab.Entry, value float64, srcLine int) bool {
	if target == nil {
		return b.fail(diag.NullArgument, srcLine, "FLOAT_CONSTANT requires a target")
	}
	if target.Type != symtab.Real {
		return b.fail(diag.TypeMismatch, srcLine, "FLOAT_CONSTANT target must be REAL, got %s", target.Type)
	}
	b.append(&Node{SourceLine: srcLine, Op: FloatConstant, Target: target, RealConst: value})
	return true
}

func (b *Builder) EmitConstBool(target *symtab.Entry, value bool, srcLine int) bool {
	if target == nil {
		return b.fail(diag.NullArgument, srcLine, "BOOL_CONSTANT requires a target")
	}
	if target.Type != symtab.Boolean {
		return b.fail(diag.TypeMismatch, srcLine, "BOOL_CONSTANT target must be BOOLEAN, got %s", target.Type)
	}
	b.append(&Node{SourceLine: srcLine, Op: BoolConstant, Target: target, BoolConst: value})
	return true
}

// --- structural emitters ---

func (b *Builder) EmitIf(cond *symtab.Entry, srcLine int) bool {
	if cond == nil {
		return b.fail(diag.NullArgument, srcLine, "IF requires a condition")
	}
	if cond.Type != symtab.Boolean {
		return b.fail(diag.TypeMismatch, srcLine, "IF condition must be BOOLEAN, got %s", cond.Type)
	}
	n := &Node{SourceLine: srcLine, Op: If, Operand1: cond, Body: []*Node{}}
	b.append(n)
	b.stack = append(b.stack, &frame{node: n, list: &n.Body})
	return true
}

func (b *Builder) EmitElse(srcLine int) bool {
	f := b.curFrame()
	if f == nil || f.node.Op != If {
		return b.fail(diag.BadNesting, srcLine, "ELSE outside an open IF")
	}
	if f.usedElse {
		return b.fail(diag.BadNesting, srcLine, "IF already has an ELSE branch")
	}
	f.node.ElseBody = []*Node{}
	f.list = &f.node.ElseBody
	f.usedElse = true
	return true
}

func (b *Builder) EmitWhileMarker(srcLine int) bool {
	if b.markerOpen {
		return b.fail(diag.BadNesting, srcLine, "a WHILE marker is already open (line %d)", b.markerLine)
	}
	b.append(&Node{SourceLine: srcLine, Op: MarkerWhile})
	b.markerOpen = true
	b.markerLine = srcLine
	return true
}

func (b *Builder) EmitWhile(cond *symtab.Entry, srcLine int) bool {
	if !b.markerOpen {
		return b.fail(diag.BadNesting, srcLine, "WHILE with no preceding marker")
	}
	if cond == nil {
		return b.fail(diag.NullArgument, srcLine, "WHILE requires a condition")
	}
	if cond.Type != symtab.Boolean {
		return b.fail(diag.TypeMismatch, srcLine, "WHILE condition must be BOOLEAN, got %s", cond.Type)
	}
	n := &Node{SourceLine: srcLine, Op: While, Operand1: cond, Body: []*Node{}}
	b.append(n)
	b.stack = append(b.stack, &frame{node: n, list: &n.Body, isWhile: true})
	b.markerOpen = false
	return true
}

func (b *Builder) EmitEnd(srcLine int) bool {
	if len(b.stack) == 0 {
		return b.fail(diag.BadNesting, srcLine, "END with no open IF/WHILE")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return true
}

func (b *Builder) EmitExit(result *symtab.Entry, srcLine int) bool {
	if len(b.stack) != 0 {
		return b.fail(diag.BadNesting, srcLine, "EXIT with an open IF/WHILE context")
	}
	if b.markerOpen {
		return b.fail(diag.BadNesting, srcLine, "EXIT with an open WHILE marker")
	}
	if result == nil {
		return b.fail(diag.NullArgument, srcLine, "EXIT requires a result operand")
	}
	b.append(&Node{SourceLine: srcLine, Op: Exit, Operand1: result})
	return true
}

func (b *Builder) EmitNop(srcLine int) bool {
	b.append(&Node{SourceLine: srcLine, Op: Nop})
	return true
}
