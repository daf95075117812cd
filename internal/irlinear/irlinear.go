// Package irlinear implements the IR Printer (IRP): a depth-first walk
// of the structured IR that linearizes it into a flat, labeled listing
// with forward GOTOs resolved by backpatching in a single traversal.
package irlinear

import (
	"fmt"

	"minilang/internal/ir"
)

// Entry is one line of the flat listing. Text is mutated in place by
// backpatching: a forward jump's target label isn't known until the
// walk reaches it, so the GOTO text is patched in after the fact.
type Entry struct {
	Label      int
	Text       string
	SourceLine int

	// placeholder GOTO entries keep their text prefix so the final Text
	// can be rebuilt once the target label is resolved.
	pending  bool
	prefix   string // "GOTO " for every placeholder emitPlaceholder creates
	resolved bool
}

func (e *Entry) patch(target int) {
	e.Text = fmt.Sprintf("%s%d", e.prefix, target)
	e.resolved = true
}

// Printer linearizes a structured IR program into a flat Entry slice.
type Printer struct {
	entries []*Entry
	label   int
}

// New creates a Printer whose first emitted label is 1.
func New() *Printer {
	return &Printer{label: 1}
}

// Linearize walks program and returns the flat listing.
func Linearize(program []*ir.Node) []*Entry {
	p := New()
	p.walk(program, -1)
	return p.entries
}

func (p *Printer) emit(text string, srcLine int) *Entry {
	e := &Entry{Label: p.label, Text: text, SourceLine: srcLine}
	p.label++
	p.entries = append(p.entries, e)
	return e
}

func (p *Printer) emitPlaceholder(prefix string, srcLine int) *Entry {
	e := &Entry{Label: p.label, Text: prefix + "?", SourceLine: srcLine, pending: true, prefix: prefix}
	p.label++
	p.entries = append(p.entries, e)
	return e
}

func opSymbol(op ir.Op) string {
	switch op {
	case ir.Equal:
		return "=="
	case ir.NotEqual:
		return "!="
	case ir.Less:
		return "<"
	case ir.LessOrEqual:
		return "<="
	case ir.Greater:
		return ">"
	case ir.GreaterOrEqual:
		return ">="
	case ir.Plus:
		return "+"
	case ir.Minus:
		return "-"
	case ir.Multiply:
		return "*"
	case ir.Divide:
		return "/"
	case ir.Modulo:
		return "%"
	case ir.And:
		return "AND"
	case ir.Or:
		return "OR"
	default:
		return "?"
	}
}

// walk linearizes one statement list. pendingMarker is the label the
// next WHILE in this same list should jump back to, or -1 if no marker
// has been seen yet at this nesting level. It is a local variable, not
// builder state, so nested while loops keep their own marker label
// instead of clobbering an enclosing loop's.
func (p *Printer) walk(nodes []*ir.Node, pendingMarker int) {
	for _, n := range nodes {
		switch n.Op {
		case ir.MarkerWhile:
			pendingMarker = p.label
		case ir.Nop:
			// no output
		case ir.If:
			p.walkIf(n)
		case ir.While:
			p.walkWhile(n, pendingMarker)
		case ir.Exit:
			p.emit(fmt.Sprintf("RETURN %s", n.Operand1.Name), n.SourceLine)
		default:
			p.emit(p.linearText(n), n.SourceLine)
		}
	}
}

func (p *Printer) linearText(n *ir.Node) string {
	t := n.Target
	switch n.Op {
	case ir.Equal, ir.NotEqual, ir.Less, ir.LessOrEqual, ir.Greater, ir.GreaterOrEqual,
		ir.Plus, ir.Minus, ir.Multiply, ir.Divide, ir.Modulo, ir.And, ir.Or:
		return fmt.Sprintf("%s := %s %s %s", t.Name, n.Operand1.Name, opSymbol(n.Op), n.Operand2.Name)
	case ir.Not:
		return fmt.Sprintf("%s := NOT %s", t.Name, n.Operand1.Name)
	case ir.Increment:
		return fmt.Sprintf("%s := %s + 1", t.Name, t.Name)
	case ir.Decrement:
		return fmt.Sprintf("%s := %s - 1", t.Name, t.Name)
	case ir.Assign:
		return fmt.Sprintf("%s := %s", t.Name, n.Operand1.Name)
	case ir.IntConstant:
		return fmt.Sprintf("%s := %d", t.Name, n.IntConst)
	case ir.FloatConstant:
		return fmt.Sprintf("%s := %.2f", t.Name, n.RealConst)
	case ir.BoolConstant:
		return fmt.Sprintf("%s := %t", t.Name, n.BoolConst)
	default:
		return fmt.Sprintf("<unknown op %s>", n.Op)
	}
}

func (p *Printer) walkIf(n *ir.Node) {
	startLabel := p.label + 2
	p.emit(fmt.Sprintf("IF %s GOTO %d", n.Operand1.Name, startLabel), n.SourceLine)
	jumpIfFalse := p.emitPlaceholder("GOTO ", n.SourceLine)

	p.walk(n.Body, -1)

	if n.ElseBody != nil {
		jumpOverElse := p.emitPlaceholder("GOTO ", n.SourceLine)
		elseStart := p.label
		jumpIfFalse.patch(elseStart)

		p.walk(n.ElseBody, -1)

		afterElse := p.label
		jumpOverElse.patch(afterElse)
	} else {
		afterBody := p.label
		jumpIfFalse.patch(afterBody)
	}
}

func (p *Printer) walkWhile(n *ir.Node, markerLabel int) {
	localMarker := markerLabel
	if localMarker < 0 {
		// Defensive: the builder guarantees I4 (a WHILE is always
		// preceded by a MARKER_WHILE), so this should not happen.
		localMarker = p.label
	}

	bodyStart := p.label + 2
	p.emit(fmt.Sprintf("IF %s GOTO %d", n.Operand1.Name, bodyStart), n.SourceLine)
	jumpOut := p.emitPlaceholder("GOTO ", n.SourceLine)

	p.walk(n.Body, -1)

	p.emit(fmt.Sprintf("GOTO %d", localMarker), n.SourceLine)

	afterLoop := p.label
	jumpOut.patch(afterLoop)
}
