package parser

import (
	"testing"

	"minilang/internal/diag"
	"minilang/internal/ir"
	"minilang/internal/lexer"
	"minilang/internal/symtab"
)

// build runs the whole front end over src and returns the resulting
// program plus any diagnostics the builder reported. A non-nil err
// indicates a parser-level syntax error (unrelated to typing).
func build(t *testing.T, src string) ([]*ir.Node, *diag.Sink, error) {
	t.Helper()
	tokens := lexer.NewScanner(src).ScanTokens()
	symbols := symtab.New()
	sink := &diag.Sink{}
	b := ir.NewBuilder(symbols, sink)
	p := New(tokens, b)
	err := p.Parse()
	return b.Program(), sink, err
}

func TestArithmeticProgram(t *testing.T) {
	src := `
		integer result;
		result = 2 + 3 * 4;
		exit result;
	`
	program, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
	if len(program) == 0 {
		t.Fatalf("expected a non-empty program")
	}
	last := program[len(program)-1]
	if last.Op != ir.Exit {
		t.Fatalf("expected last node to be EXIT, got %s", last.Op)
	}
}

func TestIntegerToRealWidening(t *testing.T) {
	src := `
		real r;
		r = 5;
		exit r;
	`
	program, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
	found := false
	for _, n := range program {
		if n.Op == ir.FloatConstant && n.Target.Name == "r" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a direct FLOAT_CONSTANT into r, got %+v", program)
	}
}

func TestIfElse(t *testing.T) {
	src := `
		integer result;
		if (1 < 2) {
			result = 10;
		} else {
			result = 20;
		}
		exit result;
	`
	program, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
	var ifNode *ir.Node
	for _, n := range program {
		if n.Op == ir.If {
			ifNode = n
		}
	}
	if ifNode == nil {
		t.Fatalf("expected an IF node in %+v", program)
	}
	if len(ifNode.Body) == 0 || len(ifNode.ElseBody) == 0 {
		t.Fatalf("expected both branches populated: %+v", ifNode)
	}
}

func TestWhileLoop(t *testing.T) {
	src := `
		integer i;
		i = 0;
		while (i < 3) {
			i = i + 1;
		}
		exit i;
	`
	program, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
	sawMarker, sawWhile := false, false
	for _, n := range program {
		if n.Op == ir.MarkerWhile {
			sawMarker = true
		}
		if n.Op == ir.While {
			sawWhile = true
			if !sawMarker {
				t.Fatalf("WHILE seen before its MARKER_WHILE")
			}
		}
	}
	if !sawMarker || !sawWhile {
		t.Fatalf("expected both MARKER_WHILE and WHILE in %+v", program)
	}
}

func TestNestedWhile(t *testing.T) {
	src := `
		integer i;
		integer j;
		i = 0;
		while (i < 2) {
			j = 0;
			while (j < 2) {
				j = j + 1;
			}
			i = i + 1;
		}
		exit i;
	`
	_, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
}

func TestTypeErrorIsReportedNotFatal(t *testing.T) {
	src := `
		integer t;
		real s;
		s = 1;
		t = s;
		exit t;
	`
	_, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if !sink.HasErrors() {
		t.Fatalf("expected a TypeMismatch diagnostic assigning REAL into INTEGER")
	}
	if sink.All[0].Kind != diag.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %s", sink.All[0].Kind)
	}
}

func TestLogicalAndComparison(t *testing.T) {
	src := `
		boolean a;
		integer x;
		integer y;
		x = 1;
		y = 2;
		a = (x < y) && (y < 3);
		exit x;
	`
	_, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
}

func TestIncrementDecrement(t *testing.T) {
	src := `
		integer c;
		c = 0;
		c++;
		c++;
		c--;
		exit c;
	`
	program, sink, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
	incs, decs := 0, 0
	for _, n := range program {
		switch n.Op {
		case ir.Increment:
			incs++
		case ir.Decrement:
			decs++
		}
	}
	if incs != 2 || decs != 1 {
		t.Fatalf("expected 2 increments and 1 decrement, got %d/%d", incs, decs)
	}
}

func TestSyntaxErrorOnMissingSemicolon(t *testing.T) {
	src := `
		integer x;
		x = 1
		exit x;
	`
	_, _, err := build(t, src)
	if err == nil {
		t.Fatalf("expected a syntax error for the missing ';'")
	}
}
