package ir

import (
	"testing"

	"minilang/internal/diag"
	"minilang/internal/symtab"
)

func newTestBuilder() (*Builder, *symtab.Table, *diag.Sink) {
	symbols := symtab.New()
	sink := &diag.Sink{}
	return NewBuilder(symbols, sink), symbols, sink
}

func mustIntern(t *testing.T, b *Builder, name string, typ symtab.Type) *symtab.Entry {
	t.Helper()
	e, ok := b.InternSymbol(name, typ, 1)
	if !ok {
		t.Fatalf("failed to intern %s", name)
	}
	return e
}

// The builder accepts an INTEGER/INTEGER comparison into a BOOLEAN
// target and rejects one into an INTEGER target.
func TestEmitNumericComparisonTypeRules(t *testing.T) {
	b, _, sink := newTestBuilder()
	boolT := mustIntern(t, b, "c", symtab.Boolean)
	intA := mustIntern(t, b, "a", symtab.Integer)
	intB := mustIntern(t, b, "bb", symtab.Integer)

	if !b.EmitNumericComparison(boolT, intA, intB, Less, 1) {
		t.Fatalf("expected a valid numeric comparison to succeed")
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}

	intT := mustIntern(t, b, "badtarget", symtab.Integer)
	if b.EmitNumericComparison(intT, intA, intB, Less, 2) {
		t.Fatalf("expected INTEGER target to be rejected for a comparison")
	}
}

func TestEmitMathResultTypeWidening(t *testing.T) {
	b, _, _ := newTestBuilder()
	i1 := mustIntern(t, b, "i1", symtab.Integer)
	i2 := mustIntern(t, b, "i2", symtab.Integer)
	realTarget := mustIntern(t, b, "r", symtab.Real)
	intTarget := mustIntern(t, b, "s", symtab.Integer)

	if !b.EmitMath(intTarget, i1, i2, Plus, 1) {
		t.Fatalf("INT+INT into INTEGER target should succeed")
	}
	if !b.EmitMath(realTarget, i1, i2, Plus, 2) {
		t.Fatalf("INT+INT into REAL target should succeed (widening)")
	}
}

func TestEmitMathRejectsRealIntoInteger(t *testing.T) {
	b, _, sink := newTestBuilder()
	r1 := mustIntern(t, b, "r1", symtab.Real)
	r2 := mustIntern(t, b, "r2", symtab.Real)
	intTarget := mustIntern(t, b, "s", symtab.Integer)

	if b.EmitMath(intTarget, r1, r2, Plus, 1) {
		t.Fatalf("expected REAL+REAL into INTEGER target to be rejected")
	}
	if !sink.HasErrors() || sink.All[0].Kind != diag.TypeMismatch {
		t.Fatalf("expected a TypeMismatch diagnostic, got %v", sink.All)
	}
}

func TestEmitAssignWideningRules(t *testing.T) {
	b, _, _ := newTestBuilder()
	i := mustIntern(t, b, "i", symtab.Integer)
	r := mustIntern(t, b, "r", symtab.Real)

	if !b.EmitAssign(r, i, 1) {
		t.Fatalf("INTEGER -> REAL assign should widen and succeed")
	}
	if b.EmitAssign(i, r, 2) {
		t.Fatalf("REAL -> INTEGER assign should be rejected")
	}
}

func TestEmitLogicalCombinationNotRejectsSecondOperand(t *testing.T) {
	b, _, sink := newTestBuilder()
	target := mustIntern(t, b, "t", symtab.Boolean)
	a := mustIntern(t, b, "a", symtab.Boolean)
	bEntry := mustIntern(t, b, "b", symtab.Boolean)

	if b.EmitLogicalCombination(target, a, bEntry, Not, 1) {
		t.Fatalf("NOT with a non-nil second operand must be rejected")
	}
	if !sink.HasErrors() || sink.All[0].Kind != diag.NullArgument {
		t.Fatalf("expected NullArgument, got %v", sink.All)
	}
}

// The open-context stack returns to empty after every successful emit
// sequence ending in EmitExit.
func TestNestingInvariants(t *testing.T) {
	b, _, sink := newTestBuilder()
	cond := mustIntern(t, b, "cond", symtab.Boolean)
	result := mustIntern(t, b, "result", symtab.Integer)

	if !b.EmitIf(cond, 1) {
		t.Fatalf("EmitIf failed")
	}
	if !b.EmitConstInt(result, 10, 2) {
		t.Fatalf("EmitConstInt failed")
	}
	if !b.EmitElse(3) {
		t.Fatalf("EmitElse failed")
	}
	if !b.EmitConstInt(result, 20, 4) {
		t.Fatalf("EmitConstInt failed")
	}
	if !b.EmitEnd(5) {
		t.Fatalf("EmitEnd failed")
	}
	if !b.EmitExit(result, 6) {
		t.Fatalf("EmitExit failed with open context: %v", sink.All)
	}
	if len(b.stack) != 0 {
		t.Fatalf("expected empty context stack after EmitExit")
	}
}

func TestEmitExitRejectsOpenContext(t *testing.T) {
	b, _, sink := newTestBuilder()
	cond := mustIntern(t, b, "cond", symtab.Boolean)
	result := mustIntern(t, b, "result", symtab.Integer)

	b.EmitIf(cond, 1)
	if b.EmitExit(result, 2) {
		t.Fatalf("EXIT with an open IF context must be rejected")
	}
	if !sink.HasErrors() || sink.All[0].Kind != diag.BadNesting {
		t.Fatalf("expected BadNesting, got %v", sink.All)
	}
}

func TestWhileRequiresMarker(t *testing.T) {
	b, _, sink := newTestBuilder()
	cond := mustIntern(t, b, "cond", symtab.Boolean)
	if b.EmitWhile(cond, 1) {
		t.Fatalf("WHILE with no preceding marker must be rejected")
	}
	if !sink.HasErrors() || sink.All[0].Kind != diag.BadNesting {
		t.Fatalf("expected BadNesting, got %v", sink.All)
	}
}

func TestDuplicateWhileMarkerRejected(t *testing.T) {
	b, _, sink := newTestBuilder()
	if !b.EmitWhileMarker(1) {
		t.Fatalf("first marker should succeed")
	}
	if b.EmitWhileMarker(2) {
		t.Fatalf("a second open marker must be rejected")
	}
	if !sink.HasErrors() || sink.All[0].Kind != diag.BadNesting {
		t.Fatalf("expected BadNesting, got %v", sink.All)
	}
}

func TestTypeErrorLeavesIRUnchanged(t *testing.T) {
	b, _, sink := newTestBuilder()
	i := mustIntern(t, b, "i", symtab.Integer)
	r := mustIntern(t, b, "r", symtab.Real)

	before := len(b.Program())
	if b.EmitAssign(i, r, 1) {
		t.Fatalf("expected rejection")
	}
	if len(b.Program()) != before {
		t.Fatalf("a rejected emit must not append to the IR")
	}
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic")
	}

	// Subsequent successful emits still work.
	i2 := mustIntern(t, b, "i2", symtab.Integer)
	if !b.EmitConstInt(i2, 7, 2) {
		t.Fatalf("a later valid emit should still succeed")
	}
}
