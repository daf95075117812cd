package symtab

import "testing"

func TestInternAndLookup(t *testing.T) {
	tbl := New()
	e, err := tbl.Intern("x", Integer, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := tbl.Lookup("x")
	if !ok || got != e {
		t.Fatalf("expected lookup to return the same entry pointer")
	}
}

func TestInternRejectsEmptyName(t *testing.T) {
	tbl := New()
	if _, err := tbl.Intern("", Integer, 1); err == nil {
		t.Fatalf("expected an error for an empty name")
	}
}

func TestInternRejectsInvalidType(t *testing.T) {
	tbl := New()
	if _, err := tbl.Intern("x", Invalid, 1); err == nil {
		t.Fatalf("expected an error for Invalid type")
	}
}

func TestInternPermitsDuplicateNames(t *testing.T) {
	tbl := New()
	first, _ := tbl.Intern("x", Integer, 1)
	second, _ := tbl.Intern("x", Real, 2)
	if first == second {
		t.Fatalf("expected two distinct entries for duplicate names")
	}
	got, _ := tbl.Lookup("x")
	if got != first {
		t.Fatalf("expected lookup to return the first-inserted entry")
	}
}

func TestFreshTempNamesAreUnique(t *testing.T) {
	tbl := New()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		e := tbl.FreshTemp(Integer)
		if seen[e.Name] {
			t.Fatalf("duplicate temp name %s", e.Name)
		}
		seen[e.Name] = true
	}
}

func TestEntriesPreservesInsertionOrder(t *testing.T) {
	tbl := New()
	tbl.Intern("a", Integer, 1)
	tbl.Intern("b", Real, 2)
	tbl.Intern("c", Boolean, 3)
	entries := tbl.Entries()
	names := []string{"a", "b", "c"}
	for i, want := range names {
		if entries[i].Name != want {
			t.Fatalf("entry %d: expected %s, got %s", i, want, entries[i].Name)
		}
	}
}

func TestTypeIsNumeric(t *testing.T) {
	if !Integer.IsNumeric() || !Real.IsNumeric() {
		t.Fatalf("expected INTEGER and REAL to be numeric")
	}
	if Boolean.IsNumeric() {
		t.Fatalf("expected BOOLEAN to not be numeric")
	}
}
