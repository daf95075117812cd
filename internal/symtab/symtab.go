// Package symtab implements the flat, insertion-ordered symbol table
// shared by the IR builder, linearizer, and interpreter.
package symtab

import "fmt"

// Type is the data type tag: INTEGER, REAL, or BOOLEAN.
type Type int

const (
	Invalid Type = iota
	Integer
	Real
	Boolean
)

func (t Type) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Boolean:
		return "BOOLEAN"
	default:
		return "INVALID"
	}
}

// IsNumeric reports whether t is INTEGER or REAL.
func (t Type) IsNumeric() bool {
	return t == Integer || t == Real
}

// Entry is a symbol-table entry. Identity is by pointer, not by name:
// two entries may share a name, since intern never deduplicates.
// Entries are never mutated after insertion.
type Entry struct {
	Name     string
	Type     Type
	DeclLine int
}

// Table is the flat, append-only symbol table. It never deduplicates
// by name; lookup returns the first entry inserted under that name.
type Table struct {
	entries []*Entry
	tempSeq int

	// Debug, when non-nil, receives one line per successful Intern or
	// FreshTemp call.
	Debug func(format string, args ...interface{})
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{}
}

// Entries returns the table's entries in insertion order. Callers must
// not mutate the returned slice's entries.
func (t *Table) Entries() []*Entry {
	return t.entries
}

// Intern appends a new entry unconditionally. It fails only on an empty
// name or an unknown type tag.
func (t *Table) Intern(name string, typ Type, declLine int) (*Entry, error) {
	if name == "" {
		return nil, fmt.Errorf("symtab: empty name at line %d", declLine)
	}
	if typ != Integer && typ != Real && typ != Boolean {
		return nil, fmt.Errorf("symtab: unknown type tag %v for %q at line %d", typ, name, declLine)
	}
	e := &Entry{Name: name, Type: typ, DeclLine: declLine}
	t.entries = append(t.entries, e)
	if t.Debug != nil {
		t.Debug("intern %s : %s (line %d)", name, typ, declLine)
	}
	return e, nil
}

// Lookup returns the first entry whose name matches, if any.
func (t *Table) Lookup(name string) (*Entry, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// FreshTemp allocates a new entry with a monotonically-increasing
// generated name (_h0, _h1, ...) and the given type. The declaration
// line is recorded as 0 since temporaries have no source position.
func (t *Table) FreshTemp(typ Type) *Entry {
	name := fmt.Sprintf("_h%d", t.tempSeq)
	t.tempSeq++
	e := &Entry{Name: name, Type: typ, DeclLine: 0}
	t.entries = append(t.entries, e)
	if t.Debug != nil {
		t.Debug("intern %s : %s (temp)", name, typ)
	}
	return e
}

// TypeOf returns the type of an entry. It exists mainly so callers that
// hold only an *Entry don't need to reach into the struct directly.
func TypeOf(e *Entry) Type {
	return e.Type
}
