// Package diag implements the builder's diagnostic taxonomy: a typed
// error value carrying a source line, never thrown as a Go panic.
package diag

import "fmt"

// Kind is the closed set of diagnostic categories a builder emit call
// can report.
type Kind string

const (
	TypeMismatch Kind = "TypeMismatch"
	NullArgument Kind = "NullArgument"
	BadOp        Kind = "BadOp"
	BadNesting   Kind = "BadNesting"
	BadName      Kind = "BadName"
	UnknownOp    Kind = "UnknownOp"
)

// Diagnostic is a single non-fatal error tagged with the source line of
// the operation that triggered it.
type Diagnostic struct {
	Kind    Kind
	Message string
	Line    int
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at line %d: %s", d.Kind, d.Line, d.Message)
}

func New(kind Kind, line int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Sink collects diagnostics as they're reported and, when Writer is
// set, echoes each one to it as a single line, without ever aborting
// the caller.
type Sink struct {
	All    []*Diagnostic
	Writer func(line string)
}

func (s *Sink) Report(d *Diagnostic) {
	s.All = append(s.All, d)
	if s.Writer != nil {
		s.Writer(d.Error())
	}
}

func (s *Sink) HasErrors() bool {
	return len(s.All) > 0
}
