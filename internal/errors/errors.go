// Package errors formats diagnostics and fatal CLI failures for
// display: a typed value carrying source location, never a bare Go
// panic reaching the user. It covers this module's two error shapes —
// the builder's diag.Diagnostic and whatever cmd/minilang wraps with
// github.com/pkg/errors on the way out (file I/O, store/DB failures).
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"minilang/internal/diag"
)

// SourceLocation is a single point in the program's source text.
type SourceLocation struct {
	File string
	Line int
}

func (loc SourceLocation) String() string {
	return fmt.Sprintf("%s:%d", loc.File, loc.Line)
}

// Report renders one diagnostic with its offending source line for the
// error stream. sourceLines may be nil (the source-line block is then
// omitted).
func Report(loc SourceLocation, d *diag.Diagnostic, sourceLines []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", d.Kind, d.Message))
	sb.WriteString(fmt.Sprintf("  at %s\n", loc.String()))
	if sourceLines != nil && d.Line > 0 && d.Line <= len(sourceLines) {
		sb.WriteString(fmt.Sprintf("\n  %d | %s\n", d.Line, sourceLines[d.Line-1]))
	}
	return sb.String()
}

// Wrap attaches a stack trace to a lower-level failure (file I/O,
// *sql.DB errors) using pkg/errors. cmd/minilang prints wrapped errors
// with "%+v" so the trace survives to the terminal.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(err, context)
}

// Wrapf is Wrap with a formatted context string.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrapf(err, format, args...)
}
