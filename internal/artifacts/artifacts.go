// Package artifacts writes the four listing files a compile-and-run
// produces: the symbol-table dump, the linearized listing, the
// execution trace, and the final variable-table dump. Formatting is
// manual fmt.Sprintf padding with a strings.Builder and fixed prefixes,
// rather than reaching for a table-layout library.
package artifacts

import (
	"fmt"
	"strings"

	"minilang/internal/interp"
	"minilang/internal/irlinear"
	"minilang/internal/symtab"
)

const listingHeader = "== INTERMEDIATE CODE =="
const traceHeader = "== EXECUTION TRACE =="
const variableHeader = "== VARIABLE TABLE =="
const symbolHeader = "== SYMBOL TABLE =="

// SymbolTable renders the 1_symboltable file: one line per entry with
// name, type name, declaration line.
func SymbolTable(entries []*symtab.Entry) string {
	var sb strings.Builder
	sb.WriteString(symbolHeader + "\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s\t%s\tline %d\n", e.Name, e.Type, e.DeclLine))
	}
	sb.WriteString(symbolHeader + "\n")
	return sb.String()
}

// padColumn right-pads text to align the "[From:" column to one of
// three tab-stop buckets (short/medium/long) instead of a single fixed
// width. Text of 48 or more characters gets two trailing spaces.
func padColumn(text string) string {
	const (
		shortStop  = 16
		mediumStop = 32
		longStop   = 48
	)
	n := len(text)
	target := longStop
	switch {
	case n < shortStop:
		target = shortStop
	case n < mediumStop:
		target = mediumStop
	case n < longStop:
		target = longStop
	default:
		target = n + 2
	}
	if n >= target {
		return text + " "
	}
	return text + strings.Repeat(" ", target-n)
}

// Listing renders the 2_intermediate file from a linearized print-entry
// slice.
func Listing(entries []*irlinear.Entry) string {
	var sb strings.Builder
	sb.WriteString(listingHeader + "\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("L%d:\t%s\t[From: %d]\n", e.Label, padColumn(e.Text), e.SourceLine))
	}
	sb.WriteString(listingHeader + "\n")
	return sb.String()
}

// ExecutionTrace renders the 3_execution file from the trace lines an
// interp.Interp run emitted via its TraceLine callback.
func ExecutionTrace(lines []string) string {
	var sb strings.Builder
	sb.WriteString(traceHeader + "\n")
	for _, l := range lines {
		sb.WriteString(l + "\n")
	}
	sb.WriteString(traceHeader + "\n")
	return sb.String()
}

// VariableTable renders the 4_variabletable file: one line per
// value-table entry with name, type name, and formatted value, in the
// order the interpreter first wrote each one.
func VariableTable(in *interp.Interp) string {
	var sb strings.Builder
	sb.WriteString(variableHeader + "\n")
	for _, e := range in.ValueTable() {
		v, _ := in.ValueOf(e)
		sb.WriteString(fmt.Sprintf("%s\t%s\t%s\n", e.Name, e.Type, v.Format()))
	}
	sb.WriteString(variableHeader + "\n")
	return sb.String()
}
