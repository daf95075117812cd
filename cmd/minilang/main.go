// cmd/minilang/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"

	"minilang/internal/artifacts"
	"minilang/internal/diag"
	"minilang/internal/errors"
	"minilang/internal/interp"
	"minilang/internal/ir"
	"minilang/internal/irlinear"
	"minilang/internal/lexer"
	"minilang/internal/parser"
	"minilang/internal/runid"
	"minilang/internal/store"
	"minilang/internal/symtab"
	"minilang/internal/tracestream"
)

const version = "1.0.0"

// commandAliases lets short-name invocations ("minilang r file.mini")
// stand in for the full subcommand name.
var commandAliases = map[string]string{
	"r": "run",
	"l": "listing",
	"s": "trace-serve",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "run":
		runCommand(args[1:])
	case "listing":
		listingCommand(args[1:])
	case "trace-serve":
		traceServeCommand(args[1:])
	default:
		log.Fatalf("unknown command %q (try 'minilang help')", args[0])
	}
}

func showUsage() {
	fmt.Println(`minilang - a tiny statically-typed imperative language

Usage:
  minilang run <file> [--dump-ir] [--store <scheme:dsn>]
  minilang listing <file> [--dump-ir]
  minilang trace-serve <file> [--addr <host:port>]
  minilang version

Commands:
  run          compile and execute, writing 1_symboltable, 2_intermediate,
               3_execution, 4_variabletable alongside the source file
  listing      compile only, writing 1_symboltable and 2_intermediate
  trace-serve  run while streaming the execution trace over a WebSocket
  version      print the version string`)
}

func showVersion() {
	fmt.Printf("minilang %s\n", version)
}

// frontEnd runs the scanner, parser, and builder over a source file
// and returns the finished program, its symbol table, and diagnostics.
func frontEnd(path string) ([]*ir.Node, *symtab.Table, *diag.Sink, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "reading %s", path)
	}

	sourceLines := strings.Split(string(src), "\n")
	sink := &diag.Sink{}
	symbols := symtab.New()
	builder := ir.NewBuilder(symbols, sink)

	tokens := lexer.NewScanner(string(src)).ScanTokens()
	p := parser.New(tokens, builder)
	if err := p.Parse(); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "parsing %s", path)
	}

	for _, d := range sink.All {
		loc := errors.SourceLocation{File: path, Line: d.Line}
		fmt.Fprint(os.Stderr, errors.Report(loc, d, sourceLines))
	}
	return builder.Program(), symbols, sink, nil
}

func maybeDumpIR(args []string, program []*ir.Node) {
	for _, a := range args {
		if a == "--dump-ir" {
			fmt.Fprintf(os.Stderr, "%# v\n", pretty.Formatter(program))
			return
		}
	}
}

func flagValue(args []string, name string) (string, bool) {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func runCommand(args []string) {
	if len(args) == 0 {
		log.Fatal("run: a source file is required")
	}
	path := args[0]
	start := time.Now()

	program, symbols, sink, err := frontEnd(path)
	if err != nil {
		log.Fatalf("run: %+v", err)
	}
	maybeDumpIR(args, program)

	listing := irlinear.Linearize(program)

	in := interp.New(symbols, sink)
	var traceLines []string
	in.TraceLine = func(line string) { traceLines = append(traceLines, line) }
	result, runErr := in.Run(program)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", runErr)
	}

	base := strings.TrimSuffix(path, ".mini")
	writeSibling(base, "1_symboltable", artifacts.SymbolTable(symbols.Entries()))
	writeSibling(base, "2_intermediate", artifacts.Listing(listing))
	writeSibling(base, "3_execution", artifacts.ExecutionTrace(traceLines))
	writeSibling(base, "4_variabletable", artifacts.VariableTable(in))

	if dsn, ok := flagValue(args, "--store"); ok {
		persistRun(dsn, path, symbols, listing, in, result)
	}

	elapsed := time.Since(start)
	fmt.Printf("result: %s\n", result)
	fmt.Printf("%s diagnostic(s), finished %s\n", humanize.Comma(int64(len(sink.All))), humanize.Time(start.Add(elapsed)))
}

func listingCommand(args []string) {
	if len(args) == 0 {
		log.Fatal("listing: a source file is required")
	}
	path := args[0]
	program, symbols, _, err := frontEnd(path)
	if err != nil {
		log.Fatalf("listing: %+v", err)
	}
	maybeDumpIR(args, program)

	listing := irlinear.Linearize(program)
	base := strings.TrimSuffix(path, ".mini")
	writeSibling(base, "1_symboltable", artifacts.SymbolTable(symbols.Entries()))
	writeSibling(base, "2_intermediate", artifacts.Listing(listing))
}

func traceServeCommand(args []string) {
	if len(args) == 0 {
		log.Fatal("trace-serve: a source file is required")
	}
	path := args[0]
	addr, ok := flagValue(args, "--addr")
	if !ok {
		addr = "localhost:8765"
	}

	program, symbols, sink, err := frontEnd(path)
	if err != nil {
		log.Fatalf("trace-serve: %+v", err)
	}

	srv := tracestream.New()
	go func() {
		log.Printf("trace-serve: listening on ws://%s/trace", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Printf("trace-serve: server stopped: %v", err)
		}
	}()

	// Give clients a moment to connect before execution starts.
	time.Sleep(500 * time.Millisecond)

	in := interp.New(symbols, sink)
	in.TraceLine = func(line string) { srv.Broadcast(line) }
	result, runErr := in.Run(program)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "trace-serve: %v\n", runErr)
	}
	fmt.Printf("result: %s\n", result)
}

func writeSibling(base, suffix, content string) {
	path := fmt.Sprintf("%s.%s", base, suffix)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Fatalf("writing %s: %+v", path, errors.Wrap(err, "writeSibling"))
	}
}

func persistRun(dsn, sourcePath string, symbols *symtab.Table, listing []*irlinear.Entry, in *interp.Interp, result string) {
	s, err := store.Open(dsn)
	if err != nil {
		log.Printf("store: %+v", err)
		return
	}
	defer s.Close()

	run := store.Run{
		RunID:         runid.New(),
		SourceName:    sourcePath,
		SymbolTable:   artifacts.SymbolTable(symbols.Entries()),
		Listing:       artifacts.Listing(listing),
		VariableTable: artifacts.VariableTable(in),
		ProgramResult: result,
		CreatedAt:     time.Now(),
	}
	if err := s.Save(context.Background(), run); err != nil {
		log.Printf("store: %+v", err)
		return
	}
	fmt.Printf("run %s persisted\n", run.RunID)
}
