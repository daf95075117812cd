// Package parser implements a recursive-descent front end that drives
// internal/ir.Builder directly through its emit calls rather than
// building a separate AST and lowering it afterward. The grammar and
// the parser's own syntax errors are deliberately unconstrained: the
// builder is what enforces the type system, this layer only has to
// get typed operands in front of it in the right order.
package parser

import (
	"fmt"
	"strconv"

	"minilang/internal/diag"
	"minilang/internal/ir"
	"minilang/internal/lexer"
	"minilang/internal/symtab"
)

var precedence = map[lexer.TokenType]int{
	lexer.TokenOr:  1,
	lexer.TokenAnd: 2,
	lexer.TokenEqual: 3, lexer.TokenNotEqual: 3,
	lexer.TokenLT: 3, lexer.TokenGT: 3, lexer.TokenLE: 3, lexer.TokenGE: 3,
	lexer.TokenPlus: 4, lexer.TokenMinus: 4,
	lexer.TokenStar: 5, lexer.TokenSlash: 5, lexer.TokenPercent: 5,
}

// syntaxError is panicked by consume/primary on malformed input and
// recovered at the top of Parse, a panic-on-consume parser style
// carrying a plain line+message rather than a typed diagnostic (syntax
// errors here are a grammar concern, not one of the builder's typed
// emit-time diagnostics).
type syntaxError struct {
	Line    int
	Message string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Message)
}

// Parser consumes a token stream and emits IR through b as it goes.
type Parser struct {
	tokens  []lexer.Token
	current int
	builder *ir.Builder
}

// New creates a Parser that will emit into b.
func New(tokens []lexer.Token, b *ir.Builder) *Parser {
	return &Parser{tokens: tokens, builder: b}
}

// Parse consumes the whole token stream as a sequence of statements,
// returning the first syntax error encountered, if any. Semantic
// (type/nesting) errors are reported through the builder's diag.Sink
// and do not stop parsing.
func (p *Parser) Parse() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*syntaxError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	for !p.isAtEnd() {
		p.statement()
	}
	return nil
}

func (p *Parser) statement() {
	switch {
	case p.check(lexer.TokenInt), p.check(lexer.TokenReal), p.check(lexer.TokenBoolKw):
		p.declaration()
	case p.match(lexer.TokenIf):
		p.ifStatement()
	case p.match(lexer.TokenWhile):
		p.whileStatement()
	case p.match(lexer.TokenExit):
		p.exitStatement()
	case p.match(lexer.TokenNop):
		line := p.previous().Line
		p.consume(lexer.TokenSemicolon, "expect ';' after nop")
		p.builder.EmitNop(line)
	case p.check(lexer.TokenIdent):
		p.identStatement()
	default:
		p.syntaxErrorf("unexpected token %s", p.peek().Type)
	}
}

func (p *Parser) declaration() {
	typeTok := p.advance()
	var t symtab.Type
	switch typeTok.Type {
	case lexer.TokenInt:
		t = symtab.Integer
	case lexer.TokenReal:
		t = symtab.Real
	case lexer.TokenBoolKw:
		t = symtab.Boolean
	}
	nameTok := p.consume(lexer.TokenIdent, "expect identifier after type")
	p.consume(lexer.TokenSemicolon, "expect ';' after declaration")
	p.builder.InternSymbol(nameTok.Lexeme, t, nameTok.Line)
}

// identStatement disambiguates "x = expr;", "x++;" and "x--;", all of
// which start with an identifier.
func (p *Parser) identStatement() {
	nameTok := p.advance()
	switch {
	case p.match(lexer.TokenIncrement):
		line := p.previous().Line
		p.consume(lexer.TokenSemicolon, "expect ';' after ++")
		target := p.mustLookup(nameTok)
		p.builder.EmitIncDec(target, ir.Increment, line)
	case p.match(lexer.TokenDecrement):
		line := p.previous().Line
		p.consume(lexer.TokenSemicolon, "expect ';' after --")
		target := p.mustLookup(nameTok)
		p.builder.EmitIncDec(target, ir.Decrement, line)
	default:
		p.consume(lexer.TokenAssign, "expect '=' in assignment")
		line := p.previous().Line
		target := p.mustLookup(nameTok)
		src := p.assignSource(target, line)
		p.consume(lexer.TokenSemicolon, "expect ';' after assignment")
		if src != nil && src != target {
			p.builder.EmitAssign(target, src, line)
		}
	}
}

// assignSource evaluates the right-hand side of an assignment. When
// the expression is a bare literal, it is emitted directly into target
// — "r = 5" with r: REAL becomes a single FLOAT_CONSTANT rather than
// an INT_CONSTANT-then-ASSIGN pair. Any other expression shape is
// evaluated into a temp and the caller emits a separate ASSIGN.
func (p *Parser) assignSource(target *symtab.Entry, line int) *symtab.Entry {
	bare := p.current+1 < len(p.tokens) && p.tokens[p.current+1].Type == lexer.TokenSemicolon
	if bare && p.check(lexer.TokenIntLit) && target != nil {
		tok := p.advance()
		n, convErr := strconv.ParseInt(tok.Lexeme, 10, 64)
		if convErr != nil {
			p.syntaxErrorf("bad integer literal %q", tok.Lexeme)
		}
		if target.Type == symtab.Real {
			p.builder.EmitConstFloat(target, float64(n), tok.Line)
			return target
		}
		p.builder.EmitConstInt(target, int(n), tok.Line)
		return target
	}
	if bare && p.check(lexer.TokenRealLit) && target != nil && target.Type == symtab.Real {
		tok := p.advance()
		f, convErr := strconv.ParseFloat(tok.Lexeme, 64)
		if convErr != nil {
			p.syntaxErrorf("bad real literal %q", tok.Lexeme)
		}
		p.builder.EmitConstFloat(target, f, tok.Line)
		return target
	}
	if bare && (p.check(lexer.TokenTrue) || p.check(lexer.TokenFalse)) && target != nil && target.Type == symtab.Boolean {
		tok := p.advance()
		p.builder.EmitConstBool(target, tok.Type == lexer.TokenTrue, tok.Line)
		return target
	}
	return p.expression()
}

func (p *Parser) ifStatement() {
	line := p.previous().Line
	p.consume(lexer.TokenLParen, "expect '(' after if")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' after if condition")
	p.builder.EmitIf(cond, line)
	p.block()
	if p.match(lexer.TokenElse) {
		elseLine := p.previous().Line
		p.builder.EmitElse(elseLine)
		p.block()
	}
	p.builder.EmitEnd(line)
}

func (p *Parser) whileStatement() {
	line := p.previous().Line
	p.builder.EmitWhileMarker(line)
	p.consume(lexer.TokenLParen, "expect '(' after while")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' after while condition")
	p.builder.EmitWhile(cond, line)
	p.block()
	p.builder.EmitEnd(line)
}

func (p *Parser) exitStatement() {
	line := p.previous().Line
	result := p.expression()
	p.consume(lexer.TokenSemicolon, "expect ';' after exit")
	p.builder.EmitExit(result, line)
}

// block parses "{ stmt* }" and "stmt" (a single statement with no
// braces), so a one-line if/while body does not need braces.
func (p *Parser) block() {
	if p.match(lexer.TokenLBrace) {
		for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
			p.statement()
		}
		p.consume(lexer.TokenRBrace, "expect '}' to close block")
		return
	}
	p.statement()
}

// --- expressions ---
//
// Binary/logical/comparison subexpressions are evaluated into fresh
// temporaries via the builder's emit calls (_h0, _h1, ... feeding
// successive ops). A bare identifier is returned as-is with no temp
// allocated.

func (p *Parser) expression() *symtab.Entry {
	return p.binary(0)
}

func (p *Parser) binary(minPrec int) *symtab.Entry {
	left := p.unary()
	for {
		opTok := p.peek()
		prec, ok := precedence[opTok.Type]
		if !ok || prec < minPrec {
			return left
		}
		p.advance()
		right := p.binary(prec + 1)
		left = p.combine(left, opTok, right)
	}
}

func (p *Parser) unary() *symtab.Entry {
	if p.match(lexer.TokenNot) {
		line := p.previous().Line
		operand := p.unary()
		t := p.builder.FreshTemp(symtab.Boolean)
		p.builder.EmitLogicalCombination(t, operand, nil, ir.Not, line)
		return t
	}
	return p.primary()
}

func (p *Parser) primary() *symtab.Entry {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenIntLit:
		p.advance()
		n, convErr := strconv.ParseInt(tok.Lexeme, 10, 64)
		if convErr != nil {
			p.syntaxErrorf("bad integer literal %q", tok.Lexeme)
		}
		t := p.builder.FreshTemp(symtab.Integer)
		p.builder.EmitConstInt(t, int(n), tok.Line)
		return t
	case lexer.TokenRealLit:
		p.advance()
		f, convErr := strconv.ParseFloat(tok.Lexeme, 64)
		if convErr != nil {
			p.syntaxErrorf("bad real literal %q", tok.Lexeme)
		}
		t := p.builder.FreshTemp(symtab.Real)
		p.builder.EmitConstFloat(t, f, tok.Line)
		return t
	case lexer.TokenTrue, lexer.TokenFalse:
		p.advance()
		t := p.builder.FreshTemp(symtab.Boolean)
		p.builder.EmitConstBool(t, tok.Type == lexer.TokenTrue, tok.Line)
		return t
	case lexer.TokenIdent:
		p.advance()
		return p.mustLookup(tok)
	case lexer.TokenLParen:
		p.advance()
		inner := p.expression()
		p.consume(lexer.TokenRParen, "expect ')' after expression")
		return inner
	default:
		p.syntaxErrorf("unexpected token %s in expression", tok.Type)
		return nil
	}
}

// combine emits the op matching opTok into a fresh temp, dispatching
// to whichever builder emitter the token category calls for.
func (p *Parser) combine(left *symtab.Entry, opTok lexer.Token, right *symtab.Entry) *symtab.Entry {
	line := opTok.Line
	switch opTok.Type {
	case lexer.TokenAnd:
		t := p.builder.FreshTemp(symtab.Boolean)
		p.builder.EmitLogicalCombination(t, left, right, ir.And, line)
		return t
	case lexer.TokenOr:
		t := p.builder.FreshTemp(symtab.Boolean)
		p.builder.EmitLogicalCombination(t, left, right, ir.Or, line)
		return t
	case lexer.TokenEqual, lexer.TokenNotEqual, lexer.TokenLT, lexer.TokenGT, lexer.TokenLE, lexer.TokenGE:
		t := p.builder.FreshTemp(symtab.Boolean)
		p.builder.EmitNumericComparison(t, left, right, comparisonOp(opTok.Type), line)
		return t
	case lexer.TokenPercent:
		t := p.builder.FreshTemp(symtab.Integer)
		p.builder.EmitMath(t, left, right, ir.Modulo, line)
		return t
	case lexer.TokenPlus, lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash:
		t := p.builder.FreshTemp(arithResultType(left, right))
		p.builder.EmitMath(t, left, right, arithmeticOp(opTok.Type), line)
		return t
	default:
		p.syntaxErrorf("unexpected operator %s", opTok.Type)
		return nil
	}
}

// arithResultType mirrors the builder's internal resultType rule:
// INTEGER only when both operands are INTEGER, else REAL. The builder
// re-validates independently; this only picks which temp to allocate.
func arithResultType(a, b *symtab.Entry) symtab.Type {
	if a != nil && b != nil && a.Type == symtab.Integer && b.Type == symtab.Integer {
		return symtab.Integer
	}
	return symtab.Real
}

func comparisonOp(t lexer.TokenType) ir.Op {
	switch t {
	case lexer.TokenEqual:
		return ir.Equal
	case lexer.TokenNotEqual:
		return ir.NotEqual
	case lexer.TokenLT:
		return ir.Less
	case lexer.TokenLE:
		return ir.LessOrEqual
	case lexer.TokenGT:
		return ir.Greater
	case lexer.TokenGE:
		return ir.GreaterOrEqual
	}
	return ir.Nop
}

func arithmeticOp(t lexer.TokenType) ir.Op {
	switch t {
	case lexer.TokenPlus:
		return ir.Plus
	case lexer.TokenMinus:
		return ir.Minus
	case lexer.TokenStar:
		return ir.Multiply
	case lexer.TokenSlash:
		return ir.Divide
	}
	return ir.Nop
}

func (p *Parser) mustLookup(tok lexer.Token) *symtab.Entry {
	e, ok := p.builder.LookupSymbol(tok.Lexeme)
	if !ok {
		p.builder.Sink.Report(diag.New(diag.BadName, tok.Line, "undeclared identifier %q", tok.Lexeme))
		return nil
	}
	return e
}

// --- token-stream utilities ---

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.syntaxErrorf("%s (got %s %q)", msg, p.peek().Type, p.peek().Lexeme)
	return lexer.Token{}
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}

func (p *Parser) syntaxErrorf(format string, args ...interface{}) {
	panic(&syntaxError{Line: p.peek().Line, Message: fmt.Sprintf(format, args...)})
}
