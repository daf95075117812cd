package lexer

import "testing"

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

func assertTypes(t *testing.T, got []Token, want ...TokenType) {
	t.Helper()
	gotTypes := tokenTypes(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(gotTypes), gotTypes)
	}
	for i, w := range want {
		if gotTypes[i] != w {
			t.Fatalf("token %d: expected %s, got %s", i, w, gotTypes[i])
		}
	}
}

func TestScanDeclaration(t *testing.T) {
	tokens := NewScanner("integer count;").ScanTokens()
	assertTypes(t, tokens, TokenInt, TokenIdent, TokenSemicolon, TokenEOF)
}

func TestScanTwoCharOperators(t *testing.T) {
	tokens := NewScanner("a == b != c <= d >= e && f || !g").ScanTokens()
	want := []TokenType{
		TokenIdent, TokenEqual, TokenIdent, TokenNotEqual, TokenIdent,
		TokenLE, TokenIdent, TokenGE, TokenIdent, TokenAnd, TokenIdent,
		TokenOr, TokenNot, TokenIdent, TokenEOF,
	}
	assertTypes(t, tokens, want...)
}

func TestScanIncrementDecrementDoNotCollideWithMinus(t *testing.T) {
	tokens := NewScanner("x++; y--; z - 1;").ScanTokens()
	want := []TokenType{
		TokenIdent, TokenIncrement, TokenSemicolon,
		TokenIdent, TokenDecrement, TokenSemicolon,
		TokenIdent, TokenMinus, TokenIntLit, TokenSemicolon,
		TokenEOF,
	}
	assertTypes(t, tokens, want...)
}

func TestScanIntVsRealLiteral(t *testing.T) {
	tokens := NewScanner("42 3.14 5.").ScanTokens()
	if tokens[0].Type != TokenIntLit || tokens[0].Lexeme != "42" {
		t.Fatalf("expected INT_LIT 42, got %v", tokens[0])
	}
	if tokens[1].Type != TokenRealLit || tokens[1].Lexeme != "3.14" {
		t.Fatalf("expected REAL_LIT 3.14, got %v", tokens[1])
	}
	// A trailing bare dot with no following digit is not consumed as
	// part of the number; the scanner emits no token for the dot.
	if tokens[2].Type != TokenIntLit || tokens[2].Lexeme != "5" {
		t.Fatalf("expected INT_LIT 5 (bare dot left unconsumed), got %v", tokens[2])
	}
}

func TestScanLineTrackingAcrossComments(t *testing.T) {
	src := "integer a;\n// a comment\nexit a;"
	tokens := NewScanner(src).ScanTokens()
	var exitLine int
	for _, tok := range tokens {
		if tok.Type == TokenExit {
			exitLine = tok.Line
		}
	}
	if exitLine != 3 {
		t.Fatalf("expected 'exit' on line 3, got %d", exitLine)
	}
}

func TestScanKeywordsVsIdentifiers(t *testing.T) {
	tokens := NewScanner("boolean flag; if (flag) { exit flag; } else { nop; }").ScanTokens()
	want := []TokenType{
		TokenBoolKw, TokenIdent, TokenSemicolon,
		TokenIf, TokenLParen, TokenIdent, TokenRParen, TokenLBrace,
		TokenExit, TokenIdent, TokenSemicolon, TokenRBrace,
		TokenElse, TokenLBrace, TokenNop, TokenSemicolon, TokenRBrace,
		TokenEOF,
	}
	assertTypes(t, tokens, want...)
}
