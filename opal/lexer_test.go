package opal

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenizeArithmetic(t *testing.T) {
	tokens, err := Tokenize("12.5 + 3;")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}

	want := []struct {
		tt      TokenType
		literal string
		column  int
	}{
		{tokenFloat, "12.5", 1},
		{tokenPlus, "+", 6},
		{tokenInt, "3", 8},
		{tokenSemicolon, ";", 9},
		{tokenEOF, "", 9},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Type != w.tt || tok.Literal != w.literal {
			t.Fatalf("token %d: expected %s %q, got %s %q", i, w.tt, w.literal, tok.Type, tok.Literal)
		}
		if tok.Pos.Line != 1 || tok.Pos.Column != w.column {
			t.Fatalf("token %d: expected position 1:%d, got %d:%d", i, w.column, tok.Pos.Line, tok.Pos.Column)
		}
	}
}

func TestTokenizeSecondDotEndsNumber(t *testing.T) {
	tokens, err := Tokenize("1.2.3")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}

	want := []TokenType{tokenFloat, tokenDot, tokenInt, tokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
	if tokens[0].Literal != "1.2" || tokens[2].Literal != "3" {
		t.Fatalf("unexpected literals: %q, %q", tokens[0].Literal, tokens[2].Literal)
	}
}

func TestTokenizeKeywords(t *testing.T) {
	tokens, err := Tokenize("class Dog extends Animal { }")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}

	want := []TokenType{tokenClass, tokenIdent, tokenExtends, tokenIdent, tokenLBrace, tokenRBrace, tokenEOF}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
	if tokens[1].Literal != "Dog" || tokens[3].Literal != "Animal" {
		t.Fatalf("unexpected identifiers: %q, %q", tokens[1].Literal, tokens[3].Literal)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`"a\nb\t\"c\""`)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if tokens[0].Type != tokenString {
		t.Fatalf("expected string token, got %s", tokens[0].Type)
	}
	if tokens[0].Literal != "a\nb\t\"c\"" {
		t.Fatalf("unexpected string literal: %q", tokens[0].Literal)
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	tokens, err := Tokenize("x = 1; # trailing comment\n# full line\ny = 2;")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}

	var idents []string
	for _, tok := range tokens {
		if tok.Type == tokenIdent {
			idents = append(idents, tok.Literal)
		}
	}
	if len(idents) != 2 || idents[0] != "x" || idents[1] != "y" {
		t.Fatalf("unexpected identifiers: %v", idents)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`x = "oops`)
	if err == nil {
		t.Fatalf("expected lex error")
	}
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected LexError, got %T", err)
	}
	if !strings.Contains(lexErr.Msg, "unterminated string") {
		t.Fatalf("unexpected message: %q", lexErr.Msg)
	}
}

func TestTokenizeLoneBang(t *testing.T) {
	_, err := Tokenize("x = !y;")
	if err == nil {
		t.Fatalf("expected lex error")
	}
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected LexError, got %T", err)
	}
	if lexErr.Pos.Line != 1 {
		t.Fatalf("unexpected position: %d:%d", lexErr.Pos.Line, lexErr.Pos.Column)
	}
}

func TestTokenizeComparisonOperators(t *testing.T) {
	tokens, err := Tokenize("a == b != c < d > e")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}

	var ops []TokenType
	for _, tok := range tokens {
		switch tok.Type {
		case tokenEQ, tokenNotEQ, tokenLT, tokenGT:
			ops = append(ops, tok.Type)
		}
	}
	want := []TokenType{tokenEQ, tokenNotEQ, tokenLT, tokenGT}
	if len(ops) != len(want) {
		t.Fatalf("expected %d operators, got %d", len(want), len(ops))
	}
	for i, tt := range want {
		if ops[i] != tt {
			t.Fatalf("operator %d: expected %s, got %s", i, tt, ops[i])
		}
	}
}
