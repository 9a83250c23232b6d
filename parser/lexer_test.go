package parser_test

import (
	"testing"

	"github.com/Maksym-Lukianenko123/impc/parser"
)

func TestLexer_BasicTokens(t *testing.T) {
	input := "x := y + 1;"
	lexer := parser.NewLexer(input)

	expected := []parser.TokenType{
		parser.TokenIdent,
		parser.TokenAssign,
		parser.TokenIdent,
		parser.TokenPlus,
		parser.TokenNumber,
		parser.TokenSemi,
		parser.TokenEOF,
	}

	for i, want := range expected {
		tok, err := lexer.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Type != want {
			t.Errorf("token %d: expected %v, got %v (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestLexer_Keywords(t *testing.T) {
	input := "PROGRAM IS IN END IF THEN ELSE ENDIF WHILE DO ENDWHILE REPEAT UNTIL READ WRITE T"
	want := []parser.TokenType{
		parser.TokenPROGRAM, parser.TokenIS, parser.TokenIN, parser.TokenEND,
		parser.TokenIF, parser.TokenTHEN, parser.TokenELSE, parser.TokenENDIF,
		parser.TokenWHILE, parser.TokenDO, parser.TokenENDWHILE,
		parser.TokenREPEAT, parser.TokenUNTIL, parser.TokenREAD, parser.TokenWRITE, parser.TokenT,
	}
	lexer := parser.NewLexer(input)
	for i, w := range want {
		tok, err := lexer.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Type != w {
			t.Errorf("token %d: expected %v, got %v", i, w, tok.Type)
		}
	}
}

func TestLexer_CommentsAndLines(t *testing.T) {
	input := "a := 1; # comment\nb := 2;"
	lexer := parser.NewLexer(input)

	var last parser.Token
	for {
		tok, err := lexer.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Type == parser.TokenEOF {
			break
		}
		last = tok
	}
	if last.Literal != ";" {
		t.Fatalf("expected last token literal \";\", got %q", last.Literal)
	}
	if last.Line != 2 {
		t.Errorf("expected line 2, got %d", last.Line)
	}
}

func TestLexer_RelationalOperators(t *testing.T) {
	tests := []struct {
		input string
		want  parser.TokenType
	}{
		{"=", parser.TokenEq},
		{"!=", parser.TokenNeq},
		{"<", parser.TokenLt},
		{">", parser.TokenGt},
		{"<=", parser.TokenLeq},
		{">=", parser.TokenGeq},
	}
	for _, tt := range tests {
		lexer := parser.NewLexer(tt.input)
		tok, err := lexer.NextToken()
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tt.input, err)
		}
		if tok.Type != tt.want {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.want, tok.Type)
		}
	}
}

func TestLexer_IllegalCharacter(t *testing.T) {
	lexer := parser.NewLexer("x := 1 @ 2;")
	for i := 0; i < 3; i++ {
		if _, err := lexer.NextToken(); err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
	}
	if _, err := lexer.NextToken(); err == nil {
		t.Fatal("expected error on illegal character '@'")
	}
}

func TestLexer_UnknownUppercaseWord(t *testing.T) {
	lexer := parser.NewLexer("PROCEDURE foo(x) IS IN BOGUS END")
	for i := 0; i < 7; i++ {
		if _, err := lexer.NextToken(); err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
	}
	if _, err := lexer.NextToken(); err == nil {
		t.Fatal("expected error on unknown uppercase keyword BOGUS")
	}
}
