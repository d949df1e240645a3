package lexer

import (
	"testing"

	"github.com/latticedb/latticedb/internal/token"
)

func TestNextTokenPunctuationAndKeywords(t *testing.T) {
	input := `CREATE TABLE people (id TEXT PRIMARY KEY, tags SET<TEXT> MERGE gset);`

	tests := []struct {
		typ     token.Type
		literal string
	}{
		{token.CREATE, "CREATE"},
		{token.TABLE, "TABLE"},
		{token.IDENT, "people"},
		{token.LPAREN, "("},
		{token.IDENT, "id"},
		{token.TEXT_TYPE, "TEXT"},
		{token.PRIMARY, "PRIMARY"},
		{token.KEY, "KEY"},
		{token.COMMA, ","},
		{token.IDENT, "tags"},
		{token.SET, "SET"},
		{token.LT, "<"},
		{token.TEXT_TYPE, "TEXT"},
		{token.GT, ">"},
		{token.MERGE, "MERGE"},
		{token.GSET, "gset"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.typ {
			t.Fatalf("test[%d] - wrong type. expected=%s, got=%s (literal %q)", i, tt.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.literal {
			t.Fatalf("test[%d] - wrong literal. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
	}
}

func TestNextTokenLiteralsAndSetVectorDelimiters(t *testing.T) {
	input := `SELECT * FROM v WHERE DISTANCE(e,[0.1,0,-2,4]) < 0.5 AND id='a' OR tags={'x','y'}`

	l := New(input)
	var got []token.Type
	for {
		tok := l.NextToken()
		got = append(got, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}

	mustContain := []token.Type{token.LBRACKET, token.RBRACKET, token.LBRACE, token.RBRACE, token.MINUS, token.FLOAT, token.STRING}
	for _, want := range mustContain {
		found := false
		for _, g := range got {
			if g == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected token stream to contain %s", want)
		}
	}
}

func TestLineComments(t *testing.T) {
	input := "SELECT 1 -- trailing comment\nFROM t"
	toks := Tokenize(input)
	for _, tok := range toks {
		if tok.Literal == "--" {
			t.Fatalf("comment leaked into token stream: %+v", tok)
		}
	}
}

func TestDoubledQuoteEscape(t *testing.T) {
	l := New(`'it''s'`)
	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "it's" {
		t.Fatalf("expected STRING \"it's\", got %+v", tok)
	}
}
