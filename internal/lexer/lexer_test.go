package lexer

import (
	"testing"

	"github.com/javalette-lang/jtc/internal/token"
)

func collect(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenBasics(t *testing.T) {
	input := `int main() {
	double d = 1.0/3.0;
	return 0;
}`
	toks := collect(t, input)

	wantTypes := []token.Type{
		token.INT_T, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE,
		token.DOUBLE_T, token.IDENT, token.ASSIGN, token.DOUBLE, token.SLASH, token.DOUBLE, token.SEMICOLON,
		token.RETURN, token.INT, token.SEMICOLON,
		token.RBRACE, token.EOF,
	}

	if len(toks) != len(wantTypes) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(wantTypes), toks)
	}
	for i, want := range wantTypes {
		if toks[i].Type != want {
			t.Errorf("token %d: got %s, want %s (%q)", i, toks[i].Type, want, toks[i].Literal)
		}
	}
}

func TestNextTokenOperators(t *testing.T) {
	toks := collect(t, "++ -- || && == != <= >= < > ! + - * / %")
	want := []token.Type{
		token.INC, token.DEC, token.OR, token.AND, token.EQ, token.NOT_EQ,
		token.LESS_EQ, token.GREATER_EQ, token.LESS, token.GREATER, token.NOT,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestNextTokenComments(t *testing.T) {
	toks := collect(t, "1 // line comment\n+ 2 # hash comment\n/* block\ncomment */ * 3")
	want := []token.Type{token.INT, token.PLUS, token.INT, token.ASTERISK, token.INT, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
}

func TestNextTokenUnterminatedBlockComment(t *testing.T) {
	l := New("1 /* oops")
	tok, err := l.NextToken()
	if tok.Type != token.INT {
		t.Fatalf("expected leading INT token, got %s", tok.Type)
	}
	_ = err
	_, err = l.NextToken()
	if err == nil {
		t.Fatal("expected unterminated block comment error")
	}
}

func TestNextTokenUnterminatedString(t *testing.T) {
	l := New(`"hello`)
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected unterminated string error")
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc\\d\qe"`)
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a\nb\tc\\dqe"
	if tok.Literal != want {
		t.Errorf("got %q, want %q", tok.Literal, want)
	}
	if len(l.Warnings()) != 1 {
		t.Errorf("expected one warning for unknown escape, got %d", len(l.Warnings()))
	}
}

func TestNextTokenNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   token.Type
	}{
		{"123", token.INT},
		{"1.5", token.DOUBLE},
		{"1e10", token.DOUBLE},
		{"1.5e-3", token.DOUBLE},
		{"1E+3", token.DOUBLE},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.input, err)
		}
		if tok.Type != tt.typ {
			t.Errorf("%q: got %s, want %s", tt.input, tok.Type, tt.typ)
		}
		if tok.Literal != tt.input {
			t.Errorf("%q: literal = %q", tt.input, tok.Literal)
		}
	}
}

func TestNextTokenInvalidCharacter(t *testing.T) {
	l := New("@")
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected invalid character error")
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("ab\ncd")
	first, _ := l.NextToken()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Errorf("got %+v, want line 1 col 1", first.Pos)
	}
	second, _ := l.NextToken()
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Errorf("got %+v, want line 2 col 1", second.Pos)
	}
}
