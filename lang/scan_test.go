package lang

import (
	"slices"
	"strconv"
	"testing"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}

	return out
}

func TestScan_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []TokenKind
	}{
		{
			name:   "empty",
			source: "",
			want:   []TokenKind{EOF},
		},
		{
			name:   "punctuation",
			source: "(){}[],.-+;/*",
			want: []TokenKind{
				LeftParen, RightParen, LeftBrace, RightBrace,
				LeftBracket, RightBracket, Comma, Dot, Minus, Plus,
				Semicolon, Slash, Star, EOF,
			},
		},
		{
			name:   "operators",
			source: "! != = == > >= < <=",
			want: []TokenKind{
				Bang, BangEqual, Equal, EqualEqual,
				Greater, GreaterEqual, Less, LessEqual, EOF,
			},
		},
		{
			name:   "operators without spaces",
			source: "!!===<=>",
			want:   []TokenKind{Bang, BangEqual, EqualEqual, LessEqual, Greater, EOF},
		},
		{
			name:   "keywords",
			source: "and class else false fun for if nil or not print return super this true var while let",
			want: []TokenKind{
				And, Class, Else, False, Fun, For, If, Nil, Or, Not, Print,
				Return, Super, This, True, Var, While, Let, EOF,
			},
		},
		{
			name:   "identifiers",
			source: "x _y letter lets var1 ünï",
			want:   []TokenKind{Identifier, Identifier, Identifier, Identifier, Identifier, Identifier, EOF},
		},
		{
			name:   "logical spellings",
			source: "a && b || c",
			want:   []TokenKind{Identifier, And, Identifier, Or, Identifier, EOF},
		},
		{
			name:   "comment",
			source: "print 1; // print 2;\nprint 3;",
			want:   []TokenKind{Print, Number, Semicolon, Print, Number, Semicolon, EOF},
		},
		{
			name:   "trailing dot",
			source: "12.",
			want:   []TokenKind{Number, Dot, EOF},
		},
		{
			name:   "leading dot",
			source: ".5",
			want:   []TokenKind{Dot, Number, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, diags := Scan(tt.source)
			if len(diags) > 0 {
				t.Fatalf("unexpected diagnostics:\n%v", diags)
			}

			if got := kinds(tokens); !slices.Equal(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScan_NumberLiteral(t *testing.T) {
	values := []float64{
		0, 1, 7, 42, 0.5, 3.14, 2.25, 100, 1e10, 123456.789,
		0.1, 9007199254740993, 1.7976931348623157e308,
	}

	for _, f := range values {
		source := strconv.FormatFloat(f, 'f', -1, 64)

		t.Run(source, func(t *testing.T) {
			tokens, diags := Scan(source)
			if len(diags) > 0 {
				t.Fatalf("unexpected diagnostics:\n%v", diags)
			}

			if len(tokens) != 2 || tokens[0].Kind != Number || tokens[1].Kind != EOF {
				t.Fatalf("tokens = %v, want NUMBER EOF", tokens)
			}

			if got := tokens[0].Literal; got.Kind() != KindNumber || got.Float() != f {
				t.Errorf("literal = %v, want %v", got, f)
			}

			if tokens[0].Lexeme != source {
				t.Errorf("lexeme = %q, want %q", tokens[0].Lexeme, source)
			}
		})
	}
}

func TestScan_NumberLiteralRange(t *testing.T) {
	for i := range 2000 {
		f := float64(i) * 0.37

		source := strconv.FormatFloat(f, 'f', -1, 64)

		tokens, _ := Scan(source)
		if len(tokens) != 2 || tokens[0].Literal.Float() != f {
			t.Fatalf("scan(%q) = %v, want literal %v", source, tokens, f)
		}
	}
}

func TestScan_StringLiteral(t *testing.T) {
	tokens, diags := Scan(`"hello, world" "" "a // b"`)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics:\n%v", diags)
	}

	want := []string{"hello, world", "", "a // b"}

	for i, w := range want {
		tok := tokens[i]
		if tok.Kind != String {
			t.Fatalf("token %d kind = %s, want STRING", i, tok.Kind)
		}

		if tok.Literal.Text() != w {
			t.Errorf("token %d literal = %q, want %q", i, tok.Literal.Text(), w)
		}
	}
}

func TestScan_Lines(t *testing.T) {
	source := "let a = 1;\n\nlet b = \"x\ny\";\nprint b;"

	tokens, diags := Scan(source)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics:\n%v", diags)
	}

	lines := map[string]int{"a": 1, "b": 3}
	for _, tok := range tokens {
		if want, ok := lines[tok.Lexeme]; ok && tok.Kind == Identifier && tok.Line < want {
			t.Errorf("%q line = %d, want >= %d", tok.Lexeme, tok.Line, want)
		}
	}

	if last := tokens[len(tokens)-1]; last.Kind != EOF || last.Line != 5 {
		t.Errorf("last token = %v line %d, want EOF line 5", last, last.Line)
	}

	// The multi-line string token carries the line it ends on.
	for _, tok := range tokens {
		if tok.Kind == String && tok.Line != 4 {
			t.Errorf("string token line = %d, want 4", tok.Line)
		}
	}
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
		kinds  []TokenKind
	}{
		{
			name:   "lone ampersand",
			source: "a & b",
			want:   []string{"[line 1] lexical error: Expect '&&', found '&'."},
			kinds:  []TokenKind{Identifier, Identifier, EOF},
		},
		{
			name:   "lone pipe",
			source: "\na | b",
			want:   []string{"[line 2] lexical error: Expect '||', found '|'."},
			kinds:  []TokenKind{Identifier, Identifier, EOF},
		},
		{
			name:   "unexpected character",
			source: "print @;",
			want:   []string{"[line 1] lexical error: Unexpected character '@'."},
			kinds:  []TokenKind{Print, Semicolon, EOF},
		},
		{
			name:   "unterminated string",
			source: "print \"abc",
			want:   []string{"[line 1] lexical error: Unterminated string."},
			kinds:  []TokenKind{Print, EOF},
		},
		{
			name:   "errors on several lines",
			source: "#\nlet x = 1;\n$ ^",
			want: []string{
				"[line 1] lexical error: Unexpected character '#'.",
				"[line 3] lexical error: Unexpected character '$'.",
				"[line 3] lexical error: Unexpected character '^'.",
			},
			kinds: []TokenKind{Let, Identifier, Equal, Number, Semicolon, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, diags := Scan(tt.source)

			if len(diags) != len(tt.want) {
				t.Fatalf("got %d diagnostics, want %d:\n%v", len(diags), len(tt.want), diags)
			}

			for i, d := range diags {
				if d.Error() != tt.want[i] {
					t.Errorf("diagnostic %d = %q, want %q", i, d.Error(), tt.want[i])
				}

				if d.Phase != PhaseLex {
					t.Errorf("diagnostic %d phase = %s, want lexical", i, d.Phase)
				}
			}

			if got := kinds(tokens); !slices.Equal(got, tt.kinds) {
				t.Errorf("kinds = %v, want %v", got, tt.kinds)
			}
		})
	}
}

func TestScan_Idempotent(t *testing.T) {
	source := "let x = 1.5;\nif (x >= 1) { print \"big\" + x; } else print nil;\n// done\n& [1, 2]"

	a, _ := Scan(source)
	b, _ := Scan(source)

	if !slices.EqualFunc(a, b, Token.Equal) {
		t.Errorf("scans differ:\n%v\n%v", a, b)
	}
}

func TestScanner_TokensOnce(t *testing.T) {
	s := NewScanner("print 1;")

	first, _ := s.Tokens()
	second, _ := s.Tokens()

	if len(first) != 4 {
		t.Fatalf("got %d tokens, want 4", len(first))
	}

	if &first[0] != &second[0] {
		t.Error("second call rescanned the source")
	}

	eofs := 0
	for _, tok := range second {
		if tok.Kind == EOF {
			eofs++
		}
	}

	if eofs != 1 {
		t.Errorf("got %d EOF tokens, want 1", eofs)
	}
}

func TestTokenKind_String(t *testing.T) {
	tests := map[TokenKind]string{
		LeftParen:    "LEFT_PAREN",
		BangEqual:    "BANG_EQUAL",
		Minus:        "MINUS",
		GreaterEqual: "GREATER_EQUAL",
		Let:          "LET",
		EOF:          "EOF",
		TokenKind(-1): "TokenKind(-1)",
	}

	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("TokenKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestKeywords(t *testing.T) {
	words := Keywords()
	if len(words) != len(keywords) {
		t.Fatalf("got %d keywords, want %d", len(words), len(keywords))
	}

	if words[0] != "and" || words[len(words)-1] != "let" {
		t.Errorf("keywords out of order: %v", words)
	}
}
