package lang

import (
	"fmt"
	"log/slog"
)

// TokenKind identifies the lexical category of a [Token].
type TokenKind int

const (
	// Single-character punctuation.
	LeftParen    TokenKind = iota // LEFT_PAREN
	RightParen                    // RIGHT_PAREN
	LeftBrace                     // LEFT_BRACE
	RightBrace                    // RIGHT_BRACE
	LeftBracket                   // LEFT_BRACKET
	RightBracket                  // RIGHT_BRACKET
	Comma                         // COMMA
	Dot                           // DOT
	Minus                         // MINUS
	Plus                          // PLUS
	Semicolon                     // SEMICOLON
	Slash                         // SLASH
	Star                          // STAR

	// One or two character operators.
	Bang         // BANG
	BangEqual    // BANG_EQUAL
	Equal        // EQUAL
	EqualEqual   // EQUAL_EQUAL
	Greater      // GREATER
	GreaterEqual // GREATER_EQUAL
	Less         // LESS
	LessEqual    // LESS_EQUAL

	// Literals.
	Identifier // IDENTIFIER
	String     // STRING
	Number     // NUMBER

	// Keywords.
	And    // AND
	Class  // CLASS
	Else   // ELSE
	False  // FALSE
	Fun    // FUN
	For    // FOR
	If     // IF
	Nil    // NIL
	Or     // OR
	Not    // NOT
	Print  // PRINT
	Return // RETURN
	Super  // SUPER
	This   // THIS
	True   // TRUE
	Var    // VAR
	While  // WHILE
	Let    // LET

	EOF // EOF

	tokenKindCount
)

var tokenKindNames = [tokenKindCount]string{
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	LeftBracket:  "LEFT_BRACKET",
	RightBracket: "RIGHT_BRACKET",
	Comma:        "COMMA",
	Dot:          "DOT",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Semicolon:    "SEMICOLON",
	Slash:        "SLASH",
	Star:         "STAR",
	Bang:         "BANG",
	BangEqual:    "BANG_EQUAL",
	Equal:        "EQUAL",
	EqualEqual:   "EQUAL_EQUAL",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQUAL",
	Less:         "LESS",
	LessEqual:    "LESS_EQUAL",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "AND",
	Class:        "CLASS",
	Else:         "ELSE",
	False:        "FALSE",
	Fun:          "FUN",
	For:          "FOR",
	If:           "IF",
	Nil:          "NIL",
	Or:           "OR",
	Not:          "NOT",
	Print:        "PRINT",
	Return:       "RETURN",
	Super:        "SUPER",
	This:         "THIS",
	True:         "TRUE",
	Var:          "VAR",
	While:        "WHILE",
	Let:          "LET",
	EOF:          "EOF",
}

// String returns the upper-case category name of k.
func (k TokenKind) String() string {
	if k < 0 || k >= tokenKindCount {
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}

	return tokenKindNames[k]
}

// keywords maps reserved words to their token kinds.
var keywords = map[string]TokenKind{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"fun":    Fun,
	"for":    For,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"not":    Not,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
	"let":    Let,
}

// Keywords returns the reserved words of the language in declaration order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))

	for k := And; k <= Let; k++ {
		for word, kind := range keywords {
			if kind == k {
				words = append(words, word)
			}
		}
	}

	return words
}

// Token is a single lexical unit produced by the scanner.
type Token struct {
	Lexeme  string
	Literal Value // null unless Kind is String or Number
	Kind    TokenKind
	Line    int
}

// String returns a compact representation used by diagnostics and dumps.
func (t Token) String() string {
	if t.Kind == String || t.Kind == Number {
		return fmt.Sprintf("%s %s %s", t.Kind, t.Lexeme, t.Literal)
	}

	return fmt.Sprintf("%s %s", t.Kind, t.Lexeme)
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", t.Kind.String()),
		slog.String("lexeme", t.Lexeme),
		slog.Int("line", t.Line),
	)
}

// Equal reports whether t and u have the same kind, lexeme, literal and line.
func (t Token) Equal(u Token) bool {
	return t.Kind == u.Kind &&
		t.Lexeme == u.Lexeme &&
		t.Line == u.Line &&
		t.Literal.Equal(u.Literal)
}
