package lang

import (
	"context"
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/wz/log"
)

// Scanner converts source text into a sequence of tokens.
//
// A Scanner is single-use: the first call to [Scanner.Tokens] performs the
// scan and later calls return the same result.
type Scanner struct {
	source string
	tokens []Token
	diags  Diagnostics
	logger log.Logger
	start  int
	pos    int
	line   int
	done   bool
}

// NewScanner returns a Scanner over source.
func NewScanner(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Scan is shorthand for NewScanner(source).Tokens().
func Scan(source string) ([]Token, Diagnostics) {
	return NewScanner(source).Tokens()
}

// Tokens scans the entire source and returns its tokens, always terminated by
// a single EOF token, along with any lexical errors encountered.
func (s *Scanner) Tokens() ([]Token, Diagnostics) {
	if s.done {
		return s.tokens, s.diags
	}

	s.done = true

	for !s.eof() {
		s.start = s.pos
		s.scanToken()
	}

	s.tokens = append(s.tokens, Token{Kind: EOF, Line: s.line})

	s.logger.TraceContext(context.Background(), "scan complete",
		slog.Int("tokens", len(s.tokens)),
		slog.Int("errors", len(s.diags)),
		slog.Int("lines", s.line))

	return s.tokens, s.diags
}

func (s *Scanner) scanToken() {
	r := s.advance()

	switch r {
	case '(':
		s.add(LeftParen)
	case ')':
		s.add(RightParen)
	case '{':
		s.add(LeftBrace)
	case '}':
		s.add(RightBrace)
	case '[':
		s.add(LeftBracket)
	case ']':
		s.add(RightBracket)
	case ',':
		s.add(Comma)
	case '.':
		s.add(Dot)
	case '-':
		s.add(Minus)
	case '+':
		s.add(Plus)
	case ';':
		s.add(Semicolon)
	case '*':
		s.add(Star)

	case '!':
		s.addIf('=', BangEqual, Bang)
	case '=':
		s.addIf('=', EqualEqual, Equal)
	case '<':
		s.addIf('=', LessEqual, Less)
	case '>':
		s.addIf('=', GreaterEqual, Greater)

	case '&', '|':
		s.scanLogical(r)

	case '/':
		if s.match('/') {
			for !s.eof() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.add(Slash)
		}

	case ' ', '\r', '\t':

	case '\n':
		s.line++

	case '"':
		s.scanString()

	default:
		switch {
		case isDigit(r):
			s.scanNumber()

		case isIdentifierStart(r):
			s.scanIdentifier()

		default:
			s.report("Unexpected character '" + string(r) + "'.")
		}
	}
}

// scanLogical handles the doubled forms "&&" and "||", which are spellings
// of the and/or keywords.
func (s *Scanner) scanLogical(r rune) {
	if s.match(r) {
		if r == '&' {
			s.add(And)
		} else {
			s.add(Or)
		}

		return
	}

	found := string(r)
	s.report("Expect '" + found + found + "', found '" + found + "'.")
}

func (s *Scanner) scanString() {
	for !s.eof() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}

		s.advance()
	}

	if s.eof() {
		s.report("Unterminated string.")

		return
	}

	s.advance() // closing quote

	text := s.source[s.start+1 : s.pos-1]
	s.addLiteral(String, StringValue(text))
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()

		for isDigit(s.peek()) {
			s.advance()
		}
	}

	// Digit runs always parse. Out of range values are ±Inf with ErrRange.
	f, _ := strconv.ParseFloat(s.source[s.start:s.pos], 64)

	s.addLiteral(Number, NumberValue(f))
}

func (s *Scanner) scanIdentifier() {
	for isIdentifierContinue(s.peek()) {
		s.advance()
	}

	kind, ok := keywords[s.source[s.start:s.pos]]
	if !ok {
		kind = Identifier
	}

	s.add(kind)
}

func (s *Scanner) add(kind TokenKind) {
	s.addLiteral(kind, NullValue())
}

func (s *Scanner) addIf(next rune, matched, otherwise TokenKind) {
	if s.match(next) {
		s.add(matched)
	} else {
		s.add(otherwise)
	}
}

func (s *Scanner) addLiteral(kind TokenKind, lit Value) {
	s.tokens = append(s.tokens, Token{
		Kind:    kind,
		Lexeme:  s.source[s.start:s.pos],
		Literal: lit,
		Line:    s.line,
	})
}

func (s *Scanner) report(msg string) {
	s.diags = append(s.diags, &Diagnostic{
		Phase:   PhaseLex,
		Line:    s.line,
		Message: msg,
	})
}

func (s *Scanner) eof() bool { return s.pos >= len(s.source) }

func (s *Scanner) advance() rune {
	r, size := utf8.DecodeRuneInString(s.source[s.pos:])
	s.pos += size

	return r
}

func (s *Scanner) match(want rune) bool {
	if s.eof() || s.peek() != want {
		return false
	}

	s.advance()

	return true
}

// peek returns the next rune without consuming it, or 0 at end of input.
func (s *Scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])

	return r
}

func (s *Scanner) peekNext() rune {
	if s.eof() {
		return 0
	}

	_, size := utf8.DecodeRuneInString(s.source[s.pos:])
	if s.pos+size >= len(s.source) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.source[s.pos+size:])

	return r
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}
