package lang

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/wz/log"
)

// DefaultMaxDepth is the default limit on how deeply statements and
// expressions may nest. Users may modify this before parsing to change the
// default.
var DefaultMaxDepth = 10000

// errUnwind abandons every enclosing block once statement nesting exceeds
// the limit. The limit itself is reported only once.
var errUnwind = errors.New("nesting too deep")

// Parse builds one statement per top-level declaration in tokens.
//
// Syntax errors do not stop the parse: the offending declaration is dropped,
// the parser skips ahead to the next statement boundary, and the error is
// included in the returned diagnostics. Nesting deeper than
// [DefaultMaxDepth] is a syntax error.
func Parse(tokens []Token) ([]Stmt, Diagnostics) {
	return newParser(tokens, DefaultMaxDepth, log.Logger{}).parse()
}

// parser holds the parser state.
type parser struct {
	tokens   []Token
	diags    Diagnostics
	logger   log.Logger
	pos      int
	depth    int
	maxDepth int
	unwind   bool
}

func newParser(tokens []Token, maxDepth int, logger log.Logger) *parser {
	// The token stream must end with EOF even when the caller built it by hand.
	if n := len(tokens); n == 0 || tokens[n-1].Kind != EOF {
		line := 1
		if n > 0 {
			line = tokens[n-1].Line
		}

		tokens = append(tokens[:n:n], Token{Kind: EOF, Line: line})
	}

	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &parser{tokens: tokens, logger: logger, maxDepth: maxDepth}
}

// parse parses: declaration* EOF.
func (p *parser) parse() ([]Stmt, Diagnostics) {
	var stmts []Stmt

	for !p.eof() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}

	p.logger.TraceContext(context.Background(), "parse complete",
		slog.Int("statements", len(stmts)),
		slog.Int("errors", len(p.diags)))

	return stmts, p.diags
}

// declaration parses a single declaration and recovers from any syntax
// error inside it. It returns nil if the declaration was abandoned.
func (p *parser) declaration() Stmt {
	var (
		s   Stmt
		err error
	)

	if p.match(Let, Var) {
		s, err = p.varDecl()
	} else {
		s, err = p.statement()
	}

	if err != nil {
		if !errors.Is(err, errUnwind) {
			p.report(err)
		}

		// Inside a block that nests too deeply, leave recovery to the
		// outermost declaration.
		if p.unwind && p.depth > 0 {
			return nil
		}

		p.unwind = false
		p.synchronize()

		return nil
	}

	return s
}

// varDecl parses: ("let" | "var") IDENTIFIER ("=" expression)? ";".
func (p *parser) varDecl() (Stmt, error) {
	name, err := p.consume(Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var init Expr

	if p.match(Equal) {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}

	_, err = p.consume(Semicolon, "Expect ';' after variable declaration.")
	if err != nil {
		return nil, err
	}

	return &VarDecl{Name: name, Init: init}, nil
}

// statement parses: printStmt | block | ifStmt | exprStmt.
func (p *parser) statement() (Stmt, error) {
	if err := p.nest("Statement nesting too deep."); err != nil {
		p.unwind = true

		return nil, err
	}
	defer p.unnest()

	switch {
	case p.match(Print):
		return p.printStmt()

	case p.match(LeftBrace):
		return p.block()

	case p.match(If):
		return p.ifStmt()

	default:
		return p.exprStmt()
	}
}

func (p *parser) printStmt() (Stmt, error) {
	keyword := p.previous()

	value, err := p.expression()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}

	return &PrintStmt{Keyword: keyword, Expr: value}, nil
}

// block parses the remainder of: "{" declaration* "}".
// Errors inside the block are recovered from inside the block.
func (p *parser) block() (Stmt, error) {
	brace := p.previous()
	stmts := make([]Stmt, 0)

	for !p.check(RightBrace) && !p.eof() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}

		if p.unwind {
			return nil, errUnwind
		}
	}

	if _, err := p.consume(RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}

	return &Block{Brace: brace, Stmts: stmts}, nil
}

// ifStmt parses the remainder of:
// "if" "(" expression ")" statement ("else" statement)?.
func (p *parser) ifStmt() (Stmt, error) {
	keyword := p.previous()

	if _, err := p.consume(LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}

	cond, err := p.expression()
	if err != nil {
		return nil, err
	}

	_, err = p.consume(RightParen, "Expect ')' after if condition.")
	if err != nil {
		return nil, err
	}

	then, err := p.statement()
	if err != nil {
		return nil, err
	}

	var otherwise Stmt

	if p.match(Else) {
		if otherwise, err = p.statement(); err != nil {
			return nil, err
		}
	}

	return &IfStmt{Keyword: keyword, Cond: cond, Then: then, Else: otherwise}, nil
}

func (p *parser) exprStmt() (Stmt, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}

	_, err = p.consume(Semicolon, "Expect ';' after expression.")
	if err != nil {
		return nil, err
	}

	return &ExpressionStmt{Expr: e}, nil
}

func (p *parser) expression() (Expr, error) {
	if err := p.nest("Expression nesting too deep."); err != nil {
		return nil, err
	}
	defer p.unnest()

	return p.assignment()
}

// assignment parses: equality ("=" assignment)?.
//
// An invalid target is reported without abandoning the declaration; the
// left-hand expression stands in for the assignment.
func (p *parser) assignment() (Expr, error) {
	target, err := p.equality()
	if err != nil {
		return nil, err
	}

	if !p.match(Equal) {
		return target, nil
	}

	equals := p.previous()

	if err := p.nest("Expression nesting too deep."); err != nil {
		return nil, err
	}
	defer p.unnest()

	value, err := p.assignment()
	if err != nil {
		return nil, err
	}

	if v, ok := target.(*Variable); ok {
		return &Assign{Name: v.Name, Value: value}, nil
	}

	p.report(errorAt(PhaseParse, equals, "Invalid assignment target."))

	return target, nil
}

func (p *parser) equality() (Expr, error) {
	return p.binary(p.comparison, BangEqual, EqualEqual)
}

func (p *parser) comparison() (Expr, error) {
	return p.binary(p.addition, Greater, GreaterEqual, Less, LessEqual)
}

func (p *parser) addition() (Expr, error) {
	return p.binary(p.multiplication, Minus, Plus)
}

func (p *parser) multiplication() (Expr, error) {
	return p.binary(p.unary, Slash, Star)
}

// binary parses one left-associative precedence tier: next (op next)*.
// Each operator deepens the tree on its left, so each counts as one level
// of nesting.
func (p *parser) binary(
	next func() (Expr, error),
	ops ...TokenKind,
) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	depth := p.depth
	defer func() { p.depth = depth }()

	for p.match(ops...) {
		op := p.previous()

		if err := p.nest("Expression nesting too deep."); err != nil {
			return nil, err
		}

		right, err := next()
		if err != nil {
			return nil, err
		}

		left = &Binary{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// unary parses: ("!" | "-") unary | primary.
func (p *parser) unary() (Expr, error) {
	if !p.match(Bang, Minus) {
		return p.primary()
	}

	op := p.previous()

	if err := p.nest("Expression nesting too deep."); err != nil {
		return nil, err
	}
	defer p.unnest()

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}

	return &Unary{Op: op, Operand: operand}, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()

	switch {
	case p.match(False):
		return &Literal{Value: BoolValue(false), line: tok.Line}, nil

	case p.match(True):
		return &Literal{Value: BoolValue(true), line: tok.Line}, nil

	case p.match(Nil):
		return &Literal{Value: NullValue(), line: tok.Line}, nil

	case p.match(Number, String):
		return &Literal{Value: tok.Literal, line: tok.Line}, nil

	case p.match(Identifier):
		return &Variable{Name: tok}, nil

	case p.match(LeftParen):
		e, err := p.expression()
		if err != nil {
			return nil, err
		}

		_, err = p.consume(RightParen, "Expect ')' after expression.")
		if err != nil {
			return nil, err
		}

		return e, nil

	case p.match(LeftBracket):
		return p.arrayLiteral()

	default:
		return nil, errorAt(PhaseParse, tok, "Expect expression.")
	}
}

// arrayLiteral parses the remainder of:
// "[" (expression ("," expression)*)? "]".
func (p *parser) arrayLiteral() (Expr, error) {
	bracket := p.previous()
	elems := make([]Expr, 0)

	if !p.check(RightBracket) {
		for {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}

			elems = append(elems, e)

			if !p.match(Comma) {
				break
			}
		}
	}

	_, err := p.consume(RightBracket, "Expect ']' after array literal.")
	if err != nil {
		return nil, err
	}

	return &ArrayLiteral{Bracket: bracket, Elements: elems}, nil
}

// synchronize discards tokens until a likely statement boundary: just past a
// semicolon, or before a token that begins a declaration or statement.
func (p *parser) synchronize() {
	p.advance()

	for !p.eof() {
		if p.previous().Kind == Semicolon {
			return
		}

		switch p.peek().Kind {
		case Let, Var, Print, If, LeftBrace:
			return
		}

		p.advance()
	}
}

// nest enters one level of nesting, or fails with msg at the current token
// if that would exceed the limit.
func (p *parser) nest(msg string) error {
	if p.depth >= p.maxDepth {
		return errorAt(PhaseParse, p.peek(), msg)
	}

	p.depth++

	return nil
}

func (p *parser) unnest() { p.depth-- }

func (p *parser) report(err error) {
	var d *Diagnostic
	if !errors.As(err, &d) {
		d = &Diagnostic{Phase: PhaseParse, Line: p.peek().Line, Message: err.Error()}
	}

	p.logger.Trace("syntax error", slog.Any("diagnostic", d))

	p.diags = append(p.diags, d)
}

func (p *parser) consume(kind TokenKind, msg string) (Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}

	return Token{}, errorAt(PhaseParse, p.peek(), msg)
}

func (p *parser) match(kinds ...TokenKind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()

			return true
		}
	}

	return false
}

func (p *parser) check(kind TokenKind) bool {
	return !p.eof() && p.peek().Kind == kind
}

func (p *parser) advance() Token {
	if !p.eof() {
		p.pos++
	}

	return p.previous()
}

func (p *parser) eof() bool { return p.peek().Kind == EOF }

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) previous() Token {
	if p.pos == 0 {
		return Token{}
	}

	return p.tokens[p.pos-1]
}
