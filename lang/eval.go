package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/wz/log"
)

// Interpreter executes statements against an [Environment].
//
// An Interpreter owns its environment; bindings persist across calls to
// [Interpreter.Execute] and [Interpreter.Run] until the Interpreter is
// discarded. Interpreters are not safe for concurrent use.
type Interpreter struct {
	env    *Environment
	out    io.Writer
	errs   io.Writer
	logger log.Logger
	opts   options
	depth  int
}

// New returns an Interpreter with a fresh top-level environment.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		env:  NewEnvironment(),
		out:  io.Discard,
		errs: io.Discard,
	}

	for _, opt := range opts {
		opt(in)
	}

	for name, v := range in.opts.globals {
		in.env.Define(name, v)
	}

	return in
}

// Env returns the interpreter's top-level environment.
func (in *Interpreter) Env() *Environment {
	for env := in.env; ; env = env.parent {
		if env.parent == nil {
			return env
		}
	}
}

// Execute runs a single statement. A runtime error is returned as a
// *[Diagnostic] with phase [PhaseRuntime]; any bindings made before the
// error remain in effect.
func (in *Interpreter) Execute(ctx context.Context, s Stmt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s == nil {
		return runtimeError(0, "Missing statement.")
	}

	if err := in.enter(s.Line()); err != nil {
		return err
	}
	defer in.leave()

	in.logger.TraceContext(ctx, "execute statement",
		slog.String("type", fmt.Sprintf("%T", s)),
		slog.Int("line", s.Line()))

	switch s := s.(type) {
	case *PrintStmt:
		v, err := in.Evaluate(ctx, s.Expr)
		if err != nil {
			return err
		}

		if _, err := io.WriteString(in.out, v.String()+"\n"); err != nil {
			return runtimeError(s.Line(), "Cannot write output: "+err.Error())
		}

		return nil

	case *ExpressionStmt:
		_, err := in.Evaluate(ctx, s.Expr)

		return err

	case *VarDecl:
		v := NullValue()

		if s.Init != nil {
			var err error
			if v, err = in.Evaluate(ctx, s.Init); err != nil {
				return err
			}
		}

		in.env.Define(s.Name.Lexeme, v)

		return nil

	case *Block:
		return in.executeBlock(ctx, s)

	case *IfStmt:
		cond, err := in.Evaluate(ctx, s.Cond)
		if err != nil {
			return err
		}

		switch {
		case cond.Truthy():
			return in.Execute(ctx, s.Then)

		case s.Else != nil:
			return in.Execute(ctx, s.Else)
		}

		return nil

	default:
		return runtimeError(0, fmt.Sprintf("Unknown statement %T.", s))
	}
}

func (in *Interpreter) executeBlock(ctx context.Context, b *Block) error {
	if in.opts.blockScope {
		outer := in.env
		in.env = outer.Enclose()

		defer func() { in.env = outer }()
	}

	for _, s := range b.Stmts {
		if err := in.Execute(ctx, s); err != nil {
			return err
		}
	}

	return nil
}

// Evaluate computes the value of an expression.
func (in *Interpreter) Evaluate(ctx context.Context, e Expr) (Value, error) {
	if e == nil {
		return NullValue(), runtimeError(0, "Missing expression.")
	}

	if err := in.enter(e.Line()); err != nil {
		return NullValue(), err
	}
	defer in.leave()

	switch e := e.(type) {
	case *Literal:
		return e.Value, nil

	case *Variable:
		v, ok := in.env.Get(e.Name.Lexeme)
		if !ok {
			return NullValue(), runtimeError(e.Line(),
				"Undefined variable '"+e.Name.Lexeme+"'.")
		}

		return v, nil

	case *Assign:
		v, err := in.Evaluate(ctx, e.Value)
		if err != nil {
			return NullValue(), err
		}

		in.env.Assign(e.Name.Lexeme, v)

		return v, nil

	case *Unary:
		return in.evaluateUnary(ctx, e)

	case *Binary:
		return in.evaluateBinary(ctx, e)

	case *ArrayLiteral:
		if !in.opts.arrayElements {
			return ArrayValue(), nil
		}

		elems := make([]Value, len(e.Elements))

		for i, el := range e.Elements {
			v, err := in.Evaluate(ctx, el)
			if err != nil {
				return NullValue(), err
			}

			elems[i] = v
		}

		return Value{kind: KindArray, arr: elems}, nil

	default:
		return NullValue(), runtimeError(0, fmt.Sprintf("Unknown expression %T.", e))
	}
}

func (in *Interpreter) evaluateUnary(ctx context.Context, e *Unary) (Value, error) {
	v, err := in.Evaluate(ctx, e.Operand)
	if err != nil {
		return NullValue(), err
	}

	switch e.Op.Kind {
	case Minus:
		if v.Kind() != KindNumber {
			return NullValue(), runtimeError(e.Line(),
				e.Op.Kind.String()+" must be followed by a number.")
		}

		return NumberValue(-v.num), nil

	case Bang:
		return BoolValue(!v.Truthy()), nil

	default:
		return NullValue(), runtimeError(e.Line(),
			"Unknown unary operator '"+e.Op.Lexeme+"'.")
	}
}

func (in *Interpreter) evaluateBinary(ctx context.Context, e *Binary) (Value, error) {
	left, err := in.Evaluate(ctx, e.Left)
	if err != nil {
		return NullValue(), err
	}

	right, err := in.Evaluate(ctx, e.Right)
	if err != nil {
		return NullValue(), err
	}

	switch e.Op.Kind {
	case EqualEqual:
		return BoolValue(left.Equal(right)), nil

	case BangEqual:
		return BoolValue(!left.Equal(right)), nil

	case Plus:
		switch {
		case left.Kind() == KindNumber && right.Kind() == KindNumber:
			return NumberValue(left.num + right.num), nil

		case left.Kind() == KindString || right.Kind() == KindString:
			return StringValue(left.String() + right.String()), nil

		default:
			return NullValue(), runtimeError(e.Line(),
				"Operands must be two numbers or two strings.")
		}
	}

	if left.Kind() != KindNumber || right.Kind() != KindNumber {
		return NullValue(), runtimeError(e.Line(),
			e.Op.Kind.String()+" must have number operands.")
	}

	a, b := left.num, right.num

	switch e.Op.Kind {
	case Minus:
		return NumberValue(a - b), nil

	case Star:
		return NumberValue(a * b), nil

	case Slash:
		return NumberValue(a / b), nil

	case Greater:
		return BoolValue(a > b), nil

	case GreaterEqual:
		return BoolValue(a >= b), nil

	case Less:
		return BoolValue(a < b), nil

	case LessEqual:
		return BoolValue(a <= b), nil

	default:
		return NullValue(), runtimeError(e.Line(),
			"Unknown binary operator '"+e.Op.Lexeme+"'.")
	}
}

// enter descends one level into the syntax tree, failing if that exceeds
// the nesting limit.
func (in *Interpreter) enter(line int) error {
	if in.depth >= in.maxDepth() {
		return runtimeError(line, "Nesting too deep.")
	}

	in.depth++

	return nil
}

func (in *Interpreter) leave() { in.depth-- }

func (in *Interpreter) maxDepth() int {
	if in.opts.maxDepth > 0 {
		return in.opts.maxDepth
	}

	return DefaultMaxDepth
}

func runtimeError(line int, msg string) *Diagnostic {
	return &Diagnostic{Phase: PhaseRuntime, Line: line, Message: msg}
}
