package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// run executes source with a fresh interpreter and returns everything it
// printed along with its diagnostics.
func run(t *testing.T, source string, opts ...Option) (string, Diagnostics) {
	t.Helper()

	var out strings.Builder

	opts = append([]Option{WithOutput(&out)}, opts...)
	_, diags := Run(t.Context(), source, opts...)

	return out.String(), diags
}

// evalExpr parses source as a single expression and evaluates it.
func evalExpr(t *testing.T, source string, opts ...Option) (Value, error) {
	t.Helper()

	stmts, diags := parseSource(t, source+";")
	if len(diags) > 0 || len(stmts) != 1 {
		t.Fatalf("parse %q: %v", source, diags)
	}

	es, ok := stmts[0].(*ExpressionStmt)
	if !ok {
		t.Fatalf("parse %q: got %T, want *ExpressionStmt", source, stmts[0])
	}

	return New(opts...).Evaluate(t.Context(), es.Expr)
}

func TestRun_Output(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"declaration", "let x = 5; print x;", "5\n"},
		{"if else", "if (true) { print 1; } else { print 2; }", "1\n"},
		{"else branch", "if (nil) print 1; else print 2;", "2\n"},
		{"if without else", "if (false) print 1; print 3;", "3\n"},
		{"reassignment", "let x = 1; x = 2; print x;", "2\n"},
		{"assignment value", "let a; let b; a = b = 7; print a; print b;", "7\n7\n"},
		{"uninitialized", "var x; print x;", "nil\n"},
		{"number concat", `print "1" + "2"; print 1 + 2;`, "12\n3\n"},
		{"mixed concat", `print "a" + 1; print 1.5 + "b"; print nil + "x"; print "t" + true;`, "a1\n1.5b\nnilx\nttrue\n"},
		{"fractions", "print 7 / 2; print 0.1 + 0.2;", "3.5\n0.30000000000000004\n"},
		{"infinities", "print 1 / 0; print -1 / 0; print 0 / 0;", "Infinity\n-Infinity\nNaN\n"},
		{"negative zero", "print -0;", "-0\n"},
		{"equality", `print 1 == 1; print "a" == "a"; print nil == nil; print 1 == "1"; print nil == false; print 1 != 2;`, "true\ntrue\ntrue\nfalse\nfalse\ntrue\n"},
		{"comparison", "print 1 < 2; print 2 <= 2; print 3 > 4; print 4 >= 5;", "true\ntrue\nfalse\nfalse\n"},
		{"truthiness", `print !nil; print !false; print !0; print !""; print !!"x";`, "true\ntrue\nfalse\nfalse\ntrue\n"},
		{"strings", "print \"multi\nline\";", "multi\nline\n"},
		{"assign creates binding", "y = 3; print y;", "3\n"},
		{"unscoped block", "{ let a = 1; } print a;", "1\n"},
		{"block shadows", "let a = 1; { let a = 2; } print a;", "2\n"},
		{"nested if", "let n = 3; if (n > 1) if (n > 2) print \"big\"; else print \"mid\";", "big\n"},
		{"array literal", "let a = [1, 2]; print a; print [] == [];", "[]\ntrue\n"},
		{"array not evaluated", "let a = [missing]; print a;", "[]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := run(t, tt.source)
			if len(diags) > 0 {
				t.Fatalf("unexpected diagnostics:\n%v", diags)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_RuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		out    string
		diags  []string
	}{
		{
			name:   "subtract string",
			source: "print 5 - \"a\";\nprint 2;",
			out:    "2\n",
			diags:  []string{"[line 1] runtime error: MINUS must have number operands."},
		},
		{
			name:   "negate string",
			source: `print -"a";`,
			diags:  []string{"[line 1] runtime error: MINUS must be followed by a number."},
		},
		{
			name:   "add boolean",
			source: "print true + 1;",
			diags:  []string{"[line 1] runtime error: Operands must be two numbers or two strings."},
		},
		{
			name:   "add arrays",
			source: "print [] + [];",
			diags:  []string{"[line 1] runtime error: Operands must be two numbers or two strings."},
		},
		{
			name:   "compare strings",
			source: `print "a" < "b";`,
			diags:  []string{"[line 1] runtime error: LESS must have number operands."},
		},
		{
			name:   "operator names",
			source: "nil * 1;\nnil / 1;\nnil > 1;\nnil >= 1;\nnil <= 1;",
			diags: []string{
				"[line 1] runtime error: STAR must have number operands.",
				"[line 2] runtime error: SLASH must have number operands.",
				"[line 3] runtime error: GREATER must have number operands.",
				"[line 4] runtime error: GREATER_EQUAL must have number operands.",
				"[line 5] runtime error: LESS_EQUAL must have number operands.",
			},
		},
		{
			name:   "undefined variable",
			source: "print 1;\nprint y;\nprint 3;",
			out:    "1\n3\n",
			diags:  []string{"[line 2] runtime error: Undefined variable 'y'."},
		},
		{
			name:   "failed declaration binds nothing",
			source: "let x = 1;\nlet y = x - nil;\nprint y;",
			diags: []string{
				"[line 2] runtime error: MINUS must have number operands.",
				"[line 3] runtime error: Undefined variable 'y'.",
			},
		},
		{
			name:   "error aborts rest of block",
			source: "{ print 1; print -nil; print 2; }\nprint 3;",
			out:    "1\n3\n",
			diags:  []string{"[line 1] runtime error: MINUS must be followed by a number."},
		},
		{
			name:   "diagnostics in phase order",
			source: "print -nil;\nlet = 1;\n@",
			diags: []string{
				"[line 3] lexical error: Unexpected character '@'.",
				"[line 2] syntax error at '=': Expect variable name.",
				"[line 1] runtime error: MINUS must be followed by a number.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs strings.Builder

			got, diags := run(t, tt.source, WithErrors(&errs))

			if got != tt.out {
				t.Errorf("output = %q, want %q", got, tt.out)
			}

			if len(diags) != len(tt.diags) {
				t.Fatalf("got %d diagnostics, want %d:\n%v", len(diags), len(tt.diags), diags)
			}

			for i, d := range diags {
				if d.Error() != tt.diags[i] {
					t.Errorf("diagnostic %d = %q, want %q", i, d.Error(), tt.diags[i])
				}
			}

			if want := strings.Join(tt.diags, "\n") + "\n"; errs.String() != want {
				t.Errorf("error sink = %q, want %q", errs.String(), want)
			}
		})
	}
}

func TestRun_SyntaxErrorStillExecutes(t *testing.T) {
	got, diags := run(t, "let = 5;\nprint 1;")

	if got != "1\n" {
		t.Errorf("output = %q, want %q", got, "1\n")
	}

	if n := diags.Count(PhaseParse); n != 1 || len(diags) != 1 {
		t.Errorf("got %d syntax errors of %d, want 1 of 1", n, len(diags))
	}
}

func TestRun_ReassignmentKeepsSize(t *testing.T) {
	in := New()

	if diags := in.Run(t.Context(), "let x = 1;"); len(diags) > 0 {
		t.Fatal(diags)
	}

	before := in.Env().Len()

	if diags := in.Run(t.Context(), "x = 2;"); len(diags) > 0 {
		t.Fatal(diags)
	}

	if after := in.Env().Len(); after != before || after != 1 {
		t.Errorf("env size = %d, want %d", after, before)
	}

	if v, ok := in.Env().Get("x"); !ok || !v.Equal(NumberValue(2)) {
		t.Errorf("x = %v, %v; want 2, true", v, ok)
	}
}

func TestEvaluate_Arithmetic(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},
		{"100 / 10 / 5", 2},
		{"2 * 3 + 4 * 5", 26},
		{"-3 - -3", 0},
		{"8 / 2 * 4", 16},
		{"1 - 2 * 3 + 4 / 2", -3},
		{"2 * (3 + 4) * 5", 70},
		{"1.5 * 4 - 0.5", 5.5},
		{"--7", 7},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			v, err := evalExpr(t, tt.source)
			if err != nil {
				t.Fatal(err)
			}

			if v.Kind() != KindNumber || v.Float() != tt.want {
				t.Errorf("got %v (%s), want %v", v, v.Kind(), tt.want)
			}
		})
	}
}

func TestEvaluate_Concatenation(t *testing.T) {
	v, err := evalExpr(t, `"1" + "2"`)
	if err != nil {
		t.Fatal(err)
	}

	if !v.Equal(StringValue("12")) {
		t.Errorf(`"1" + "2" = %v (%s), want string 12`, v, v.Kind())
	}

	v, err = evalExpr(t, "1 + 2")
	if err != nil {
		t.Fatal(err)
	}

	if !v.Equal(NumberValue(3)) {
		t.Errorf("1 + 2 = %v (%s), want number 3", v, v.Kind())
	}
}

func TestEvaluate_RuntimeErrorIs(t *testing.T) {
	_, err := evalExpr(t, `5 - "a"`)
	if err == nil {
		t.Fatal("expected runtime error")
	}

	if !errors.Is(err, ErrRuntime) {
		t.Errorf("errors.Is(%v, ErrRuntime) = false", err)
	}

	if errors.Is(err, ErrParse) {
		t.Errorf("errors.Is(%v, ErrParse) = true", err)
	}

	var d *Diagnostic
	if !errors.As(err, &d) || d.Message != "MINUS must have number operands." {
		t.Errorf("diagnostic = %v", err)
	}
}

func TestWithBlockScope(t *testing.T) {
	tests := []struct {
		name   string
		source string
		out    string
		errs   int
	}{
		{"inner binding hidden", "{ let a = 1; } print a;", "", 1},
		{"shadowing restored", "let a = 1; { let a = 2; print a; } print a;", "2\n1\n", 0},
		{"assign reaches outer", "let a = 1; { a = 2; let b = 3; } print a;", "2\n", 0},
		{"assign unbound defines global", "{ { c = 4; } } print c;", "4\n", 0},
		{"scope restored after error", "{ let d = 1; print -nil; } print d;", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := run(t, tt.source, WithBlockScope(true))

			if got != tt.out {
				t.Errorf("output = %q, want %q", got, tt.out)
			}

			if len(diags) != tt.errs {
				t.Errorf("got %d diagnostics, want %d:\n%v", len(diags), tt.errs, diags)
			}
		})
	}
}

func TestWithArrayElements(t *testing.T) {
	got, diags := run(t, `let a = [1, "x", true, nil, [2]]; print a; print [1] == [1]; print [1] == [2];`,
		WithArrayElements(true))
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics:\n%v", diags)
	}

	want := "[1, \"x\", true, nil, [2]]\ntrue\nfalse\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	_, diags = run(t, "let a = [missing];", WithArrayElements(true))
	if len(diags) != 1 || !errors.Is(diags, ErrRuntime) {
		t.Errorf("diagnostics = %v, want one runtime error", diags)
	}
}

func TestWithGlobals(t *testing.T) {
	globals := map[string]Value{
		"n":    NumberValue(4),
		"name": StringValue("wz"),
	}

	got, diags := run(t, `print n * 2; print name + "!";`, WithGlobals(globals))
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics:\n%v", diags)
	}

	if got != "8\nwz!\n" {
		t.Errorf("output = %q", got)
	}

	in := New(WithGlobals(map[string]Value{"k": BoolValue(true)}))
	if in.Env().Len() != 1 {
		t.Errorf("env size = %d, want 1", in.Env().Len())
	}
}

func TestInterpreter_EnvironmentsAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.Run(t.Context(), "let shared = 1;")

	if _, ok := b.Env().Get("shared"); ok {
		t.Error("binding leaked between interpreters")
	}

	// Both interpreters run the same cached program.
	a.Run(t.Context(), "let z = 1;")
	b.Run(t.Context(), "let z = 1;")

	if a.Env().Len() != 2 || b.Env().Len() != 1 {
		t.Errorf("env sizes = %d, %d; want 2, 1", a.Env().Len(), b.Env().Len())
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var out strings.Builder

	in := New(WithOutput(&out))

	diags := in.Run(ctx, "print 1; print 2;")
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}

	if out.Len() != 0 {
		t.Errorf("output = %q, want none", out.String())
	}

	stmts, _ := parseSource(t, "print 1;")
	if err := in.Execute(ctx, stmts[0]); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute = %v, want context.Canceled", err)
	}
}

func TestEvaluate_NestingLimit(t *testing.T) {
	nested := func(depth int) Expr {
		var e Expr = &Literal{Value: NumberValue(1), line: 1}
		for range depth {
			e = &Unary{Op: Token{Kind: Minus, Lexeme: "-", Line: 1}, Operand: e}
		}

		return e
	}

	in := New(WithMaxDepth(10))

	_, err := in.Evaluate(t.Context(), nested(50))

	var d *Diagnostic
	if !errors.As(err, &d) || d.Phase != PhaseRuntime || d.Message != "Nesting too deep." {
		t.Fatalf("Evaluate(deep) error = %v", err)
	}

	// The depth is restored after the failure.
	v, err := in.Evaluate(t.Context(), nested(9))
	if err != nil {
		t.Fatalf("Evaluate(shallow) error = %v", err)
	}

	if !v.Equal(NumberValue(-1)) {
		t.Errorf("Evaluate(shallow) = %v, want -1", v)
	}

	stmt := &PrintStmt{Keyword: Token{Kind: Print, Lexeme: "print", Line: 1}, Expr: nested(9)}
	if err := in.Execute(t.Context(), stmt); !errors.Is(err, ErrRuntime) {
		t.Errorf("Execute(deep statement) error = %v, want runtime error", err)
	}
}

func TestWithMaxDepth(t *testing.T) {
	const source = "print ((1));"

	out, diags := run(t, source, WithMaxDepth(3))
	if len(diags) != 1 || diags[0].Message != "Expression nesting too deep." {
		t.Errorf("WithMaxDepth(3) diagnostics = %v", diags)
	}

	if out != "" {
		t.Errorf("WithMaxDepth(3) output = %q", out)
	}

	// The same source under a larger limit must not reuse the cached
	// failure.
	out, diags = run(t, source, WithMaxDepth(4))
	if len(diags) > 0 || out != "1\n" {
		t.Errorf("WithMaxDepth(4) = %q, %v", out, diags)
	}
}

func TestExecute_Nil(t *testing.T) {
	in := New()

	if err := in.Execute(t.Context(), nil); !errors.Is(err, ErrRuntime) {
		t.Errorf("Execute(nil) = %v, want runtime error", err)
	}

	if _, err := in.Evaluate(t.Context(), nil); !errors.Is(err, ErrRuntime) {
		t.Errorf("Evaluate(nil) = %v, want runtime error", err)
	}
}
