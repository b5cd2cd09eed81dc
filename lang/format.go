package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// FormatTokens writes one token per line as: line KIND lexeme [literal].
func FormatTokens(w io.Writer, tokens []Token) error {
	for _, t := range tokens {
		var err error

		switch t.Kind {
		case String:
			_, err = fmt.Fprintf(w, "%d %s %s %s\n",
				t.Line, t.Kind, t.Lexeme, strconv.Quote(t.Literal.Text()))

		case Number:
			_, err = fmt.Fprintf(w, "%d %s %s %s\n",
				t.Line, t.Kind, t.Lexeme, t.Literal)

		case EOF:
			_, err = fmt.Fprintf(w, "%d %s\n", t.Line, t.Kind)

		default:
			_, err = fmt.Fprintf(w, "%d %s %s\n", t.Line, t.Kind, t.Lexeme)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Format writes each statement on its own line in parenthesized prefix
// form, e.g. (print (+ 1 (* 2 3))).
func Format(w io.Writer, stmts []Stmt) error {
	var sb strings.Builder

	for _, s := range stmts {
		sb.Reset()
		writeStmt(&sb, s)
		sb.WriteByte('\n')

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}

	return nil
}

// SourceLiteral returns source text that evaluates to v, or false if there is
// none: strings containing a double quote and non-finite numbers have no
// literal form. Array literals keep their elements only when evaluated with
// [WithArrayElements].
func SourceLiteral(v Value) (string, bool) {
	switch v.Kind() {
	case KindNull:
		return "nil", true

	case KindBoolean:
		return strconv.FormatBool(v.Bool()), true

	case KindNumber:
		if math.IsInf(v.Float(), 0) || math.IsNaN(v.Float()) {
			return "", false
		}

		return v.String(), true

	case KindString:
		if strings.ContainsRune(v.Text(), '"') {
			return "", false
		}

		return `"` + v.Text() + `"`, true

	case KindArray:
		elems := make([]string, v.Len())

		for i, e := range v.Elems() {
			lit, ok := SourceLiteral(e)
			if !ok {
				return "", false
			}

			elems[i] = lit
		}

		return "[" + strings.Join(elems, ", ") + "]", true
	}

	return "", false
}

// Sprint returns the prefix form of a single node.
func Sprint(n Node) string {
	var sb strings.Builder

	switch n := n.(type) {
	case Stmt:
		writeStmt(&sb, n)

	case Expr:
		writeExpr(&sb, n)
	}

	return sb.String()
}

func writeStmt(sb *strings.Builder, s Stmt) {
	switch s := s.(type) {
	case *PrintStmt:
		sb.WriteString("(print ")
		writeExpr(sb, s.Expr)
		sb.WriteByte(')')

	case *ExpressionStmt:
		sb.WriteString("(expr ")
		writeExpr(sb, s.Expr)
		sb.WriteByte(')')

	case *VarDecl:
		sb.WriteString("(let ")
		sb.WriteString(s.Name.Lexeme)

		if s.Init != nil {
			sb.WriteByte(' ')
			writeExpr(sb, s.Init)
		}

		sb.WriteByte(')')

	case *Block:
		sb.WriteString("(block")

		for _, inner := range s.Stmts {
			sb.WriteByte(' ')
			writeStmt(sb, inner)
		}

		sb.WriteByte(')')

	case *IfStmt:
		sb.WriteString("(if ")
		writeExpr(sb, s.Cond)
		sb.WriteByte(' ')
		writeStmt(sb, s.Then)

		if s.Else != nil {
			sb.WriteByte(' ')
			writeStmt(sb, s.Else)
		}

		sb.WriteByte(')')
	}
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Literal:
		if e.Value.Kind() == KindString {
			sb.WriteString(strconv.Quote(e.Value.Text()))
		} else {
			sb.WriteString(e.Value.String())
		}

	case *Variable:
		sb.WriteString(e.Name.Lexeme)

	case *Assign:
		sb.WriteString("(= ")
		sb.WriteString(e.Name.Lexeme)
		sb.WriteByte(' ')
		writeExpr(sb, e.Value)
		sb.WriteByte(')')

	case *Unary:
		sb.WriteByte('(')
		sb.WriteString(e.Op.Lexeme)
		sb.WriteByte(' ')
		writeExpr(sb, e.Operand)
		sb.WriteByte(')')

	case *Binary:
		sb.WriteByte('(')
		sb.WriteString(e.Op.Lexeme)
		sb.WriteByte(' ')
		writeExpr(sb, e.Left)
		sb.WriteByte(' ')
		writeExpr(sb, e.Right)
		sb.WriteByte(')')

	case *ArrayLiteral:
		sb.WriteString("(array")

		for _, el := range e.Elements {
			sb.WriteByte(' ')
			writeExpr(sb, el)
		}

		sb.WriteByte(')')
	}
}

// ToNative converts tokens, syntax trees, values and environments to plain
// Go maps and slices suitable for JSON or YAML encoding. Unsupported inputs
// are returned unchanged.
func ToNative(x any) any {
	switch x := x.(type) {
	case []Token:
		out := make([]any, len(x))
		for i, t := range x {
			out[i] = ToNative(t)
		}

		return out

	case Token:
		m := map[string]any{
			"kind":   x.Kind.String(),
			"lexeme": x.Lexeme,
			"line":   x.Line,
		}

		if x.Kind == String || x.Kind == Number {
			m["literal"] = serialValue(x.Literal)
		}

		return m

	case []Stmt:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = ToNative(s)
		}

		return out

	case Stmt:
		return stmtNative(x)

	case Expr:
		return exprNative(x)

	case Value:
		return serialValue(x)

	case *Environment:
		m := make(map[string]any, x.Len())
		for name, v := range x.All() {
			m[name] = serialValue(v)
		}

		return m

	default:
		return x
	}
}

func stmtNative(s Stmt) any {
	node := func(kind string, kv ...any) map[string]any {
		m := map[string]any{"node": kind, "line": s.Line()}
		for i := 0; i+1 < len(kv); i += 2 {
			m[kv[i].(string)] = kv[i+1]
		}

		return m
	}

	switch s := s.(type) {
	case *PrintStmt:
		return node("print", "expr", exprNative(s.Expr))

	case *ExpressionStmt:
		return node("expression", "expr", exprNative(s.Expr))

	case *VarDecl:
		m := node("let", "name", s.Name.Lexeme)
		if s.Init != nil {
			m["init"] = exprNative(s.Init)
		}

		return m

	case *Block:
		stmts := make([]any, len(s.Stmts))
		for i, inner := range s.Stmts {
			stmts[i] = stmtNative(inner)
		}

		return node("block", "stmts", stmts)

	case *IfStmt:
		m := node("if", "cond", exprNative(s.Cond), "then", stmtNative(s.Then))
		if s.Else != nil {
			m["else"] = stmtNative(s.Else)
		}

		return m

	default:
		return nil
	}
}

func exprNative(e Expr) any {
	switch e := e.(type) {
	case *Literal:
		return map[string]any{
			"node":  "literal",
			"line":  e.Line(),
			"value": serialValue(e.Value),
		}

	case *Variable:
		return map[string]any{"node": "variable", "line": e.Line(), "name": e.Name.Lexeme}

	case *Assign:
		return map[string]any{
			"node":  "assign",
			"line":  e.Line(),
			"name":  e.Name.Lexeme,
			"value": exprNative(e.Value),
		}

	case *Unary:
		return map[string]any{
			"node":    "unary",
			"line":    e.Line(),
			"op":      e.Op.Kind.String(),
			"operand": exprNative(e.Operand),
		}

	case *Binary:
		return map[string]any{
			"node":  "binary",
			"line":  e.Line(),
			"op":    e.Op.Kind.String(),
			"left":  exprNative(e.Left),
			"right": exprNative(e.Right),
		}

	case *ArrayLiteral:
		elems := make([]any, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = exprNative(el)
		}

		return map[string]any{"node": "array", "line": e.Line(), "elements": elems}

	default:
		return nil
	}
}

// serialValue is like [Value.Native] but renders non-finite numbers as
// strings, which JSON cannot otherwise represent.
func serialValue(v Value) any {
	switch v.Kind() {
	case KindNumber:
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return formatNumber(v.num)
		}

		return v.num

	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = serialValue(e)
		}

		return out

	default:
		return v.Native()
	}
}

// FormatJSON writes the native form of x (see [ToNative]) as JSON.
// A positive indent pretty-prints with that many spaces per level.
func FormatJSON(_ context.Context, w io.Writer, x any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(ToNative(x), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ToNative(x))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the native form of x (see [ToNative]) as YAML.
// A positive indent uses block style; otherwise flow style.
func FormatYAML(ctx context.Context, w io.Writer, x any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ToNative(x), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
