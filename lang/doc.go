// Package lang implements the wz scripting language: a scanner, a
// recursive descent parser, and a tree-walking interpreter over a small
// dynamically typed value model (numbers, strings, booleans, nil and
// arrays).
//
// # Pipeline
//
// Source text flows through three stages:
//
//	source -> [Scan] -> []Token -> [Parse] -> []Stmt -> [Interpreter]
//
// Each stage collects recoverable errors as [Diagnostics] instead of
// stopping. A malformed declaration is dropped and the parser resumes at the
// next statement boundary; a runtime error abandons only the statement that
// raised it.
//
// # Grammar
//
//	program        → declaration* EOF
//	declaration    → varDecl | statement
//	varDecl        → ("let" | "var") IDENTIFIER ("=" expression)? ";"
//	statement      → printStmt | block | ifStmt | exprStmt
//	printStmt      → "print" expression ";"
//	block          → "{" declaration* "}"
//	ifStmt         → "if" "(" expression ")" statement ("else" statement)?
//	exprStmt       → expression ";"
//	expression     → assignment
//	assignment     → equality ("=" assignment)?
//	equality       → comparison (("!=" | "==") comparison)*
//	comparison     → addition ((">" | ">=" | "<" | "<=") addition)*
//	addition       → multiplication (("-" | "+") multiplication)*
//	multiplication → unary (("/" | "*") unary)*
//	unary          → ("!" | "-") unary | primary
//	primary        → NUMBER | STRING | "true" | "false" | "nil" | IDENTIFIER
//	               | "(" expression ")"
//	               | "[" (expression ("," expression)*)? "]"
//
// Line comments start with //. Strings are delimited by double quotes, have
// no escape sequences, and may span lines.
//
// # Example
//
//	let greeting = "hello";
//	let n = 1 + 2 * 3;
//	if (n > 5) {
//	  print greeting + " " + n;   // hello 7
//	} else {
//	  print "small";
//	}
//
// # Semantics
//
// Blocks share the enclosing environment unless [WithBlockScope] is given.
// Array literals evaluate to an empty array unless [WithArrayElements] is
// given. Reading an unbound variable is a runtime error; assigning to one
// creates it. Only nil and false are falsey.
//
// Numbers print in their shortest round-trip form, without a fractional part
// when integral: 5, 2.5, Infinity, NaN.
package lang
