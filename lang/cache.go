package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/wz/log"
)

// programCache stores compiled programs keyed by the xxh3 hash of their
// source text, seeded with the nesting limit they were parsed under.
var programCache sync.Map

// Program is the front-end result for one source text: its tokens, its
// statements, and the lexical and syntax errors found while producing them.
//
// Programs returned by [Compile] are shared. Callers must treat every field
// as read-only.
type Program struct {
	Source string
	Tokens []Token
	Stmts  []Stmt
	Diags  Diagnostics

	maxDepth int
}

// entry tracks the compile state for a cached source.
type entry struct {
	once sync.Once
	prog *Program
}

// Compile scans and parses source, reusing the result of an earlier call
// with identical source text. Nesting is limited to [DefaultMaxDepth]. It
// is safe for concurrent use.
func Compile(source string) *Program {
	return compile(context.Background(), source, DefaultMaxDepth, log.Logger{})
}

// ClearCache discards every program retained by [Compile].
func ClearCache() { programCache.Clear() }

func compile(
	ctx context.Context,
	source string,
	maxDepth int,
	logger log.Logger,
) *Program {
	key := xxh3.HashStringSeed(source, uint64(maxDepth))

	value, hit := programCache.LoadOrStore(key, new(entry))

	ent, _ := value.(*entry)

	ent.once.Do(func() {
		ent.prog = compileUncached(source, maxDepth, logger)
	})

	logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", hit))

	if ent.prog.Source != source || ent.prog.maxDepth != maxDepth {
		// Hash collision: never hand out another source's program.
		logger.DebugContext(ctx, "cache collision",
			slog.String("source_hash", strconv.FormatUint(key, 16)))

		return compileUncached(source, maxDepth, logger)
	}

	return ent.prog
}

func compileUncached(source string, maxDepth int, logger log.Logger) *Program {
	s := NewScanner(source)
	s.logger = logger

	tokens, lexDiags := s.Tokens()
	stmts, parseDiags := newParser(tokens, maxDepth, logger).parse()

	diags := make(Diagnostics, 0, len(lexDiags)+len(parseDiags))
	diags = append(diags, lexDiags...)
	diags = append(diags, parseDiags...)

	return &Program{
		Source: source,
		Tokens: tokens,
		Stmts:  stmts,
		Diags:  diags,

		maxDepth: maxDepth,
	}
}
