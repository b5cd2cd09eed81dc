package cmd

import (
	"context"

	"github.com/ardnew/wz/cli/cmd/repl"
	"github.com/ardnew/wz/lang"
	"github.com/ardnew/wz/log"
)

// Repl starts an interactive session.
type Repl struct {
	Set        []string `help:"Predefine a global as NAME=EXPR, where EXPR is evaluated on the host (repeatable)." placeholder:"NAME=EXPR" short:"D"`
	BlockScope bool     `help:"Give each block its own scope."                                                              negatable:""`
	Arrays     bool     `help:"Evaluate the elements of array literals."                                                    name:"array-elements" negatable:""`

	Preload []string `arg:"" help:"Scripts to run before the first prompt." name:"file" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	globals, err := bindings(r.Set)
	if err != nil {
		return err
	}

	srcs, err := readSources(ctx, r.Preload)
	if err != nil {
		return err
	}

	preload := make([]string, len(srcs))
	for i, src := range srcs {
		preload[i] = src.Text
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, cacheDir, log.Default(), preload,
		lang.WithGlobals(globals),
		lang.WithBlockScope(r.BlockScope),
		lang.WithArrayElements(r.Arrays),
	)
}
