package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/wz/lang"
	"github.com/ardnew/wz/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-compile-retry loop.
// It writes the session bindings as a script to a temp file, opens the
// user's editor, and compiles the result. On error the user is prompted to
// re-edit; declining discards the edit.
type editCommand struct {
	env     *lang.Environment
	ctxFunc func() context.Context
	source  string // accepted script, empty if the edit was cancelled
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. If the user declines to re-edit a script that
// does not compile, it returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()
	content := renderBindings(c.env)

	f, err := os.CreateTemp(os.TempDir(), "wz-repl-*.wz")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		diags := lang.Compile(string(data)).Diags
		c.logger.TraceContext(
			ctx,
			"editor compile attempt",
			slog.Int("content_length", len(data)),
			slog.Int("diagnostics", len(diags)),
		)

		if len(diags) == 0 {
			c.source = string(data)

			return nil
		}

		for _, d := range diags {
			fmt.Fprintln(c.stderr, d.Error())
		}

		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// renderBindings writes each binding of env as a declaration, sorted by
// name. Values with no literal form are kept as comments.
func renderBindings(env *lang.Environment) string {
	var b strings.Builder

	b.WriteString("// Session bindings. Saving replaces the session with this script.\n")

	for name, v := range env.All() {
		if lit, ok := lang.SourceLiteral(v); ok {
			b.WriteString("let " + name + " = " + lit + ";\n")
		} else {
			b.WriteString("// let " + name + " = " + v.String() + ";\n")
		}
	}

	return b.String()
}

// runEditor launches the user's editor on the given file path and returns
// the edited content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
