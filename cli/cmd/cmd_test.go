package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func sourceTexts(srcs []Source) []string {
	texts := make([]string, len(srcs))
	for i, s := range srcs {
		texts[i] = s.Text
	}

	return texts
}

func stdinContext(t *testing.T, in string) context.Context {
	t.Helper()

	return WithStreams(t.Context(), Streams{In: strings.NewReader(in)})
}

// TestReadSourcesEmpty tests that an empty name list reads nothing.
func TestReadSourcesEmpty(t *testing.T) {
	srcs, err := readSources(t.Context(), nil)
	if err != nil || len(srcs) != 0 {
		t.Errorf("readSources(nil) = %v, %v", srcs, err)
	}
}

// TestReadSourcesMultipleFiles tests that files are read in order.
func TestReadSourcesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	file1 := writeFile(t, filepath.Join(dir, "a.wz"), "first")
	file2 := writeFile(t, filepath.Join(dir, "b.wz"), "second")

	srcs, err := readSources(t.Context(), []string{file1, file2})
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(sourceTexts(srcs), ","); got != "first,second" {
		t.Errorf("texts = %q", got)
	}

	if srcs[0].Name != file1 {
		t.Errorf("name = %q, want %q", srcs[0].Name, file1)
	}
}

// TestReadSourcesDuplicates tests that a file named more than once, by any
// path, is read once.
func TestReadSourcesDuplicates(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "a.wz"), "once")

	link := filepath.Join(dir, "link.wz")
	if err := os.Symlink(file, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	t.Chdir(dir)

	names := []string{file, "a.wz", "./a.wz", link, file}

	srcs, err := readSources(t.Context(), names)
	if err != nil {
		t.Fatal(err)
	}

	if len(srcs) != 1 {
		t.Errorf("read %d sources, want 1: %v", len(srcs), sourceTexts(srcs))
	}
}

// TestReadSourcesStdinLast tests that stdin is read once, after all files.
func TestReadSourcesStdinLast(t *testing.T) {
	dir := t.TempDir()
	file1 := writeFile(t, filepath.Join(dir, "a.wz"), "file1")
	file2 := writeFile(t, filepath.Join(dir, "b.wz"), "file2")

	ctx := stdinContext(t, "stdin")

	srcs, err := readSources(ctx, []string{"-", file1, "-", file2, "-"})
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(sourceTexts(srcs), ","); got != "file1,file2,stdin" {
		t.Errorf("texts = %q", got)
	}

	if srcs[2].Name != stdinSource {
		t.Errorf("stdin name = %q", srcs[2].Name)
	}
}

// TestReadSourcesNonexistent tests that a missing file fails the whole read.
func TestReadSourcesNonexistent(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "a.wz"), "x")

	_, err := readSources(t.Context(), []string{file, filepath.Join(dir, "missing.wz")})
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("error = %v, want ErrScriptNotFound", err)
	}
}

func TestResolveScript(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	writeFile(t, filepath.Join(dir2, "lib.wz"), "")
	writeFile(t, filepath.Join(dir1, "both.wz"), "")
	writeFile(t, filepath.Join(dir2, "both.wz"), "")

	if err := os.Mkdir(filepath.Join(dir1, "sub.wz"), 0o755); err != nil {
		t.Fatal(err)
	}

	dirs := []string{dir1, dir2}

	tests := []struct {
		name    string
		script  string
		want    string
		wantErr bool
	}{
		{"second_dir", "lib.wz", filepath.Join(dir2, "lib.wz"), false},
		{"first_dir_wins", "both.wz", filepath.Join(dir1, "both.wz"), false},
		{"absolute", filepath.Join(dir2, "lib.wz"), filepath.Join(dir2, "lib.wz"), false},
		{"absolute_not_searched", "/lib.wz", "", true},
		{"directory_skipped", "sub.wz", "", true},
		{"missing", "none.wz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveScript(tt.script, dirs)

			if tt.wantErr {
				if !errors.Is(err, ErrScriptNotFound) {
					t.Errorf("error = %v, want ErrScriptNotFound", err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("resolveScript(%q) = %q, %v, want %q", tt.script, got, err, tt.want)
			}
		})
	}
}

// TestReadSourcesIncludePath tests that names are resolved against the
// include path carried by the context.
func TestReadSourcesIncludePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.wz"), "from include")

	ctx := WithIncludePath(t.Context(), []string{dir})

	srcs, err := readSources(ctx, []string{"lib.wz"})
	if err != nil {
		t.Fatal(err)
	}

	if len(srcs) != 1 || srcs[0].Text != "from include" {
		t.Errorf("sources = %v", srcs)
	}
}

func TestCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")

	f, err := createFile(path, false)
	if err != nil {
		t.Fatal(err)
	}

	f.Close()

	if _, err := createFile(path, false); !errors.Is(err, ErrFileExists) {
		t.Errorf("second create error = %v, want ErrFileExists", err)
	}

	f, err = createFile(path, true)
	if err != nil {
		t.Fatalf("forced create error = %v", err)
	}

	f.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}
}

func TestErrorIs(t *testing.T) {
	err := ErrScriptFailed.Wrap(errors.New("boom"))

	if !errors.Is(err, ErrScriptFailed) {
		t.Error("wrapped error does not match its sentinel")
	}

	if errors.Is(err, ErrFormat) {
		t.Error("wrapped error matches another sentinel")
	}

	if got := err.Error(); got != "script reported errors: boom" {
		t.Errorf("Error() = %q", got)
	}
}
