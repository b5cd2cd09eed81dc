package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wz/lang"
	"github.com/ardnew/wz/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	includePathKey struct{}
	streamsKey     struct{}
)

// Streams are the standard streams used by commands.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// WithStreams returns a new context.Context whose commands read and write
// the given streams instead of the process's standard streams.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// WithIncludePath returns a new context.Context containing the directories
// searched for script names that do not resolve as given.
func WithIncludePath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, includePathKey{}, dirs)
}

func includePathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(includePathKey{}).([]string)

	return dirs
}

// Source is the text of one script together with the name it was read from.
type Source struct {
	Name string
	Text string
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources resolves and reads the named scripts in order.
//
// Names are resolved with [resolveScript]. A file named more than once, by
// any path, is read once. All occurrences of "-" are replaced with a single
// read of the input stream placed last, so it reads after all regular
// files.
func readSources(ctx context.Context, names []string) ([]Source, error) {
	var (
		srcs     = make([]Source, 0, len(names))
		seen     = make(map[fileKey]struct{})
		dirs     = includePathFrom(ctx)
		hasStdin bool
	)

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		path, err := resolveScript(name, dirs)
		if err != nil {
			return nil, err
		}

		src, ok, err := readUniqueFile(ctx, path, seen)
		if err != nil {
			return nil, err
		}

		if ok {
			srcs = append(srcs, src)
		}
	}

	if hasStdin {
		text, err := lang.ReadSource(ctx, streamsFrom(ctx).In)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err).With(slog.String("file", stdinSource))
		}

		srcs = append(srcs, Source{Name: stdinSource, Text: text})
	}

	return srcs, nil
}

// resolveScript returns name if it names an existing file. Otherwise a
// relative name is searched for in each of dirs in order.
func resolveScript(name string, dirs []string) (string, error) {
	if isFile(name) {
		return name, nil
	}

	if !filepath.IsAbs(name) {
		for _, dir := range dirs {
			path := filepath.Join(dir, name)
			if isFile(path) {
				log.Debug("resolved script",
					slog.String("name", name),
					slog.String("path", path))

				return path, nil
			}
		}
	}

	return "", ErrScriptNotFound.With(
		slog.String("name", name),
		slog.Any("path", dirs),
	)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// readUniqueFile reads the file at path if it has not been seen before.
// It reports false, without error, for a duplicate.
func readUniqueFile(
	ctx context.Context,
	path string,
	seen map[fileKey]struct{},
) (Source, bool, error) {
	wrap := func(err error) error {
		return ErrOpenSource.Wrap(err).With(slog.String("file", path))
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return Source{}, false, wrap(err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Source{}, false, wrap(err)
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return Source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Source{}, false, wrap(err)
	}
	defer file.Close()

	text, err := lang.ReadSource(ctx, file)
	if err != nil {
		return Source{}, false, wrap(err)
	}

	return Source{Name: path, Text: text}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// createFile creates path with mode 0600, refusing to replace an existing
// file unless force is set.
func createFile(path string, force bool) (*os.File, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flag |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flag, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil, ErrFileExists
	}

	return f, err
}
