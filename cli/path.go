package cli

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/mung"

	"github.com/ardnew/wz/pkg"
)

// baseConfig is the base name of the configuration script.
const baseConfig = "config.wz"

// pathEnv is the suffix of the environment variable listing additional
// script directories, e.g. WZ_PATH.
const pathEnv = "path"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// includePath returns the directories searched for scripts: dirs given on
// the command line, then those listed in the path environment variable.
// Entries that are not existing directories are dropped, as are repeats.
func includePath(dirs ...string) []string {
	// Prefix items are yielded last-first.
	prefix := slices.Clone(dirs)
	slices.Reverse(prefix)

	joined := mung.Make(
		mung.WithSubjectItems(os.Getenv(pkg.EnvName(pathEnv))),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefix(prefix),
		mung.WithFilter(isDir),
	).String()

	return filepath.SplitList(joined)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
