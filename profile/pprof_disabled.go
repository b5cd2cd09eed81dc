//go:build !pprof

package profile

// Enabled reports whether the binary was built with the pprof tag.
const Enabled = false

// Modes returns nil when built without the pprof tag.
func Modes() []string { return nil }

func start(string, string, bool) Stopper { return ignore{} }
