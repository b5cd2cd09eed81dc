// Package profile provides optional runtime profiling for the wz command.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op.
//
// # Modes
//
// allocs, block, clock, cpu, goroutine, heap, mem, mutex, thread, trace.
//
// # Usage
//
//	s := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath(dir),
//	).Start()
//	defer s.Stop()
//
// From the command line:
//
//	wz --pprof-mode=cpu --pprof-dir=./prof run script.wz
//	go tool pprof -http=: ./prof/cpu.pprof
//
// The default output directory is the "pprof" subdirectory of the user
// cache directory (for example ~/.cache/wz/pprof).
//
// When built with the pprof tag the package also imports [net/http/pprof],
// which registers its handlers on [net/http.DefaultServeMux].
package profile
