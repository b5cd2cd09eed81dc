// Package cli contains the command line interface for wz.
//
// # Usage
//
//	wz [flags] [run] [file ...]   run scripts (the default command)
//	wz repl [file ...]            interactive session, preloading files
//	wz fmt [ast|tokens] [file]    print the syntax tree or token stream
//	wz init [--force]             write a configuration script
//
// A file named "-" is read from standard input, which is the default for
// run and fmt.
//
// # Include Path
//
// Script names that do not resolve as given are searched for in each
// directory given with -I/--path, then in each directory listed in the
// WZ_PATH environment variable.
//
// # Configuration
//
// Flag defaults are read from config.json and then config.wz in the user
// configuration directory (e.g. ~/.config/wz). The latter is itself a
// script: its global bindings name flags, with underscores in place of
// hyphens.
//
//	let log_level = "debug";
//	let path = ["/usr/local/share/wz"];
//
// Command-line flags override both. "wz init" writes a script holding the
// current value of every flag.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time: Set timestamp layout (rfc3339, kitchen, ms, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o wz .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/wz/pprof)
package cli
