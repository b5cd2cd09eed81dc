// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// colorized output, and output formats that are applied at logger creation
// time using functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("program loaded", slog.String("path", path))
//	logger.Error("run failed", slog.Any("error", err))
//
// The zero [Logger] discards everything, so a component can hold one without
// checking whether logging was configured.
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger from an existing configuration, and
// [Config] reconfigures the package default logger used by the package-level
// functions such as [Info] and [Debug].
//
// # Attributes
//
// Attributes given to [Logger.With] are included in every later message.
// Group-valued attributes, including values implementing [slog.LogValuer],
// are flattened into dotted keys by the pretty handlers:
//
//	logger = logger.With(slog.String("file", "main.wz"))
//	logger.Info("statement", slog.Any("token", tok)) // token.kind=... token.line=...
//
// # Context-Aware Logging
//
// Each level has a context-aware and a context-unaware variant. The latter
// use [DefaultContextProvider], which returns [context.TODO] by default.
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn], and [LevelError].
// [LevelTrace] sits below [slog.LevelDebug] and is used for per-token and
// per-statement detail.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON]. With [WithPretty] enabled (the
// default) both are colorized for terminals.
package log
