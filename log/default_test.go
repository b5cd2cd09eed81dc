package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// withDefault swaps the package default logger for the duration of a test.
func withDefault(t *testing.T, opts ...Option) *bytes.Buffer {
	t.Helper()

	original := Default()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})

	buf := new(bytes.Buffer)
	Config(append([]Option{WithOutput(buf), WithFormat(FormatJSON), WithPretty(false)}, opts...)...)

	return buf
}

func TestDefault_Functions(t *testing.T) {
	buf := withDefault(t, WithLevel(LevelTrace))

	tests := []struct {
		name  string
		log   func(string, ...slog.Attr)
		level string
	}{
		{"Trace", func(m string, a ...slog.Attr) { TraceContext(context.Background(), m, a...) }, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"DebugContext", func(m string, a ...slog.Attr) { DebugContext(context.Background(), m, a...) }, "DEBUG"},
		{"Info", Info, "INFO"},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(context.Background(), m, a...) }, "INFO"},
		{"Warn", Warn, "WARN"},
		{"WarnContext", func(m string, a ...slog.Attr) { WarnContext(context.Background(), m, a...) }, "WARN"},
		{"Error", Error, "ERROR"},
		{"ErrorContext", func(m string, a ...slog.Attr) { ErrorContext(context.Background(), m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log("message", slog.String("key", "value"))

			out := buf.String()
			for _, want := range []string{`"msg":"message"`, `"level":"` + tt.level + `"`, `"key":"value"`} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q lacks %s", out, want)
				}
			}
		})
	}
}

func TestDefault_ConfigKeepsUnsetOptions(t *testing.T) {
	buf := withDefault(t, WithLevel(LevelWarn))

	Config(WithCaller(true))

	if got := Default().Level(); got != LevelWarn {
		t.Errorf("level = %v, want %v", got, LevelWarn)
	}

	Info("dropped")

	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}

	With(slog.String("k", "v")).Warn("kept")

	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("output %q lacks attribute", buf.String())
	}
}
