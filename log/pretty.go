package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler writes colorized records either as one line of key=value
// pairs (text) or as an indented object (json).
//
// Groups, both from WithGroup and from group-valued attributes such as
// resolved [slog.LogValuer]s, are flattened into dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string      // dotted group path applied to new attributes
	attrs  []slog.Attr // pre-qualified attributes from WithAttrs
	json   bool
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, json: true}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs)+4)

	if !r.Time.IsZero() {
		fields = h.appendBuiltin(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.appendBuiltin(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			fields = h.appendBuiltin(fields,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = h.appendBuiltin(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = flatten(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.json {
		writeJSON(buf, fields)
	} else {
		writeText(buf, fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = h.attrs[:len(h.attrs):len(h.attrs)]

	for _, a := range attrs {
		h2.attrs = flatten(h2.attrs, h.prefix, a)
	}

	return &h2
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.prefix = h.prefix + name + "."

	return &h2
}

// appendBuiltin passes a built-in attribute through ReplaceAttr.
func (h *prettyHandler) appendBuiltin(fields []slog.Attr, a slog.Attr) []slog.Attr {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return fields
	}

	if level, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
	}

	return append(fields, a)
}

// flatten resolves a and appends it, or its members if it is a group, with
// keys qualified by prefix.
func flatten(fields []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		if a.Key == "" {
			return fields
		}

		a.Key = prefix + a.Key

		return append(fields, a)
	}

	if a.Key != "" {
		prefix += a.Key + "."
	}

	for _, member := range a.Value.Group() {
		fields = flatten(fields, prefix, member)
	}

	return fields
}

func writeText(buf *bytes.Buffer, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(colorGray)
		buf.WriteString(a.Key)
		buf.WriteString(colorReset)
		buf.WriteByte('=')

		writeValue(buf, a.Key, a.Value, false)
	}
}

func writeJSON(buf *bytes.Buffer, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(colorGray)
		buf.WriteString(strconv.Quote(a.Key))
		buf.WriteString(colorReset)
		buf.WriteString(": ")

		writeValue(buf, a.Key, a.Value, true)
	}

	buf.WriteString("\n}")
}

// writeValue writes v in a color chosen by its kind. The level field is
// colored by severity. If quote is set, non-numeric non-boolean values are
// written as JSON strings.
func writeValue(buf *bytes.Buffer, key string, v slog.Value, quote bool) {
	color, text, bare := colorCyan, "", false

	switch v.Kind() {
	case slog.KindString:
		text = v.String()

		if key == slog.LevelKey {
			color = levelColor(ParseLevel(text))
		}

	case slog.KindInt64:
		color, text, bare = colorYellow, strconv.FormatInt(v.Int64(), 10), true

	case slog.KindUint64:
		color, text, bare = colorYellow, strconv.FormatUint(v.Uint64(), 10), true

	case slog.KindFloat64:
		color, text = colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64)
		bare = !math.IsInf(v.Float64(), 0) && !math.IsNaN(v.Float64())

	case slog.KindBool:
		color, text, bare = colorRed, "false", true
		if v.Bool() {
			color = colorGreen
			text = "true"
		}

	case slog.KindDuration:
		color, text = colorMagenta, v.Duration().String()

	case slog.KindTime:
		color, text = colorBlue, v.Time().String()

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			color, text = colorRed, err.Error()
		} else if v.Any() == nil {
			color, text, bare = colorGray, "null", true
		} else {
			text = fmt.Sprint(v.Any())
		}

	default:
		text = v.String()
	}

	if quote && !bare {
		text = strconv.Quote(text)
	}

	buf.WriteString(color)
	buf.WriteString(text)
	buf.WriteString(colorReset)
}

func levelColor(level Level) string {
	switch {
	case level >= LevelError:
		return colorRed

	case level >= LevelWarn:
		return colorYellow

	case level >= LevelInfo:
		return colorGreen

	default:
		return colorBlue
	}
}
