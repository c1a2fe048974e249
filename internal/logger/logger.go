// Package logger configures structured logging for the service.
// Development builds get a coloured single-line format, production emits JSON.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
)

const (
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiGray    = "\033[37m"
	ansiBold    = "\033[1m"
	ansiDim     = "\033[2m"
)

// Logger wraps slog.Logger with a few field helpers used by the HTTP layer.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string // "json" or "pretty"; derived from Environment when empty
	Environment string
	Level       slog.Level
	AddSource   bool
	Service     string // added to every record when set
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Format == "" {
		cfg.Format = formatPretty
		if cfg.Environment == "production" {
			cfg.Format = formatJSON
		}
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key != slog.SourceKey {
				return a
			}
			if src, ok := a.Value.Any().(*slog.Source); ok {
				src.File = filepath.Base(src.File)
			}
			return a
		},
	}

	var handler slog.Handler = NewPrettyHandler(cfg.Writer, opts)
	if cfg.Format == formatJSON {
		handler = slog.NewJSONHandler(cfg.Writer, opts)
	}

	l := slog.New(handler)
	if cfg.Service != "" {
		l = l.With(slog.String("service", cfg.Service))
	}
	return &Logger{Logger: l}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to slog.Level, falling back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// PrettyHandler writes "15:04:05 LVL message key=value" lines with ANSI colours.
// Group names are rendered as dotted key prefixes.
type PrettyHandler struct {
	opts   *slog.HandlerOptions
	writer io.Writer
	attrs  []slog.Attr
	prefix string
}

// NewPrettyHandler creates a new pretty handler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: opts, writer: w}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes the log record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.Grow(256)

	b.WriteString(ansiDim + r.Time.Format("15:04:05") + ansiReset + " ")

	label, color := levelStyle(r.Level)
	b.WriteString(color + label + ansiReset + " ")

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b.WriteString(ansiDim + filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line) + ansiReset + " ")
	}

	b.WriteString(ansiBold + r.Message + ansiReset)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		attrs = append(attrs, a)
		return true
	})

	if len(attrs) > 0 {
		b.WriteString(" " + ansiCyan)
		for i, a := range attrs {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(a.Key + "=" + renderValue(a.Value))
		}
		b.WriteString(ansiReset)
	}

	b.WriteByte('\n')
	_, err := io.WriteString(h.writer, b.String())
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		merged = append(merged, a)
	}
	return &PrettyHandler{opts: h.opts, writer: h.writer, attrs: merged, prefix: h.prefix}
}

// WithGroup returns a new handler that prefixes subsequent keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &PrettyHandler{opts: h.opts, writer: h.writer, attrs: h.attrs, prefix: h.prefix + name + "."}
}

func levelStyle(level slog.Level) (label, color string) {
	switch {
	case level >= slog.LevelError:
		return "ERR", ansiRed
	case level >= slog.LevelWarn:
		return "WRN", ansiYellow
	case level >= slog.LevelInfo:
		return "INF", ansiGreen
	case level >= slog.LevelDebug:
		return "DBG", ansiMagenta
	default:
		return level.String(), ansiGray
	}
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString:
		if s := v.String(); strings.ContainsAny(s, " \t") {
			return strconv.Quote(s)
		}
		return v.String()
	default:
		return v.String()
	}
}

// WithError adds an error attribute to the logger.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With(slog.String("error", err.Error()))}
}

// WithField adds a single field to the logger.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(slog.Any(key, value))}
}

// WithDraft scopes the logger to one configuration session.
func (l *Logger) WithDraft(draftID string) *Logger {
	return l.WithField("draft_id", draftID)
}

// Fatal logs msg at error level and exits.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
