package logger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiBlue  = "\033[34m"
)

type levelStyle struct {
	tag  string
	ansi string
}

var levelStyles = map[slog.Level]levelStyle{
	slog.LevelDebug: {"DBG", "\033[35m"},
	slog.LevelInfo:  {"INF", "\033[32m"},
	slog.LevelWarn:  {"WRN", "\033[33m"},
	slog.LevelError: {"ERR", "\033[31m"},
}

func styleFor(level slog.Level) levelStyle {
	if s, ok := levelStyles[level]; ok {
		return s
	}
	return levelStyle{tag: level.String(), ansi: "\033[37m"}
}

// PrettyHandler writes one line per record:
//
//	15:04:05 INF [dashboard] snapshot installed participants=12
//
// The component attribute becomes the bracketed tag. Group names prefix keys with a dot.
type PrettyHandler struct {
	opts      *slog.HandlerOptions
	mu        *sync.Mutex
	w         io.Writer
	color     bool
	component string
	attrs     []slog.Attr
	group     string
}

// NewPrettyHandler creates a colored pretty handler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: opts, mu: &sync.Mutex{}, w: w, color: true}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

// Handle formats and writes the log record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ln := line{color: h.color, buf: make([]byte, 0, 256)}

	ln.paint(ansiDim, r.Time.Format(time.TimeOnly))
	ln.space()
	style := styleFor(r.Level)
	ln.paint(style.ansi, style.tag)
	ln.space()

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		ln.paint(ansiDim, filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line))
		ln.space()
	}

	component := h.component
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.group == "" && a.Key == ComponentKey {
			component = a.Value.String()
			return true
		}
		attrs = append(attrs, h.scoped(a))
		return true
	})

	if component != "" {
		ln.paint(ansiBlue, "["+component+"]")
		ln.space()
	}
	ln.paint(ansiBold, r.Message)

	for _, a := range attrs {
		ln.attr("", a)
	}
	ln.buf = append(ln.buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(ln.buf)
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if h.group == "" && a.Key == ComponentKey {
			clone.component = a.Value.String()
			continue
		}
		clone.attrs = append(clone.attrs, h.scoped(a))
	}
	return &clone
}

// WithGroup returns a new handler with the given group.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

func (h *PrettyHandler) scoped(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + a.Key
	}
	return a
}

// line accumulates one rendered record.
type line struct {
	buf   []byte
	color bool
}

func (l *line) space() { l.buf = append(l.buf, ' ') }

func (l *line) paint(code, s string) {
	if !l.color {
		l.buf = append(l.buf, s...)
		return
	}
	l.buf = append(l.buf, code...)
	l.buf = append(l.buf, s...)
	l.buf = append(l.buf, ansiReset...)
}

// attr renders key=value, flattening groups into dotted keys.
func (l *line) attr(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			l.attr(prefix+a.Key+".", ga)
		}
		return
	}
	if a.Equal(slog.Attr{}) {
		return
	}
	l.space()
	l.paint(ansiCyan, prefix+a.Key+"="+formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\"\n") {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
