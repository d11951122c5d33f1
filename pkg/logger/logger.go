package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	tagColor   = color.New(color.FgCyan)
	mutedColor = color.New(color.FgHiBlack)
)

var levelStyles = map[slog.Level]struct {
	color *color.Color
	label string
}{
	slog.LevelDebug: {color.New(color.FgHiBlack), "DEBUG"},
	slog.LevelInfo:  {color.New(color.FgGreen), "INFO "},
	slog.LevelWarn:  {color.New(color.FgYellow), "WARN "},
	slog.LevelError: {color.New(color.FgRed), "ERROR"},
}

var Log *slog.Logger

type PrettyHandler struct {
	out        io.Writer
	level      slog.Level
	mu         *sync.Mutex
	timeFormat string
	attrs      []slog.Attr
}

func NewPrettyHandler(out io.Writer, level slog.Level, timeFormat string) *PrettyHandler {
	if timeFormat == "" {
		timeFormat = "2006-01-02 15:04:05"
	}
	return &PrettyHandler{
		out:        out,
		level:      level,
		mu:         &sync.Mutex{},
		timeFormat: timeFormat,
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	style, ok := levelStyles[r.Level]
	if !ok {
		style = levelStyles[slog.LevelInfo]
	}

	var b strings.Builder
	b.WriteString(tagColor.Sprint("[AETHER]"))
	b.WriteString(" ")
	b.WriteString(r.Time.Format(h.timeFormat))
	b.WriteString(mutedColor.Sprint(" | "))
	b.WriteString(style.color.Sprint(style.label))
	b.WriteString(mutedColor.Sprint(" | "))
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", tagColor.Sprint(a.Key), a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	b.WriteString("\n")
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return h
}

func init() {
	Log = slog.New(NewPrettyHandler(os.Stdout, slog.LevelInfo, ""))
	slog.SetDefault(Log)
}

// Setup replaces the default logger. When file is set, records are also
// written to a size-rotated log file.
func Setup(level, file string) {
	var out io.Writer = os.Stdout
	if file != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	Log = slog.New(NewPrettyHandler(out, ParseLevel(level), ""))
	slog.SetDefault(Log)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

func InfoWithDuration(msg string, start time.Time, args ...any) {
	args = append(args, "duration", time.Since(start).Round(time.Millisecond))
	Log.Info(msg, args...)
}

func ErrorWithDuration(msg string, start time.Time, args ...any) {
	args = append(args, "duration", time.Since(start).Round(time.Millisecond))
	Log.Error(msg, args...)
}
