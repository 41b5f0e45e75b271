package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// modulePrefix is trimmed from caller paths recorded in the digest.
const modulePrefix = "TradePulse/"

// Logger is a component-scoped zerolog logger. Error logs are also folded
// into the digest when one is enabled.
type Logger struct {
	zl        zerolog.Logger
	component string
	digest    *atomic.Pointer[Digest]
}

// Config selects level, encoding and destination.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr or a file path
	TimeFormat string
}

// New builds the root logger.
func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	out, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	tf := cfg.TimeFormat
	if tf == "" {
		tf = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = tf
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: tf}
	}

	zl := zerolog.New(out).With().Timestamp().CallerWithSkipFrameCount(3).Logger()
	return &Logger{zl: zl, digest: new(atomic.Pointer[Digest])}, nil
}

func openOutput(dest string) (io.Writer, error) {
	switch dest {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), digest: new(atomic.Pointer[Digest])}
}

// With returns a child tagged with component. Children share the digest.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		zl:        l.zl.With().Str("component", component).Logger(),
		component: component,
		digest:    l.digest,
	}
}

// EnableDigest starts aggregating error logs, replacing any running digest.
func (l *Logger) EnableDigest(cfg DigestConfig) {
	if old := l.digest.Swap(NewDigest(cfg)); old != nil {
		old.Close()
	}
}

// DisableDigest flushes and stops the digest.
func (l *Logger) DisableDigest() {
	if d := l.digest.Swap(nil); d != nil {
		d.Close()
	}
}

func (l *Logger) Debug(msg string, fields ...Field) { emit(l.zl.Debug(), msg, fields) }

func (l *Logger) Info(msg string, fields ...Field) { emit(l.zl.Info(), msg, fields) }

func (l *Logger) Warn(msg string, fields ...Field) { emit(l.zl.Warn(), msg, fields) }

func (l *Logger) Error(msg string, fields ...Field) {
	emit(l.zl.Error(), msg, fields)
	if d := l.digest.Load(); d != nil {
		d.Add(l.component, msg, callerOf(2), fieldMap(fields))
	}
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		return
	}
	for _, f := range fields {
		f.apply(ev)
	}
	ev.Msg(msg)
}

func callerOf(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	if i := strings.LastIndex(file, modulePrefix); i >= 0 {
		file = file[i+len(modulePrefix):]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func fieldMap(fields []Field) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

// Printf adapts the logger to printf-style interfaces such as the profiler's.
type Printf struct {
	L *Logger
}

func (p Printf) Infof(format string, args ...interface{}) { p.L.Info(fmt.Sprintf(format, args...)) }

func (p Printf) Debugf(format string, args ...interface{}) { p.L.Debug(fmt.Sprintf(format, args...)) }

func (p Printf) Errorf(format string, args ...interface{}) { p.L.Error(fmt.Sprintf(format, args...)) }
