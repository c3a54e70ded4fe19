// Package logging provides the leveled console logger and the optional
// structured (JSON) log file.
//
// Console lines are human oriented and colored through [term]. When a log
// file is configured every console line is mirrored to it as a zap entry,
// and per-file placement events ([Logger.Event]) carry typed fields.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/backmassage/fontsort/internal/config"
	"github.com/backmassage/fontsort/internal/term"
)

// Logger provides leveled, optionally colored logging with an optional
// structured file sink. All methods are goroutine-safe.
type Logger struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer

	file *os.File
	zap  *zap.Logger // nil without a log file
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile for structured output. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := &Logger{stdout: os.Stdout, stderr: os.Stderr}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		level := zapcore.InfoLevel
		if cfg.Verbose {
			level = zapcore.DebugLevel
		}
		l.file = f
		l.zap = newFileLogger(f, level)
	}
	return l, nil
}

// newFileLogger builds a JSON zap logger over w. Sampling is off so every
// placement is recorded.
func newFileLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core).With(zap.String("app", "fontsort"))
}

// Close flushes and closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	_ = l.zap.Sync()
	err := l.file.Close()
	l.file, l.zap = nil, nil
	return err
}

func (l *Logger) line(level zapcore.Level, label string, style term.Style, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.stdout
	if level >= zapcore.ErrorLevel {
		out = l.stderr
	}
	_, _ = io.WriteString(out, ts+" "+term.Paint(style, "["+label+"]")+" "+text+"\n")
	if l.zap != nil {
		if ce := l.zap.Check(level, text); ce != nil {
			ce.Write(zap.String("label", label))
		}
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(zapcore.InfoLevel, "INFO", term.Info, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(zapcore.InfoLevel, "SUCCESS", term.Success, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(zapcore.WarnLevel, "WARN", term.Warn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(zapcore.ErrorLevel, "ERROR", term.Error, fmt.Sprintf(format, args...))
}

// Dup logs at DUP level (orange), for duplicates left or moved aside.
func (l *Logger) Dup(format string, args ...interface{}) {
	l.line(zapcore.InfoLevel, "DUP", term.Duplicate, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line(zapcore.DebugLevel, "DEBUG", term.Debug, fmt.Sprintf(format, args...))
}

// Event records a structured entry in the log file only. It is a no-op
// without a log file.
func (l *Logger) Event(msg string, fields ...zap.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.zap != nil {
		l.zap.Info(msg, fields...)
	}
}
