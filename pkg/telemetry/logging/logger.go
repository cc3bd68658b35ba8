package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in plain text format.
	FormatText LogFormat = "text"
	// FormatConsole outputs logs in human-readable console format.
	FormatConsole LogFormat = "console"
)

// Logger provides structured logging with secret redaction and async
// buffered writes.
type Logger struct {
	// slog is the underlying structured logger
	slog *slog.Logger

	// redactor masks credentials in log fields
	redactor *Redactor

	// level is the minimum log level
	level slog.Level

	// format is the output format
	format LogFormat

	// addSource includes file:line in logs
	addSource bool

	// buffer is the async log buffer
	buffer *LogBuffer

	// writer is the underlying writer
	writer io.Writer
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text", "console")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// RedactSecrets enables automatic credential redaction
	RedactSecrets bool

	// BufferSize is the async log buffer size
	BufferSize int

	// RedactPatterns contains custom redaction patterns applied in
	// addition to the built-in ones
	RedactPatterns []RedactPattern

	// Writer is the output writer (defaults to os.Stdout)
	Writer io.Writer
}

// New creates a new Logger with the given configuration and starts its
// async writer. Call Shutdown to flush pending lines before exit.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 10000
	}

	var redactor *Redactor
	if cfg.RedactSecrets {
		redactor = NewRedactor(cfg.RedactPatterns)
	}

	buffer := newLogBuffer(writer, bufferSize)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText, FormatConsole:
		// Console rides on the text handler; the difference is cosmetic
		// and only matters to terminal readers.
		handler = slog.NewTextHandler(buffer, opts)
	default:
		handler = slog.NewJSONHandler(buffer, opts)
	}

	logger := &Logger{
		slog:      slog.New(handler),
		redactor:  redactor,
		level:     level,
		format:    format,
		addSource: cfg.AddSource,
		buffer:    buffer,
		writer:    writer,
	}

	buffer.Start()

	return logger, nil
}

// LogBuffer queues formatted log lines for a background writer so that
// logging never blocks request handling. Lines arriving while the queue
// is full are dropped and counted.
type LogBuffer struct {
	lines    chan []byte
	maxSize  int
	dropped  atomic.Int64
	writer   io.Writer
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newLogBuffer(writer io.Writer, size int) *LogBuffer {
	return &LogBuffer{
		lines:    make(chan []byte, size),
		maxSize:  size,
		writer:   writer,
		stopChan: make(chan struct{}),
	}
}

// Write implements io.Writer for slog handlers. The line is copied and
// queued; the handler's buffer is reused after Write returns.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)

	select {
	case lb.lines <- line:
	default:
		lb.dropped.Add(1)
	}

	return len(p), nil
}

// Start begins the background writer goroutine.
func (lb *LogBuffer) Start() {
	lb.wg.Add(1)
	go lb.runWriter()
}

// runWriter drains queued lines to the underlying writer until Stop is
// called, then flushes what remains.
func (lb *LogBuffer) runWriter() {
	defer lb.wg.Done()

	for {
		select {
		case <-lb.stopChan:
			for {
				select {
				case line := <-lb.lines:
					lb.writer.Write(line)
				default:
					return
				}
			}
		case line := <-lb.lines:
			lb.writer.Write(line)
		}
	}
}

// Stop stops the background writer after flushing pending lines. It is
// safe to call more than once.
func (lb *LogBuffer) Stop() {
	lb.stopOnce.Do(func() {
		close(lb.stopChan)
		lb.wg.Wait()
	})
}

// DroppedCount returns the number of log lines dropped because the
// buffer was full.
func (lb *LogBuffer) DroppedCount() int64 {
	return lb.dropped.Load()
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext logs a debug message with fields extracted from ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, append(extractContextFields(ctx), args...)...)
}

// InfoContext logs an info message with fields extracted from ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, append(extractContextFields(ctx), args...)...)
}

// WarnContext logs a warning message with fields extracted from ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, append(extractContextFields(ctx), args...)...)
}

// ErrorContext logs an error message with fields extracted from ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, append(extractContextFields(ctx), args...)...)
}

// log applies secret redaction and hands the record to slog.
func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	// Fast path: skip redaction work when the level is filtered out.
	if !l.slog.Enabled(ctx, level) {
		return
	}

	if l.redactor != nil {
		args = l.redactor.RedactArgs(args...)
	}

	l.slog.Log(ctx, level, msg, args...)
}

// With creates a child logger with additional fields.
func (l *Logger) With(args ...any) *Logger {
	if l.redactor != nil {
		args = l.redactor.RedactArgs(args...)
	}

	return &Logger{
		slog:      l.slog.With(args...),
		redactor:  l.redactor,
		level:     l.level,
		format:    l.format,
		addSource: l.addSource,
		buffer:    l.buffer,
		writer:    l.writer,
	}
}

// WithContext creates a child logger carrying the fields stored in ctx
// (request_id, style_id, variant and friends).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	args := extractContextFields(ctx)
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}

// Slog returns the underlying slog logger for components that take a
// plain *slog.Logger. Records logged through it share the async buffer
// but skip argument redaction; callers logging credentials or remote
// URLs should redact them first (see Redactor).
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Shutdown flushes pending log lines and stops the background writer.
func (l *Logger) Shutdown() error {
	if l.buffer != nil {
		l.buffer.Stop()
	}
	return nil
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch strings.ToLower(formatStr) {
	case "json", "":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "console":
		return FormatConsole, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}
