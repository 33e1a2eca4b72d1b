// Package logger provides structured logging for the homework bot.
// It wraps zap with the bot's severity names (including CRITICAL) and writes
// one line per entry with timestamp, level, message and logger name.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log message.
type Level int8

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general operational information.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for errors the process recovers from.
	LevelError
	// LevelCritical is for unexpected failures and for startup failures that stop the process.
	LevelCritical
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// zapLevel maps a Level onto zap. CRITICAL rides on DPanic, which only panics
// in zap development mode, and that mode is never enabled here.
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelCritical:
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.DPanicLevel:
		enc.AppendString(LevelCritical.String())
	case zapcore.WarnLevel:
		enc.AppendString(LevelWarn.String())
	default:
		enc.AppendString(l.CapitalString())
	}
}

// Field represents a key-value pair for structured logging.
type Field = zap.Field

// Common field constructors for convenience.
func String(key, value string) Field                 { return zap.String(key, value) }
func Int(key string, value int) Field                { return zap.Int(key, value) }
func Int64(key string, value int64) Field            { return zap.Int64(key, value) }
func Duration(key string, value time.Duration) Field { return zap.Duration(key, value) }
func Any(key string, value any) Field                { return zap.Any(key, value) }

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}

// Stack records the caller's stack trace under key.
func Stack(key string) Field {
	return zap.StackSkip(key, 1)
}

// Bot-related logging helpers.
func CycleID(id string) Field        { return String("cycle_id", id) }
func HomeworkName(name string) Field { return String("homework_name", name) }
func Latency(d time.Duration) Field  { return Duration("latency", d) }

// Format selects the line encoder.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Options configures the logger.
type Options struct {
	Output    io.Writer
	Level     Level
	Format    Format
	Name      string
	AddCaller bool
}

// DefaultOptions returns sensible defaults for the logger.
func DefaultOptions() Options {
	return Options{
		Output:    os.Stdout,
		Level:     LevelInfo,
		Format:    FormatJSON,
		Name:      "homework_bot",
		AddCaller: false,
	}
}

// Logger is the main logger struct.
type Logger struct {
	z *zap.Logger
}

// New creates a new Logger with the given options.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	var encoder zapcore.Encoder
	if opts.Format == FormatConsole {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(opts.Output)), opts.Level.zapLevel())

	zopts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if opts.AddCaller {
		zopts = append(zopts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	z := zap.New(core, zopts...)
	if opts.Name != "" {
		z = z.Named(opts.Name)
	}
	return &Logger{z: z}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Named returns a child logger whose name is appended to the parent's.
func (l *Logger) Named(name string) *Logger {
	return &Logger{z: l.z.Named(name)}
}

// With returns a new Logger with the given fields added.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l.z.Core().Enabled(level.zapLevel())
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...Field) {
	l.z.Info(msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) {
	l.z.Error(msg, fields...)
}

// Critical logs an unexpected failure. The process keeps running.
func (l *Logger) Critical(msg string, fields ...Field) {
	l.z.DPanic(msg, fields...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
