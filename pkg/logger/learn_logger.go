// Package logger is a printf-style facade over zerolog used by the entrypoints
// and HTTP layer. Components take a zerolog.Logger from Zerolog().
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel parses a string level to Level
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Config for logger
type Config struct {
	Level   Level
	Output  io.Writer
	Service string
	// Pretty switches to zerolog's console writer.
	Pretty bool
}

// Logger wraps a zerolog.Logger with printf-style helpers.
type Logger struct {
	zl zerolog.Logger
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger
func Init(cfg Config) {
	once.Do(func() {
		defaultLogger = New(cfg)
	})
}

// Default returns the default logger
func Default() *Logger {
	if defaultLogger == nil {
		Init(Config{Level: LevelInfo, Output: os.Stdout, Service: "learning-server"})
	}
	return defaultLogger
}

// New creates a new logger instance
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if cfg.Service == "" {
		cfg.Service = "learning-server"
	}

	zl := zerolog.New(out).
		Level(cfg.Level.zerolog()).
		With().
		Timestamp().
		Str("service", cfg.Service).
		Logger()
	return &Logger{zl: zl}
}

// Zerolog exposes the underlying logger for components that log structured events.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithFields returns a new logger with additional fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// WithContext extracts request_id and user_id from context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	c := l.zl.With()
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		c = c.Str("request_id", reqID)
	}
	if userID := ctx.Value(userIDKey); userID != nil {
		c = c.Str("user_id", fmt.Sprintf("%v", userID))
	}
	return &Logger{zl: c.Logger()}
}

// WithError adds error information
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

// WithDuration adds duration in milliseconds
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{zl: l.zl.With().Float64("duration_ms", float64(d.Microseconds())/1000.0).Logger()}
}

// ContextWithRequestID stores a request id for WithContext.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ContextWithUserID stores a user id for WithContext.
func ContextWithUserID(ctx context.Context, userID any) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Log methods
func (l *Logger) Debug(msg string, args ...any) { l.zl.Debug().Msgf(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.zl.Info().Msgf(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.zl.Warn().Msgf(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.zl.Error().Caller(1).Msgf(msg, args...) }
func (l *Logger) Fatal(msg string, args ...any) { l.zl.Fatal().Caller(1).Msgf(msg, args...) }

// Package-level functions using default logger
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
func Fatal(msg string, args ...any) { Default().Fatal(msg, args...) }

func WithFields(fields map[string]any) *Logger { return Default().WithFields(fields) }
func WithContext(ctx context.Context) *Logger  { return Default().WithContext(ctx) }
func WithError(err error) *Logger              { return Default().WithError(err) }
func Zerolog() zerolog.Logger                  { return Default().Zerolog() }
