package logging

import (
	"log/slog"
	"os"
	"strings"
)

// LoggingService owns the process logger and its file sink.
type LoggingService struct {
	Logger *slog.Logger
	sink   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// Options configures InitLoggerWithOptions.
type Options struct {
	Dir            string // empty logs to the console only
	Level          slog.Level
	RetentionWeeks int
	MaxFileSize    int64
}

// InitLogger initializes the global logger at info level with default retention.
func InitLogger(logDir string) {
	InitLoggerWithOptions(Options{Dir: logDir, Level: slog.LevelInfo, RetentionWeeks: 4})
}

// InitLoggerWithOptions initializes the global logger and sets it as slog's default.
func InitLoggerWithOptions(opts Options) {
	logger, sink := SetupLogger(opts)
	DefaultLoggingService = &LoggingService{Logger: logger, sink: sink}
	slog.SetDefault(logger)
}

// Close stops the file sink of the global logger, if any.
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.sink == nil {
		return nil
	}
	return DefaultLoggingService.sink.Close()
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
