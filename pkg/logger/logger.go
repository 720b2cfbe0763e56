package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init installs the process-wide logger. Production defaults to JSON at info
// level; everything else gets a text handler at debug level unless the
// format or level are given explicitly.
func Init(env string, opts ...Option) {
	o := options{out: os.Stdout, format: "text", level: slog.LevelDebug}
	if env == "production" {
		o.format = "json"
		o.level = slog.LevelInfo
	}
	for _, opt := range opts {
		opt(&o)
	}

	var handler slog.Handler
	if o.format == "json" {
		handler = slog.NewJSONHandler(o.out, &slog.HandlerOptions{Level: o.level})
	} else {
		handler = slog.NewTextHandler(o.out, &slog.HandlerOptions{Level: o.level})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

type options struct {
	out    io.Writer
	format string
	level  slog.Level
}

type Option func(*options)

func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = strings.ToLower(format)
		}
	}
}

func WithLevel(level string) Option {
	return func(o *options) {
		switch strings.ToLower(level) {
		case "debug":
			o.level = slog.LevelDebug
		case "info":
			o.level = slog.LevelInfo
		case "warn":
			o.level = slog.LevelWarn
		case "error":
			o.level = slog.LevelError
		}
	}
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
