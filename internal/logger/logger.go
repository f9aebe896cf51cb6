// Package logger wraps zap for gobasket diagnostics. Logs default to stderr
// because stdout carries the rendered rules.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/gobasket/internal/config"
)

// Logger is a sugared zap logger with mining context helpers.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a Logger from the logging section. A log file that cannot be
// opened is an error.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(newEncoder(cfg.Format), sink, parseLevel(cfg.Level))
	return &Logger{zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).Sugar()}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// parseLevel accepts debug, info, warn and error. Anything else is info.
func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil || l > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return l
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// openSink resolves logging.output: stderr (default), stdout or a file path.
func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return zapcore.Lock(f), nil
}

func (l *Logger) with(args ...interface{}) *Logger {
	return &Logger{l.SugaredLogger.With(args...)}
}

// WithJob tags entries with the job name.
func (l *Logger) WithJob(jobName string) *Logger {
	return l.with("job", jobName)
}

// WithStage tags entries with a pipeline stage (load, mine, store, render).
func (l *Logger) WithStage(stage string) *Logger {
	return l.with("stage", stage)
}

// WithSupport tags entries with the support level being mined.
func (l *Logger) WithSupport(ratio float64, absolute int) *Logger {
	return l.with("support_ratio", ratio, "min_support", absolute)
}
