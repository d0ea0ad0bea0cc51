// Package logging builds the zap logger shared by the service binary and its
// HTTP middleware.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with the service's standard fields.
type Logger struct {
	*zap.Logger
}

// New creates a new logger with the provided configuration.
func New(cfg Config) (*Logger, error) {
	cfg = withDefaults(cfg)

	writer, err := getOutputWriter(cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	return newWithWriter(cfg, writer), nil
}

func withDefaults(cfg Config) Config {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "color-service"
	}
	if cfg.Environment == "" {
		cfg.Environment = getEnvOrDefault("ENVIRONMENT", "development")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "stdout"
	}
	return cfg
}

func newWithWriter(cfg Config, writer io.Writer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(getEncoderConfig(cfg.IsDevelopment())),
		zapcore.AddSync(writer),
		parseLogLevel(cfg.LogLevel),
	)

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("service", cfg.ServiceName),
			zap.String("environment", cfg.Environment),
		),
	)

	return &Logger{Logger: logger}
}

// FromZap wraps an existing zap logger, e.g. a no-op or test observer.
func FromZap(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{Logger: logger}
}

// WithContext returns a logger carrying the trace and span IDs of ctx.
// Without a valid span the receiver is returned unchanged.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return l
	}
	return l.with(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

// WithRequestID returns a logger with request_id field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with(zap.String("request_id", requestID))
}

func (l *Logger) with(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func getEncoderConfig(development bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	if development {
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func getOutputWriter(path string) (io.Writer, error) {
	switch strings.ToLower(path) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
}
