package tracking

import (
	"context"
	"time"

	"aiki-site-backend/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes analytics events as structured log lines. There is no
// analytics backend; the log is the sink.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	now         func() time.Time
}

// New builds a Logger writing JSON to stdout
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	// Event volume follows site traffic; keep every line
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewWithLogger(logger, serviceName, environment)
}

// NewWithLogger wraps an existing zap logger
func NewWithLogger(logger *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
		now:         time.Now,
	}
}

// Track logs one event. Support form errors are logged at warn level.
func (l *Logger) Track(ctx context.Context, event domain.TrackingEvent) {
	if event.RequestID == "" {
		event.RequestID = domain.RequestIDFrom(ctx)
	}

	level := zapcore.InfoLevel
	if event.Category == domain.CategorySupport && event.Label == domain.LabelError {
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("category", event.Category),
		zap.String("action", event.Action),
		zap.String("label", event.Label),
		zap.Time("tracked_at", l.now().UTC()),
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.SubmissionID != "" {
		fields = append(fields, zap.String("submission_id", event.SubmissionID))
	}

	l.zapLogger.Log(level, "Event tracked", fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}
