package logger

import (
	"context"
	"fmt"

	"github.com/vzahanych/weatherpulse/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

// New builds a JSON (production) or console (development) logger at the
// configured level, writing to OutputPath when set.
func New(cfg config.LoggingConfig) (*Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	if cfg.OutputPath != "" {
		zcfg.OutputPaths = []string{cfg.OutputPath}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger}, nil
}

func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

type requestIDKey struct{}

// WithRequestID stores the request id on ctx so code below the HTTP layer
// can correlate its log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ForContext returns l annotated with the request id carried by ctx, if any.
func ForContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With(zap.String("request_id", id))
	}
	return l
}
