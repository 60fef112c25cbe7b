package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Sugared = *zap.SugaredLogger

// New builds the service logger. prod emits JSON at info level, anything else
// is the human-readable development encoder at debug. A parseable level
// overrides the env default.
func New(env, service, level string) Sugared {
	zc := zap.NewDevelopmentConfig()
	if env == "prod" {
		zc = zap.NewProductionConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); level != "" && err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	z, err := zc.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return z.Sugar().With("service", service)
}
