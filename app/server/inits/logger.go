package inits

import (
	"fmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 开发模式输出彩色的可读日志，生产模式输出 JSON ， fields 会附加到每一条日志
func Logger(debugMode bool, fields ...zap.Field) (l *zap.Logger, err error) {
	var cfg zap.Config
	if debugMode {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err = cfg.Build(zap.Fields(fields...))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return l, nil
}
