package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"pedant-server/pkg/config"
)

// NewLogger пишет одновременно в stdout и в файл с ротацией.
// Если каталог для файла создать нельзя, остаётся только stdout.
func NewLogger(cfg config.LoggerConfig) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	level := zap.NewAtomicLevelAt(getLogLevel(cfg.Level))

	syncers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err == nil {
			syncers = append(syncers, getLogWriter(cfg))
		}
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Loggers - именованные логгеры по областям.
type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	User    *zap.Logger
	Service *zap.Logger
	Order   *zap.Logger
	Hiring  *zap.Logger
	Storage *zap.Logger
}

func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:    base.Named("main"),
		Auth:    base.Named("auth"),
		User:    base.Named("user"),
		Service: base.Named("service"),
		Order:   base.Named("order"),
		Hiring:  base.Named("hiring"),
		Storage: base.Named("storage"),
	}
}

// NopLoggers - для тестов.
func NopLoggers() *Loggers {
	return NewLoggers(zap.NewNop())
}

func getLogWriter(cfg config.LoggerConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		LocalTime:  true,
		Compress:   cfg.Compress,
	})
}

func getLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
