package logger

import (
	"os"
	"strconv"
	"strings"

	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global logger instance
	Log = zap.NewNop()
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level       string `json:"level"`
	Stage       string `json:"stage"`
	EnableJSON  bool   `json:"enable_json"`
	EnableColor bool   `json:"enable_color"`

	// FilePath, when set, also writes JSON lines to a size-rotated file.
	FilePath   string `json:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// InitLogger initializes the logger with the appropriate configuration
// based on the provided stage.
func InitLogger(stage string) {
	config := LoggerConfig{
		Level:       getEnvWithDefault("LOG_LEVEL", "info"),
		Stage:       stage,
		EnableJSON:  stage == constants.StageProd,
		EnableColor: stage != constants.StageProd,
		FilePath:    os.Getenv("LOG_FILE"),
		MaxSizeMB:   getEnvInt("LOG_FILE_MAX_SIZE_MB", 50),
		MaxBackups:  getEnvInt("LOG_FILE_MAX_BACKUPS", 5),
		MaxAgeDays:  getEnvInt("LOG_FILE_MAX_AGE_DAYS", 14),
	}

	InitLoggerWithConfig(config)
}

// InitLoggerWithConfig initializes the logger with custom configuration
func InitLoggerWithConfig(config LoggerConfig) {
	var zapConfig zap.Config

	level := ParseLevel(config.Level)

	if config.Stage == constants.StageProd || config.EnableJSON {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(level)
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.MessageKey = "message"
		zapConfig.EncoderConfig.LevelKey = "level"
		zapConfig.EncoderConfig.CallerKey = "caller"
		zapConfig.EncoderConfig.StacktraceKey = "stacktrace"

		zapConfig.InitialFields = map[string]interface{}{
			"service": constants.ServiceName,
			"stage":   config.Stage,
		}
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(level)

		if config.EnableColor {
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}

		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	zapConfig.DisableCaller = false
	zapConfig.DisableStacktrace = config.Stage == constants.StageProd && level > zapcore.DebugLevel

	logger, err := zapConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	if config.FilePath != "" {
		logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore(config, zapConfig.Level))
		}))
	}

	Log = logger
}

func fileCore(config LoggerConfig, level zap.AtomicLevel) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	writer := &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   true,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), level)
}

// ParseLevel maps a textual level to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zapcore.Field) {
	Log.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zapcore.Field) {
	Log.Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zapcore.Field) {
	Log.Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zapcore.Field) {
	Log.Warn(msg, fields...)
}

// Fatal logs a message at FatalLevel
// and then calls os.Exit(1)
func Fatal(msg string, fields ...zapcore.Field) {
	Log.Fatal(msg, fields...)
}

// With creates a child logger and adds structured context to it
func With(fields ...zapcore.Field) *zap.Logger {
	return Log.With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
