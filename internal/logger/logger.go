package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogFormat string

const (
	FormatConsole LogFormat = "CONSOLE"
	FormatJSON    LogFormat = "JSON"
)

var (
	once        sync.Once
	initialized bool
)

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

// New собирает zap логгер с уровнем и форматом вывода в stdout
func New(level string, format LogFormat) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if LogFormat(strings.ToUpper(string(format))) == FormatConsole {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(parseLevel(level)))
	return zap.New(core, zap.AddCaller())
}

// Initialize заменяет глобальные логгеры zap. Повторные вызовы ничего не делают.
func Initialize(level string, format LogFormat) {
	once.Do(func() {
		l := New(level, format)
		zap.ReplaceGlobals(l)
		l.Info("Logger initialized", zap.String("level", level), zap.String("format", string(format)))
		initialized = true
	})
}

// For возвращает именованный логгер компонента
func For(component string) *zap.SugaredLogger {
	if !initialized {
		Initialize(os.Getenv("LOGGING_LEVEL"), LogFormat(os.Getenv("LOG_FORMAT")))
	}
	return zap.S().Named(component)
}

func Sync() error {
	return zap.L().Sync()
}
