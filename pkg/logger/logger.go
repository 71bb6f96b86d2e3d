// Package logger holds the process-wide zap logger used by selfheal.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/devicelab-dev/selfheal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	fileWriter   *lumberjack.Logger
	mu           sync.Mutex
)

// Init builds the global logger from cfg, writing console output to stderr.
func Init(cfg config.LogConfig) error {
	return InitWithWriter(cfg, zapcore.Lock(os.Stderr))
}

// InitWithWriter builds the global logger with an explicit console sink.
// Calling it again replaces the previous logger and closes its log file.
func InitWithWriter(cfg config.LogConfig, console zapcore.WriteSyncer) error {
	mu.Lock()
	defer mu.Unlock()

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder(cfg.Format), console, level)}

	closeFile()
	if cfg.File != "" {
		fileWriter = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		// File output is always JSON
		cores = append(cores, zapcore.NewCore(encoder("json"), zapcore.AddSync(fileWriter), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("selfheal")
	globalLogger.Store(l)
	zap.ReplaceGlobals(l)
	return nil
}

func encoder(format string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	if format == "json" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

// L returns the global logger, or a no-op logger before Init.
func L() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Named returns a child of the global logger.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Close flushes the logger and closes the log file.
func Close() {
	Sync()
	mu.Lock()
	defer mu.Unlock()
	closeFile()
}

func closeFile() {
	if fileWriter != nil {
		fileWriter.Close()
		fileWriter = nil
	}
}

// Sync flushes buffered entries, ignoring the errors stdout/stderr give on some platforms.
func Sync() {
	l := globalLogger.Load()
	if l == nil {
		return
	}
	if err := l.Sync(); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "sync /dev/std") &&
			!strings.Contains(msg, "invalid argument") &&
			!strings.Contains(msg, "inappropriate ioctl") {
			fmt.Fprintln(os.Stderr, "failed to sync logger:", err)
		}
	}
}

// ResetForTest drops the global logger. Tests only.
func ResetForTest() {
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	globalLogger.Store(nil)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	L().Sugar().Infof(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	L().Sugar().Debugf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	L().Sugar().Errorf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	L().Sugar().Warnf(format, v...)
}
