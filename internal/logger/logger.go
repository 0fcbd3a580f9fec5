package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig 由 config.LogConfig 实现，避免 logger 反向依赖 config
type LogConfig interface {
	GetLevel() string
	GetOutput() string
	GetFile() string
}

// 日志文件轮转参数
const (
	rotateMaxSizeMB  = 100
	rotateMaxBackups = 3
	rotateMaxAgeDays = 28
)

// Logger 包装 zap，对外保持 printf 风格
type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

var defaultLogger *Logger

func init() {
	l, err := newStdout(zapcore.InfoLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defaultLogger = l
}

// Init 根据配置替换默认日志器
func Init(cfg LogConfig) error {
	level := ParseLevel(cfg.GetLevel())

	var (
		l   *Logger
		err error
	)
	if strings.EqualFold(cfg.GetOutput(), "file") && cfg.GetFile() != "" {
		l = newRotating(level, cfg.GetFile())
	} else {
		l, err = newStdout(level)
	}
	if err != nil {
		return err
	}

	SetDefaultLogger(l)
	return nil
}

func wrap(z *zap.Logger) *Logger {
	// 包装方法和全局函数各占一层调用栈
	z = z.WithOptions(zap.AddCallerSkip(2))
	return &Logger{base: z, sugar: z.Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	return enc
}

func newStdout(level zapcore.Level) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg.EncoderConfig = encoderConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return wrap(z), nil
}

// newRotating 写入文件，由 lumberjack 负责轮转
func newRotating(level zapcore.Level, file string) *Logger {
	writer := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    rotateMaxSizeMB,
		MaxBackups: rotateMaxBackups,
		MaxAge:     rotateMaxAgeDays,
		Compress:   true,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(writer),
		zap.NewAtomicLevelAt(level),
	)
	return wrap(zap.New(core, zap.AddCaller()))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatal(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// Sync 刷新缓冲
func (l *Logger) Sync() {
	_ = l.base.Sync()
}

// SetDefaultLogger 设置默认日志器
func SetDefaultLogger(l *Logger) {
	if defaultLogger != nil {
		defaultLogger.Sync()
	}
	defaultLogger = l
}

func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func Fatal(format string, args ...interface{}) { defaultLogger.Fatal(format, args...) }

func Sync() {
	defaultLogger.Sync()
}

// GetDefaultZapLogger 获取默认的zap logger，供 gin 中间件直接写结构化字段
func GetDefaultZapLogger() *zap.Logger {
	// 去掉包装层的 caller skip
	return defaultLogger.base.WithOptions(zap.AddCallerSkip(-2))
}

// ParseLevel 解析日志级别，未知值按 info 处理
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
