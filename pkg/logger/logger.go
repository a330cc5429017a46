package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lk2023060901/petpark/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*ZapLogger)(nil)

// ZapLogger 基于 zap 的 Logger 实现
type ZapLogger struct {
	zl        *zap.Logger
	cfg       *Config
	name      string
	writers   []io.Writer
	extractor ContextFieldExtractor
}

// Option ZapLogger 构造选项
type Option func(*ZapLogger)

// WithName 设置 logger 名称
func WithName(name string) Option {
	return func(l *ZapLogger) { l.name = name }
}

// WithWriter 追加输出目标 (测试中用于捕获输出)
func WithWriter(w io.Writer) Option {
	return func(l *ZapLogger) { l.writers = append(l.writers, w) }
}

// WithContextExtractor 自定义 context 字段提取
func WithContextExtractor(fn ContextFieldExtractor) Option {
	return func(l *ZapLogger) { l.extractor = fn }
}

// New 创建 ZapLogger，cfg 中未设置的字段使用 DefaultConfig
func New(cfg *Config, opts ...Option) (*ZapLogger, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge log config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	l := &ZapLogger{cfg: merged, extractor: DefaultContextExtractor}
	for _, opt := range opts {
		opt(l)
	}

	zl, err := l.build()
	if err != nil {
		return nil, err
	}
	l.zl = zl
	return l, nil
}

func (l *ZapLogger) build() (*zap.Logger, error) {
	// 1. encoder
	encCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(l.cfg.TimeFormat),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if l.cfg.Development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if l.cfg.Format == ConsoleFormat {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	// 2. 输出目标
	syncers := make([]zapcore.WriteSyncer, 0, 2+len(l.writers))
	if l.cfg.EnableConsole {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}
	if l.cfg.EnableFile {
		fw, err := NewRotationWriter(&l.cfg.Rotation, l.cfg.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create rotation writer: %w", err)
		}
		syncers = append(syncers, zapcore.AddSync(fw))
	}
	for _, w := range l.writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	if len(syncers) == 0 {
		return nil, ErrNoOutputEnabled
	}

	// 3. core + options
	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), toZapLevel(l.cfg.Level))
	options := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if l.cfg.EnableStacktrace {
		options = append(options, zap.AddStacktrace(toZapLevel(l.cfg.StacktraceLevel)))
	}

	zl := zap.New(core, options...)
	if len(l.cfg.GlobalFields) > 0 {
		fields := make([]zap.Field, 0, len(l.cfg.GlobalFields))
		for k, v := range l.cfg.GlobalFields {
			fields = append(fields, zap.Any(k, v))
		}
		zl = zl.With(fields...)
	}
	if l.name != "" {
		zl = zl.Named(l.name)
	}
	return zl, nil
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.zl.Debug(msg, toFields(keysAndValues)...)
}

func (l *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.zl.Info(msg, toFields(keysAndValues)...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.zl.Warn(msg, toFields(keysAndValues)...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.zl.Error(msg, toFields(keysAndValues)...)
}

func (l *ZapLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Debug(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *ZapLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Info(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *ZapLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Warn(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *ZapLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Error(msg, l.contextFields(ctx, keysAndValues)...)
}

// Named 派生具名 logger，名称以 "." 连接
func (l *ZapLogger) Named(name string) Logger {
	clone := *l
	clone.zl = l.zl.Named(name)
	if l.name != "" {
		clone.name = l.name + "." + name
	} else {
		clone.name = name
	}
	return &clone
}

// WithFields 派生携带固定字段的 logger
func (l *ZapLogger) WithFields(keysAndValues ...interface{}) Logger {
	fields := toFields(keysAndValues)
	if len(fields) == 0 {
		return l
	}
	clone := *l
	clone.zl = l.zl.With(fields...)
	return &clone
}

func (l *ZapLogger) Sync() error {
	return l.zl.Sync()
}

func (l *ZapLogger) contextFields(ctx context.Context, keysAndValues []interface{}) []zap.Field {
	fields := toFields(keysAndValues)
	if l.extractor == nil {
		return fields
	}
	return append(l.extractor(ctx), fields...)
}

// toFields 支持 key/value 对，也支持直接传入 zap.Field
func toFields(keysAndValues []interface{}) []zap.Field {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i++ {
		if f, ok := keysAndValues[i].(zap.Field); ok {
			fields = append(fields, f)
			continue
		}
		key, ok := keysAndValues[i].(string)
		if !ok || i+1 >= len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("arg%d", i), keysAndValues[i]))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
		i++
	}
	return fields
}
