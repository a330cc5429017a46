package otel

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidServiceName  = errors.New("otel: service_name is required")
	ErrInvalidSamplerRatio = errors.New("otel: sampler.ratio out of [0, 1]")
	ErrUnsupportedExporter = errors.New("otel: unsupported exporter_type")
	ErrProviderClosed      = errors.New("otel: tracer provider already closed")
)

// Config 链路追踪配置
type Config struct {
	// Enabled 未启用时使用 noop tracer
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`

	// Endpoint 导出器端点
	// OTLP HTTP: localhost:4318
	// OTLP gRPC: localhost:4317
	Endpoint     string       `mapstructure:"endpoint"`
	ExporterType ExporterType `mapstructure:"exporter_type"`
	Insecure     bool         `mapstructure:"insecure"`

	Sampler     SamplerConfig     `mapstructure:"sampler"`
	BatchExport BatchExportConfig `mapstructure:"batch_export"`

	// Attributes 附加资源属性
	Attributes      map[string]string `mapstructure:"attributes"`
	ShutdownTimeout time.Duration     `mapstructure:"shutdown_timeout"`
}

// ExporterType 导出器类型
type ExporterType string

const (
	ExporterTypeOTLPHTTP ExporterType = "otlp-http"
	ExporterTypeOTLPGRPC ExporterType = "otlp-grpc"
	// ExporterTypeStdout 调试用
	ExporterTypeStdout ExporterType = "stdout"
)

// SamplerConfig 采样配置
type SamplerConfig struct {
	Type SamplerType `mapstructure:"type"`
	// Ratio 仅 Type 为 ratio 时有效
	Ratio float64 `mapstructure:"ratio"`
}

// SamplerType 采样类型
type SamplerType string

const (
	SamplerTypeAlways SamplerType = "always"
	SamplerTypeNever  SamplerType = "never"
	SamplerTypeRatio  SamplerType = "ratio"
	// SamplerTypeParent 跟随上游采样决策
	SamplerTypeParent SamplerType = "parent"
)

// BatchExportConfig 批量导出配置
type BatchExportConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	ExportTimeout time.Duration `mapstructure:"export_timeout"`
	MaxQueueSize  int           `mapstructure:"max_queue_size"`
	BatchTimeout  time.Duration `mapstructure:"batch_timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		ServiceName:  "petpark",
		Endpoint:     "localhost:4318",
		ExporterType: ExporterTypeOTLPHTTP,
		Insecure:     true,
		Sampler: SamplerConfig{
			Type:  SamplerTypeParent,
			Ratio: 1.0,
		},
		BatchExport: BatchExportConfig{
			BatchSize:     512,
			ExportTimeout: 30 * time.Second,
			MaxQueueSize:  2048,
			BatchTimeout:  5 * time.Second,
		},
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ErrInvalidServiceName
	}
	if c.Sampler.Type == SamplerTypeRatio && (c.Sampler.Ratio < 0 || c.Sampler.Ratio > 1) {
		return ErrInvalidSamplerRatio
	}
	switch c.ExporterType {
	case ExporterTypeOTLPHTTP, ExporterTypeOTLPGRPC, ExporterTypeStdout:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExporter, c.ExporterType)
	}
	return nil
}
