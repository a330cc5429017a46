package otel

import (
	"context"
	"sync/atomic"

	"github.com/lk2023060901/petpark/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerProvider 追踪提供者，未启用时退化为 noop
type TracerProvider struct {
	config     *Config
	provider   *sdktrace.TracerProvider
	propagator propagation.TextMapPropagator
	closed     atomic.Bool
}

// New 创建追踪提供者
func New(cfg *Config) (*TracerProvider, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	p := &TracerProvider{
		config: merged,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
	if !merged.Enabled {
		return p, nil
	}

	exporter, err := createExporter(context.Background(), merged)
	if err != nil {
		return nil, err
	}

	p.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(merged.BatchExport.BatchTimeout),
			sdktrace.WithExportTimeout(merged.BatchExport.ExportTimeout),
			sdktrace.WithMaxExportBatchSize(merged.BatchExport.BatchSize),
			sdktrace.WithMaxQueueSize(merged.BatchExport.MaxQueueSize),
		),
		sdktrace.WithResource(createResource(merged)),
		sdktrace.WithSampler(createSampler(merged.Sampler)),
	)

	otel.SetTracerProvider(p.provider)
	otel.SetTextMapPropagator(p.propagator)
	return p, nil
}

func createResource(cfg *Config) *resource.Resource {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

func createSampler(cfg SamplerConfig) sdktrace.Sampler {
	switch cfg.Type {
	case SamplerTypeAlways:
		return sdktrace.AlwaysSample()
	case SamplerTypeNever:
		return sdktrace.NeverSample()
	case SamplerTypeRatio:
		return sdktrace.TraceIDRatioBased(cfg.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// Tracer 获取指定名称的 Tracer
func (p *TracerProvider) Tracer(name string) trace.Tracer {
	if p == nil || p.provider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.provider.Tracer(name)
}

// Propagator 跨进程上下文传播器 (W3C TraceContext + Baggage)
func (p *TracerProvider) Propagator() propagation.TextMapPropagator {
	return p.propagator
}

// IsEnabled 是否启用
func (p *TracerProvider) IsEnabled() bool {
	return p != nil && p.provider != nil
}

// ForceFlush 强制导出已结束的 span
func (p *TracerProvider) ForceFlush(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}
	return p.provider.ForceFlush(ctx)
}

// Close 关闭提供者，导出剩余 span
func (p *TracerProvider) Close() error {
	if p.closed.Swap(true) {
		return ErrProviderClosed
	}
	if p.provider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.config.ShutdownTimeout)
	defer cancel()
	return p.provider.Shutdown(ctx)
}
