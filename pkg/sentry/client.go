package sentry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/petpark/pkg/config"
	"github.com/lk2023060901/petpark/pkg/logger"
	"go.opentelemetry.io/otel/trace"
)

// Client Sentry 客户端，每次上报克隆独立的 Hub，可并发使用
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	stats struct {
		eventsTotal    atomic.Uint64
		eventsCaptured atomic.Uint64
		eventsDropped  atomic.Uint64
	}
}

// Option 客户端选项
type Option func(*sentry.ClientOptions)

// WithBeforeSend 事件发送前回调，返回 nil 丢弃事件
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// New 创建 Sentry 客户端，未启用时返回空操作客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: merged}
	if !merged.Enabled {
		return c, nil
	}

	clientOpts := merged.toClientOptions()
	for _, opt := range opts {
		opt(&clientOpts)
	}
	client, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	c.hub = sentry.NewHub(client, sentry.NewScope())
	c.hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range merged.Tags {
			scope.SetTag(k, v)
		}
	})
	return c, nil
}

// IsEnabled 是否启用
func (c *Client) IsEnabled() bool {
	return c != nil && c.hub != nil && !c.closed.Load()
}

// CaptureError 上报错误，附带 request_id 与 trace_id
func (c *Client) CaptureError(ctx context.Context, err error, tags map[string]string) *sentry.EventID {
	if err == nil || !c.IsEnabled() {
		return nil
	}
	hub := c.scoped(ctx, tags)
	return c.count(hub.CaptureException(err))
}

// CaptureMessage 上报消息
func (c *Client) CaptureMessage(ctx context.Context, message string, level Level) *sentry.EventID {
	if !c.IsEnabled() {
		return nil
	}
	hub := c.scoped(ctx, nil)
	hub.Scope().SetLevel(level.toSentryLevel())
	return c.count(hub.CaptureMessage(message))
}

// RecoverWithContext 上报 panic，不重新抛出
func (c *Client) RecoverWithContext(ctx context.Context, recovered any, tags map[string]string) *sentry.EventID {
	if recovered == nil || !c.IsEnabled() {
		return nil
	}
	hub := c.scoped(ctx, tags)
	hub.Scope().SetLevel(sentry.LevelFatal)
	return c.count(hub.RecoverWithContext(ctx, recovered))
}

func (c *Client) scoped(ctx context.Context, tags map[string]string) *sentry.Hub {
	hub := c.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if id := logger.RequestIDFromContext(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			scope.SetTag("trace_id", sc.TraceID().String())
		}
	})
	return hub
}

func (c *Client) count(id *sentry.EventID) *sentry.EventID {
	c.stats.eventsTotal.Add(1)
	if id != nil && *id != "" {
		c.stats.eventsCaptured.Add(1)
	} else {
		c.stats.eventsDropped.Add(1)
	}
	return id
}

// Flush 等待事件上报完成
func (c *Client) Flush(timeout time.Duration) bool {
	if !c.IsEnabled() {
		return true
	}
	return c.hub.Flush(timeout)
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	if c.hub != nil {
		c.hub.Flush(c.config.ShutdownTimeout)
	}
	return nil
}

// Stats 获取统计信息
func (c *Client) Stats() Stats {
	return Stats{
		EventsTotal:    c.stats.eventsTotal.Load(),
		EventsCaptured: c.stats.eventsCaptured.Load(),
		EventsDropped:  c.stats.eventsDropped.Load(),
	}
}
