package prometheus

import (
	"fmt"
	"net/http"

	"github.com/lk2023060901/petpark/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client 持有独立的 Registry，避免与全局默认注册器冲突
type Client struct {
	cfg      *Config
	registry *prometheus.Registry
}

// New 创建客户端并注册默认采集器
func New(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge prometheus config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	if merged.EnableGoCollector {
		registry.MustRegister(collectors.NewGoCollector())
	}
	if merged.EnableProcessCollector {
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return &Client{cfg: merged, registry: registry}, nil
}

// Namespace 指标命名空间
func (c *Client) Namespace() string {
	return c.cfg.Namespace
}

// Path 指标暴露路径
func (c *Client) Path() string {
	return c.cfg.Path
}

// Registerer 用于业务指标注册
func (c *Client) Registerer() prometheus.Registerer {
	return c.registry
}

// Gatherer 用于测试读取指标
func (c *Client) Gatherer() prometheus.Gatherer {
	return c.registry
}

// Handler 指标 HTTP Handler
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
