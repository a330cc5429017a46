package redis

import (
	"context"
	"fmt"

	"github.com/lk2023060901/petpark/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

// Client Redis 客户端
type Client struct {
	rdb *goredis.Client
	cfg *Config
}

// NewClient 创建客户端，连接在首次使用时建立
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         merged.Addr,
		Password:     merged.Password,
		DB:           merged.DB,
		PoolSize:     merged.PoolSize,
		MinIdleConns: merged.MinIdleConns,
		DialTimeout:  merged.DialTimeout,
		ReadTimeout:  merged.ReadTimeout,
		WriteTimeout: merged.WriteTimeout,
	})
	return &Client{rdb: rdb, cfg: merged}, nil
}

// Key 拼接键前缀
func (c *Client) Key(suffix string) string {
	return c.cfg.KeyPrefix + suffix
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.rdb.Close()
}
