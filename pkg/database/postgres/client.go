package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Builder squirrel 语句构建器，统一使用 $n 占位符
var Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Client PostgreSQL 客户端
type Client struct {
	pool *pgxpool.Pool
	cfg  *Config
}

// New 创建客户端并检查连通性
func New(cfg *Config) (*Client, error) {
	merged, err := mergeConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(merged.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	poolCfg.MaxConns = merged.Pool.MaxConns
	poolCfg.MinConns = merged.Pool.MinConns
	poolCfg.MaxConnLifetime = merged.Pool.MaxConnLifetime
	poolCfg.MaxConnIdleTime = merged.Pool.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = merged.Pool.HealthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), merged.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool, cfg: merged}, nil
}

// Close 关闭连接池
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// Ping 检查数据库连接
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Migrate 按顺序执行建表语句，语句需保证幂等 (IF NOT EXISTS)
func (c *Client) Migrate(ctx context.Context, statements ...string) error {
	for i, stmt := range statements {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

// withTimeout 应用查询超时
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.QueryTimeout)
	}
	return ctx, func() {}
}
