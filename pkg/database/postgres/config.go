package postgres

import (
	"fmt"
	"time"

	"github.com/lk2023060901/petpark/pkg/config"
)

// Config PostgreSQL 配置
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"` // disable, require, verify-ca, verify-full

	Pool PoolConfig `mapstructure:"pool"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		DBName:  "petpark",
		SSLMode: "disable",
		Pool: PoolConfig{
			MaxConns:          20,
			MinConns:          2,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
		},
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   5 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: host is empty", ErrInvalidConfig)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	case c.User == "":
		return fmt.Errorf("%w: user is empty", ErrInvalidConfig)
	case c.DBName == "":
		return fmt.Errorf("%w: db_name is empty", ErrInvalidConfig)
	case c.Pool.MaxConns <= 0:
		return fmt.Errorf("%w: max_conns must be positive", ErrInvalidConfig)
	case c.Pool.MinConns < 0 || c.Pool.MinConns > c.Pool.MaxConns:
		return fmt.Errorf("%w: min_conns must be in [0, max_conns]", ErrInvalidConfig)
	}
	return nil
}

// ConnString 构建 DSN
func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, int(c.ConnectTimeout.Seconds()),
	)
}

func mergeConfig(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	return config.MergeConfig(DefaultConfig(), cfg)
}
