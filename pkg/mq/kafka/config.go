package kafka

import (
	"fmt"
	"time"
)

// Config Kafka 生产者配置
type Config struct {
	Brokers []string `mapstructure:"brokers"`

	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// RequiredAcks 0: 不等待, 1: Leader, -1: 全部副本
	RequiredAcks int `mapstructure:"required_acks"`

	// Compression none, gzip, snappy, lz4, zstd
	Compression string `mapstructure:"compression"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: -1,
		Compression:  "snappy",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("%w: brokers is empty", ErrInvalidConfig)
	}
	if c.RequiredAcks < -1 || c.RequiredAcks > 1 {
		return fmt.Errorf("%w: required_acks must be -1, 0 or 1", ErrInvalidConfig)
	}
	switch c.Compression {
	case "", "none", "gzip", "snappy", "lz4", "zstd":
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, c.Compression)
	}
	return nil
}
