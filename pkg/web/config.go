package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/pkg/web/middleware"
)

// Config Web 服务配置
type Config struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS      bool          `mapstructure:"enable_cors"`

	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		Mode:            gin.ReleaseMode,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			MaxLimiters:       10000,
			LimiterTTL:        10 * time.Minute,
		},
	}
}
