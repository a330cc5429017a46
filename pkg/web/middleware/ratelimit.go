package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/pkg/cache/lru"
	"github.com/lk2023060901/petpark/pkg/logger"
	weberrors "github.com/lk2023060901/petpark/pkg/web/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxLimiters       int           `mapstructure:"max_limiters"`
	LimiterTTL        time.Duration `mapstructure:"limiter_ttl"`
	// KeyFunc 限流键，缺省为客户端 IP
	KeyFunc func(*gin.Context) string `mapstructure:"-"`
}

// RateLimiter 按键限流，限流器保存在 LRU 中，长时间不活跃的键被淘汰
type RateLimiter struct {
	cfg      RateLimitConfig
	limiters *lru.LRU[string, *rate.Limiter]
	logger   logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(l logger.Logger, cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		limiters: lru.New[string, *rate.Limiter](lru.Config{MaxSize: cfg.MaxLimiters, DefaultTTL: cfg.LimiterTTL}),
		logger:   l,
	}
}

// Allow 检查 key 是否允许通过
func (rl *RateLimiter) Allow(key string) bool {
	limiter, _ := rl.limiters.GetOrCreate(key, func() (*rate.Limiter, error) {
		return rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst), nil
	})
	return limiter.Allow()
}

// RateLimit 限流中间件，超限返回 429
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if rl.cfg.KeyFunc != nil {
			key = rl.cfg.KeyFunc(c)
		}

		if !rl.Allow(key) {
			rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    weberrors.CodeRateLimited,
				"message": "too many requests",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
