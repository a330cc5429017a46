package service

import (
	"time"

	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/formula"
)

// Config 引擎配置
type Config struct {
	// AppearanceCooldown 同一外观类型两次修改的最小间隔
	AppearanceCooldown time.Duration `mapstructure:"appearance_cooldown"`
	// SignInRewards 连续签到第 N 天的奖励，超出部分沿用最后一项
	SignInRewards []int64 `mapstructure:"sign_in_rewards"`
	// StarterPoints 首次创建钱包时发放的积分
	StarterPoints int64 `mapstructure:"starter_points"`
	// Timezone 签到按该时区划分自然日
	Timezone         string `mapstructure:"timezone"`
	FormulaCacheSize int    `mapstructure:"formula_cache_size"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		AppearanceCooldown: 24 * time.Hour,
		SignInRewards:      []int64{10, 15, 20, 25, 30, 40, 50},
		StarterPoints:      100,
		Timezone:           "Local",
		FormulaCacheSize:   formula.DefaultCacheSize,
	}
}

// Validate 校验配置，时区无法加载时返回配置错误
func (c *Config) Validate() error {
	if _, err := c.location(); err != nil {
		return err
	}
	if c.StarterPoints < 0 {
		return errs.Configurationf("starter_points must be non-negative, got %d", c.StarterPoints)
	}
	if c.AppearanceCooldown < 0 {
		return errs.Configurationf("appearance_cooldown must be non-negative, got %s", c.AppearanceCooldown)
	}
	for i, r := range c.SignInRewards {
		if r < 0 {
			return errs.Configurationf("sign_in_rewards[%d] must be non-negative, got %d", i, r)
		}
	}
	return nil
}

func (c *Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errs.Configuration(err, "invalid timezone %q", c.Timezone)
	}
	return loc, nil
}

// signInReward 连续第 streak 天的奖励
func (c *Config) signInReward(streak int) int64 {
	if len(c.SignInRewards) == 0 || streak <= 0 {
		return 0
	}
	return c.SignInRewards[min(streak, len(c.SignInRewards))-1]
}
