package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Option 配置管理器选项
type Option func(*manager)

// WithDefaults 设置默认值，优先级最低
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}

// WithConfigType 指定配置文件类型 (yaml/json/toml)
func WithConfigType(configType string) Option {
	return func(m *manager) {
		m.v.SetConfigType(configType)
	}
}

// WithEnvPrefix 开启环境变量覆盖，例如 PETPARK_ENGINE_LOCK_TTL -> engine.lock_ttl
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		if prefix == "" {
			return
		}
		m.v.SetEnvPrefix(prefix)
		m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		m.v.AutomaticEnv()
	}
}

// WithViper 使用外部构造好的 viper 实例
func WithViper(v *viper.Viper) Option {
	return func(m *manager) {
		m.v = v
	}
}
