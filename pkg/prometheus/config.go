package prometheus

import "errors"

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("prometheus: invalid config")

// Config Prometheus 配置
type Config struct {
	// Namespace 指标前缀，例如 petpark
	Namespace string `mapstructure:"namespace"`
	// Path 指标暴露路径，挂载在业务 HTTP 服务上
	Path string `mapstructure:"path"`

	EnableGoCollector      bool `mapstructure:"enable_go_collector"`
	EnableProcessCollector bool `mapstructure:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:              "petpark",
		Path:                   "/metrics",
		EnableGoCollector:      true,
		EnableProcessCollector: true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Namespace == "" || c.Path == "" {
		return ErrInvalidConfig
	}
	return nil
}
