package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lk2023060901/petpark/pkg/config"
	"github.com/spf13/pflag"
)

// EnvPrefix 环境变量前缀，例如 PETPARK_WEB_ADDR 覆盖 web.addr
const EnvPrefix = "PETPARK"

var configPath string

// LoadConfig 加载配置文件到 target
// 优先级: 环境变量 > 配置文件 > defaults
// 配置文件路径: --config/-c > PETPARK_CONFIG > ./config.yaml
func LoadConfig(target any, defaults map[string]any) error {
	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	path := configPath
	if !pflag.CommandLine.Changed("config") {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			path = env
		}
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file not found at %s: %w", path, err)
	}

	mgr := config.NewManager(
		config.WithDefaults(defaults),
		config.WithEnvPrefix(EnvPrefix),
	)
	if err := mgr.LoadFile(path); err != nil {
		return err
	}
	if err := mgr.Unmarshal(target); err != nil {
		return err
	}

	configPath, _ = filepath.Abs(path)
	return nil
}

// ConfigPath 返回最终使用的配置文件路径
func ConfigPath() string {
	return configPath
}
