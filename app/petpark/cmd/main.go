package main

import (
	_ "time/tzdata"

	"github.com/lk2023060901/petpark/app/petpark/internal/manager"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/publisher"
	"github.com/lk2023060901/petpark/app/petpark/internal/service"
	"github.com/lk2023060901/petpark/pkg/app"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/database/redis"
	"github.com/lk2023060901/petpark/pkg/idgen"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/lk2023060901/petpark/pkg/mq/kafka"
	"github.com/lk2023060901/petpark/pkg/otel"
	"github.com/lk2023060901/petpark/pkg/prometheus"
	"github.com/lk2023060901/petpark/pkg/sentry"
	"github.com/lk2023060901/petpark/pkg/web"
)

// 存储类型
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// RedisConfig Redis 配置，启用后用于跨实例属主锁与规则缓存
type RedisConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Client  redis.Config `mapstructure:"client"`
}

// KafkaConfig 账本事件投递配置
type KafkaConfig struct {
	Producer kafka.Config     `mapstructure:"producer"`
	Ledger   publisher.Config `mapstructure:"ledger"`
}

// EngineConfig 引擎配置
type EngineConfig struct {
	// Store memory 或 postgres
	Store string `mapstructure:"store"`
	// Migrate 启动时建表
	Migrate bool `mapstructure:"migrate"`

	IDGen       idgen.Config       `mapstructure:"idgen"`
	Lock        manager.LockConfig `mapstructure:"lock"`
	Progression service.Config     `mapstructure:"progression"`
}

// Config 定义 PetPark 服务的完整配置结构
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// HTTP 服务配置
	Web web.Config `mapstructure:"web"`

	// Database 配置
	Database postgres.Config `mapstructure:"database"`

	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`

	// Kafka 配置
	Kafka KafkaConfig `mapstructure:"kafka"`

	// Prometheus 配置
	Prometheus prometheus.Config `mapstructure:"prometheus"`

	// 指标配置
	Metrics metrics.Config `mapstructure:"metrics"`

	// 链路追踪配置
	Tracing otel.Config `mapstructure:"tracing"`

	// 错误上报配置
	Sentry sentry.Config `mapstructure:"sentry"`

	Engine EngineConfig `mapstructure:"engine"`

	// Tiers 初始升级档位，仅在存储中尚无档位时写入
	Tiers []model.LevelUpTier `mapstructure:"tiers"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":                         "info",
		"log.format":                        "json",
		"log.enable_console":                true,
		"web.addr":                          ":8080",
		"engine.store":                      StoreMemory,
		"engine.migrate":                    true,
		"engine.progression.starter_points": 100,
		"engine.progression.timezone":       "Local",
		"kafka.ledger.topic":                publisher.DefaultTopic,
	}
}

func main() {
	var cfg Config

	// 1. 加载配置
	if err := app.LoadConfig(&cfg, defaults()); err != nil {
		panic(err)
	}

	// 2. 初始化主日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}

	// 3. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行服务
	l.Info("starting petpark", "version", app.GetInfo().String(), "store", cfg.Engine.Store)
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
