//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/petpark/app/petpark/internal/manager"
	"github.com/lk2023060901/petpark/app/petpark/internal/service"
	"github.com/lk2023060901/petpark/app/petpark/internal/validation"
	"github.com/lk2023060901/petpark/pkg/app"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/lk2023060901/petpark/pkg/prometheus"
)

func InitApp(cfg *Config, l logger.Logger) (*app.BaseApp, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,

		// 2. Prometheus 客户端与引擎指标
		providePrometheusConfig,
		prometheus.New,
		provideMetrics,

		// 3. 链路追踪与错误上报
		provideTracerProvider,
		provideSentry,

		// 4. 存储
		provideStore,

		// 5. Redis 与属主锁
		provideRedis,
		provideRuleCache,
		provideLockManager,
		wire.Bind(new(service.Locker), new(*manager.LockManager)),

		// 6. ID 生成与账本事件
		provideIDGenerator,
		provideLedgerPublisher,

		// 7. 服务层 (Service)
		validation.New,
		provideServiceConfig,
		provideTierService,
		provideProgressionService,
		service.NewRuleService,
		service.NewColorOptionService,

		// 8. 接口层 (Handler)
		provideHandler,

		// 9. HTTP Server
		provideWebServer,

		// 10. 组装与应用配置
		provideAppOptions,
		provideAppComponents,
		app.InitApp,
	))
}
