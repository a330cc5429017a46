package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/app/petpark/internal/handler"
	"github.com/lk2023060901/petpark/app/petpark/internal/manager"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/publisher"
	"github.com/lk2023060901/petpark/app/petpark/internal/service"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/app/petpark/internal/store/memstore"
	"github.com/lk2023060901/petpark/app/petpark/internal/store/pgstore"
	"github.com/lk2023060901/petpark/app/petpark/internal/validation"
	"github.com/lk2023060901/petpark/pkg/app"
	"github.com/lk2023060901/petpark/pkg/config"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/database/redis"
	"github.com/lk2023060901/petpark/pkg/idgen"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/lk2023060901/petpark/pkg/mq/kafka"
	"github.com/lk2023060901/petpark/pkg/otel"
	"github.com/lk2023060901/petpark/pkg/prometheus"
	"github.com/lk2023060901/petpark/pkg/sentry"
	"github.com/lk2023060901/petpark/pkg/web"
	"github.com/lk2023060901/petpark/pkg/web/middleware"
	webvalidator "github.com/lk2023060901/petpark/pkg/web/validator"
)

const startupTimeout = 30 * time.Second

// providePrometheusConfig 提供 Prometheus 配置
func providePrometheusConfig(cfg *Config) *prometheus.Config {
	return &cfg.Prometheus
}

// provideMetrics 创建引擎指标并注册到 Prometheus
func provideMetrics(cfg *Config, prom *prometheus.Client) (*metrics.EngineMetrics, error) {
	m, err := metrics.New(&cfg.Metrics)
	if err != nil {
		return nil, err
	}
	if err := m.Register(prom.Registerer()); err != nil {
		return nil, err
	}
	return m, nil
}

// provideTracerProvider 链路追踪，未启用时为 noop
func provideTracerProvider(cfg *Config) (*otel.TracerProvider, error) {
	return otel.New(&cfg.Tracing)
}

// provideSentry 错误上报，未启用时为空操作客户端
func provideSentry(cfg *Config) (*sentry.Client, error) {
	return sentry.New(&cfg.Sentry)
}

// provideStore 按配置选择存储实现
func provideStore(cfg *Config, l logger.Logger, m *metrics.EngineMetrics) (store.Store, func(), error) {
	var st store.Store
	switch cfg.Engine.Store {
	case "", StoreMemory:
		l.Warn("using in-memory store, data is lost on restart")
		st = memstore.New()

	case StorePostgres:
		db, err := postgres.New(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pg := pgstore.New(db, l, m)
		if cfg.Engine.Migrate {
			ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
			defer cancel()
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, nil, err
			}
		}
		st = pg

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Engine.Store)
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			l.Error("failed to close store", "error", err)
		}
	}
	return st, cleanup, nil
}

// provideRedis 未启用时返回 nil，引擎退化为进程内锁且不缓存规则
func provideRedis(cfg *Config, l logger.Logger) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}

	client, err := redis.NewClient(&cfg.Redis.Client)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Error("failed to close redis client", "error", err)
		}
	}
	return client, cleanup, nil
}

// provideRuleCache 规则缓存，Redis 未启用时为 nil
func provideRuleCache(rdb *redis.Client) service.Cache {
	if rdb == nil {
		return nil
	}
	return rdb
}

// provideLockManager 提供属主锁
func provideLockManager(cfg *Config, rdb *redis.Client, l logger.Logger, m *metrics.EngineMetrics) (*manager.LockManager, error) {
	lc, err := config.MergeConfig(manager.DefaultLockConfig(), &cfg.Engine.Lock)
	if err != nil {
		return nil, err
	}
	return manager.NewLockManager(lc, rdb, l, m), nil
}

// provideIDGenerator 提供 ID 生成器
func provideIDGenerator(cfg *Config) (idgen.Generator, error) {
	return idgen.NewSonyflake(cfg.Engine.IDGen)
}

// provideLedgerPublisher 未启用时返回 nil
func provideLedgerPublisher(cfg *Config, l logger.Logger, m *metrics.EngineMetrics) (service.LedgerPublisher, func(), error) {
	if !cfg.Kafka.Ledger.Enabled {
		return nil, func() {}, nil
	}

	pc, err := config.MergeConfig(publisher.DefaultConfig(), &cfg.Kafka.Ledger)
	if err != nil {
		return nil, nil, err
	}
	producer, err := kafka.NewProducer(&cfg.Kafka.Producer, pc.Topic, l)
	if err != nil {
		return nil, nil, err
	}
	pub, err := publisher.New(pc, producer, l, m)
	if err != nil {
		_ = producer.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Error("failed to close ledger publisher", "error", err)
		}
	}
	return pub, cleanup, nil
}

// provideServiceConfig 合并引擎默认配置并校验
func provideServiceConfig(cfg *Config) (*service.Config, error) {
	sc, err := config.MergeConfig(service.DefaultConfig(), &cfg.Engine.Progression)
	if err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// provideTierService 创建档位服务并写入初始档位
func provideTierService(cfg *Config, l logger.Logger, st store.Store, v *validation.Service) (*service.TierService, error) {
	tiers := service.NewTierService(l, st, v)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := tiers.Bootstrap(ctx, cfg.Tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// provideProgressionService 提供成长引擎
func provideProgressionService(
	l logger.Logger,
	sc *service.Config,
	st store.Store,
	locks service.Locker,
	tiers *service.TierService,
	ids idgen.Generator,
	m *metrics.EngineMetrics,
	pub service.LedgerPublisher,
	tp *otel.TracerProvider,
) (*service.ProgressionService, error) {
	return service.NewProgressionService(l, sc, st, locks, tiers, ids, m,
		service.WithPublisher(pub),
		service.WithTracer(tp.Tracer("petpark/progression")),
	)
}

// provideHandler 提供 HTTP 接口
func provideHandler(
	l logger.Logger,
	progression *service.ProgressionService,
	rules *service.RuleService,
	tiers *service.TierService,
	colors *service.ColorOptionService,
	reporter *sentry.Client,
) *handler.Handler {
	var opts []handler.Option
	if reporter.IsEnabled() {
		opts = append(opts, handler.WithErrorReporter(reporter))
	}
	return handler.NewHandler(l, progression, rules, tiers, colors, opts...)
}

// provideWebServer 创建 HTTP 服务并挂载路由
func provideWebServer(
	cfg *Config,
	l logger.Logger,
	h *handler.Handler,
	prom *prometheus.Client,
	tp *otel.TracerProvider,
	reporter *sentry.Client,
) (*web.Server, error) {
	// 1. 注册校验规则
	if err := webvalidator.Init(validation.Rules()); err != nil {
		return nil, err
	}

	// 2. 创建服务，挂载 HTTP 指标、链路追踪与 panic 上报
	httpMetrics := middleware.NewHTTPMetrics(prom.Namespace(), prom.Registerer())
	global := []gin.HandlerFunc{middleware.Metrics(httpMetrics)}
	if tp.IsEnabled() {
		global = append(global, middleware.Tracing(tp.Tracer("petpark/http"), tp.Propagator()))
	}
	if reporter.IsEnabled() {
		global = append(global, sentry.GinRecovery(reporter))
	}
	srv, err := web.NewServer(&cfg.Web, l, web.WithMiddleware(global...))
	if err != nil {
		return nil, err
	}

	// 3. 指标与健康检查
	router := srv.Router()
	router.GET(prom.Path(), gin.WrapH(prom.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": app.Version})
	})

	// 4. 业务路由，写接口限流
	var write []gin.HandlerFunc
	if cfg.Web.RateLimit.Enabled {
		write = append(write, middleware.RateLimit(middleware.NewRateLimiter(l, cfg.Web.RateLimit)))
	}
	h.Register(router, write...)

	return srv, nil
}

// provideAppOptions 提供应用选项
func provideAppOptions(l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
	}
}

// provideAppComponents 提供应用组件，存储在 InitApp 返回的 cleanup 中关闭
func provideAppComponents(srv *web.Server, tp *otel.TracerProvider, reporter *sentry.Client) app.AppComponents {
	return app.AppComponents{
		Servers: []app.Server{srv},
		Closers: []app.Closer{tp, reporter},
	}
}
