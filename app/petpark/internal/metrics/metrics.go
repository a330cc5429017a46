package metrics

import (
	"fmt"
	"time"

	"github.com/lk2023060901/petpark/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace: "petpark",
	}
}

// EngineMetrics 成长与奖励引擎指标
type EngineMetrics struct {
	config *Config

	// 业务指标
	InteractionTotal *prometheus.CounterVec // 互动总数（按互动类型、结果）
	LevelUpTotal     prometheus.Counter     // 升级次数
	PointsTotal      *prometheus.CounterVec // 积分流水（按方向、原因）
	SignInTotal      *prometheus.CounterVec // 签到（按结果）

	// 锁指标
	LockWaitDuration prometheus.Histogram // 获取属主锁等待时间

	// 数据库指标
	DBQueryTotal    *prometheus.CounterVec   // 数据库查询总数（按操作、结果）
	DBQueryDuration *prometheus.HistogramVec // 数据库查询延迟

	// 事件指标
	EventPublishTotal *prometheus.CounterVec // 流水事件发布（按结果）
}

// New 创建引擎指标
func New(cfg *Config) (*EngineMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge metrics config: %w", err)
	}

	ns := newCfg.Namespace
	return &EngineMetrics{
		config: newCfg,

		InteractionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "interactions_total",
				Help:      "互动请求总数",
			},
			[]string{"interaction_type", "result"}, // result: success/not_found/insufficient_funds/cooldown_active/...
		),
		LevelUpTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "level_ups_total",
				Help:      "宠物升级次数",
			},
		),
		PointsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "ledger_points_total",
				Help:      "积分流水绝对值累计",
			},
			[]string{"direction", "reason"}, // direction: credit/debit
		),
		SignInTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "sign_ins_total",
				Help:      "签到请求总数",
			},
			[]string{"result"},
		),

		LockWaitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "owner_lock_wait_seconds",
				Help:      "获取属主锁等待时间（秒）",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),

		DBQueryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "db_queries_total",
				Help:      "数据库查询总数",
			},
			[]string{"table", "operation", "result"}, // operation: select/insert/update/delete
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "db_query_duration_seconds",
				Help:      "数据库查询延迟（秒）",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"table", "operation"},
		),

		EventPublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "ledger_events_published_total",
				Help:      "流水事件发布总数",
			},
			[]string{"result"},
		),
	}, nil
}

// Register 注册指标到 Prometheus Registry
func (m *EngineMetrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.InteractionTotal,
		m.LevelUpTotal,
		m.PointsTotal,
		m.SignInTotal,
		m.LockWaitDuration,
		m.DBQueryTotal,
		m.DBQueryDuration,
		m.EventPublishTotal,
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordInteraction 记录互动结果
func (m *EngineMetrics) RecordInteraction(interactionType, result string) {
	if m == nil {
		return
	}
	m.InteractionTotal.WithLabelValues(interactionType, result).Inc()
}

// RecordLevelUps 记录升级次数
func (m *EngineMetrics) RecordLevelUps(levels int) {
	if m == nil || levels <= 0 {
		return
	}
	m.LevelUpTotal.Add(float64(levels))
}

// RecordPoints 记录一笔积分变动
func (m *EngineMetrics) RecordPoints(delta int64, reason string) {
	if m == nil || delta == 0 {
		return
	}
	if delta > 0 {
		m.PointsTotal.WithLabelValues("credit", reason).Add(float64(delta))
		return
	}
	m.PointsTotal.WithLabelValues("debit", reason).Add(float64(-delta))
}

// RecordSignIn 记录签到结果
func (m *EngineMetrics) RecordSignIn(result string) {
	if m == nil {
		return
	}
	m.SignInTotal.WithLabelValues(result).Inc()
}

// ObserveLockWait 记录锁等待时间
func (m *EngineMetrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.LockWaitDuration.Observe(d.Seconds())
}

// RecordDBQuery 记录数据库查询
func (m *EngineMetrics) RecordDBQuery(table, operation string, success bool, duration float64) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failed"
	}
	m.DBQueryTotal.WithLabelValues(table, operation, result).Inc()
	m.DBQueryDuration.WithLabelValues(table, operation).Observe(duration)
}

// RecordEventPublish 记录事件发布结果
func (m *EngineMetrics) RecordEventPublish(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failed"
	}
	m.EventPublishTotal.WithLabelValues(result).Inc()
}
