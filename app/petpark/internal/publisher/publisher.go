package publisher

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// DefaultTopic 账本事件 topic
const DefaultTopic = "petpark.ledger"

// Config 账本事件发布配置
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic"`
	// PoolSize 投递协程数
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Enabled:  false,
		Topic:    DefaultTopic,
		PoolSize: 16,
		Timeout:  5 * time.Second,
	}
}

// Sink 消息投递目标，kafka.Producer 实现了该接口
type Sink interface {
	PublishJSON(ctx context.Context, key string, value any, headers map[string]string) error
	Close() error
}

// LedgerEvent 账本流水事件
type LedgerEvent struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Delta        int64     `json:"delta"`
	BalanceAfter int64     `json:"balance_after"`
	Reason       string    `json:"reason"`
	RefID        int64     `json:"ref_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewLedgerEvent 由账本条目构造事件
func NewLedgerEvent(e *model.LedgerEntry) LedgerEvent {
	return LedgerEvent{
		ID:           e.ID,
		OwnerID:      e.OwnerID,
		Delta:        e.Delta,
		BalanceAfter: e.BalanceAfter,
		Reason:       e.Reason,
		RefID:        e.RefID,
		CreatedAt:    e.CreatedAt,
	}
}

// LedgerPublisher 事务提交后异步发布账本事件
// 发布失败只记录日志和指标，不影响已提交的事务
type LedgerPublisher struct {
	sink    Sink
	pool    *ants.Pool
	timeout time.Duration
	logger  logger.Logger
	metrics *metrics.EngineMetrics

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New 创建发布器
func New(cfg *Config, sink Sink, l logger.Logger, m *metrics.EngineMetrics) (*LedgerPublisher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if sink == nil {
		return nil, errors.New("publisher: sink is nil")
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = DefaultConfig().PoolSize
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create publish pool")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &LedgerPublisher{
		sink:    sink,
		pool:    pool,
		timeout: timeout,
		logger:  l.Named("publisher.ledger"),
		metrics: m,
	}, nil
}

// PublishLedger 提交投递任务后立即返回，同一次提交的流水在一个任务内按顺序发送
func (p *LedgerPublisher) PublishLedger(entries []*model.LedgerEntry) {
	if p == nil || len(entries) == 0 {
		return
	}
	events := make([]LedgerEvent, 0, len(entries))
	for _, e := range entries {
		events = append(events, NewLedgerEvent(e))
	}

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		for _, ev := range events {
			p.send(ev)
		}
	})
	if err != nil {
		p.wg.Done()
		for _, ev := range events {
			p.metrics.RecordEventPublish(false)
			p.logger.Warn("ledger event dropped", "ledger_id", ev.ID, "owner_id", ev.OwnerID, "error", err)
		}
	}
}

func (p *LedgerPublisher) send(ev LedgerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	headers := map[string]string{"event": "ledger_entry", "reason": ev.Reason}
	if err := p.sink.PublishJSON(ctx, strconv.FormatInt(ev.OwnerID, 10), ev, headers); err != nil {
		p.metrics.RecordEventPublish(false)
		p.logger.Error("failed to publish ledger event", "ledger_id", ev.ID, "owner_id", ev.OwnerID, "error", err)
		return
	}
	p.metrics.RecordEventPublish(true)
}

// Flush 等待已提交的任务完成
func (p *LedgerPublisher) Flush() {
	if p == nil {
		return
	}
	p.wg.Wait()
}

// Close 等待在途事件后关闭协程池和 sink
func (p *LedgerPublisher) Close() error {
	if p == nil {
		return nil
	}
	var err error
	p.closeOnce.Do(func() {
		p.wg.Wait()
		p.pool.Release()
		err = p.sink.Close()
	})
	return err
}
