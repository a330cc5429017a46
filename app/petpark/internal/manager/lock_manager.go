package manager

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/pkg/database/redis"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// LockConfig 属主锁配置
type LockConfig struct {
	// TTL 分布式锁过期时间，需大于单次请求的最长耗时
	TTL           time.Duration `mapstructure:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// DefaultLockConfig 默认配置
func DefaultLockConfig() *LockConfig {
	return &LockConfig{
		TTL:           10 * time.Second,
		RetryInterval: 20 * time.Millisecond,
		MaxRetries:    100,
	}
}

// OwnerKey 用户级锁键，钱包按用户归属
func OwnerKey(ownerID int64) string {
	return fmt.Sprintf("owner:%d", ownerID)
}

// PetKey 宠物级锁键
func PetKey(petID int64) string {
	return fmt.Sprintf("pet:%d", petID)
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// LockManager 串行化同一用户/宠物上的请求
// 进程内使用按键互斥，配置 Redis 时额外持有分布式锁以覆盖多实例部署
type LockManager struct {
	cfg     *LockConfig
	redis   *redis.Client
	logger  logger.Logger
	metrics *metrics.EngineMetrics

	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewLockManager 创建锁管理器，rdb 为 nil 时只使用进程内锁
func NewLockManager(cfg *LockConfig, rdb *redis.Client, l logger.Logger, m *metrics.EngineMetrics) *LockManager {
	if cfg == nil {
		cfg = DefaultLockConfig()
	}
	return &LockManager{
		cfg:     cfg,
		redis:   rdb,
		logger:  l.Named("manager.lock"),
		metrics: m,
		locks:   make(map[string]*keyLock),
	}
}

// WithLocks 按排序后的顺序获取全部键的锁，执行 fn 后逆序释放
func (m *LockManager) WithLocks(ctx context.Context, keys []string, fn func() error) error {
	keys = normalizeKeys(keys)
	start := time.Now()

	// 1. 进程内锁
	releases := make([]func(), 0, len(keys)*2)
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()
	for _, key := range keys {
		release, err := m.acquireLocal(ctx, key)
		if err != nil {
			return errs.System(err, "failed to acquire lock "+key)
		}
		releases = append(releases, release)
	}

	// 2. 分布式锁
	if m.redis != nil {
		for _, key := range keys {
			release, err := m.acquireRemote(ctx, key)
			if err != nil {
				m.logger.WarnContext(ctx, "failed to acquire distributed lock", "key", key, "error", err)
				return errs.System(err, "failed to acquire lock "+key)
			}
			releases = append(releases, release)
		}
	}

	m.metrics.ObserveLockWait(time.Since(start))
	return fn()
}

// Held 当前进程内被持有或等待中的键数量
func (m *LockManager) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *LockManager) acquireLocal(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			m.unref(key, l)
		}, nil
	case <-ctx.Done():
		m.unref(key, l)
		return nil, ctx.Err()
	}
}

func (m *LockManager) unref(key string, l *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

func (m *LockManager) acquireRemote(ctx context.Context, key string) (func(), error) {
	lock := redis.NewLock(m.redis, m.redis.Key("lock:"+key), m.cfg.TTL)
	if err := lock.LockWithRetry(ctx, m.cfg.RetryInterval, m.cfg.MaxRetries); err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Unlock(context.Background()); err != nil {
			m.logger.Warn("failed to release distributed lock", "key", key, "error", err)
		}
	}, nil
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
