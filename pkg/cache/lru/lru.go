package lru

import (
	"container/list"
	"sync"
	"time"
)

// Config LRU 配置
type Config struct {
	// MaxSize 最大条目数，超出后淘汰最久未使用的条目
	MaxSize int `mapstructure:"max_size"`
	// DefaultTTL 默认过期时间，0 表示不过期
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// Stats 命中统计
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// LRU 并发安全的内存 LRU 缓存，过期条目在访问时惰性清理
type LRU[K comparable, V any] struct {
	cfg   Config
	ll    *list.List
	items map[K]*list.Element
	mu    sync.Mutex
	stats Stats
	now   func() time.Time

	onEvict func(key K, value V)
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // 零值表示不过期
}

// Option LRU 选项
type Option[K comparable, V any] func(*LRU[K, V])

// WithOnEvict 设置淘汰回调，回调在持锁状态下执行
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// WithClock 替换时钟 (测试用)
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *LRU[K, V]) { c.now = now }
}

// New 创建 LRU 缓存，MaxSize <= 0 时使用 1024
func New[K comparable, V any](cfg Config, opts ...Option[K, V]) *LRU[K, V] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1024
	}
	c := &LRU[K, V]{
		cfg:   cfg,
		ll:    list.New(),
		items: make(map[K]*list.Element, cfg.MaxSize),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get 获取值
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	ent := elem.Value.(*entry[K, V])
	if c.expired(ent) {
		c.remove(elem)
		c.stats.Misses++
		return zero, false
	}
	c.ll.MoveToFront(elem)
	c.stats.Hits++
	return ent.value, true
}

// Set 使用默认 TTL 写入
func (c *LRU[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.cfg.DefaultTTL)
}

// SetWithTTL 写入并指定 TTL，ttl <= 0 表示不过期
func (c *LRU[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, ttl)
}

// GetOrCreate 命中则返回缓存值，否则调用 create 并写入
// create 返回错误时不缓存
func (c *LRU[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete 删除
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Purge 清空缓存
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[K]*list.Element, c.cfg.MaxSize)
}

// Len 当前条目数 (可能包含尚未清理的过期条目)
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats 返回统计快照
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *LRU[K, V]) set(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.ll.MoveToFront(elem)
		return
	}

	c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expiresAt})
	for c.ll.Len() > c.cfg.MaxSize {
		c.remove(c.ll.Back())
		c.stats.Evictions++
	}
}

func (c *LRU[K, V]) expired(ent *entry[K, V]) bool {
	return !ent.expiresAt.IsZero() && !c.now().Before(ent.expiresAt)
}

func (c *LRU[K, V]) remove(elem *list.Element) {
	c.ll.Remove(elem)
	ent := elem.Value.(*entry[K, V])
	delete(c.items, ent.key)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
