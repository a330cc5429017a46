package formula

import (
	"github.com/lk2023060901/petpark/pkg/cache/lru"
)

// DefaultCacheSize 默认缓存条目数
const DefaultCacheSize = 4096

type cacheKey struct {
	version int64
	level   int
}

// Evaluator 带缓存的 RequiredExp，按 (档位版本, 等级) 缓存
type Evaluator struct {
	cache *lru.LRU[cacheKey, int64]
}

// NewEvaluator 创建 Evaluator，size <= 0 时使用默认值
func NewEvaluator(size int) *Evaluator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Evaluator{cache: lru.New[cacheKey, int64](lru.Config{MaxSize: size})}
}

// RequiredExp 同 RequiredExp，错误结果不缓存
func (e *Evaluator) RequiredExp(set *TierSet, level int) (int64, error) {
	if set == nil {
		return RequiredExp(set, level)
	}
	return e.cache.GetOrCreate(cacheKey{version: set.Version, level: level}, func() (int64, error) {
		return RequiredExp(set, level)
	})
}

// Stats 缓存统计
func (e *Evaluator) Stats() lru.Stats {
	return e.cache.Stats()
}
