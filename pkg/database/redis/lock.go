package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Second

// 只有持有者才能释放或续期
var (
	unlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

	refreshScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`)
)

// Lock 单节点分布式锁 (SET NX PX + Lua 释放)
type Lock struct {
	client *Client
	key    string
	token  string
	ttl    time.Duration
}

// NewLock 创建锁，token 使用 UUID 标识持有者
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{client: client, key: key, token: uuid.NewString(), ttl: ttl}
}

// TryLock 尝试获取锁，立即返回
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.rdb.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to try lock %s: %w", l.key, err)
	}
	return ok, nil
}

// LockWithRetry 按间隔重试获取锁，直到成功、重试耗尽或 ctx 结束
func (l *Lock) LockWithRetry(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i <= maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w: %s", ErrLockFailed, l.key)
}

// Unlock 释放锁
func (l *Lock) Unlock(ctx context.Context) error {
	n, err := unlockScript.Run(ctx, l.client.rdb, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Refresh 续期
func (l *Lock) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.client.rdb, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to refresh lock %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// WithLockRetry 在锁保护下执行 fn，fn 返回后释放锁
func (c *Client) WithLockRetry(ctx context.Context, key string, ttl, retryInterval time.Duration, maxRetries int, fn func() error) (err error) {
	lock := NewLock(c, key, ttl)
	if err := lock.LockWithRetry(ctx, retryInterval, maxRetries); err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.Unlock(context.Background()); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()
	return fn()
}
