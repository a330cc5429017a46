package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/database/redis"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache 以 JSON 保存的内存缓存
type mapCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	reads int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Key(suffix string) string { return "test:" + suffix }

func (c *mapCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrNil
	}
	c.reads++
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

func violationKeys(t *testing.T, err error) []string {
	t.Helper()
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	keys := make([]string, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		keys = append(keys, v.Field+":"+v.Rule)
	}
	return keys
}

func TestRuleService_CreateAndDuplicate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	rule := feedRule()
	created, err := env.rules.CreateRule(ctx, &rule)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	dup := feedRule()
	dup.HappinessGain = 500
	_, err = env.rules.CreateRule(ctx, &dup)
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
	// 字段错误与唯一性错误一并返回
	assert.ElementsMatch(t, []string{"happiness_gain:lte", "happiness_gain:ratio", "interaction_type:unique"}, violationKeys(t, err))
}

func TestRuleService_RatioViolations(t *testing.T) {
	env := newTestEnv(t, nil)

	rule := model.InteractionRule{
		InteractionType: "snack",
		DisplayName:     "Snack",
		PointsCost:      10,
		HappinessGain:   21,
		ExpGain:         51,
		IsActive:        true,
	}
	_, err := env.rules.CreateRule(context.Background(), &rule)
	assert.ElementsMatch(t, []string{"happiness_gain:ratio", "exp_gain:ratio"}, violationKeys(t, err))
}

func TestRuleService_UpdateToggleDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	rule := feedRule()
	_, err := env.rules.CreateRule(ctx, &rule)
	require.NoError(t, err)

	update := feedRule()
	update.InteractionType = "ignored"
	update.PointsCost = 60
	updated, err := env.rules.UpdateRule(ctx, "feed", &update)
	require.NoError(t, err)
	assert.Equal(t, "feed", updated.InteractionType)
	assert.Equal(t, rule.CreatedAt, updated.CreatedAt)

	got, err := env.rules.GetRule(ctx, "feed")
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.PointsCost)

	toggled, err := env.rules.ToggleRuleStatus(ctx, "feed")
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	active, err := env.rules.ListRules(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := env.rules.ListRules(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, env.rules.DeleteRule(ctx, "feed"))
	_, err = env.rules.GetRule(ctx, "feed")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, env.rules.DeleteRule(ctx, "feed"), errs.ErrNotFound)

	missing := feedRule()
	_, err = env.rules.UpdateRule(ctx, "walk", &missing)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRuleService_ActiveListCache(t *testing.T) {
	env := newTestEnv(t, nil)
	cache := newMapCache()
	svc := NewRuleService(logger.NewNoop(), env.store, env.validate, cache)
	ctx := context.Background()

	rule := feedRule()
	_, err := svc.CreateRule(ctx, &rule)
	require.NoError(t, err)

	first, err := svc.ListRules(ctx, true)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 0, cache.reads)

	second, err := svc.ListRules(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.reads)
	assert.Equal(t, first[0].InteractionType, second[0].InteractionType)

	// 写操作使缓存失效
	_, err = svc.ToggleRuleStatus(ctx, "feed")
	require.NoError(t, err)
	third, err := svc.ListRules(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, third)
	assert.Equal(t, 1, cache.reads)
}
