package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/petpark/app/petpark/internal/manager"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/app/petpark/internal/store/memstore"
	"github.com/lk2023060901/petpark/app/petpark/internal/validation"
	"github.com/lk2023060901/petpark/pkg/idgen"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/stretchr/testify/require"
)

const (
	testOwner = int64(1)
	testPet   = int64(10)
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []*model.LedgerEntry
}

func (p *recordingPublisher) PublishLedger(entries []*model.LedgerEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entries...)
}

type testEnv struct {
	store    *memstore.Store
	clock    *fakeClock
	pub      *recordingPublisher
	tiers    *TierService
	rules    *RuleService
	colors   *ColorOptionService
	engine   *ProgressionService
	validate *validation.Service
}

// defaultTiers 1-10 级线性，之后二次与指数曲线
func defaultTiers() []model.LevelUpTier {
	return []model.LevelUpTier{
		{MinLevel: 1, MaxLevel: 10, FormulaType: model.FormulaLinear, Formula: "40 * level + 60", RewardPoints: 20, Description: "beginner"},
		{MinLevel: 11, MaxLevel: 30, FormulaType: model.FormulaQuadratic, Formula: "0.8 * level^2 + 380", RewardPoints: 50, Description: "growing"},
		{MinLevel: 31, MaxLevel: model.UnboundedLevel, FormulaType: model.FormulaExponential, Formula: "285.69 * (1.06^level)", RewardPoints: 100, Description: "master"},
	}
}

func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
		cfg.Timezone = "UTC"
	}
	l := logger.NewNoop()
	st := memstore.New()
	v, err := validation.New()
	require.NoError(t, err)

	env := &testEnv{store: st, clock: newFakeClock(), pub: &recordingPublisher{}, validate: v}
	env.tiers = NewTierService(l, st, v)
	require.NoError(t, env.tiers.Bootstrap(context.Background(), defaultTiers()))

	ids := idgen.NewSequence(1000)
	locks := manager.NewLockManager(nil, nil, l, nil)
	env.engine, err = NewProgressionService(l, cfg, st, locks, env.tiers, ids, nil,
		WithClock(env.clock.Now), WithPublisher(env.pub))
	require.NoError(t, err)
	env.rules = NewRuleService(l, st, v, nil)
	env.colors = NewColorOptionService(l, st, v, ids)
	return env
}

// seedPet 直接写入宠物与钱包
func (e *testEnv) seedPet(t *testing.T, level, mood int, exp, balance int64) {
	t.Helper()
	err := e.store.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		pet := model.NewPet(testOwner, "Mochi", e.clock.Now())
		pet.ID = testPet
		pet.Level = level
		pet.Mood = mood
		pet.Experience = exp
		if err := tx.Pets().Create(ctx, pet); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, &model.Wallet{OwnerID: testOwner, PointBalance: balance})
	})
	require.NoError(t, err)
}

func (e *testEnv) seedRule(t *testing.T, rule model.InteractionRule) {
	t.Helper()
	if rule.DisplayName == "" {
		rule.DisplayName = rule.InteractionType
	}
	err := e.store.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.Rules().Create(ctx, &rule)
	})
	require.NoError(t, err)
}

func (e *testEnv) pet(t *testing.T) *model.Pet {
	t.Helper()
	var pet *model.Pet
	require.NoError(t, e.store.View(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		pet, err = tx.Pets().Get(ctx, testPet)
		return err
	}))
	return pet
}

func (e *testEnv) balance(t *testing.T) int64 {
	t.Helper()
	var w *model.Wallet
	require.NoError(t, e.store.View(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		w, err = tx.Wallets().Get(ctx, testOwner)
		return err
	}))
	return w.PointBalance
}

func (e *testEnv) ledger(t *testing.T) []*model.LedgerEntry {
	t.Helper()
	var entries []*model.LedgerEntry
	require.NoError(t, e.store.View(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		entries, err = tx.Ledger().List(ctx, testOwner, 1<<20, 0)
		return err
	}))
	return entries
}

func feedRule() model.InteractionRule {
	return model.InteractionRule{
		InteractionType: "feed",
		DisplayName:     "Feed",
		PointsCost:      50,
		HappinessGain:   10,
		ExpGain:         20,
		CooldownMinutes: 30,
		IsActive:        true,
	}
}
