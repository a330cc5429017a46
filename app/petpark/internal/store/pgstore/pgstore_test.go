package pgstore

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	db, err := postgres.New(&postgres.Config{DBName: "petpark_test", ConnectTimeout: 2 * time.Second})
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	s := New(db, logger.NewNoop(), nil)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	for _, table := range []string{"pets", "wallets", "ledger_entries", "interaction_history", "tier_set", "level_up_tiers"} {
		_, err := db.Exec(ctx, "TRUNCATE "+table)
		require.NoError(t, err)
	}
	return s
}

func TestStore_AtomicRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		pet := model.NewPet(1, "Mochi", now)
		pet.ID = 100
		if err := tx.Pets().Create(ctx, pet); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, &model.Wallet{OwnerID: 1, PointBalance: 80, UpdatedAt: now})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		w, err := tx.Wallets().GetForUpdate(ctx, 1)
		require.NoError(t, err)
		w.PointBalance -= 50
		require.NoError(t, tx.Wallets().Update(ctx, w))
		require.NoError(t, tx.Ledger().Append(ctx, &model.LedgerEntry{
			ID: 1, OwnerID: 1, Delta: -50, BalanceAfter: w.PointBalance, Reason: "feed", CreatedAt: now,
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		w, err := tx.Wallets().Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(80), w.PointBalance)
		assert.Equal(t, int64(1), w.Version)

		entries, err := tx.Ledger().List(ctx, 1, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_PetVersionConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		pet := model.NewPet(2, "Bean", now)
		pet.ID = 200
		return tx.Pets().Create(ctx, pet)
	})
	require.NoError(t, err)

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		pet, err := tx.Pets().GetForUpdate(ctx, 200)
		require.NoError(t, err)
		stale := pet.Clone()

		pet.Experience = 10
		require.NoError(t, tx.Pets().Update(ctx, pet))
		return tx.Pets().Update(ctx, stale)
	})
	assert.True(t, errors.Is(err, errs.ErrConcurrentUpdate))
}

func TestStore_TiersAndHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		v, err := tx.Tiers().Replace(ctx, []model.LevelUpTier{
			{MinLevel: 1, MaxLevel: 10, FormulaType: "linear", Formula: "40 * level + 60", RewardPoints: 10},
			{MinLevel: 11, MaxLevel: -1, FormulaType: "quadratic", Formula: "0.8 * level^2 + 380", RewardPoints: 20},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		for i, d := range []time.Duration{0, 2 * time.Hour, time.Hour} {
			r := &model.InteractionRecord{ID: int64(i + 1), PetID: 1, InteractionType: "feed", OccurredAt: base.Add(d)}
			if err := tx.History().Append(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		v, tiers, err := tx.Tiers().Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
		require.Len(t, tiers, 2)
		assert.Equal(t, "quadratic", tiers[1].FormulaType)

		rec, err := tx.History().Latest(ctx, 1, "feed")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, int64(2), rec.ID)
		return nil
	})
	require.NoError(t, err)
}
