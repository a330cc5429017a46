package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	err := s.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		pet := model.NewPet(1, "Mochi", time.Now())
		pet.ID = 10
		if err := tx.Pets().Create(ctx, pet); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, &model.Wallet{OwnerID: 1, PointBalance: 100})
	})
	require.NoError(t, err)
}

func TestAtomic_RollbackOnError(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		w, err := tx.Wallets().GetForUpdate(ctx, 1)
		require.NoError(t, err)
		w.PointBalance = 0
		require.NoError(t, tx.Wallets().Update(ctx, w))
		require.NoError(t, tx.Ledger().Append(ctx, &model.LedgerEntry{ID: 1, OwnerID: 1, Delta: -100}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		w, err := tx.Wallets().Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(100), w.PointBalance)

		entries, err := tx.Ledger().List(ctx, 1, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
		return nil
	})
	require.NoError(t, err)
}

func TestAtomic_RollbackOnPanic(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			_ = tx.Rules().Create(ctx, &model.InteractionRule{InteractionType: "feed"})
			panic("unexpected")
		})
	})

	// 锁已释放，且写入未提交
	err := s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Rules().Get(ctx, "feed")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		return nil
	})
	require.NoError(t, err)
}

func TestView_ReadOnly(t *testing.T) {
	s := New()
	err := s.View(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.Ledger().Append(ctx, &model.LedgerEntry{ID: 1})
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestPetUpdate_VersionCheck(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		a, _ := tx.Pets().GetForUpdate(ctx, 10)
		b, _ := tx.Pets().GetForUpdate(ctx, 10)

		a.Experience = 50
		require.NoError(t, tx.Pets().Update(ctx, a))
		assert.Equal(t, int64(2), a.Version)

		b.Experience = 70
		return tx.Pets().Update(ctx, b)
	})
	assert.True(t, errors.Is(err, errs.ErrConcurrentUpdate))
}

func TestLedger_ListNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		for i := int64(1); i <= 5; i++ {
			if err := tx.Ledger().Append(ctx, &model.LedgerEntry{ID: i, OwnerID: 1, Delta: i}); err != nil {
				return err
			}
		}
		return tx.Ledger().Append(ctx, &model.LedgerEntry{ID: 6, OwnerID: 2, Delta: 6})
	})
	require.NoError(t, err)

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		entries, err := tx.Ledger().List(ctx, 1, 2, 1)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(4), entries[0].ID)
		assert.Equal(t, int64(3), entries[1].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestHistory_Latest(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		rec, err := tx.History().Latest(ctx, 10, "feed")
		require.NoError(t, err)
		assert.Nil(t, rec)

		for i, d := range []time.Duration{0, 2 * time.Hour, time.Hour} {
			r := &model.InteractionRecord{ID: int64(i + 1), PetID: 10, InteractionType: "feed", OccurredAt: base.Add(d)}
			if err := tx.History().Append(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		rec, err := tx.History().Latest(ctx, 10, "feed")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, int64(2), rec.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestTiers_ReplaceBumpsVersion(t *testing.T) {
	s := New()
	ctx := context.Background()

	var version int64
	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		v, err := tx.Tiers().Replace(ctx, []model.LevelUpTier{{MinLevel: 1, MaxLevel: -1, FormulaType: "linear", Formula: "level + 1"}})
		version = v
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		v, tiers, err := tx.Tiers().Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
		assert.Len(t, tiers, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestAtomic_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Atomic(ctx, func(context.Context, store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
