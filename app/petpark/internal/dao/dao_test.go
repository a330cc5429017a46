package dao

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTx 记录执行的 SQL，返回预设结果
type recordingTx struct {
	sql      []string
	args     [][]any
	queryErr error
	affected int64
	scalar   int64
}

func (r *recordingTx) record(sql string, args []any) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
}

func (r *recordingTx) QueryOne(_ context.Context, _ any, sql string, args ...any) error {
	r.record(sql, args)
	return r.queryErr
}

func (r *recordingTx) QueryAll(_ context.Context, _ any, sql string, args ...any) error {
	r.record(sql, args)
	return r.queryErr
}

func (r *recordingTx) QueryScalar(_ context.Context, dest any, sql string, args ...any) error {
	r.record(sql, args)
	if r.queryErr != nil {
		return r.queryErr
	}
	if p, ok := dest.(*int64); ok {
		*p = r.scalar
	}
	return nil
}

func (r *recordingTx) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	r.record(sql, args)
	return r.affected, nil
}

var _ postgres.Tx = (*recordingTx)(nil)

func TestPetDAO_GetForUpdate(t *testing.T) {
	tx := &recordingTx{queryErr: postgres.ErrNoRows}
	d := NewPetDAO(tx, logger.NewNoop(), nil)

	_, err := d.GetForUpdate(context.Background(), 42)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.Len(t, tx.sql, 1)
	assert.Equal(t, "SELECT * FROM pets WHERE id = $1 FOR UPDATE", tx.sql[0])
	assert.Equal(t, []any{int64(42)}, tx.args[0])
}

func TestPetDAO_UpdateVersionCheck(t *testing.T) {
	tx := &recordingTx{affected: 1}
	d := NewPetDAO(tx, logger.NewNoop(), nil)
	pet := &model.Pet{ID: 7, Level: 3, Version: 4, UpdatedAt: time.Now()}

	require.NoError(t, d.Update(context.Background(), pet))
	assert.Equal(t, int64(5), pet.Version)
	assert.Contains(t, tx.sql[0], "version = version + 1")
	assert.True(t, strings.HasSuffix(tx.sql[0], "WHERE id = $13 AND version = $14"), tx.sql[0])

	tx.affected = 0
	err := d.Update(context.Background(), pet)
	assert.True(t, errors.Is(err, errs.ErrConcurrentUpdate))
	assert.Equal(t, int64(5), pet.Version)
}

func TestWalletDAO_CreateIgnoresConflict(t *testing.T) {
	tx := &recordingTx{affected: 0}
	d := NewWalletDAO(tx, logger.NewNoop(), nil)

	require.NoError(t, d.Create(context.Background(), &model.Wallet{OwnerID: 1}))
	assert.True(t, strings.HasSuffix(tx.sql[0], "ON CONFLICT (owner_id) DO NOTHING"))
}

func TestHistoryDAO_Latest(t *testing.T) {
	tx := &recordingTx{queryErr: postgres.ErrNoRows}
	d := NewHistoryDAO(tx, logger.NewNoop(), nil)

	rec, err := d.Latest(context.Background(), 3, "feed")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t,
		"SELECT * FROM interaction_history WHERE interaction_type = $1 AND pet_id = $2 ORDER BY occurred_at DESC LIMIT 1",
		tx.sql[0])
}

func TestLedgerDAO_List(t *testing.T) {
	tx := &recordingTx{}
	d := NewLedgerDAO(tx, logger.NewNoop(), nil)

	_, err := d.List(context.Background(), 9, 20, 40)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM ledger_entries WHERE owner_id = $1 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 40",
		tx.sql[0])
}

func TestTierDAO_Replace(t *testing.T) {
	tx := &recordingTx{scalar: 3}
	d := NewTierDAO(tx, logger.NewNoop(), nil)

	v, err := d.Replace(context.Background(), []model.LevelUpTier{
		{MinLevel: 1, MaxLevel: 10, FormulaType: "linear", Formula: "40 * level + 60"},
		{MinLevel: 11, MaxLevel: -1, FormulaType: "linear", Formula: "50 * level"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	require.Len(t, tx.sql, 3)
	assert.Equal(t, "DELETE FROM level_up_tiers", tx.sql[0])
	assert.Len(t, tx.args[1], 12)
	assert.Contains(t, tx.sql[2], "ON CONFLICT (id) DO UPDATE SET version = tier_set.version + 1 RETURNING version")
}

func TestRuleDAO_DeleteMissing(t *testing.T) {
	tx := &recordingTx{affected: 0}
	d := NewRuleDAO(tx, logger.NewNoop(), nil)

	err := d.Delete(context.Background(), "feed")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}
