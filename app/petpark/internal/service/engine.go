package service

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/formula"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/pkg/idgen"
)

// Locker 按键串行化请求，manager.LockManager 实现了该接口
type Locker interface {
	WithLocks(ctx context.Context, keys []string, fn func() error) error
}

// LedgerPublisher 事务提交后投递流水事件
type LedgerPublisher interface {
	PublishLedger(entries []*model.LedgerEntry)
}

// txn 单个引擎事务内的上下文，记录本次写入的流水
type txn struct {
	ctx     context.Context
	tx      store.Tx
	now     time.Time
	ids     idgen.Generator
	entries []*model.LedgerEntry
	levels  int
}

func newTxn(ctx context.Context, tx store.Tx, ids idgen.Generator, now time.Time) *txn {
	return &txn{ctx: ctx, tx: tx, ids: ids, now: now}
}

// post 变动余额并追加流水，delta 为 0 时不写流水
func (t *txn) post(w *model.Wallet, delta int64, reason string, refID int64) error {
	if delta == 0 {
		return nil
	}
	if delta > 0 && w.PointBalance > math.MaxInt64-delta {
		return outOfRange("points", errors.Newf("balance %d cannot take credit %d", w.PointBalance, delta))
	}
	if w.PointBalance+delta < 0 {
		return errors.Wrapf(errs.ErrInsufficientFunds, "balance %d, required %d", w.PointBalance, -delta)
	}
	id, err := t.ids.NextID()
	if err != nil {
		return errors.Wrap(err, "failed to generate ledger id")
	}

	w.PointBalance += delta
	w.UpdatedAt = t.now
	entry := &model.LedgerEntry{
		ID:           id,
		OwnerID:      w.OwnerID,
		Delta:        delta,
		BalanceAfter: w.PointBalance,
		Reason:       reason,
		RefID:        refID,
		CreatedAt:    t.now,
	}
	if err := t.tx.Ledger().Append(t.ctx, entry); err != nil {
		return err
	}
	t.entries = append(t.entries, entry)
	return nil
}

// outOfRange 数值累加越界，按校验失败拒绝
func outOfRange(field string, cause error) error {
	return &errs.ValidationError{Violations: []errs.Violation{{
		Field: field, Rule: "overflow", Message: cause.Error(),
	}}}
}

// levelUp 经验足够时循环升级，每升一级按所在档位发放奖励
func (t *txn) levelUp(eval *formula.Evaluator, set *formula.TierSet, pet *model.Pet, w *model.Wallet) (int, error) {
	gained := 0
	for {
		required, err := eval.RequiredExp(set, pet.Level)
		if err != nil {
			return gained, err
		}
		if pet.Experience < required {
			break
		}
		tier, err := set.TierFor(pet.Level)
		if err != nil {
			return gained, err
		}

		pet.Experience -= required
		pet.Level++
		gained++
		if err := t.post(w, tier.RewardPoints, model.ReasonLevelUp, pet.ID); err != nil {
			return gained, err
		}
	}
	t.levels += gained
	return gained, nil
}

// save 写回宠物与钱包
func (t *txn) save(pet *model.Pet, w *model.Wallet) error {
	if pet != nil {
		pet.UpdatedAt = t.now
		if err := t.tx.Pets().Update(t.ctx, pet); err != nil {
			return err
		}
	}
	if w != nil {
		if err := t.tx.Wallets().Update(t.ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// ownedPet 读取并锁定宠物，非 ownerID 所有时视为不存在
func (t *txn) ownedPet(petID, ownerID int64) (*model.Pet, error) {
	pet, err := t.tx.Pets().GetForUpdate(t.ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != ownerID {
		return nil, errs.NotFoundf("pet %d of owner %d", petID, ownerID)
	}
	return pet, nil
}

// committed 事务提交后发布流水并记录指标
func committed(t *txn, pub LedgerPublisher, m *metrics.EngineMetrics) {
	if t == nil {
		return
	}
	for _, e := range t.entries {
		m.RecordPoints(e.Delta, e.Reason)
	}
	m.RecordLevelUps(t.levels)
	if pub != nil && len(t.entries) > 0 {
		pub.PublishLedger(t.entries)
	}
}
