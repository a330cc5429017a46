package dao

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// WalletDAO 积分账户数据访问对象
type WalletDAO struct {
	base
}

// NewWalletDAO 创建积分账户 DAO
func NewWalletDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *WalletDAO {
	return &WalletDAO{base: newBase(tx, TableWallets, l, m)}
}

// Get 获取用户积分账户
func (d *WalletDAO) Get(ctx context.Context, ownerID int64) (*model.Wallet, error) {
	return d.get(ctx, ownerID, false)
}

// GetForUpdate 获取用户积分账户并加行锁
func (d *WalletDAO) GetForUpdate(ctx context.Context, ownerID int64) (*model.Wallet, error) {
	return d.get(ctx, ownerID, true)
}

func (d *WalletDAO) get(ctx context.Context, ownerID int64, forUpdate bool) (*model.Wallet, error) {
	q := sq.Select("*").From(TableWallets).Where(squirrel.Eq{"owner_id": ownerID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	var w model.Wallet
	if err := d.queryOne(ctx, "select", q, &w); err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("wallet of owner %d", ownerID)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &w, nil
}

// Create 开户，已存在时忽略
func (d *WalletDAO) Create(ctx context.Context, w *model.Wallet) error {
	w.Version = 1
	q := sq.Insert(TableWallets).
		Columns("owner_id", "point_balance", "version", "updated_at").
		Values(w.OwnerID, w.PointBalance, w.Version, w.UpdatedAt).
		Suffix("ON CONFLICT (owner_id) DO NOTHING")

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// Update 按版本号条件更新余额
func (d *WalletDAO) Update(ctx context.Context, w *model.Wallet) error {
	q := sq.Update(TableWallets).
		Set("point_balance", w.PointBalance).
		Set("updated_at", w.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"owner_id": w.OwnerID, "version": w.Version})

	n, err := d.exec(ctx, "update", q)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	if n == 0 {
		return errors.Wrapf(errs.ErrConcurrentUpdate, "wallet %d version %d", w.OwnerID, w.Version)
	}
	w.Version++
	return nil
}
