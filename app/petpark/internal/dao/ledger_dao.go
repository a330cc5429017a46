package dao

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// LedgerDAO 积分流水数据访问对象，只提供追加与查询
type LedgerDAO struct {
	base
}

// NewLedgerDAO 创建流水 DAO
func NewLedgerDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *LedgerDAO {
	return &LedgerDAO{base: newBase(tx, TableLedger, l, m)}
}

// Append 追加流水
func (d *LedgerDAO) Append(ctx context.Context, e *model.LedgerEntry) error {
	q := sq.Insert(TableLedger).
		Columns("id", "owner_id", "delta", "balance_after", "reason", "ref_id", "created_at").
		Values(e.ID, e.OwnerID, e.Delta, e.BalanceAfter, e.Reason, e.RefID, e.CreatedAt)

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// List 分页查询用户流水，按时间倒序
func (d *LedgerDAO) List(ctx context.Context, ownerID int64, limit, offset int) ([]*model.LedgerEntry, error) {
	q := sq.Select("*").
		From(TableLedger).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	entries := make([]*model.LedgerEntry, 0)
	if err := d.queryAll(ctx, "select", q, &entries); err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	return entries, nil
}
