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

// HistoryDAO 互动历史数据访问对象
type HistoryDAO struct {
	base
}

// NewHistoryDAO 创建互动历史 DAO
func NewHistoryDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *HistoryDAO {
	return &HistoryDAO{base: newBase(tx, TableHistory, l, m)}
}

// Append 追加互动记录
func (d *HistoryDAO) Append(ctx context.Context, r *model.InteractionRecord) error {
	q := sq.Insert(TableHistory).
		Columns("id", "pet_id", "interaction_type", "occurred_at").
		Values(r.ID, r.PetID, r.InteractionType, r.OccurredAt)

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to append interaction record: %w", err)
	}
	return nil
}

// Latest 获取宠物某互动类型的最近一条记录，没有记录返回 nil
func (d *HistoryDAO) Latest(ctx context.Context, petID int64, interactionType string) (*model.InteractionRecord, error) {
	q := sq.Select("*").
		From(TableHistory).
		Where(squirrel.Eq{"pet_id": petID, "interaction_type": interactionType}).
		OrderBy("occurred_at DESC").
		Limit(1)

	var r model.InteractionRecord
	if err := d.queryOne(ctx, "select", q, &r); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest interaction: %w", err)
	}
	return &r, nil
}
