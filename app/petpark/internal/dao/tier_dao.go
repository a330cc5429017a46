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

// TierDAO 升级档位数据访问对象
// 档位整体替换，tier_set 单行记录当前版本
type TierDAO struct {
	base
	versions base
}

// NewTierDAO 创建档位 DAO
func NewTierDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *TierDAO {
	return &TierDAO{
		base:     newBase(tx, TableTiers, l, m),
		versions: newBase(tx, TableTierSet, l, m),
	}
}

// Load 读取当前版本与全部档位
func (d *TierDAO) Load(ctx context.Context) (int64, []model.LevelUpTier, error) {
	var version int64
	vq := sq.Select("version").From(TableTierSet).Where(squirrel.Eq{"id": 1})
	if err := d.versions.queryScalar(ctx, "select", vq, &version); err != nil {
		if isNoRows(err) {
			return 0, nil, nil
		}
		return 0, nil, fmt.Errorf("failed to load tier version: %w", err)
	}

	rows := make([]*model.LevelUpTier, 0)
	q := sq.Select("*").From(TableTiers).OrderBy("min_level")
	if err := d.queryAll(ctx, "select", q, &rows); err != nil {
		return 0, nil, fmt.Errorf("failed to load tiers: %w", err)
	}

	tiers := make([]model.LevelUpTier, 0, len(rows))
	for _, t := range rows {
		tiers = append(tiers, *t)
	}
	return version, tiers, nil
}

// Replace 删除旧档位，写入新档位并递增版本
func (d *TierDAO) Replace(ctx context.Context, tiers []model.LevelUpTier) (int64, error) {
	if _, err := d.exec(ctx, "delete", sq.Delete(TableTiers)); err != nil {
		return 0, fmt.Errorf("failed to clear tiers: %w", err)
	}

	if len(tiers) > 0 {
		q := sq.Insert(TableTiers).
			Columns("min_level", "max_level", "formula_type", "formula", "reward_points", "description")
		for _, t := range tiers {
			q = q.Values(t.MinLevel, t.MaxLevel, t.FormulaType, t.Formula, t.RewardPoints, t.Description)
		}
		if _, err := d.exec(ctx, "insert", q); err != nil {
			return 0, fmt.Errorf("failed to insert tiers: %w", err)
		}
	}

	var version int64
	vq := sq.Insert(TableTierSet).
		Columns("id", "version").
		Values(1, 1).
		Suffix("ON CONFLICT (id) DO UPDATE SET version = " + TableTierSet + ".version + 1 RETURNING version")
	if err := d.versions.queryScalar(ctx, "upsert", vq, &version); err != nil {
		return 0, fmt.Errorf("failed to bump tier version: %w", err)
	}
	return version, nil
}
