package dao

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// PlayDAO 小游戏记录数据访问对象
type PlayDAO struct {
	base
}

// NewPlayDAO 创建小游戏记录 DAO
func NewPlayDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *PlayDAO {
	return &PlayDAO{base: newBase(tx, TablePlays, l, m)}
}

// Get 获取记录
func (d *PlayDAO) Get(ctx context.Context, id int64) (*model.GamePlay, error) {
	return d.get(ctx, sq.Select("*").From(TablePlays).Where(squirrel.Eq{"id": id}), id)
}

// GetForUpdate 获取记录并加行锁
func (d *PlayDAO) GetForUpdate(ctx context.Context, id int64) (*model.GamePlay, error) {
	return d.get(ctx, sq.Select("*").From(TablePlays).Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), id)
}

func (d *PlayDAO) get(ctx context.Context, q squirrel.SelectBuilder, id int64) (*model.GamePlay, error) {
	var p model.GamePlay
	if err := d.queryOne(ctx, "select", q, &p); err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("play %d", id)
		}
		return nil, fmt.Errorf("failed to get play: %w", err)
	}
	return &p, nil
}

// Create 创建记录
func (d *PlayDAO) Create(ctx context.Context, p *model.GamePlay) error {
	q := sq.Insert(TablePlays).
		Columns("id", "pet_id", "owner_id", "game_type", "exp_gained", "points_gained", "played_at").
		Values(p.ID, p.PetID, p.OwnerID, p.GameType, p.ExpGained, p.PointsGained, p.PlayedAt)

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to create play: %w", err)
	}
	return nil
}

// Update 更新奖励
func (d *PlayDAO) Update(ctx context.Context, p *model.GamePlay) error {
	q := sq.Update(TablePlays).
		Set("exp_gained", p.ExpGained).
		Set("points_gained", p.PointsGained).
		Set("adjusted_at", p.AdjustedAt).
		Where(squirrel.Eq{"id": p.ID})

	n, err := d.exec(ctx, "update", q)
	if err != nil {
		return fmt.Errorf("failed to update play: %w", err)
	}
	if n == 0 {
		return errs.NotFoundf("play %d", p.ID)
	}
	return nil
}
