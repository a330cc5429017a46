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

// ColorOptionDAO 颜色选项数据访问对象
type ColorOptionDAO struct {
	base
}

// NewColorOptionDAO 创建颜色选项 DAO
func NewColorOptionDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *ColorOptionDAO {
	return &ColorOptionDAO{base: newBase(tx, TableColorOptions, l, m)}
}

// Get 根据 ID 获取颜色选项
func (d *ColorOptionDAO) Get(ctx context.Context, id int64) (*model.ColorOption, error) {
	q := sq.Select("*").From(TableColorOptions).Where(squirrel.Eq{"id": id})

	var o model.ColorOption
	if err := d.queryOne(ctx, "select", q, &o); err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("color option %d", id)
		}
		return nil, fmt.Errorf("failed to get color option: %w", err)
	}
	return &o, nil
}

// List 获取颜色选项列表
func (d *ColorOptionDAO) List(ctx context.Context, kind model.ColorKind, activeOnly bool) ([]*model.ColorOption, error) {
	q := sq.Select("*").From(TableColorOptions).OrderBy("id")
	if kind != "" {
		q = q.Where(squirrel.Eq{"kind": string(kind)})
	}
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	opts := make([]*model.ColorOption, 0)
	if err := d.queryAll(ctx, "select", q, &opts); err != nil {
		return nil, fmt.Errorf("failed to list color options: %w", err)
	}
	return opts, nil
}

// Create 创建颜色选项
func (d *ColorOptionDAO) Create(ctx context.Context, o *model.ColorOption) error {
	q := sq.Insert(TableColorOptions).
		Columns("id", "kind", "name", "hex", "points_cost", "is_active", "created_at").
		Values(o.ID, string(o.Kind), o.Name, o.Hex, o.PointsCost, o.IsActive, o.CreatedAt)

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to create color option: %w", err)
	}
	return nil
}

// SignInDAO 签到记录数据访问对象
type SignInDAO struct {
	base
}

// NewSignInDAO 创建签到 DAO
func NewSignInDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *SignInDAO {
	return &SignInDAO{base: newBase(tx, TableSignIns, l, m)}
}

// Latest 获取用户最近一次签到，没有记录返回 nil
func (d *SignInDAO) Latest(ctx context.Context, ownerID int64) (*model.SignInRecord, error) {
	q := sq.Select("*").
		From(TableSignIns).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("sign_date DESC").
		Limit(1)

	var r model.SignInRecord
	if err := d.queryOne(ctx, "select", q, &r); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest sign-in: %w", err)
	}
	return &r, nil
}

// Append 写入签到记录，(owner_id, sign_date) 唯一
func (d *SignInDAO) Append(ctx context.Context, r *model.SignInRecord) error {
	q := sq.Insert(TableSignIns).
		Columns("owner_id", "sign_date", "streak", "reward_points").
		Values(r.OwnerID, r.SignDate, r.Streak, r.RewardPoints)

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to append sign-in: %w", err)
	}
	return nil
}
