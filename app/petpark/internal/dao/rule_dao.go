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

// RuleDAO 互动规则数据访问对象
type RuleDAO struct {
	base
}

// NewRuleDAO 创建规则 DAO
func NewRuleDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *RuleDAO {
	return &RuleDAO{base: newBase(tx, TableRules, l, m)}
}

// Get 根据互动类型获取规则
func (d *RuleDAO) Get(ctx context.Context, interactionType string) (*model.InteractionRule, error) {
	q := sq.Select("*").From(TableRules).Where(squirrel.Eq{"interaction_type": interactionType})

	var rule model.InteractionRule
	if err := d.queryOne(ctx, "select", q, &rule); err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("rule %q", interactionType)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

// List 获取规则列表
func (d *RuleDAO) List(ctx context.Context, activeOnly bool) ([]*model.InteractionRule, error) {
	q := sq.Select("*").From(TableRules).OrderBy("interaction_type")
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	rules := make([]*model.InteractionRule, 0)
	if err := d.queryAll(ctx, "select", q, &rules); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// Create 创建规则
func (d *RuleDAO) Create(ctx context.Context, r *model.InteractionRule) error {
	q := sq.Insert(TableRules).
		Columns("interaction_type", "display_name", "points_cost", "happiness_gain",
			"exp_gain", "cooldown_minutes", "is_active", "created_at", "updated_at").
		Values(r.InteractionType, r.DisplayName, r.PointsCost, r.HappinessGain,
			r.ExpGain, r.CooldownMinutes, r.IsActive, r.CreatedAt, r.UpdatedAt)

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// Update 更新规则
func (d *RuleDAO) Update(ctx context.Context, r *model.InteractionRule) error {
	q := sq.Update(TableRules).
		SetMap(map[string]any{
			"display_name":     r.DisplayName,
			"points_cost":      r.PointsCost,
			"happiness_gain":   r.HappinessGain,
			"exp_gain":         r.ExpGain,
			"cooldown_minutes": r.CooldownMinutes,
			"is_active":        r.IsActive,
			"updated_at":       r.UpdatedAt,
		}).
		Where(squirrel.Eq{"interaction_type": r.InteractionType})

	n, err := d.exec(ctx, "update", q)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if n == 0 {
		return errs.NotFoundf("rule %q", r.InteractionType)
	}
	return nil
}

// Delete 删除规则
func (d *RuleDAO) Delete(ctx context.Context, interactionType string) error {
	q := sq.Delete(TableRules).Where(squirrel.Eq{"interaction_type": interactionType})

	n, err := d.exec(ctx, "delete", q)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n == 0 {
		return errs.NotFoundf("rule %q", interactionType)
	}
	return nil
}
