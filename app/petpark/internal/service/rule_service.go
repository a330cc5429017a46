package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/app/petpark/internal/validation"
	"github.com/lk2023060901/petpark/pkg/database/redis"
	"github.com/lk2023060901/petpark/pkg/logger"
)

const (
	activeRulesKey     = "rules:active"
	defaultRuleListTTL = 5 * time.Minute
)

// Cache 规则列表缓存，redis.Client 实现了该接口
type Cache interface {
	Key(suffix string) string
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
}

// RuleService 互动规则管理
type RuleService struct {
	logger    logger.Logger
	store     store.Store
	validator *validation.Service
	cache     Cache
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewRuleService cache 为 nil 时不缓存
func NewRuleService(l logger.Logger, st store.Store, v *validation.Service, cache Cache) *RuleService {
	return &RuleService{
		logger:    l.Named("service.rule"),
		store:     st,
		validator: v,
		cache:     cache,
		cacheTTL:  defaultRuleListTTL,
		now:       time.Now,
	}
}

// GetRule 按互动类型查询
func (s *RuleService) GetRule(ctx context.Context, interactionType string) (*model.InteractionRule, error) {
	var rule *model.InteractionRule
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		rule, err = tx.Rules().Get(ctx, interactionType)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to get rule", "interaction_type", interactionType)
	}
	return rule, nil
}

// ListRules activeOnly 时优先读缓存
func (s *RuleService) ListRules(ctx context.Context, activeOnly bool) ([]*model.InteractionRule, error) {
	if activeOnly && s.cache != nil {
		var cached []*model.InteractionRule
		err := s.cache.GetJSON(ctx, s.cache.Key(activeRulesKey), &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.ErrNil) {
			s.logger.WarnContext(ctx, "failed to read rule cache", "error", err)
		}
	}

	var rules []*model.InteractionRule
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		rules, err = tx.Rules().List(ctx, activeOnly)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to list rules")
	}

	if activeOnly && s.cache != nil {
		if err := s.cache.SetJSON(ctx, s.cache.Key(activeRulesKey), rules, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to write rule cache", "error", err)
		}
	}
	return rules, nil
}

// CreateRule 校验后创建，互动类型重复时返回校验错误
func (s *RuleService) CreateRule(ctx context.Context, rule *model.InteractionRule) (*model.InteractionRule, error) {
	// 1. 字段与比例校验
	res := s.validator.ValidateRule(rule)

	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		// 2. 唯一性
		_, err := tx.Rules().Get(ctx, rule.InteractionType)
		switch {
		case err == nil:
			res.Add("interaction_type", "unique", "interaction type %q already exists", rule.InteractionType)
		case !errors.Is(err, errs.ErrNotFound):
			return err
		}
		if err := res.Err(); err != nil {
			return err
		}

		// 3. 写入
		now := s.now()
		rule.CreatedAt = now
		rule.UpdatedAt = now
		return tx.Rules().Create(ctx, rule)
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to create rule", "interaction_type", rule.InteractionType)
	}

	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "rule created", "interaction_type", rule.InteractionType)
	return rule, nil
}

// UpdateRule 整体更新规则，互动类型不可修改
func (s *RuleService) UpdateRule(ctx context.Context, interactionType string, rule *model.InteractionRule) (*model.InteractionRule, error) {
	rule.InteractionType = interactionType
	if err := s.validator.ValidateRule(rule).Err(); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		cur, err := tx.Rules().Get(ctx, interactionType)
		if err != nil {
			return err
		}
		rule.CreatedAt = cur.CreatedAt
		rule.UpdatedAt = s.now()
		return tx.Rules().Update(ctx, rule)
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to update rule", "interaction_type", interactionType)
	}

	s.invalidate(ctx)
	return rule, nil
}

// DeleteRule 删除规则，历史记录保留
func (s *RuleService) DeleteRule(ctx context.Context, interactionType string) error {
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Rules().Delete(ctx, interactionType)
	})
	if err != nil {
		return s.fail(ctx, err, "failed to delete rule", "interaction_type", interactionType)
	}

	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "rule deleted", "interaction_type", interactionType)
	return nil
}

// ToggleRuleStatus 切换启用状态
func (s *RuleService) ToggleRuleStatus(ctx context.Context, interactionType string) (*model.InteractionRule, error) {
	var rule *model.InteractionRule
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		rule, err = tx.Rules().Get(ctx, interactionType)
		if err != nil {
			return err
		}
		rule.IsActive = !rule.IsActive
		rule.UpdatedAt = s.now()
		return tx.Rules().Update(ctx, rule)
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to toggle rule", "interaction_type", interactionType)
	}

	s.invalidate(ctx)
	return rule, nil
}

func (s *RuleService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Del(ctx, s.cache.Key(activeRulesKey)); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate rule cache", "error", err)
	}
}

func (s *RuleService) fail(ctx context.Context, err error, msg string, keysAndValues ...any) error {
	if errs.IsExpected(err) {
		return err
	}
	s.logger.ErrorContext(ctx, msg, append(keysAndValues, "error", err)...)
	return errs.System(err, msg)
}
