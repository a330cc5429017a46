// Package validation 规则与档位编辑时的校验，纯函数，不访问存储。
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/petpark/app/petpark/internal/formula"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	webvalidator "github.com/lk2023060901/petpark/pkg/web/validator"
)

// 收益/消耗比上限
const (
	MaxHappinessPerPoint = 2
	MaxExpPerPoint       = 5
)

// 单局小游戏奖励上限，与规则的经验、积分范围一致
const (
	MaxGameExp    int64 = 1000
	MaxGamePoints int64 = 10000
)

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,31}$`)

// Rules 自定义校验 tag，同时注册到 gin 的绑定验证器
func Rules() map[string]validator.Func {
	return map[string]validator.Func{
		"identifier": func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		},
	}
}

// Service 校验服务
type Service struct {
	validate *validator.Validate
}

// New 创建校验服务
func New() (*Service, error) {
	v := validator.New()
	v.RegisterTagNameFunc(webvalidator.JSONTagName)
	for tag, fn := range Rules() {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register validation %s: %w", tag, err)
		}
	}
	return &Service{validate: v}, nil
}

// ValidateRule 校验互动规则
func (s *Service) ValidateRule(rule *model.InteractionRule) *Result {
	res := s.structFields(rule)

	if rule.PointsCost > 0 {
		if int64(rule.HappinessGain) > MaxHappinessPerPoint*rule.PointsCost {
			res.Add("happiness_gain", "ratio", "happiness gain per point must be at most %d", MaxHappinessPerPoint)
		}
		if rule.ExpGain > MaxExpPerPoint*rule.PointsCost {
			res.Add("exp_gain", "ratio", "exp gain per point must be at most %d", MaxExpPerPoint)
		}
	}
	return res
}

// ValidateTier 校验单个档位
func (s *Service) ValidateTier(tier *model.LevelUpTier) *Result {
	res := s.structFields(tier)

	if !tier.Unbounded() && tier.MaxLevel < tier.MinLevel {
		res.Add("max_level", "range", "max_level must be -1 (unbounded) or at least min_level")
	}
	if tier.Formula != "" && tier.FormulaType != "" {
		if _, err := formula.Parse(formula.Type(tier.FormulaType), tier.Formula); err != nil {
			res.Add("formula", "formula", "%s", err.Error())
		}
	}
	return res
}

// ValidateTierSet 校验完整档位集合：从 1 级开始、连续、不重叠，且只有最后一档无上限
func (s *Service) ValidateTierSet(tiers []model.LevelUpTier) *Result {
	res := &Result{}
	if len(tiers) == 0 {
		res.Add("tiers", "required", "at least one tier is required")
		return res
	}

	for i := range tiers {
		res.Merge(fmt.Sprintf("tiers[%d]", i), s.ValidateTier(&tiers[i]))
	}

	sorted := make([]model.LevelUpTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinLevel < sorted[j].MinLevel })

	if sorted[0].MinLevel != model.MinLevel {
		res.Add("tiers", "start", "first tier must start at level %d, got %d", model.MinLevel, sorted[0].MinLevel)
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		switch {
		case prev.Unbounded():
			res.Add("tiers", "unbounded", "only the last tier may be unbounded (tier starting at %d)", prev.MinLevel)
		case cur.MinLevel <= prev.MaxLevel:
			res.Add("tiers", "overlap", "tiers starting at %d and %d overlap", prev.MinLevel, cur.MinLevel)
		case cur.MinLevel > prev.MaxLevel+1:
			res.Add("tiers", "gap", "levels %d..%d are not covered", prev.MaxLevel+1, cur.MinLevel-1)
		}
	}
	if last := sorted[len(sorted)-1]; !last.Unbounded() {
		res.Add("tiers", "unbounded", "last tier must be unbounded (max_level -1)")
	}
	return res
}

// GameRewards 校验小游戏奖励范围
func GameRewards(exp, points int64) *Result {
	res := &Result{}
	if exp < 0 || exp > MaxGameExp {
		res.Add("exp_gained", "range", "exp_gained must be between 0 and %d", MaxGameExp)
	}
	if points < 0 || points > MaxGamePoints {
		res.Add("points_gained", "range", "points_gained must be between 0 and %d", MaxGamePoints)
	}
	return res
}

// ValidateColorOption 校验颜色选项
func (s *Service) ValidateColorOption(opt *model.ColorOption) *Result {
	return s.structFields(opt)
}

func (s *Service) structFields(v any) *Result {
	res := &Result{}
	err := s.validate.Struct(v)
	if err == nil {
		return res
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		res.Add("", "invalid", "%s", err.Error())
		return res
	}
	for _, fe := range fieldErrs {
		res.Add(fe.Field(), fe.Tag(), "%s", message(fe))
	}
	return res
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("length must be at least %s", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("length must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "identifier":
		return "must match ^[a-z][a-z0-9_]{1,31}$"
	case "hexcolor":
		return "must be a hex color"
	default:
		return fmt.Sprintf("failed '%s'", fe.Tag())
	}
}
