package formula

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
)

// ErrNoMatchingTier 没有档位覆盖该等级
var ErrNoMatchingTier = errors.Mark(errors.New("no tier covers level"), errs.ErrConfiguration)

// Tier 已解析的档位
type Tier struct {
	MinLevel     int
	MaxLevel     int
	Formula      Formula
	RewardPoints int64
	Description  string
}

// Covers 等级是否落在档位内
func (t *Tier) Covers(level int) bool {
	if level < t.MinLevel {
		return false
	}
	return t.MaxLevel == model.UnboundedLevel || level <= t.MaxLevel
}

// TierSet 档位集合，Version 每次替换递增，用作缓存键
type TierSet struct {
	Version int64
	Tiers   []Tier
}

// Compile 解析档位配置，任一公式非法即返回配置错误
func Compile(version int64, tiers []model.LevelUpTier) (*TierSet, error) {
	set := &TierSet{Version: version, Tiers: make([]Tier, 0, len(tiers))}
	for i := range tiers {
		t := &tiers[i]
		f, err := Parse(Type(t.FormulaType), t.Formula)
		if err != nil {
			return nil, errors.Wrapf(err, "tier %d (levels %d..%d)", i, t.MinLevel, t.MaxLevel)
		}
		set.Tiers = append(set.Tiers, Tier{
			MinLevel:     t.MinLevel,
			MaxLevel:     t.MaxLevel,
			Formula:      f,
			RewardPoints: t.RewardPoints,
			Description:  t.Description,
		})
	}
	sort.SliceStable(set.Tiers, func(i, j int) bool {
		return set.Tiers[i].MinLevel < set.Tiers[j].MinLevel
	})
	return set, nil
}

// TierFor 返回覆盖 level 的档位
func (s *TierSet) TierFor(level int) (*Tier, error) {
	if s != nil {
		for i := range s.Tiers {
			if s.Tiers[i].Covers(level) {
				return &s.Tiers[i], nil
			}
		}
	}
	return nil, errors.Wrapf(ErrNoMatchingTier, "level %d", level)
}

// Evaluate 计算 level 对应的曲线值
func Evaluate(set *TierSet, level int) (float64, error) {
	t, err := set.TierFor(level)
	if err != nil {
		return 0, err
	}
	return t.Formula.Eval(level), nil
}

// RequiredExp 从 level 升到 level+1 所需经验，四舍五入取整
func RequiredExp(set *TierSet, level int) (int64, error) {
	v, err := Evaluate(set, level)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt64/2 {
		return 0, errs.Configurationf("required experience at level %d is out of range", level)
	}
	req := int64(math.Round(v))
	if req <= 0 {
		return 0, errs.Configurationf("required experience at level %d is %d, must be positive", level, req)
	}
	return req, nil
}
