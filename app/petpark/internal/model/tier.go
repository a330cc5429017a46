package model

// UnboundedLevel 档位无上限
const UnboundedLevel = -1

// 公式类型
const (
	FormulaLinear      = "linear"
	FormulaQuadratic   = "quadratic"
	FormulaExponential = "exponential"
)

// LevelUpTier 升级档位配置，对应 level_up_tiers 表
type LevelUpTier struct {
	MinLevel     int    `db:"min_level" json:"min_level" mapstructure:"min_level" validate:"gte=1"`
	MaxLevel     int    `db:"max_level" json:"max_level" mapstructure:"max_level"`
	FormulaType  string `db:"formula_type" json:"type" mapstructure:"type" validate:"required,oneof=linear quadratic exponential"`
	Formula      string `db:"formula" json:"formula" mapstructure:"formula" validate:"required,max=128"`
	RewardPoints int64  `db:"reward_points" json:"reward_points" mapstructure:"reward_points" validate:"gte=0,lte=100000"`
	Description  string `db:"description" json:"description" mapstructure:"description" validate:"max=200"`
}

// Unbounded 是否无上限
func (t *LevelUpTier) Unbounded() bool {
	return t.MaxLevel == UnboundedLevel
}
