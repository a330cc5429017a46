// Package bonus 按宠物等级与心情计算互动收益。
package bonus

import "github.com/lk2023060901/petpark/app/petpark/internal/model"

// 收益上限，与规则配置无关
const (
	MaxExpGain       int64 = 1000
	MaxHappinessGain       = 50
)

// Gains 最终收益
type Gains struct {
	Exp       int64
	Happiness int
}

// Compute 计算互动收益
//
//	levelMultiplier = 1 + level*0.1
//	moodMultiplier  = 1 + mood/100*0.5
//	exp       = min(floor(rule.exp * levelMultiplier * moodMultiplier), 1000)
//	happiness = min(floor(rule.happiness * levelMultiplier), 50)
//
// 心情倍率只作用于经验，心情为负时倍率低于 1，结果最低为 0。
// 倍率按十分位与两百分位整数运算，避免浮点误差影响取整。
func Compute(rule *model.InteractionRule, pet *model.Pet) Gains {
	level := int64(max(pet.Level, 0))
	mood := int64(pet.Mood)

	levelNum := 10 + level // levelMultiplier * 10
	moodNum := 200 + mood  // moodMultiplier * 200

	exp := rule.ExpGain * levelNum * moodNum / 2000
	happiness := int64(rule.HappinessGain) * levelNum / 10

	return Gains{
		Exp:       clamp(exp, MaxExpGain),
		Happiness: int(clamp(happiness, MaxHappinessGain)),
	}
}

func clamp(v, ceiling int64) int64 {
	return min(max(v, 0), ceiling)
}
