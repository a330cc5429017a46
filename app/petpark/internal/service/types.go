package service

import "github.com/lk2023060901/petpark/app/petpark/internal/model"

// InteractionResult 互动结果，预期内的拒绝以 Success=false 和 Reason 返回
type InteractionResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	Reason            string `json:"reason,omitempty"`
	ExpGain           int64  `json:"exp_gain"`
	HappinessGain     int    `json:"happiness_gain"`
	PointsCost        int64  `json:"points_cost"`
	NewExperience     int64  `json:"new_experience"`
	NewMood           int    `json:"new_mood"`
	NewLevel          int    `json:"new_level"`
	LevelsGained      int    `json:"levels_gained"`
	RemainingCooldown int    `json:"remaining_cooldown"`
	PointBalance      int64  `json:"point_balance"`
}

// AvailableInteraction 单个互动的可用状态
type AvailableInteraction struct {
	InteractionType   string `json:"interaction_type"`
	DisplayName       string `json:"display_name"`
	PointsCost        int64  `json:"points_cost"`
	ExpGain           int64  `json:"exp_gain"`
	HappinessGain     int    `json:"happiness_gain"`
	CooldownMinutes   int    `json:"cooldown_minutes"`
	IsAvailable       bool   `json:"is_available"`
	RemainingCooldown int    `json:"remaining_cooldown"`
}

// AdjustResult 管理员调整小游戏奖励的结果
type AdjustResult struct {
	PlayID        int64 `json:"play_id"`
	ExpDelta      int64 `json:"exp_delta"`
	PointsDelta   int64 `json:"points_delta"`
	NewLevel      int   `json:"new_level"`
	NewExperience int64 `json:"new_experience"`
	LevelsGained  int   `json:"levels_gained"`
	PointBalance  int64 `json:"point_balance"`
}

// GamePlayResult 小游戏结算结果
type GamePlayResult struct {
	Play          *model.GamePlay `json:"play"`
	NewLevel      int             `json:"new_level"`
	NewExperience int64           `json:"new_experience"`
	LevelsGained  int             `json:"levels_gained"`
	PointBalance  int64           `json:"point_balance"`
}

// AppearanceResult 外观修改结果
type AppearanceResult struct {
	Pet          *model.Pet `json:"pet"`
	PointsCost   int64      `json:"points_cost"`
	PointBalance int64      `json:"point_balance"`
}

// SignInResult 签到结果
type SignInResult struct {
	Streak       int   `json:"streak"`
	RewardPoints int64 `json:"reward_points"`
	PointBalance int64 `json:"point_balance"`
}

// PetProgress 宠物成长进度
type PetProgress struct {
	PetID           int64  `json:"pet_id"`
	Level           int    `json:"level"`
	Experience      int64  `json:"experience"`
	RequiredExp     int64  `json:"required_exp"`
	Mood            int    `json:"mood"`
	TierDescription string `json:"tier_description"`
	TierSetVersion  int64  `json:"tier_set_version"`
}

// PetCreated 创建宠物的结果
type PetCreated struct {
	Pet          *model.Pet `json:"pet"`
	PointBalance int64      `json:"point_balance"`
}
