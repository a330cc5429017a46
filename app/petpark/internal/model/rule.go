package model

import "time"

// InteractionRule 互动规则，interaction_type 唯一
type InteractionRule struct {
	InteractionType string    `db:"interaction_type" json:"interaction_type" validate:"required,identifier"`
	DisplayName     string    `db:"display_name" json:"display_name" validate:"required,min=1,max=50"`
	PointsCost      int64     `db:"points_cost" json:"points_cost" validate:"gte=0,lte=10000"`
	HappinessGain   int       `db:"happiness_gain" json:"happiness_gain" validate:"gte=0,lte=100"`
	ExpGain         int64     `db:"exp_gain" json:"exp_gain" validate:"gte=0,lte=1000"`
	CooldownMinutes int       `db:"cooldown_minutes" json:"cooldown_minutes" validate:"gte=0,lte=1440"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// InteractionRecord 互动历史，冷却判断读取最近一条
type InteractionRecord struct {
	ID              int64     `db:"id" json:"id"`
	PetID           int64     `db:"pet_id" json:"pet_id"`
	InteractionType string    `db:"interaction_type" json:"interaction_type"`
	OccurredAt      time.Time `db:"occurred_at" json:"occurred_at"`
}
