package model

import "time"

// ColorKind 外观类型
type ColorKind string

const (
	ColorKindSkin       ColorKind = "skin"
	ColorKindBackground ColorKind = "background"
)

// Valid 是否为已知类型
func (k ColorKind) Valid() bool {
	return k == ColorKindSkin || k == ColorKindBackground
}

// ColorOption 可购买的颜色选项
type ColorOption struct {
	ID         int64     `db:"id" json:"id"`
	Kind       ColorKind `db:"kind" json:"kind" validate:"required,oneof=skin background"`
	Name       string    `db:"name" json:"name" validate:"required,max=30"`
	Hex        string    `db:"hex" json:"hex" validate:"required,hexcolor"`
	PointsCost int64     `db:"points_cost" json:"points_cost" validate:"gte=0,lte=10000"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SignInRecord 每日签到记录
type SignInRecord struct {
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	SignDate     time.Time `db:"sign_date" json:"sign_date"`
	Streak       int       `db:"streak" json:"streak"`
	RewardPoints int64     `db:"reward_points" json:"reward_points"`
}
