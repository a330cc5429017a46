package model

import "time"

// GamePlay 小游戏记录，管理员可事后调整奖励
type GamePlay struct {
	ID           int64      `db:"id" json:"id"`
	PetID        int64      `db:"pet_id" json:"pet_id"`
	OwnerID      int64      `db:"owner_id" json:"owner_id"`
	GameType     string     `db:"game_type" json:"game_type"`
	ExpGained    int64      `db:"exp_gained" json:"exp_gained"`
	PointsGained int64      `db:"points_gained" json:"points_gained"`
	PlayedAt     time.Time  `db:"played_at" json:"played_at"`
	AdjustedAt   *time.Time `db:"adjusted_at" json:"adjusted_at,omitempty"`
}
