package model

import "time"

// Wallet 积分账户，每个用户一个
type Wallet struct {
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	PointBalance int64     `db:"point_balance" json:"point_balance"`
	Version      int64     `db:"version" json:"version"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CanAfford 余额是否足够
func (w *Wallet) CanAfford(cost int64) bool {
	return w.PointBalance >= cost
}

// LedgerReason 流水原因
const (
	ReasonLevelUp              = "level_up"
	ReasonGameRewardAdjustment = "game_reward_adjustment"
	ReasonGameReward           = "game_reward"
	ReasonSignIn               = "sign_in"
	ReasonStarterGrant         = "starter_grant"
	ReasonAppearancePrefix     = "appearance_"
)

// LedgerEntry 积分流水，只追加不修改
type LedgerEntry struct {
	ID           int64     `db:"id" json:"id"`
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	Delta        int64     `db:"delta" json:"delta"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	Reason       string    `db:"reason" json:"reason"`
	RefID        int64     `db:"ref_id" json:"ref_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
