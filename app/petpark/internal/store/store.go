// Package store 定义引擎依赖的存储抽象。
//
// 所有写操作都在 Atomic 中执行：fn 返回错误时全部回滚，调用方看不到任何中间状态。
package store

import (
	"context"

	"github.com/lk2023060901/petpark/app/petpark/internal/model"
)

// Store 存储入口
type Store interface {
	// Atomic 在单个事务中执行 fn
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View 在只读事务中执行 fn
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Close 释放资源
	Close() error
}

// Tx 事务内可用的仓储
type Tx interface {
	Pets() PetRepository
	Wallets() WalletRepository
	Ledger() LedgerRepository
	Rules() RuleRepository
	Tiers() TierRepository
	History() HistoryRepository
	Plays() PlayRepository
	ColorOptions() ColorOptionRepository
	SignIns() SignInRepository
}

// PetRepository 宠物
type PetRepository interface {
	// Get 不存在返回 errs.ErrNotFound
	Get(ctx context.Context, id int64) (*model.Pet, error)
	// GetForUpdate 读取并锁定行
	GetForUpdate(ctx context.Context, id int64) (*model.Pet, error)
	Create(ctx context.Context, pet *model.Pet) error
	// Update 按 Version 条件更新并递增版本，不一致返回 errs.ErrConcurrentUpdate
	Update(ctx context.Context, pet *model.Pet) error
}

// WalletRepository 积分账户
type WalletRepository interface {
	Get(ctx context.Context, ownerID int64) (*model.Wallet, error)
	GetForUpdate(ctx context.Context, ownerID int64) (*model.Wallet, error)
	// Create 已存在时不报错
	Create(ctx context.Context, wallet *model.Wallet) error
	Update(ctx context.Context, wallet *model.Wallet) error
}

// LedgerRepository 积分流水，只追加
type LedgerRepository interface {
	Append(ctx context.Context, entry *model.LedgerEntry) error
	// List 按时间倒序
	List(ctx context.Context, ownerID int64, limit, offset int) ([]*model.LedgerEntry, error)
}

// RuleRepository 互动规则
type RuleRepository interface {
	Get(ctx context.Context, interactionType string) (*model.InteractionRule, error)
	List(ctx context.Context, activeOnly bool) ([]*model.InteractionRule, error)
	Create(ctx context.Context, rule *model.InteractionRule) error
	Update(ctx context.Context, rule *model.InteractionRule) error
	Delete(ctx context.Context, interactionType string) error
}

// TierRepository 升级档位，整体替换
type TierRepository interface {
	// Load 返回当前版本与档位，未配置时版本为 0
	Load(ctx context.Context) (int64, []model.LevelUpTier, error)
	// Replace 替换全部档位并返回新版本
	Replace(ctx context.Context, tiers []model.LevelUpTier) (int64, error)
}

// HistoryRepository 互动历史
type HistoryRepository interface {
	Append(ctx context.Context, record *model.InteractionRecord) error
	// Latest 单次查询最近一条，没有记录时返回 nil
	Latest(ctx context.Context, petID int64, interactionType string) (*model.InteractionRecord, error)
}

// PlayRepository 小游戏记录
type PlayRepository interface {
	Get(ctx context.Context, id int64) (*model.GamePlay, error)
	GetForUpdate(ctx context.Context, id int64) (*model.GamePlay, error)
	Create(ctx context.Context, play *model.GamePlay) error
	Update(ctx context.Context, play *model.GamePlay) error
}

// ColorOptionRepository 颜色选项
type ColorOptionRepository interface {
	Get(ctx context.Context, id int64) (*model.ColorOption, error)
	// List kind 为空时返回全部类型
	List(ctx context.Context, kind model.ColorKind, activeOnly bool) ([]*model.ColorOption, error)
	Create(ctx context.Context, opt *model.ColorOption) error
}

// SignInRepository 签到记录
type SignInRepository interface {
	// Latest 没有记录时返回 nil
	Latest(ctx context.Context, ownerID int64) (*model.SignInRecord, error)
	Append(ctx context.Context, record *model.SignInRecord) error
}
