package service

import (
	"context"
	"sync"

	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/formula"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/app/petpark/internal/validation"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// TierService 升级档位管理，按版本缓存已解析的档位
type TierService struct {
	logger    logger.Logger
	store     store.Store
	validator *validation.Service

	mu      sync.RWMutex
	current *formula.TierSet
}

// NewTierService 创建档位服务
func NewTierService(l logger.Logger, st store.Store, v *validation.Service) *TierService {
	return &TierService{
		logger:    l.Named("service.tier"),
		store:     st,
		validator: v,
	}
}

// Bootstrap 存储中尚无档位时写入配置文件中的档位
func (s *TierService) Bootstrap(ctx context.Context, tiers []model.LevelUpTier) error {
	var version int64
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		v, _, err := tx.Tiers().Load(ctx)
		version = v
		return err
	})
	if err != nil {
		return errs.System(err, "failed to load tiers")
	}

	if version > 0 || len(tiers) == 0 {
		if version == 0 {
			s.logger.Warn("no level-up tiers configured, interactions will fail until tiers are set")
		}
		return nil
	}

	set, err := s.ReplaceTiers(ctx, tiers)
	if err != nil {
		return err
	}
	s.logger.Info("level-up tiers initialized from config", "version", set.Version, "count", len(set.Tiers))
	return nil
}

// Resolve 在事务内读取当前档位，版本未变时复用已解析结果
func (s *TierService) Resolve(ctx context.Context, tx store.Tx) (*formula.TierSet, error) {
	version, tiers, err := tx.Tiers().Load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur != nil && cur.Version == version {
		return cur, nil
	}

	set, err := formula.Compile(version, tiers)
	if err != nil {
		return nil, errs.Configuration(err, "stored tiers version %d", version)
	}
	s.remember(set)
	return set, nil
}

// ReplaceTiers 校验并整体替换档位，版本递增
func (s *TierService) ReplaceTiers(ctx context.Context, tiers []model.LevelUpTier) (*formula.TierSet, error) {
	// 1. 校验完整档位集合
	if err := s.validator.ValidateTierSet(tiers).Err(); err != nil {
		return nil, err
	}

	// 2. 持久化
	var version int64
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		v, err := tx.Tiers().Replace(ctx, tiers)
		version = v
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to replace tiers", "error", err)
		return nil, errs.System(err, "failed to replace tiers")
	}

	// 3. 解析并缓存
	set, err := formula.Compile(version, tiers)
	if err != nil {
		return nil, errs.Configuration(err, "tiers version %d", version)
	}
	s.remember(set)
	s.logger.InfoContext(ctx, "level-up tiers replaced", "version", version, "count", len(tiers))
	return set, nil
}

// ListTiers 返回当前版本与档位
func (s *TierService) ListTiers(ctx context.Context) (int64, []model.LevelUpTier, error) {
	var (
		version int64
		tiers   []model.LevelUpTier
	)
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		version, tiers, err = tx.Tiers().Load(ctx)
		return err
	})
	if err != nil {
		return 0, nil, errs.System(err, "failed to list tiers")
	}
	return version, tiers, nil
}

func (s *TierService) remember(set *formula.TierSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || set.Version >= s.current.Version {
		s.current = set
	}
}
