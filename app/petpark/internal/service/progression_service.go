package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/bonus"
	"github.com/lk2023060901/petpark/app/petpark/internal/cooldown"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/formula"
	"github.com/lk2023060901/petpark/app/petpark/internal/manager"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/app/petpark/internal/validation"
	"github.com/lk2023060901/petpark/pkg/idgen"
	"github.com/lk2023060901/petpark/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// 流水分页
const (
	DefaultLedgerLimit = 20
	MaxLedgerLimit     = 100
	MaxPetNameLength   = 20
)

// Option ProgressionService 可选项
type Option func(*ProgressionService)

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(s *ProgressionService) { s.now = now }
}

// WithTracer 设置链路追踪
func WithTracer(t trace.Tracer) Option {
	return func(s *ProgressionService) { s.tracer = t }
}

// WithPublisher 设置流水事件发布器
func WithPublisher(p LedgerPublisher) Option {
	return func(s *ProgressionService) { s.publisher = p }
}

// ProgressionService 宠物成长与积分引擎
//
// 所有写操作先获取用户与宠物锁，再在单个存储事务中完成
// 读取、冷却与余额检查、加成计算、状态修改、流水写入和升级循环，任一步失败整体回滚。
type ProgressionService struct {
	logger    logger.Logger
	cfg       *Config
	store     store.Store
	locks     Locker
	tiers     *TierService
	evaluator *formula.Evaluator
	ids       idgen.Generator
	metrics   *metrics.EngineMetrics
	publisher LedgerPublisher
	tracer    trace.Tracer
	now       func() time.Time
	loc       *time.Location
}

// NewProgressionService 创建成长引擎，配置无效时返回错误
func NewProgressionService(
	l logger.Logger,
	cfg *Config,
	st store.Store,
	locks Locker,
	tiers *TierService,
	ids idgen.Generator,
	m *metrics.EngineMetrics,
	opts ...Option,
) (*ProgressionService, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.location()
	if err != nil {
		return nil, err
	}

	s := &ProgressionService{
		logger:    l.Named("service.progression"),
		cfg:       cfg,
		store:     st,
		locks:     locks,
		tiers:     tiers,
		evaluator: formula.NewEvaluator(cfg.FormulaCacheSize),
		ids:       ids,
		metrics:   m,
		tracer:    noop.NewTracerProvider().Tracer(""),
		now:       time.Now,
		loc:       loc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CalculateInteractionBonus 执行一次互动
func (s *ProgressionService) CalculateInteractionBonus(ctx context.Context, petID int64, interactionType string, userID int64) (*InteractionResult, error) {
	ctx, span := s.startSpan(ctx, "interact", attribute.Int64("pet_id", petID), attribute.String("interaction_type", interactionType))
	defer span.End()

	var (
		res *InteractionResult
		t   *txn
	)
	keys := []string{manager.OwnerKey(userID), manager.PetKey(petID)}
	err := s.locks.WithLocks(ctx, keys, func() error {
		return s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			t = newTxn(ctx, tx, s.ids, s.now())

			// 1. 读取宠物、钱包与规则
			pet, err := t.ownedPet(petID, userID)
			if err != nil {
				return err
			}
			wallet, err := tx.Wallets().GetForUpdate(ctx, userID)
			if err != nil {
				return err
			}
			rule, err := tx.Rules().Get(ctx, interactionType)
			if err != nil {
				return err
			}
			if !rule.IsActive {
				return errs.NotFoundf("rule %q is inactive", interactionType)
			}

			// 2. 余额检查
			if !wallet.CanAfford(rule.PointsCost) {
				return errors.Wrapf(errs.ErrInsufficientFunds, "balance %d, cost %d", wallet.PointBalance, rule.PointsCost)
			}

			// 3. 冷却检查
			last, err := tx.History().Latest(ctx, petID, interactionType)
			if err != nil {
				return err
			}
			var lastAt *time.Time
			if last != nil {
				lastAt = &last.OccurredAt
			}
			if d := cooldown.Check(lastAt, rule.CooldownMinutes, t.now); !d.Allowed {
				return &errs.CooldownError{Remaining: d.RemainingMinutes}
			}

			// 4. 加成计算
			gains := bonus.Compute(rule, pet)

			// 5. 扣费、加经验与心情、写历史
			if err := t.post(wallet, -rule.PointsCost, interactionType, petID); err != nil {
				return err
			}
			if err := pet.AddExperience(gains.Exp); err != nil {
				return outOfRange("exp_gain", err)
			}
			pet.AddMood(gains.Happiness)

			recordID, err := s.ids.NextID()
			if err != nil {
				return errors.Wrap(err, "failed to generate record id")
			}
			record := &model.InteractionRecord{ID: recordID, PetID: petID, InteractionType: interactionType, OccurredAt: t.now}
			if err := tx.History().Append(ctx, record); err != nil {
				return err
			}

			// 6. 升级循环
			set, err := s.tiers.Resolve(ctx, tx)
			if err != nil {
				return err
			}
			levels, err := t.levelUp(s.evaluator, set, pet, wallet)
			if err != nil {
				return err
			}

			if err := t.save(pet, wallet); err != nil {
				return err
			}
			res = &InteractionResult{
				Success:       true,
				Message:       fmt.Sprintf("%s applied", rule.DisplayName),
				ExpGain:       gains.Exp,
				HappinessGain: gains.Happiness,
				PointsCost:    rule.PointsCost,
				NewExperience: pet.Experience,
				NewMood:       pet.Mood,
				NewLevel:      pet.Level,
				LevelsGained:  levels,
				PointBalance:  wallet.PointBalance,
			}
			return nil
		})
	})
	if err != nil {
		markSpan(span, err)
		if errs.IsExpected(err) {
			reason := errs.Reason(err)
			s.metrics.RecordInteraction(interactionType, reason)
			return rejected(err), nil
		}
		s.metrics.RecordInteraction(interactionType, errs.Reason(err))
		s.logger.ErrorContext(ctx, "interaction failed",
			"pet_id", petID, "user_id", userID, "interaction_type", interactionType, "error", err)
		return nil, errs.System(err, "interaction failed")
	}

	committed(t, s.publisher, s.metrics)
	s.metrics.RecordInteraction(interactionType, "success")
	if res.LevelsGained > 0 {
		s.logger.InfoContext(ctx, "pet leveled up",
			"pet_id", petID, "level", res.NewLevel, "levels_gained", res.LevelsGained)
	}
	return res, nil
}

func rejected(err error) *InteractionResult {
	res := &InteractionResult{
		Success: false,
		Reason:  errs.Reason(err),
		Message: err.Error(),
	}
	var cd *errs.CooldownError
	if errors.As(err, &cd) {
		res.RemainingCooldown = cd.Remaining
	}
	return res
}

// AvailableInteractions 列出全部启用规则及其当前可用状态
func (s *ProgressionService) AvailableInteractions(ctx context.Context, petID, userID int64) ([]AvailableInteraction, error) {
	var out []AvailableInteraction
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		pet, err := tx.Pets().Get(ctx, petID)
		if err != nil {
			return err
		}
		if pet.OwnerID != userID {
			return errs.NotFoundf("pet %d of owner %d", petID, userID)
		}
		wallet, err := tx.Wallets().Get(ctx, userID)
		if err != nil {
			return err
		}
		rules, err := tx.Rules().List(ctx, true)
		if err != nil {
			return err
		}

		now := s.now()
		out = make([]AvailableInteraction, 0, len(rules))
		for _, rule := range rules {
			last, err := tx.History().Latest(ctx, petID, rule.InteractionType)
			if err != nil {
				return err
			}
			var lastAt *time.Time
			if last != nil {
				lastAt = &last.OccurredAt
			}
			d := cooldown.Check(lastAt, rule.CooldownMinutes, now)
			out = append(out, AvailableInteraction{
				InteractionType:   rule.InteractionType,
				DisplayName:       rule.DisplayName,
				PointsCost:        rule.PointsCost,
				ExpGain:           rule.ExpGain,
				HappinessGain:     rule.HappinessGain,
				CooldownMinutes:   rule.CooldownMinutes,
				IsAvailable:       d.Allowed && wallet.CanAfford(rule.PointsCost),
				RemainingCooldown: d.RemainingMinutes,
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to list available interactions", "pet_id", petID)
	}
	return out, nil
}

// AdjustGameReward 管理员改写小游戏奖励，按差值调整经验与积分
func (s *ProgressionService) AdjustGameReward(ctx context.Context, playID, expGained, pointsGained int64) (*AdjustResult, error) {
	ctx, span := s.startSpan(ctx, "adjust_game_reward", attribute.Int64("play_id", playID))
	defer span.End()

	if err := validation.GameRewards(expGained, pointsGained).Err(); err != nil {
		return nil, s.fail(ctx, err, "invalid game reward")
	}

	// 先确定宠物与用户，加锁后在事务内重新读取
	var play *model.GamePlay
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		play, err = tx.Plays().Get(ctx, playID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to load play", "play_id", playID)
	}

	var (
		res *AdjustResult
		t   *txn
	)
	keys := []string{manager.OwnerKey(play.OwnerID), manager.PetKey(play.PetID)}
	err = s.locks.WithLocks(ctx, keys, func() error {
		return s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			t = newTxn(ctx, tx, s.ids, s.now())

			play, err := tx.Plays().GetForUpdate(ctx, playID)
			if err != nil {
				return err
			}
			pet, err := t.ownedPet(play.PetID, play.OwnerID)
			if err != nil {
				return err
			}
			wallet, err := tx.Wallets().GetForUpdate(ctx, play.OwnerID)
			if err != nil {
				return err
			}

			// 1. 计算差值
			expDelta := expGained - play.ExpGained
			pointsDelta := pointsGained - play.PointsGained

			// 2. 积分与经验
			if err := t.post(wallet, pointsDelta, model.ReasonGameRewardAdjustment, playID); err != nil {
				return err
			}
			if err := pet.AddExperience(expDelta); err != nil {
				return outOfRange("exp_gained", err)
			}

			// 3. 改写记录
			adjustedAt := t.now
			play.ExpGained = expGained
			play.PointsGained = pointsGained
			play.AdjustedAt = &adjustedAt
			if err := tx.Plays().Update(ctx, play); err != nil {
				return err
			}

			// 4. 升级循环
			set, err := s.tiers.Resolve(ctx, tx)
			if err != nil {
				return err
			}
			levels, err := t.levelUp(s.evaluator, set, pet, wallet)
			if err != nil {
				return err
			}

			if err := t.save(pet, wallet); err != nil {
				return err
			}
			res = &AdjustResult{
				PlayID:        playID,
				ExpDelta:      expDelta,
				PointsDelta:   pointsDelta,
				NewLevel:      pet.Level,
				NewExperience: pet.Experience,
				LevelsGained:  levels,
				PointBalance:  wallet.PointBalance,
			}
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to adjust game reward", "play_id", playID)
	}

	committed(t, s.publisher, s.metrics)
	s.logger.InfoContext(ctx, "game reward adjusted",
		"play_id", playID, "exp_delta", res.ExpDelta, "points_delta", res.PointsDelta)
	return res, nil
}

// RecordGamePlay 结算一局小游戏
func (s *ProgressionService) RecordGamePlay(ctx context.Context, petID, userID int64, gameType string, expGained, pointsGained int64) (*GamePlayResult, error) {
	ctx, span := s.startSpan(ctx, "record_game_play", attribute.Int64("pet_id", petID), attribute.String("game_type", gameType))
	defer span.End()

	if err := validation.GameRewards(expGained, pointsGained).Err(); err != nil {
		return nil, s.fail(ctx, err, "invalid game reward")
	}

	var (
		res *GamePlayResult
		t   *txn
	)
	keys := []string{manager.OwnerKey(userID), manager.PetKey(petID)}
	err := s.locks.WithLocks(ctx, keys, func() error {
		return s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			t = newTxn(ctx, tx, s.ids, s.now())

			pet, err := t.ownedPet(petID, userID)
			if err != nil {
				return err
			}
			wallet, err := tx.Wallets().GetForUpdate(ctx, userID)
			if err != nil {
				return err
			}

			id, err := s.ids.NextID()
			if err != nil {
				return errors.Wrap(err, "failed to generate play id")
			}
			play := &model.GamePlay{
				ID:           id,
				PetID:        petID,
				OwnerID:      userID,
				GameType:     gameType,
				ExpGained:    expGained,
				PointsGained: pointsGained,
				PlayedAt:     t.now,
			}
			if err := tx.Plays().Create(ctx, play); err != nil {
				return err
			}
			if err := t.post(wallet, pointsGained, model.ReasonGameReward, id); err != nil {
				return err
			}
			if err := pet.AddExperience(expGained); err != nil {
				return outOfRange("exp_gained", err)
			}

			set, err := s.tiers.Resolve(ctx, tx)
			if err != nil {
				return err
			}
			levels, err := t.levelUp(s.evaluator, set, pet, wallet)
			if err != nil {
				return err
			}
			if err := t.save(pet, wallet); err != nil {
				return err
			}
			res = &GamePlayResult{
				Play:          play,
				NewLevel:      pet.Level,
				NewExperience: pet.Experience,
				LevelsGained:  levels,
				PointBalance:  wallet.PointBalance,
			}
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to record game play", "pet_id", petID, "game_type", gameType)
	}

	committed(t, s.publisher, s.metrics)
	return res, nil
}

// ChangeAppearance 花费积分修改皮肤或背景颜色
func (s *ProgressionService) ChangeAppearance(ctx context.Context, petID, userID int64, kind model.ColorKind, colorOptionID int64) (*AppearanceResult, error) {
	ctx, span := s.startSpan(ctx, "change_appearance", attribute.Int64("pet_id", petID), attribute.String("kind", string(kind)))
	defer span.End()

	if !kind.Valid() {
		return nil, &errs.ValidationError{Violations: []errs.Violation{{
			Field: "kind", Rule: "oneof", Message: "must be one of [skin background]",
		}}}
	}

	var (
		res *AppearanceResult
		t   *txn
	)
	keys := []string{manager.OwnerKey(userID), manager.PetKey(petID)}
	err := s.locks.WithLocks(ctx, keys, func() error {
		return s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			t = newTxn(ctx, tx, s.ids, s.now())

			pet, err := t.ownedPet(petID, userID)
			if err != nil {
				return err
			}
			wallet, err := tx.Wallets().GetForUpdate(ctx, userID)
			if err != nil {
				return err
			}
			opt, err := tx.ColorOptions().Get(ctx, colorOptionID)
			if err != nil {
				return err
			}
			if !opt.IsActive || opt.Kind != kind {
				return errs.NotFoundf("%s color option %d", kind, colorOptionID)
			}

			if d := cooldown.CheckDuration(pet.LastAppearanceChange(kind), s.cfg.AppearanceCooldown, t.now); !d.Allowed {
				return &errs.CooldownError{Remaining: d.RemainingMinutes}
			}
			if err := t.post(wallet, -opt.PointsCost, model.ReasonAppearancePrefix+string(kind), petID); err != nil {
				return err
			}
			pet.SetAppearance(kind, opt.Name, t.now)

			if err := t.save(pet, wallet); err != nil {
				return err
			}
			res = &AppearanceResult{Pet: pet, PointsCost: opt.PointsCost, PointBalance: wallet.PointBalance}
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to change appearance", "pet_id", petID, "kind", kind)
	}

	committed(t, s.publisher, s.metrics)
	return res, nil
}

// SignIn 每日签到，前一天签到过则连续天数加一
func (s *ProgressionService) SignIn(ctx context.Context, userID int64, now time.Time) (*SignInResult, error) {
	ctx, span := s.startSpan(ctx, "sign_in", attribute.Int64("user_id", userID))
	defer span.End()

	var (
		res *SignInResult
		t   *txn
	)
	err := s.locks.WithLocks(ctx, []string{manager.OwnerKey(userID)}, func() error {
		return s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			t = newTxn(ctx, tx, s.ids, now)

			wallet, err := tx.Wallets().GetForUpdate(ctx, userID)
			if err != nil {
				return err
			}
			last, err := tx.SignIns().Latest(ctx, userID)
			if err != nil {
				return err
			}

			today := calendarDay(now, s.loc)
			streak := 1
			if last != nil {
				lastDay := calendarDay(last.SignDate, time.UTC)
				switch {
				case !lastDay.Before(today):
					return errors.Wrapf(errs.ErrAlreadySignedIn, "owner %d on %s", userID, today.Format(time.DateOnly))
				case lastDay.AddDate(0, 0, 1).Equal(today):
					streak = last.Streak + 1
				}
			}

			reward := s.cfg.signInReward(streak)
			if err := t.post(wallet, reward, model.ReasonSignIn, userID); err != nil {
				return err
			}
			record := &model.SignInRecord{OwnerID: userID, SignDate: today, Streak: streak, RewardPoints: reward}
			if err := tx.SignIns().Append(ctx, record); err != nil {
				return err
			}
			if err := t.save(nil, wallet); err != nil {
				return err
			}
			res = &SignInResult{Streak: streak, RewardPoints: reward, PointBalance: wallet.PointBalance}
			return nil
		})
	})
	if err != nil {
		s.metrics.RecordSignIn(errs.Reason(err))
		return nil, s.fail(ctx, err, "failed to sign in", "user_id", userID)
	}

	committed(t, s.publisher, s.metrics)
	s.metrics.RecordSignIn("success")
	return res, nil
}

// calendarDay 返回 loc 时区下的日期，以 UTC 零点表示
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetPetProgress 当前等级、经验与升级所需经验
func (s *ProgressionService) GetPetProgress(ctx context.Context, petID int64) (*PetProgress, error) {
	var res *PetProgress
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		pet, err := tx.Pets().Get(ctx, petID)
		if err != nil {
			return err
		}
		set, err := s.tiers.Resolve(ctx, tx)
		if err != nil {
			return err
		}
		tier, err := set.TierFor(pet.Level)
		if err != nil {
			return err
		}
		required, err := s.evaluator.RequiredExp(set, pet.Level)
		if err != nil {
			return err
		}
		res = &PetProgress{
			PetID:           pet.ID,
			Level:           pet.Level,
			Experience:      pet.Experience,
			RequiredExp:     required,
			Mood:            pet.Mood,
			TierDescription: tier.Description,
			TierSetVersion:  set.Version,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to get pet progress", "pet_id", petID)
	}
	return res, nil
}

// ListLedger 按时间倒序分页查询流水
func (s *ProgressionService) ListLedger(ctx context.Context, ownerID int64, limit, offset int) ([]*model.LedgerEntry, error) {
	if limit <= 0 {
		limit = DefaultLedgerLimit
	}
	limit = min(limit, MaxLedgerLimit)
	offset = max(offset, 0)

	var entries []*model.LedgerEntry
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		entries, err = tx.Ledger().List(ctx, ownerID, limit, offset)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to list ledger", "owner_id", ownerID)
	}
	return entries, nil
}

// CreatePet 创建宠物，用户首次创建时开通钱包并发放初始积分
func (s *ProgressionService) CreatePet(ctx context.Context, userID int64, name string) (*PetCreated, error) {
	ctx, span := s.startSpan(ctx, "create_pet", attribute.Int64("user_id", userID))
	defer span.End()

	if n := utf8.RuneCountInString(name); n == 0 || n > MaxPetNameLength {
		return nil, &errs.ValidationError{Violations: []errs.Violation{{
			Field: "name", Rule: "max", Message: fmt.Sprintf("must be 1 to %d characters", MaxPetNameLength),
		}}}
	}

	var (
		res *PetCreated
		t   *txn
	)
	err := s.locks.WithLocks(ctx, []string{manager.OwnerKey(userID)}, func() error {
		return s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			t = newTxn(ctx, tx, s.ids, s.now())

			// 1. 钱包
			wallet, err := tx.Wallets().GetForUpdate(ctx, userID)
			if errors.Is(err, errs.ErrNotFound) {
				wallet = &model.Wallet{OwnerID: userID, UpdatedAt: t.now}
				if err := tx.Wallets().Create(ctx, wallet); err != nil {
					return err
				}
				if err := t.post(wallet, s.cfg.StarterPoints, model.ReasonStarterGrant, userID); err != nil {
					return err
				}
				if err := t.save(nil, wallet); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			// 2. 宠物
			id, err := s.ids.NextID()
			if err != nil {
				return errors.Wrap(err, "failed to generate pet id")
			}
			pet := model.NewPet(userID, name, t.now)
			pet.ID = id
			if err := tx.Pets().Create(ctx, pet); err != nil {
				return err
			}
			res = &PetCreated{Pet: pet, PointBalance: wallet.PointBalance}
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, err, "failed to create pet", "user_id", userID)
	}

	committed(t, s.publisher, s.metrics)
	s.logger.InfoContext(ctx, "pet created", "pet_id", res.Pet.ID, "user_id", userID)
	return res, nil
}

// fail 预期内的拒绝原样返回，其余记录日志后标记为系统错误
func (s *ProgressionService) fail(ctx context.Context, err error, msg string, keysAndValues ...any) error {
	markSpan(trace.SpanFromContext(ctx), err)
	if errs.IsExpected(err) {
		return err
	}
	s.logger.ErrorContext(ctx, msg, append(keysAndValues, "error", err)...)
	return errs.System(err, msg)
}
