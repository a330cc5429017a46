// Package pgstore PostgreSQL 实现的 store.Store。
//
// 宠物与钱包在事务内以 FOR UPDATE 读取，并按 version 条件写回。
package pgstore

import (
	"context"
	"fmt"

	"github.com/lk2023060901/petpark/app/petpark/internal/dao"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// Store PostgreSQL 存储
type Store struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.EngineMetrics
}

var _ store.Store = (*Store)(nil)

// New 创建存储
func New(db *postgres.Client, l logger.Logger, m *metrics.EngineMetrics) *Store {
	return &Store{
		db:      db,
		logger:  l.Named("store.postgres"),
		metrics: m,
	}
}

// Migrate 执行建表
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.Migrate(ctx, Schema...); err != nil {
		s.logger.Error("failed to migrate schema", "error", err)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	s.logger.Info("schema migrated", "statements", len(Schema))
	return nil
}

// Atomic 在读已提交事务中执行 fn
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.db.WithTx(ctx, func(t postgres.Tx) error {
		return fn(ctx, s.newTx(t))
	})
}

// View 在只读事务中执行 fn
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	opts := postgres.TxOptions{IsoLevel: postgres.TxIsolationLevelRepeatableRead, ReadOnly: true}
	return s.db.WithTxOptions(ctx, opts, func(t postgres.Tx) error {
		return fn(ctx, s.newTx(t))
	})
}

// Close 关闭连接池
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newTx(t postgres.Tx) *tx {
	return &tx{t: t, logger: s.logger, metrics: s.metrics}
}

type tx struct {
	t       postgres.Tx
	logger  logger.Logger
	metrics *metrics.EngineMetrics
}

func (t *tx) Pets() store.PetRepository {
	return dao.NewPetDAO(t.t, t.logger, t.metrics)
}

func (t *tx) Wallets() store.WalletRepository {
	return dao.NewWalletDAO(t.t, t.logger, t.metrics)
}

func (t *tx) Ledger() store.LedgerRepository {
	return dao.NewLedgerDAO(t.t, t.logger, t.metrics)
}

func (t *tx) Rules() store.RuleRepository {
	return dao.NewRuleDAO(t.t, t.logger, t.metrics)
}

func (t *tx) Tiers() store.TierRepository {
	return dao.NewTierDAO(t.t, t.logger, t.metrics)
}

func (t *tx) History() store.HistoryRepository {
	return dao.NewHistoryDAO(t.t, t.logger, t.metrics)
}

func (t *tx) Plays() store.PlayRepository {
	return dao.NewPlayDAO(t.t, t.logger, t.metrics)
}

func (t *tx) ColorOptions() store.ColorOptionRepository {
	return dao.NewColorOptionDAO(t.t, t.logger, t.metrics)
}

func (t *tx) SignIns() store.SignInRepository {
	return dao.NewSignInDAO(t.t, t.logger, t.metrics)
}
