// Package dao PostgreSQL 数据访问对象，基于 squirrel 构建语句，在调用方给定的事务内执行。
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// 表名
const (
	TablePets         = "pets"
	TableWallets      = "wallets"
	TableLedger       = "ledger_entries"
	TableRules        = "interaction_rules"
	TableTiers        = "level_up_tiers"
	TableTierSet      = "tier_set"
	TableHistory      = "interaction_history"
	TablePlays        = "game_plays"
	TableColorOptions = "color_options"
	TableSignIns      = "sign_ins"
)

var sq = postgres.Builder

// base 公共执行逻辑：构建语句、计时、记录指标
type base struct {
	tx      postgres.Tx
	table   string
	logger  logger.Logger
	metrics *metrics.EngineMetrics
}

func newBase(tx postgres.Tx, table string, l logger.Logger, m *metrics.EngineMetrics) base {
	return base{tx: tx, table: table, logger: l.Named("dao." + table), metrics: m}
}

func (b base) queryOne(ctx context.Context, op string, q squirrel.Sqlizer, dest any) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	start := time.Now()
	err = b.tx.QueryOne(ctx, dest, query, args...)
	b.metrics.RecordDBQuery(b.table, op, err == nil || errors.Is(err, postgres.ErrNoRows), time.Since(start).Seconds())
	if err != nil && !errors.Is(err, postgres.ErrNoRows) {
		b.logger.ErrorContext(ctx, "query failed", "operation", op, "error", err)
	}
	return err
}

func (b base) queryAll(ctx context.Context, op string, q squirrel.Sqlizer, dest any) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	start := time.Now()
	err = b.tx.QueryAll(ctx, dest, query, args...)
	b.metrics.RecordDBQuery(b.table, op, err == nil, time.Since(start).Seconds())
	if err != nil {
		b.logger.ErrorContext(ctx, "query failed", "operation", op, "error", err)
	}
	return err
}

func (b base) queryScalar(ctx context.Context, op string, q squirrel.Sqlizer, dest any) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	start := time.Now()
	err = b.tx.QueryScalar(ctx, dest, query, args...)
	b.metrics.RecordDBQuery(b.table, op, err == nil, time.Since(start).Seconds())
	if err != nil {
		b.logger.ErrorContext(ctx, "query failed", "operation", op, "error", err)
	}
	return err
}

func (b base) exec(ctx context.Context, op string, q squirrel.Sqlizer) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	start := time.Now()
	n, err := b.tx.Exec(ctx, query, args...)
	b.metrics.RecordDBQuery(b.table, op, err == nil, time.Since(start).Seconds())
	if err != nil {
		b.logger.ErrorContext(ctx, "exec failed", "operation", op, "error", err)
		return 0, err
	}
	return n, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, postgres.ErrNoRows)
}
