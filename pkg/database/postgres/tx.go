package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Tx 事务接口
type Tx interface {
	// QueryOne 查询单条记录到 dest (结构体指针)，无结果返回 ErrNoRows
	QueryOne(ctx context.Context, dest any, sql string, args ...any) error
	// QueryAll 查询多条记录到 dest (结构体指针切片的指针)
	QueryAll(ctx context.Context, dest any, sql string, args ...any) error
	// QueryScalar 查询单个值，例如 COUNT / RETURNING id
	QueryScalar(ctx context.Context, dest any, sql string, args ...any) error
	// Exec 执行写操作，返回影响行数
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

type txWrapper struct {
	tx pgx.Tx
}

func (t *txWrapper) QueryOne(ctx context.Context, dest any, sql string, args ...any) error {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return ErrNoRows
	}
	return scanStruct(rows, dest)
}

func (t *txWrapper) QueryAll(ctx context.Context, dest any, sql string, args ...any) error {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanIntoSlice(rows, dest)
}

func (t *txWrapper) QueryScalar(ctx context.Context, dest any, sql string, args ...any) error {
	if err := t.tx.QueryRow(ctx, sql, args...).Scan(dest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoRows
		}
		return fmt.Errorf("scalar query failed: %w", err)
	}
	return nil
}

func (t *txWrapper) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("exec failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// TxIsolationLevel 事务隔离级别
type TxIsolationLevel string

const (
	TxIsolationLevelDefault        TxIsolationLevel = ""
	TxIsolationLevelReadCommitted  TxIsolationLevel = "read committed"
	TxIsolationLevelRepeatableRead TxIsolationLevel = "repeatable read"
	TxIsolationLevelSerializable   TxIsolationLevel = "serializable"
)

// TxOptions 事务选项
type TxOptions struct {
	IsoLevel TxIsolationLevel
	ReadOnly bool
}

// WithTx 在默认隔离级别的事务中执行 fn
func (c *Client) WithTx(ctx context.Context, fn func(Tx) error) error {
	return c.WithTxOptions(ctx, TxOptions{}, fn)
}

// WithTxOptions 在事务中执行 fn，fn 返回错误或 panic 时回滚
func (c *Client) WithTxOptions(ctx context.Context, opts TxOptions, fn func(Tx) error) error {
	pgxOpts := pgx.TxOptions{IsoLevel: pgx.TxIsoLevel(opts.IsoLevel)}
	if opts.ReadOnly {
		pgxOpts.AccessMode = pgx.ReadOnly
	}

	tx, err := c.pool.BeginTx(ctx, pgxOpts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&txWrapper{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
