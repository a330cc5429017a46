// Package memstore 内存实现的 store.Store，事务语义与 PostgreSQL 实现一致，
// 用于测试和 --store=memory 的开发模式。
package memstore

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
)

// ErrReadOnly 只读事务中执行了写操作
var ErrReadOnly = errors.New("memstore: write in read-only transaction")

type historyKey struct {
	petID           int64
	interactionType string
}

type state struct {
	pets        map[int64]model.Pet
	wallets     map[int64]model.Wallet
	ledger      []model.LedgerEntry
	rules       map[string]model.InteractionRule
	tierVersion int64
	tiers       []model.LevelUpTier
	history     []model.InteractionRecord
	latest      map[historyKey]model.InteractionRecord
	plays       map[int64]model.GamePlay
	colors      map[int64]model.ColorOption
	signIns     map[int64][]model.SignInRecord
}

func newState() *state {
	return &state{
		pets:    make(map[int64]model.Pet),
		wallets: make(map[int64]model.Wallet),
		rules:   make(map[string]model.InteractionRule),
		latest:  make(map[historyKey]model.InteractionRecord),
		plays:   make(map[int64]model.GamePlay),
		colors:  make(map[int64]model.ColorOption),
		signIns: make(map[int64][]model.SignInRecord),
	}
}

// clone 复制一份可独立修改的状态，追加型切片通过容量截断保证写时复制
func (s *state) clone() *state {
	return &state{
		pets:        cloneMap(s.pets),
		wallets:     cloneMap(s.wallets),
		ledger:      s.ledger[:len(s.ledger):len(s.ledger)],
		rules:       cloneMap(s.rules),
		tierVersion: s.tierVersion,
		tiers:       s.tiers[:len(s.tiers):len(s.tiers)],
		history:     s.history[:len(s.history):len(s.history)],
		latest:      cloneMap(s.latest),
		plays:       cloneMap(s.plays),
		colors:      cloneMap(s.colors),
		signIns:     cloneMap(s.signIns),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store 内存存储，写事务串行执行，成功后整体替换状态
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ store.Store = (*Store)(nil)

// New 创建空的内存存储
func New() *Store {
	return &Store{st: newState()}
}

// Atomic 在状态副本上执行 fn，成功才提交
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	staged := s.st.clone()
	if err := fn(ctx, &tx{st: staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = staged
	return nil
}

// View 在当前状态上执行只读 fn
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &tx{st: s.st, readOnly: true})
}

// Close 无资源需要释放
func (s *Store) Close() error {
	return nil
}

type tx struct {
	st       *state
	readOnly bool
}

func (t *tx) write() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *tx) Pets() store.PetRepository                 { return petRepo{t} }
func (t *tx) Wallets() store.WalletRepository           { return walletRepo{t} }
func (t *tx) Ledger() store.LedgerRepository            { return ledgerRepo{t} }
func (t *tx) Rules() store.RuleRepository               { return ruleRepo{t} }
func (t *tx) Tiers() store.TierRepository               { return tierRepo{t} }
func (t *tx) History() store.HistoryRepository          { return historyRepo{t} }
func (t *tx) Plays() store.PlayRepository               { return playRepo{t} }
func (t *tx) ColorOptions() store.ColorOptionRepository { return colorRepo{t} }
func (t *tx) SignIns() store.SignInRepository           { return signInRepo{t} }
