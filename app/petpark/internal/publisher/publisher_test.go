package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu     sync.Mutex
	keys   []string
	events []LedgerEvent
	err    error
	closed bool
	// slowID 发送该流水前等待，用于暴露乱序
	slowID int64
}

func (s *fakeSink) PublishJSON(_ context.Context, key string, value any, headers map[string]string) error {
	if ev, ok := value.(LedgerEvent); ok && s.slowID != 0 && ev.ID == s.slowID {
		time.Sleep(20 * time.Millisecond)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	s.events = append(s.events, value.(LedgerEvent))
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

func newMetrics(t *testing.T) *metrics.EngineMetrics {
	t.Helper()
	m, err := metrics.New(&metrics.Config{Namespace: "test"})
	require.NoError(t, err)
	return m
}

func TestLedgerPublisher_Publish(t *testing.T) {
	sink := &fakeSink{}
	m := newMetrics(t)
	p, err := New(nil, sink, logger.NewNoop(), m)
	require.NoError(t, err)

	now := time.Now()
	p.PublishLedger([]*model.LedgerEntry{
		{ID: 1, OwnerID: 7, Delta: -50, BalanceAfter: 50, Reason: "feed", RefID: 3, CreatedAt: now},
		{ID: 2, OwnerID: 7, Delta: 20, BalanceAfter: 70, Reason: model.ReasonLevelUp, RefID: 3, CreatedAt: now},
	})
	p.Flush()

	sink.mu.Lock()
	assert.Len(t, sink.events, 2)
	assert.Equal(t, []string{"7", "7"}, sink.keys)
	sink.mu.Unlock()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EventPublishTotal.WithLabelValues("success")))

	require.NoError(t, p.Close())
	assert.True(t, sink.closed)
	require.NoError(t, p.Close())
}

func TestLedgerPublisher_KeepsCommitOrder(t *testing.T) {
	sink := &fakeSink{slowID: 1}
	p, err := New(nil, sink, logger.NewNoop(), newMetrics(t))
	require.NoError(t, err)

	// 扣费后连升多级，balance_after 必须单调
	entries := []*model.LedgerEntry{{ID: 1, OwnerID: 7, Delta: -50, BalanceAfter: 50, Reason: "feed"}}
	for i := int64(2); i <= 6; i++ {
		entries = append(entries, &model.LedgerEntry{
			ID: i, OwnerID: 7, Delta: 20, BalanceAfter: 50 + 20*(i-1), Reason: model.ReasonLevelUp,
		})
	}
	p.PublishLedger(entries)
	p.Flush()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, len(entries))
	for i, ev := range sink.events {
		assert.Equal(t, entries[i].ID, ev.ID)
		assert.Equal(t, entries[i].BalanceAfter, ev.BalanceAfter)
	}
	require.NoError(t, p.Close())
}

func TestLedgerPublisher_FailureIsRecorded(t *testing.T) {
	sink := &fakeSink{err: errors.New("broker down")}
	m := newMetrics(t)
	p, err := New(nil, sink, logger.NewNoop(), m)
	require.NoError(t, err)

	p.PublishLedger([]*model.LedgerEntry{{ID: 1, OwnerID: 1, Delta: 5, Reason: model.ReasonSignIn}})
	p.Flush()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventPublishTotal.WithLabelValues("failed")))
	require.NoError(t, p.Close())
}

func TestLedgerPublisher_NilSafe(t *testing.T) {
	var p *LedgerPublisher
	p.PublishLedger([]*model.LedgerEntry{{ID: 1}})
	p.Flush()
	assert.NoError(t, p.Close())
}

func TestNew_NilSink(t *testing.T) {
	_, err := New(nil, nil, logger.NewNoop(), nil)
	assert.Error(t, err)
}
