package app

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	started atomic.Bool
	stopped atomic.Bool
	stopErr error
}

func (s *fakeServer) Start() error { s.started.Store(true); return nil }
func (s *fakeServer) Stop() error { s.stopped.Store(true); return s.stopErr }

func TestBaseApp_ShutdownOrder(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithStopTimeout(time.Second))

	var order []string
	srv := &fakeServer{}
	InitApp(a, AppComponents{
		Servers: []Server{srv},
		Closers: []Closer{
			CloserFunc(func() error { order = append(order, "db"); return nil }),
			CloserFunc(func() error { order = append(order, "redis"); return nil }),
		},
	})

	require.NoError(t, a.Shutdown())
	assert.True(t, srv.stopped.Load())
	assert.Equal(t, []string{"redis", "db"}, order)
	assert.Error(t, a.Context().Err())

	// 重复关闭无副作用
	require.NoError(t, a.Shutdown())
	assert.Len(t, order, 2)
}

func TestBaseApp_ShutdownReportsStopError(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	boom := errors.New("boom")
	a.AppendServer(&fakeServer{stopErr: boom})

	assert.ErrorIs(t, a.Shutdown(), boom)
}
