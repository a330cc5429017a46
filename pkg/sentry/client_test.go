package sentry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDSN = "https://public@sentry.example.com/1"

// eventSink 截获事件并丢弃，不发起网络请求
type eventSink struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (s *eventSink) beforeSend(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *eventSink) all() []*sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*sentry.Event(nil), s.events...)
}

func newTestClient(t *testing.T) (*Client, *eventSink) {
	t.Helper()
	sink := &eventSink{}
	c, err := New(&Config{Enabled: true, DSN: testDSN, Tags: map[string]string{"service": "petpark"}}, WithBeforeSend(sink.beforeSend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, sink
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{name: "nil", cfg: nil, wantErr: ErrNilConfig},
		{name: "disabled without dsn", cfg: &Config{}},
		{name: "enabled without dsn", cfg: &Config{Enabled: true}, wantErr: ErrInvalidDSN},
		{name: "bad sample rate", cfg: &Config{Enabled: true, DSN: testDSN, SampleRate: 2}, wantErr: ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_DisabledIsNoop(t *testing.T) {
	c, err := New(&Config{})
	require.NoError(t, err)
	assert.False(t, c.IsEnabled())
	assert.Nil(t, c.CaptureError(context.Background(), errors.New("boom"), nil))
	assert.Equal(t, Stats{}, c.Stats())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)
}

func TestClient_CaptureErrorTags(t *testing.T) {
	c, sink := newTestClient(t)
	ctx := logger.WithRequestID(context.Background(), "req-1")

	c.CaptureError(ctx, errors.New("ledger write failed"), map[string]string{"route": "/api/v1/pets/:id/interactions"})

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, "req-1", events[0].Tags["request_id"])
	assert.Equal(t, "petpark", events[0].Tags["service"])
	assert.Equal(t, "/api/v1/pets/:id/interactions", events[0].Tags["route"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "ledger write failed", events[0].Exception[len(events[0].Exception)-1].Value)

	// BeforeSend 丢弃了事件
	assert.Equal(t, Stats{EventsTotal: 1, EventsDropped: 1}, c.Stats())
}

func TestGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, sink := newTestClient(t)

	r := gin.New()
	r.Use(gin.Recovery(), GinRecovery(c))
	r.GET("/panic", func(*gin.Context) { panic("tier set corrupted") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, sentry.LevelFatal, events[0].Level)
	assert.Equal(t, "/panic", events[0].Tags["route"])
}
