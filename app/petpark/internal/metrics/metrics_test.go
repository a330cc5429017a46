package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineMetrics(t *testing.T) {
	m, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.RecordInteraction("feed", "success")
	m.RecordInteraction("feed", "success")
	m.RecordInteraction("feed", "cooldown_active")
	m.RecordLevelUps(2)
	m.RecordPoints(-50, "feed")
	m.RecordPoints(10, "level_up")
	m.RecordPoints(0, "noop")
	m.ObserveLockWait(time.Millisecond)
	m.RecordDBQuery("pets", "select", true, 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.InteractionTotal.WithLabelValues("feed", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InteractionTotal.WithLabelValues("feed", "cooldown_active")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LevelUpTotal))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.PointsTotal.WithLabelValues("debit", "feed")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.PointsTotal.WithLabelValues("credit", "level_up")))

	// 重复注册报错
	assert.Error(t, m.Register(reg))
}

func TestEngineMetrics_NilSafe(t *testing.T) {
	var m *EngineMetrics
	assert.NotPanics(t, func() {
		m.RecordInteraction("feed", "success")
		m.RecordLevelUps(1)
		m.RecordPoints(5, "sign_in")
		m.RecordSignIn("success")
		m.ObserveLockWait(time.Second)
		m.RecordDBQuery("pets", "select", false, 0.1)
		m.RecordEventPublish(true)
	})
}
