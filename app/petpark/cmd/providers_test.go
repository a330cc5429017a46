package main

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideStore(t *testing.T) {
	l := logger.NewNoop()

	t.Run("memory store returns cleanup", func(t *testing.T) {
		cfg := &Config{Engine: EngineConfig{Store: StoreMemory}}
		st, cleanup, err := provideStore(cfg, l, nil)
		require.NoError(t, err)
		require.NotNil(t, st)
		require.NotNil(t, cleanup)
		assert.NotPanics(t, cleanup)
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := &Config{Engine: EngineConfig{Store: "mysql"}}
		st, cleanup, err := provideStore(cfg, l, nil)
		require.Error(t, err)
		assert.Nil(t, st)
		assert.Nil(t, cleanup)
	})
}

func TestProvideServiceConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Engine.Progression.Timezone = "Asia/Shanghai"
	sc, err := provideServiceConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", sc.Timezone)
	assert.Equal(t, int64(100), sc.StarterPoints)

	cfg.Engine.Progression.Timezone = "Mars/Olympus_Mons"
	_, err = provideServiceConfig(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}
