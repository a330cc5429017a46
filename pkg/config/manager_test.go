package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
engine:
  store: memory
  lock_ttl: 3s
  sign_in_rewards: [10, 20, 30]
tiers:
  - min_level: 1
    max_level: 10
    type: linear
`

func TestManager_LoadBytes(t *testing.T) {
	m := NewManager(WithDefaults(map[string]any{"engine.formula_cache_size": 512}))
	require.NoError(t, m.LoadBytes([]byte(sampleYAML), "yaml"))

	var engine struct {
		Store            string        `mapstructure:"store"`
		LockTTL          time.Duration `mapstructure:"lock_ttl"`
		SignInRewards    []int64       `mapstructure:"sign_in_rewards"`
		FormulaCacheSize int           `mapstructure:"formula_cache_size"`
	}
	require.NoError(t, m.UnmarshalKey("engine", &engine))

	assert.Equal(t, "memory", engine.Store)
	assert.Equal(t, 3*time.Second, engine.LockTTL)
	assert.Equal(t, []int64{10, 20, 30}, engine.SignInRewards)
	assert.Equal(t, 512, engine.FormulaCacheSize)
	assert.Equal(t, "memory", m.GetString("engine.store"))
	assert.True(t, m.IsSet("tiers"))
}

func TestManager_EnvOverride(t *testing.T) {
	t.Setenv("PETPARK_ENGINE_STORE", "postgres")

	m := NewManager(WithEnvPrefix("PETPARK"))
	require.NoError(t, m.LoadBytes([]byte(sampleYAML), "yaml"))

	assert.Equal(t, "postgres", m.GetString("engine.store"))
}
