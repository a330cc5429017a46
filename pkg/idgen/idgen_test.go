package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyflake_Unique(t *testing.T) {
	g, err := NewSonyflake(Config{MachineID: 7})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		seen = make(map[int64]struct{})
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				id, err := g.NextID()
				assert.NoError(t, err)
				lock.Lock()
				seen[id] = struct{}{}
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}

func TestSonyflake_FutureStart(t *testing.T) {
	_, err := NewSonyflake(Config{StartTime: time.Now().Add(time.Hour)})
	assert.Error(t, err)
}

func TestSequence(t *testing.T) {
	s := NewSequence(100)
	id, _ := s.NextID()
	assert.Equal(t, int64(101), id)
	id, _ = s.NextID()
	assert.Equal(t, int64(102), id)
}
