package cooldown

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	tests := []struct {
		name     string
		last     *time.Time
		cooldown int
		want     Decision
	}{
		{"never happened", nil, 30, Decision{Allowed: true}},
		{"no cooldown", ago(0), 0, Decision{Allowed: true}},
		{"just happened", ago(0), 10, Decision{RemainingMinutes: 10}},
		{"partial minute floors elapsed", ago(90 * time.Second), 10, Decision{RemainingMinutes: 9}},
		{"almost done", ago(9*time.Minute + 59*time.Second), 10, Decision{RemainingMinutes: 1}},
		{"exactly elapsed", ago(10 * time.Minute), 10, Decision{Allowed: true}},
		{"long ago", ago(48 * time.Hour), 1440, Decision{Allowed: true}},
		{"clock skew", ago(-5 * time.Minute), 10, Decision{RemainingMinutes: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.last, tt.cooldown, now))
		})
	}
}

func TestCheck_Monotonic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2000; i++ {
		cooldown := r.Intn(1441)
		last := base
		now := base.Add(time.Duration(r.Int63n(int64(25 * time.Hour))))

		d := Check(&last, cooldown, now)
		if d.Allowed {
			continue
		}
		assert.GreaterOrEqual(t, d.RemainingMinutes, 0)
		assert.LessOrEqual(t, d.RemainingMinutes, cooldown)

		later := now.Add(time.Duration(d.RemainingMinutes) * time.Minute)
		assert.True(t, Check(&last, cooldown, later).Allowed,
			"cooldown=%d elapsed=%s remaining=%d", cooldown, now.Sub(last), d.RemainingMinutes)
	}
}

func TestCheckDuration(t *testing.T) {
	now := time.Now()
	last := now.Add(-23 * time.Hour)
	d := CheckDuration(&last, 24*time.Hour, now)
	assert.False(t, d.Allowed)
	assert.Equal(t, 60, d.RemainingMinutes)
}
