package errs

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	cd := fmt.Errorf("feed: %w", &CooldownError{Remaining: 7})
	assert.True(t, errors.Is(cd, ErrCooldownActive))
	assert.True(t, IsExpected(cd))
	assert.Equal(t, "cooldown_active", Reason(cd))

	var ce *CooldownError
	assert.True(t, errors.As(cd, &ce))
	assert.Equal(t, 7, ce.Remaining)

	ve := &ValidationError{Violations: []Violation{{Field: "points_cost", Rule: "max", Message: "must be at most 10000"}}}
	assert.True(t, errors.Is(ve, ErrValidationFailed))
	assert.Contains(t, ve.Error(), "points_cost")

	cfg := Configurationf("no tier covers level %d", 12)
	assert.True(t, errors.Is(cfg, ErrConfiguration))
	assert.False(t, IsExpected(cfg))
	assert.Equal(t, "configuration_error", Reason(cfg))
}

func TestSystem(t *testing.T) {
	assert.Nil(t, System(nil, "x"))

	sys := System(errors.New("connection refused"), "load pet")
	assert.True(t, errors.Is(sys, ErrSystem))
	assert.Equal(t, "system_error", Reason(sys))

	nf := System(NotFoundf("pet %d", 3), "load pet")
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.False(t, errors.Is(nf, ErrSystem))
}
