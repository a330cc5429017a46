package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type serverSection struct {
	Addr  string `validate:"required"`
	Level string `validate:"oneof=debug info warn error"`
	Limit int    `validate:"min=1,max=100"`
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		cfg     any
		wantErr string
	}{
		{name: "valid", cfg: &serverSection{Addr: ":8080", Level: "info", Limit: 10}},
		{name: "missing addr", cfg: &serverSection{Level: "info", Limit: 10}, wantErr: "is required"},
		{name: "bad level", cfg: &serverSection{Addr: ":8080", Level: "trace", Limit: 10}, wantErr: "must be one of"},
		{name: "limit too large", cfg: &serverSection{Addr: ":8080", Level: "info", Limit: 500}, wantErr: "at most 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)
}
