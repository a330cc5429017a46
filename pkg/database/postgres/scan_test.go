package postgres

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ID", "id"},
		{"PetID", "pet_id"},
		{"OwnerID", "owner_id"},
		{"LastSkinChangeAt", "last_skin_change_at"},
		{"HTTPStatus", "http_status"},
		{"level", "level"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toSnakeCase(tt.in), tt.in)
	}
}

func TestColumnIndex(t *testing.T) {
	type row struct {
		ID        int64     `db:"id"`
		PetID     int64     // 缺省 snake_case
		Secret    string    `db:"-"`
		CreatedAt time.Time `db:"created_at"`
		internal  int
	}

	index := columnIndex(reflect.TypeOf(row{}))
	assert.Equal(t, map[string]int{"id": 0, "pet_id": 1, "created_at": 3}, index)

	// 第二次命中缓存
	assert.Equal(t, index, columnIndex(reflect.TypeOf(row{})))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	bad := DefaultConfig()
	bad.Pool.MinConns = bad.Pool.MaxConns + 1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultConfig()
	bad.Port = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	assert.Contains(t, DefaultConfig().ConnString(), "dbname=petpark")
}
