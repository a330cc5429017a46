package idgen

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sony/sonyflake"
)

// DefaultStartTime 纪元起点，一经上线不可修改
var DefaultStartTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Config Sonyflake 配置
type Config struct {
	// MachineID 机器ID (0-65535)，多实例部署时必须互不相同
	MachineID uint16    `mapstructure:"machine_id"`
	StartTime time.Time `mapstructure:"start_time"`
}

type sonyflakeGenerator struct {
	sf *sonyflake.Sonyflake
}

// NewSonyflake 创建基于 Sonyflake 的ID生成器
func NewSonyflake(cfg Config) (Generator, error) {
	start := cfg.StartTime
	if start.IsZero() {
		start = DefaultStartTime
	}
	if start.After(time.Now()) {
		return nil, errors.Newf("sonyflake start time %s is in the future", start)
	}

	machineID := cfg.MachineID
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: start,
		MachineID: func() (uint16, error) {
			return machineID, nil
		},
	})
	if sf == nil {
		return nil, errors.New("failed to create sonyflake generator")
	}

	return &sonyflakeGenerator{sf: sf}, nil
}

func (g *sonyflakeGenerator) NextID() (int64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return 0, errors.Wrap(err, "failed to generate id")
	}
	return int64(id), nil
}
