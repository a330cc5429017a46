package kafka

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("kafka: invalid config")

	// ErrProducerClosed 生产者已关闭
	ErrProducerClosed = errors.New("kafka: producer closed")
)
