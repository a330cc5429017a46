package web

import "errors"

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("web: invalid config")

	// ErrServerNotStarted 服务未启动
	ErrServerNotStarted = errors.New("web: server not started")
)
