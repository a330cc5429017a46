package postgres

import "errors"

var (
	ErrNilConfig     = errors.New("postgres: nil config")
	ErrInvalidConfig = errors.New("postgres: invalid config")

	// ErrNoRows 单行查询无结果，调用方据此映射为业务上的 NotFound
	ErrNoRows = errors.New("postgres: no rows")
)
