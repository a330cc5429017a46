package idgen

import "sync/atomic"

// Generator ID生成器接口
type Generator interface {
	// NextID 生成下一个唯一ID
	NextID() (int64, error)
}

// Sequence 进程内自增生成器，用于内存存储与测试
type Sequence struct {
	n atomic.Int64
}

// NewSequence 创建从 start+1 开始的自增生成器
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

// NextID 返回下一个序号
func (s *Sequence) NextID() (int64, error) {
	return s.n.Add(1), nil
}
