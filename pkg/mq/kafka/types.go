package kafka

// Message 待发布的消息
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ProducerStats 生产者统计
type ProducerStats struct {
	Produced  int64
	Succeeded int64
	Failed    int64
}
