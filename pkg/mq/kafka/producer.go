package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/lk2023060901/petpark/pkg/config"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// messageWriter kafka.Writer 的最小接口，测试中可替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 单 topic 生产者
type Producer struct {
	topic  string
	writer messageWriter
	logger logger.Logger

	produced  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	closed    atomic.Bool
}

// NewProducer 创建生产者，连接在首次写入时建立
func NewProducer(cfg *Config, topic string, l logger.Logger) (*Producer, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge kafka config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is empty", ErrInvalidConfig)
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(merged.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              merged.BatchSize,
		BatchTimeout:           merged.BatchTimeout,
		MaxAttempts:            merged.MaxAttempts,
		WriteTimeout:           merged.WriteTimeout,
		RequiredAcks:           kafka.RequiredAcks(merged.RequiredAcks),
		Compression:            parseCompression(merged.Compression),
		AllowAutoTopicCreation: true,
	}
	return newProducerWithWriter(topic, w, l), nil
}

func newProducerWithWriter(topic string, w messageWriter, l logger.Logger) *Producer {
	if l == nil {
		l = logger.NewNoop()
	}
	return &Producer{topic: topic, writer: w, logger: l.Named("kafka.producer")}
}

// Publish 同步发布消息，相同 Key 落在同一分区
func (p *Producer) Publish(ctx context.Context, msgs ...*Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		km := kafka.Message{Key: m.Key, Value: m.Value}
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
		out = append(out, km)
	}

	p.produced.Add(int64(len(out)))
	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		p.failed.Add(int64(len(out)))
		p.logger.ErrorContext(ctx, "failed to publish messages", "topic", p.topic, "count", len(out), "error", err)
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	p.succeeded.Add(int64(len(out)))
	return nil
}

// PublishJSON 序列化 value 为 JSON 后发布
func (p *Producer) PublishJSON(ctx context.Context, key string, value any, headers map[string]string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	h := map[string]string{"content-type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return p.Publish(ctx, &Message{Key: []byte(key), Value: data, Headers: h})
}

// Topic 返回 topic 名称
func (p *Producer) Topic() string {
	return p.topic
}

// Stats 返回统计快照
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		Produced:  p.produced.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
	}
}

// Close 关闭生产者，刷新缓冲中的消息
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}
