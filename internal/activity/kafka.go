package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes events keyed by product id, so all events of one
// product land on the same partition.
type KafkaSink struct {
	writer *kafka.Writer
	l      *slog.Logger
}

func NewKafkaSink(brokers []string, topic string, l *slog.Logger) *KafkaSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
	return &KafkaSink{writer: writer, l: l}
}

func (s *KafkaSink) Emit(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.l.Error("activity_encode_failed", slog.Any("err", err))
		return
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.ProductID, 10)),
		Value: data,
		Time:  e.At,
	})
	if err != nil {
		s.l.Warn("activity_publish_failed", slog.String("kind", string(e.Kind)), slog.Any("err", err))
	}
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
