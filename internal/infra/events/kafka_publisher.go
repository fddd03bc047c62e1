package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"ecapi/internal/usecase"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// 商品イベントをkafkaへ送る。keyはitem_id
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev usecase.ItemEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "kafka: marshal event")
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ItemID, 10)),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "kafka: write message")
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KAFKA_BROKERS未設定時に使う
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, usecase.ItemEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
