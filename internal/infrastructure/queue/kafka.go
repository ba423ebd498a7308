// Package queue publishes reconciled trades to Kafka so downstream
// consumers (accounting, alerting) see every trade, successful or not.
package queue

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/repository"
)

// KafkaConfig holds Kafka connection configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaTradePublisher implements TradePublisher using Kafka.
type KafkaTradePublisher struct {
	writer *kafka.Writer
}

var _ repository.TradePublisher = (*KafkaTradePublisher)(nil)

// NewKafkaTradePublisher creates a publisher. Messages are keyed by the
// trade's input token so trades touching the same token stay ordered within
// a partition.
func NewKafkaTradePublisher(config KafkaConfig) *KafkaTradePublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaTradePublisher{writer: writer}
}

// PublishTrades sends the batch in one write.
func (p *KafkaTradePublisher) PublishTrades(ctx context.Context, trades []model.Trade) error {
	msgs := make([]kafka.Message, len(trades))
	for i, trade := range trades {
		data, err := json.Marshal(trade)
		if err != nil {
			return err
		}
		msgs[i] = kafka.Message{
			Key:   []byte(trade.TokenIn),
			Value: data,
			Time:  trade.Date,
		}
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close closes the underlying writer.
func (p *KafkaTradePublisher) Close() error {
	return p.writer.Close()
}
