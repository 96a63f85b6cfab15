package repository

import (
	"context"

	"TrendBand/internal/domain/models"
	domrepo "TrendBand/internal/domain/repository"
	"TrendBand/pkg/kafka"
)

// KafkaPublisher emits actionable (non-Hold) signals to a Kafka topic. The
// message key is the instrument name so each instrument's signals stay in
// order on one partition.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishSignals(ctx context.Context, points []models.SeriesPoint) error {
	msgs := make([]kafka.Message, 0, len(points))
	for i := range points {
		if points[i].Signal == models.SignalHold {
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(points[i].Instrument),
			Value: models.NewSeriesPointDTO(points[i]),
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.SignalPublisher = (*KafkaPublisher)(nil)
