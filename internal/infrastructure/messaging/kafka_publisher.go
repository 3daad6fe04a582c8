package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

type KafkaConfig struct {
	Broker       string
	Topic        string
	RequiredAcks int16
	MaxRetries   int
}

// PredictionEvent is the message value published for every served prediction.
type PredictionEvent struct {
	EventID   string                  `json:"event_id"`
	Type      string                  `json:"type"`
	UserID    string                  `json:"user_id"`
	Kind      entities.PredictionKind `json:"kind"`
	Input     interface{}             `json:"input"`
	Result    string                  `json:"result"`
	CreatedAt time.Time               `json:"created_at"`
}

const predictionServedEvent = "prediction.served"

// KafkaPublisher keys messages by user id so one user's events stay ordered
// within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	client   sarama.Client
	topic    string
	logger   logger.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, log logger.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	config.Producer.Retry.Max = cfg.MaxRetries
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	client, err := sarama.NewClient([]string{cfg.Broker}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p := newKafkaPublisher(producer, client, cfg.Topic, log)
	p.logger.Infof("Kafka publisher ready: broker=%s topic=%s", cfg.Broker, cfg.Topic)
	return p, nil
}

func newKafkaPublisher(producer sarama.SyncProducer, client sarama.Client, topic string, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		client:   client,
		topic:    topic,
		logger:   logger.Component(log, "kafka_publisher"),
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, prediction *entities.Prediction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(PredictionEvent{
		EventID:   prediction.ID,
		Type:      predictionServedEvent,
		UserID:    prediction.UserID,
		Kind:      prediction.Kind,
		Input:     prediction.Input,
		Result:    prediction.Result,
		CreatedAt: prediction.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal prediction event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(prediction.UserID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(predictionServedEvent)},
		},
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	k.logger.Debugf("Published prediction %s to %s[%d]@%d", prediction.ID, k.topic, partition, offset)
	return nil
}

func (k *KafkaPublisher) HealthCheck(ctx context.Context) error {
	if k.producer == nil {
		return errors.New("kafka producer is nil")
	}
	if k.client == nil {
		return nil
	}
	if k.client.Closed() {
		return errors.New("kafka client is closed")
	}
	if err := k.client.RefreshMetadata(k.topic); err != nil {
		return fmt.Errorf("kafka health check failed: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	if k.producer == nil {
		return nil
	}
	k.logger.Info("Closing Kafka publisher")
	if err := k.producer.Close(); err != nil {
		return err
	}
	if k.client != nil && !k.client.Closed() {
		return k.client.Close()
	}
	return nil
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (n *NoopPublisher) Publish(_ context.Context, _ *entities.Prediction) error { return nil }
func (n *NoopPublisher) HealthCheck(_ context.Context) error                     { return nil }
func (n *NoopPublisher) Close() error                                            { return nil }
