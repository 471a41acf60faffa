package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"venuebook/pkg/logger"

	"github.com/IBM/sarama"
)

type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultKafkaProducerConfig(brokers []string, topic string) KafkaProducerConfig {
	return KafkaProducerConfig{
		Brokers:          brokers,
		Topic:            topic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// KafkaDispatcher publishes outbox messages to one topic, keyed by slot so a
// slot's events keep their order.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaDispatcher(config KafkaProducerConfig, log *logger.Logger) (*KafkaDispatcher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return NewKafkaDispatcherWithProducer(producer, config.Topic, log), nil
}

// NewKafkaDispatcherWithProducer wraps an existing producer
func NewKafkaDispatcherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer, topic: topic, log: log}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, msg *OutboxMessage) error {
	value, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     d.topic,
		Key:       sarama.StringEncoder(msg.PartitionKey),
		Value:     sarama.ByteEncoder(value),
		Headers:   createHeaders(msg),
		Timestamp: msg.CreatedAt,
	}

	partition, offset, err := d.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}

	d.log.DebugWithContext(ctx, "event published to Kafka", map[string]interface{}{
		"topic":      d.topic,
		"partition":  partition,
		"offset":     offset,
		"event_type": string(msg.EventType),
	})
	return nil
}

func createHeaders(msg *OutboxMessage) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(msg.ID.String())},
		{Key: []byte("event_type"), Value: []byte(msg.EventType)},
		{Key: []byte("aggregate_type"), Value: []byte(msg.AggregateType)},
		{Key: []byte("aggregate_id"), Value: []byte(msg.AggregateID.String())},
		{Key: []byte("producer"), Value: []byte("venuebook-outbox")},
	}
}

// Close closes the Kafka producer
func (d *KafkaDispatcher) Close() error {
	if d.producer == nil {
		return nil
	}
	if err := d.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
