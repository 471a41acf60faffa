package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"venuebook/pkg/logger"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:              brokers,
		GroupID:              groupID,
		Topics:               []string{topic},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxProcessingTime:    time.Minute,
		OffsetOldest:         true,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// EventConsumer feeds events from a Kafka consumer group into a Handler.
// Only the listed event types reach the handler; others are acknowledged and skipped.
type EventConsumer struct {
	group   sarama.ConsumerGroup
	config  ConsumerConfig
	handler Handler
	accepts map[EventType]bool
	log     *logger.Logger
}

func NewEventConsumer(config ConsumerConfig, handler Handler, log *logger.Logger, types ...EventType) (*EventConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	accepts := make(map[EventType]bool, len(types))
	for _, t := range types {
		accepts[t] = true
	}

	return &EventConsumer{
		group:   group,
		config:  config,
		handler: handler,
		accepts: accepts,
		log:     log,
	}, nil
}

// Run consumes with the given number of workers until ctx is done
func (c *EventConsumer) Run(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = 1
	}

	go c.handleErrors()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
	wg.Wait()
	return c.group.Close()
}

func (c *EventConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{consumer: c, workerID: workerID}
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.group.Consume(ctx, c.config.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.log.Warn("error consuming events", "worker", workerID, "group", c.config.GroupID, "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *EventConsumer) handleErrors() {
	for err := range c.group.Errors() {
		c.log.Warn("consumer group error", "group", c.config.GroupID, "error", err)
	}
}

// accepted reports whether the consumer subscribes to t
func (c *EventConsumer) accepted(t EventType) bool {
	return len(c.accepts) == 0 || c.accepts[t]
}

type consumerGroupHandler struct {
	consumer *EventConsumer
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			h.processMessage(session.Context(), message)
			// collaborator failures are not retried past executeWithRetry
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var event Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.consumer.log.Warn("dropping undecodable event",
			"topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
		return
	}
	if !h.consumer.accepted(event.Type) {
		return
	}

	if err := h.executeWithRetry(ctx, event); err != nil {
		h.consumer.log.WarnWithContext(ctx, "event handler gave up", err, map[string]interface{}{
			"worker":     h.workerID,
			"event_id":   event.ID.String(),
			"event_type": string(event.Type),
		})
	}
}

func (h *consumerGroupHandler) executeWithRetry(ctx context.Context, event Event) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoffDuration

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = h.consumer.handler.Handle(ctx, event); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}

		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
