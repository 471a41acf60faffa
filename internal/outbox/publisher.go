package outbox

import (
	"context"
	"fmt"
)

// EventPublisher records domain events for later dispatch. Publish must be
// called with the context of the transaction that performs the transition.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type Publisher struct {
	repo        Repository
	maxAttempts int
}

func NewPublisher(repo Repository, maxAttempts int) *Publisher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Publisher{repo: repo, maxAttempts: maxAttempts}
}

func (p *Publisher) Publish(ctx context.Context, events ...Event) error {
	messages := make([]*OutboxMessage, 0, len(events))
	for _, event := range events {
		msg, err := NewOutboxMessage(event, p.maxAttempts)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
		}
		messages = append(messages, msg)
	}
	return p.repo.Create(ctx, messages...)
}
