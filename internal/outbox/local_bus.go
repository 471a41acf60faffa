package outbox

import (
	"context"
	"sync"

	"venuebook/pkg/logger"
)

// Handler consumes decoded events
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// LocalBus dispatches messages to in-process handlers. Handler failures are
// logged and do not fail the message, matching the best-effort collaborator contract.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
	log      *logger.Logger
}

func NewLocalBus(log *logger.Logger) *LocalBus {
	return &LocalBus{
		handlers: make(map[EventType][]Handler),
		log:      log,
	}
}

// Subscribe registers h for the given types, or for every type when none are given
func (b *LocalBus) Subscribe(h Handler, types ...EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(types) == 0 {
		b.all = append(b.all, h)
		return
	}
	for _, t := range types {
		b.handlers[t] = append(b.handlers[t], h)
	}
}

func (b *LocalBus) Dispatch(ctx context.Context, msg *OutboxMessage) error {
	event, err := msg.Event()
	if err != nil {
		return err
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.all)+len(b.handlers[event.Type]))
	handlers = append(handlers, b.all...)
	handlers = append(handlers, b.handlers[event.Type]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			b.log.WarnWithContext(ctx, "event handler failed", err, map[string]interface{}{
				"event_id":   event.ID.String(),
				"event_type": string(event.Type),
			})
		}
	}
	return nil
}
