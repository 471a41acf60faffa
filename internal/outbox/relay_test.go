package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"venuebook/internal/memstore"
	"venuebook/internal/outbox"
	"venuebook/internal/shared/transaction"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []outbox.Event
	err    error
}

func (h *recordingHandler) Handle(ctx context.Context, event outbox.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandler) types() []outbox.EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]outbox.EventType, len(h.events))
	for i, e := range h.events {
		out[i] = e.Type
	}
	return out
}

type failingDispatcher struct{}

func (failingDispatcher) Dispatch(ctx context.Context, msg *outbox.OutboxMessage) error {
	return errors.New("broker unavailable")
}

func newEvent(t outbox.EventType) outbox.Event {
	event := outbox.NewEvent(t, time.Now())
	event.ReservationID = uuid.New()
	event.PartySize = 2
	return event
}

func TestRelay_DispatchesThroughLocalBus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	log := logger.NewDiscard()

	publisher := outbox.NewPublisher(store.Outbox(), 3)
	require.NoError(t, publisher.Publish(ctx,
		newEvent(outbox.EventReservationConfirmed),
		newEvent(outbox.EventEscrowRequested),
	))

	notifications := &recordingHandler{}
	payments := &recordingHandler{err: errors.New("gateway down")}
	bus := outbox.NewLocalBus(log)
	bus.Subscribe(notifications)
	bus.Subscribe(payments, outbox.EventEscrowRequested, outbox.EventRefundRequested)

	relay := outbox.NewRelay(store.Outbox(), transaction.NoopManager{}, bus, outbox.RelayConfig{BatchSize: 10}, log)
	published, err := relay.ProcessBatch(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, published)
	assert.Equal(t, []outbox.EventType{outbox.EventReservationConfirmed, outbox.EventEscrowRequested}, notifications.types())
	assert.Equal(t, []outbox.EventType{outbox.EventEscrowRequested}, payments.types(), "handler errors do not fail the message")

	for _, msg := range store.Messages() {
		assert.Equal(t, outbox.MessageStatusPublished, msg.Status)
		assert.NotNil(t, msg.PublishedAt)
	}

	published, err = relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestRelay_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	log := logger.NewDiscard()

	require.NoError(t, outbox.NewPublisher(store.Outbox(), 2).Publish(ctx, newEvent(outbox.EventOfferSent)))
	relay := outbox.NewRelay(store.Outbox(), transaction.NoopManager{}, failingDispatcher{}, outbox.RelayConfig{}, log)

	for i := 0; i < 3; i++ {
		published, err := relay.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, published)
	}

	messages := store.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, outbox.MessageStatusFailed, messages[0].Status)
	assert.Equal(t, 2, messages[0].Attempts)
	assert.Equal(t, "broker unavailable", messages[0].LastError)
}

func TestOutboxMessage_RoundTripsEvent(t *testing.T) {
	event := newEvent(outbox.EventReservationCancelled)
	percent := 50
	event.RefundPercent = &percent
	event.Amount = 1250

	msg, err := outbox.NewOutboxMessage(event, 5)
	require.NoError(t, err)
	assert.Equal(t, "reservation", msg.AggregateType)

	decoded, err := msg.Event()
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, 50, *decoded.RefundPercent)
	assert.Equal(t, int64(1250), decoded.Amount)
}
