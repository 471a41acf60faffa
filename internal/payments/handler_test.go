package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"venuebook/internal/outbox"
	"venuebook/internal/shared/config"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockEscrow struct {
	mock.Mock
}

func (m *mockEscrow) Capture(ctx context.Context, reference string, amount int64, idempotencyKey string) error {
	args := m.Called(ctx, reference, amount, idempotencyKey)
	return args.Error(0)
}

func (m *mockEscrow) Refund(ctx context.Context, reference string, amount int64, idempotencyKey string) error {
	args := m.Called(ctx, reference, amount, idempotencyKey)
	return args.Error(0)
}

func (m *mockEscrow) Name() string { return "mock" }

func paymentEvent(t outbox.EventType, ref string, amount int64) outbox.Event {
	e := outbox.NewEvent(t, time.Now())
	e.ReservationID = uuid.New()
	e.PaymentRef = ref
	e.Amount = amount
	return e
}

func TestHandler_Capture(t *testing.T) {
	escrow := new(mockEscrow)
	event := paymentEvent(outbox.EventEscrowRequested, "pi_123", 2000)
	escrow.On("Capture", mock.Anything, "pi_123", int64(2000), event.ID.String()).Return(nil).Once()

	err := NewHandler(escrow, logger.NewDiscard()).Handle(context.Background(), event)

	assert.NoError(t, err)
	escrow.AssertExpectations(t)
}

func TestHandler_Refund(t *testing.T) {
	escrow := new(mockEscrow)
	event := paymentEvent(outbox.EventRefundRequested, "pi_123", 1000)
	escrow.On("Refund", mock.Anything, "pi_123", int64(1000), event.ID.String()).Return(nil).Once()

	err := NewHandler(escrow, logger.NewDiscard()).Handle(context.Background(), event)

	assert.NoError(t, err)
	escrow.AssertExpectations(t)
}

func TestHandler_SkipsEventsWithoutPayment(t *testing.T) {
	tests := []struct {
		name  string
		event outbox.Event
	}{
		{"no payment reference", paymentEvent(outbox.EventEscrowRequested, "", 2000)},
		{"zero amount", paymentEvent(outbox.EventRefundRequested, "pi_123", 0)},
		{"unrelated event", paymentEvent(outbox.EventOfferSent, "pi_123", 2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			escrow := new(mockEscrow)
			err := NewHandler(escrow, logger.NewDiscard()).Handle(context.Background(), tt.event)

			assert.NoError(t, err)
			escrow.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			escrow.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_GatewayFailureIsLoggedNotReturned(t *testing.T) {
	escrow := new(mockEscrow)
	escrow.On("Capture", mock.Anything, "pi_9", int64(500), mock.Anything).Return(errors.New("card_declined")).Once()

	err := NewHandler(escrow, logger.NewDiscard()).Handle(context.Background(), paymentEvent(outbox.EventEscrowRequested, "pi_9", 500))

	assert.NoError(t, err)
	escrow.AssertExpectations(t)
}

func TestLoggingEscrow(t *testing.T) {
	escrow := NewLoggingEscrow(logger.NewDiscard())
	assert.Equal(t, "log", escrow.Name())
	assert.NoError(t, escrow.Capture(context.Background(), "pi_1", 100, "k"))
	assert.NoError(t, escrow.Refund(context.Background(), "pi_1", 100, "k"))
}

func TestNewStripeEscrow_RequiresKey(t *testing.T) {
	_, err := NewStripeEscrow(config.StripeConfig{Currency: "eur"})
	assert.Error(t, err)
}
