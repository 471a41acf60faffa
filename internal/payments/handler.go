package payments

import (
	"context"

	"venuebook/internal/outbox"
	"venuebook/pkg/logger"
)

// Handler forwards payment events to the escrow gateway. A gateway failure
// never affects the reservation; it is logged for reconciliation.
type Handler struct {
	escrow Escrow
	log    *logger.Logger
}

func NewHandler(escrow Escrow, log *logger.Logger) *Handler {
	return &Handler{escrow: escrow, log: log}
}

func (h *Handler) EventTypes() []outbox.EventType {
	return []outbox.EventType{outbox.EventEscrowRequested, outbox.EventRefundRequested}
}

func (h *Handler) Handle(ctx context.Context, event outbox.Event) error {
	if event.PaymentRef == "" || event.Amount <= 0 {
		return nil
	}

	// the event id makes gateway retries idempotent
	key := event.ID.String()

	var err error
	switch event.Type {
	case outbox.EventEscrowRequested:
		err = h.escrow.Capture(ctx, event.PaymentRef, event.Amount, key)
	case outbox.EventRefundRequested:
		err = h.escrow.Refund(ctx, event.PaymentRef, event.Amount, key)
	default:
		return nil
	}

	if err != nil {
		h.log.ErrorWithContext(ctx, "escrow call failed", err, map[string]interface{}{
			"gateway":        h.escrow.Name(),
			"event_type":     string(event.Type),
			"reservation_id": event.ReservationID.String(),
			"amount":         event.Amount,
		})
	}
	return nil
}
