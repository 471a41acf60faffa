package reservations

import (
	"context"
	"time"

	"venuebook/internal/audit"
	"venuebook/internal/outbox"
	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

// Service covers reads and the venue-side actions on an existing reservation.
// Admission and cancellation live in their own packages.
type Service interface {
	GetReservation(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Reservation, error)
	ListMine(ctx context.Context, partyID uuid.UUID) ([]*Reservation, error)
	ListSlotReservations(ctx context.Context, slotID uuid.UUID, caller middleware.Identity) ([]*Reservation, error)
	AuditTrail(ctx context.Context, id uuid.UUID, caller middleware.Identity) ([]*audit.Entry, error)

	Accept(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Reservation, error)
	Decline(ctx context.Context, id uuid.UUID, caller middleware.Identity, reason string) (*Reservation, error)
	MarkNoShow(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Reservation, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, caller middleware.Identity, req UpdatePaymentRequest) (*Reservation, error)
}

type Deps struct {
	Repo    Repository
	Slots   slots.Repository
	Audit   audit.Repository
	Events  outbox.EventPublisher
	Tx      transaction.Manager
	Trigger slots.PromotionTrigger
	Clock   clock.Clock
	Logger  *logger.Logger
}

type service struct {
	Deps
}

func NewService(deps Deps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	return &service{Deps: deps}
}

func (s *service) GetReservation(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Reservation, error) {
	reservation, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(reservation, caller) {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

func (s *service) ListMine(ctx context.Context, partyID uuid.UUID) ([]*Reservation, error) {
	return s.Repo.ListByParty(ctx, partyID)
}

func (s *service) ListSlotReservations(ctx context.Context, slotID uuid.UUID, caller middleware.Identity) ([]*Reservation, error) {
	slot, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !caller.ManagesVenue(slot.VenueID) {
		return nil, apperr.ErrForbidden
	}
	return s.Repo.ListBySlot(ctx, slotID)
}

func (s *service) AuditTrail(ctx context.Context, id uuid.UUID, caller middleware.Identity) ([]*audit.Entry, error) {
	if _, err := s.GetReservation(ctx, id, caller); err != nil {
		return nil, err
	}
	return s.Audit.ListByEntity(ctx, audit.EntityReservation, id)
}

// Accept confirms a reservation awaiting manual validation. Its seats are
// already counted, so no capacity check is needed.
func (s *service) Accept(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Reservation, error) {
	var accepted *Reservation
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		reservation, err := s.loadForVenue(ctx, id, caller)
		if err != nil {
			return err
		}

		from := reservation.Status
		if from != StatusPendingProValidation && from != StatusRequested {
			return ErrStatusConflict
		}

		now := s.Clock.Now()
		reservation.Status = StatusConfirmed
		if err := s.transition(ctx, reservation, from, caller, "venue_accept"); err != nil {
			return err
		}

		events := []outbox.Event{reservation.Event(outbox.EventReservationConfirmed, now)}
		if escrow, ok := reservation.EscrowEvent(now); ok {
			events = append(events, escrow)
		}
		if err := s.Events.Publish(ctx, events...); err != nil {
			return err
		}
		accepted = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (s *service) Decline(ctx context.Context, id uuid.UUID, caller middleware.Identity, reason string) (*Reservation, error) {
	var declined *Reservation
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		reservation, err := s.loadForVenue(ctx, id, caller)
		if err != nil {
			return err
		}

		from := reservation.Status
		if from != StatusPendingProValidation && from != StatusRequested {
			return ErrStatusConflict
		}

		now := s.Clock.Now()
		reservation.Status = StatusDeclined
		reservation.CancelledAt = &now
		reservation.Metadata = reservation.Metadata.Merge(map[string]interface{}{
			MetaReason:     reason,
			MetaCancelRole: caller.Role,
		})
		if err := s.transition(ctx, reservation, from, caller, "venue_decline"); err != nil {
			return err
		}

		event := reservation.Event(outbox.EventReservationDeclined, now)
		event.Reason = reason
		events := []outbox.Event{event}
		if refund, ok := reservation.RefundEvent(100, now); ok {
			events = append(events, refund)
		}
		if err := s.Events.Publish(ctx, events...); err != nil {
			return err
		}
		declined = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.triggerFor(declined)
	return declined, nil
}

// MarkNoShow releases the seats of a confirmed party that did not turn up
func (s *service) MarkNoShow(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Reservation, error) {
	var marked *Reservation
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		reservation, err := s.loadForVenue(ctx, id, caller)
		if err != nil {
			return err
		}
		if reservation.Status != StatusConfirmed {
			return ErrStatusConflict
		}

		now := s.Clock.Now()
		if now.Before(reservation.StartTime) {
			return ErrNoShowBeforeStart
		}

		reservation.Status = StatusExpired
		reservation.Metadata = reservation.Metadata.Merge(map[string]interface{}{
			MetaReason: ReasonNoShow,
		})
		if err := s.transition(ctx, reservation, StatusConfirmed, caller, "no_show"); err != nil {
			return err
		}

		event := reservation.Event(outbox.EventReservationNoShow, now)
		event.Reason = ReasonNoShow
		if err := s.Events.Publish(ctx, event); err != nil {
			return err
		}
		marked = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.triggerFor(marked)
	return marked, nil
}

func (s *service) UpdatePayment(ctx context.Context, id uuid.UUID, caller middleware.Identity, req UpdatePaymentRequest) (*Reservation, error) {
	if !req.PaymentStatus.IsValid() {
		return nil, ErrInvalidPaymentStatus
	}

	var updated *Reservation
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		reservation, err := s.loadForVenue(ctx, id, caller)
		if err != nil {
			return err
		}

		previous := reservation.PaymentStatus
		reservation.PaymentStatus = req.PaymentStatus
		if req.PaymentReference != nil {
			reservation.PaymentReference = *req.PaymentReference
		}

		ok, err := s.Repo.UpdateIfStatus(ctx, reservation, reservation.Status)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStatusConflict
		}

		entry := audit.NewEntry(audit.EntityReservation, reservation.ID, audit.Party(caller.PartyID, caller.Role),
			"payment_update", string(previous), string(reservation.PaymentStatus), reservation.Snapshot())
		if err := s.Audit.Append(ctx, entry); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) loadForVenue(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Reservation, error) {
	reservation, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.ManagesVenue(reservation.VenueID) {
		return nil, apperr.ErrForbidden
	}
	return reservation, nil
}

// transition persists reservation's new status conditionally on from and appends the audit entry
func (s *service) transition(ctx context.Context, reservation *Reservation, from Status, caller middleware.Identity, action string) error {
	ok, err := s.Repo.UpdateIfStatus(ctx, reservation, from)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStatusConflict
	}

	entry := audit.NewEntry(audit.EntityReservation, reservation.ID, audit.Party(caller.PartyID, caller.Role),
		action, string(from), string(reservation.Status), reservation.Snapshot())
	return s.Audit.Append(ctx, entry)
}

func (s *service) triggerFor(reservation *Reservation) {
	if reservation == nil || reservation.SlotID == nil {
		return
	}
	s.Logger.DebugWithContext(context.Background(), "capacity released, scheduling promotion", map[string]interface{}{
		"reservation_id": reservation.ID.String(),
		"slot_id":        reservation.SlotID.String(),
		"at":             s.Clock.Now().Format(time.RFC3339),
	})
	s.Trigger.Trigger(*reservation.SlotID)
}

// CanView reports whether caller may read reservation
func CanView(reservation *Reservation, caller middleware.Identity) bool {
	return reservation.PartyID == caller.PartyID || caller.ManagesVenue(reservation.VenueID)
}
