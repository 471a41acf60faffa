package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/audit"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/locks"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/internal/waitlist"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Admit decides a booking request. A request that does not fit, or that
	// arrives while a queue exists, comes back waitlisted rather than rejected.
	Admit(ctx context.Context, req CreateReservationRequest, caller middleware.Identity) (*Decision, error)
}

type Deps struct {
	Reservations reservations.Repository
	Slots        slots.Repository
	Venues       venues.Service
	Accountant   *slots.Accountant
	Guard        *reservations.Guard
	Waitlist     *waitlist.Engine
	Trigger      slots.PromotionTrigger
	Audit        audit.Repository
	Events       outbox.EventPublisher
	Locker       locks.SlotLocker
	Tx           transaction.Manager
	Clock        clock.Clock
	Config       config.EngineConfig
	Logger       *logger.Logger
}

type service struct {
	Deps
}

func NewService(deps Deps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.Config.AdmissionMaxAttempts < 1 {
		deps.Config.AdmissionMaxAttempts = 1
	}
	return &service{Deps: deps}
}

func (s *service) Admit(ctx context.Context, req CreateReservationRequest, caller middleware.Identity) (*Decision, error) {
	if req.PartySize < 1 {
		return nil, ErrInvalidPartySize
	}
	if req.TotalAmount < 0 {
		return nil, ErrNegativeAmount
	}

	slot, err := s.resolveSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.validateWindow(slot); err != nil {
		return nil, err
	}

	settings, err := s.Venues.GetSettings(ctx, slot.VenueID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.Config.AdmissionMaxAttempts; attempt++ {
		decision, expired, err := s.attempt(ctx, slot.ID, req, caller, settings)
		if expired > 0 {
			// offers lapsed by this read free seats for the rest of the queue
			s.Trigger.Trigger(slot.ID)
		}
		if err == nil {
			s.Logger.LogReservationAdmitted(ctx, decision.Reservation.ID.String(), slot.ID.String(),
				caller.PartyID.String(), string(decision.Reservation.Status), req.PartySize)
			return decision, nil
		}
		if !retryable(err) {
			return nil, err
		}

		lastErr = err
		s.Logger.WarnWithContext(ctx, "admission attempt conflicted, retrying", err, map[string]interface{}{
			"slot_id": slot.ID.String(),
			"attempt": attempt,
		})
		if attempt == s.Config.AdmissionMaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.Config.AdmissionRetryBackoff):
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrCapacityConflict, lastErr)
}

// attempt runs one check-and-insert under the slot lock. It also reports how
// many offers were expired on the way.
func (s *service) attempt(ctx context.Context, slotID uuid.UUID, req CreateReservationRequest, caller middleware.Identity, settings *venues.Settings) (*Decision, int, error) {
	unlock, err := s.Locker.Lock(ctx, slotID)
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	var (
		decision *Decision
		expired  int
	)
	err = s.Tx.Run(ctx, func(ctx context.Context) error {
		decision = nil
		expired = 0

		slot, err := s.Slots.GetForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		if !slot.IsActive {
			return slots.ErrSlotNotFound
		}

		err = s.Guard.Check(ctx, reservations.Candidate{
			PartyID:   caller.PartyID,
			VenueID:   slot.VenueID,
			SlotID:    &slot.ID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
		if err != nil {
			return err
		}

		queue, lapsed, err := s.Waitlist.ExpireDueOnSlot(ctx, slot.ID)
		if err != nil {
			return err
		}
		expired = lapsed
		usage, err := s.Accountant.Usage(ctx, slot)
		if err != nil {
			return err
		}

		status := Decide(len(queue), usage, req.PartySize, settings.RequiresApproval)
		res := s.newReservation(slot, req, caller, status, settings.DepositAmount)
		if err := s.Reservations.Create(ctx, res); err != nil {
			return err
		}

		actor := audit.Party(caller.PartyID, caller.Role)
		if err := s.Audit.Append(ctx, audit.NewEntry(audit.EntityReservation, res.ID, actor,
			"admit", "", string(res.Status), res.Snapshot())); err != nil {
			return err
		}

		decision = &Decision{Reservation: res, Usage: usage}
		if status == reservations.StatusWaitlist {
			entry, err := s.Waitlist.Enqueue(ctx, res, len(queue)+1, actor)
			if err != nil {
				return err
			}
			decision.WaitlistEntry = entry
			decision.QueueAhead = len(queue)
		}

		return s.Events.Publish(ctx, s.admissionEvents(res)...)
	})
	if err != nil {
		return nil, expired, err
	}
	return decision, expired, nil
}

// Decide resolves the admission status. A live queue forces the waitlist so
// nobody overtakes a party already waiting; otherwise the request is seated
// when it fits.
func Decide(queueLength int, usage slots.Usage, partySize int, requiresApproval bool) reservations.Status {
	if queueLength > 0 || !usage.Fits(partySize) {
		return reservations.StatusWaitlist
	}
	if requiresApproval {
		return reservations.StatusPendingProValidation
	}
	return reservations.StatusConfirmed
}

func (s *service) newReservation(slot *slots.Slot, req CreateReservationRequest, caller middleware.Identity, status reservations.Status, deposit int64) *reservations.Reservation {
	now := s.Clock.Now()
	slotID := slot.ID

	paymentStatus := reservations.PaymentNotRequired
	if deposit > 0 || req.TotalAmount > 0 {
		paymentStatus = reservations.PaymentPending
	}

	return &reservations.Reservation{
		ID:               uuid.New(),
		PartyID:          caller.PartyID,
		ContactEmail:     caller.Email,
		VenueID:          slot.VenueID,
		SlotID:           &slotID,
		StartTime:        slot.StartTime,
		EndTime:          slot.EndTime,
		PartySize:        req.PartySize,
		Status:           status,
		PaymentStatus:    paymentStatus,
		DepositAmount:    deposit,
		TotalAmount:      req.TotalAmount,
		PaymentReference: req.PaymentReference,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (s *service) admissionEvents(res *reservations.Reservation) []outbox.Event {
	now := s.Clock.Now()
	switch res.Status {
	case reservations.StatusWaitlist:
		return []outbox.Event{res.Event(outbox.EventReservationWaitlisted, now)}
	case reservations.StatusPendingProValidation:
		return []outbox.Event{res.Event(outbox.EventReservationPendingValidation, now)}
	}

	events := []outbox.Event{res.Event(outbox.EventReservationConfirmed, now)}
	if escrow, ok := res.EscrowEvent(now); ok {
		events = append(events, escrow)
	}
	return events
}

func (s *service) resolveSlot(ctx context.Context, req CreateReservationRequest) (*slots.Slot, error) {
	var (
		slot *slots.Slot
		err  error
	)
	switch {
	case req.SlotID != nil:
		slot, err = s.Slots.GetByID(ctx, *req.SlotID)
	case req.VenueID != nil && req.StartTime != nil:
		slot, err = s.Slots.FindByVenueAndStart(ctx, *req.VenueID, req.StartTime.UTC())
	default:
		return nil, ErrMissingSlot
	}
	if err != nil {
		return nil, err
	}
	if !slot.IsActive {
		return nil, slots.ErrSlotNotFound
	}
	return slot, nil
}

func (s *service) validateWindow(slot *slots.Slot) error {
	now := s.Clock.Now()
	if slot.StartTime.Before(now.Add(-s.Config.ClockSkewTolerance)) {
		return ErrDateInPast
	}
	if s.Config.MaxBookingHorizon > 0 && slot.StartTime.After(now.Add(s.Config.MaxBookingHorizon)) {
		return ErrDateTooFarInFuture
	}
	return nil
}

func retryable(err error) bool {
	return errors.Is(err, locks.ErrNotAcquired) || transaction.IsSerializationFailure(err)
}
