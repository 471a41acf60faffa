package cancellation

import (
	"context"
	"errors"

	"venuebook/internal/audit"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/constants"
	"venuebook/internal/shared/locks"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/internal/waitlist"
	"venuebook/pkg/cache"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for cancellation business logic
type Service interface {
	Cancel(ctx context.Context, id uuid.UUID, caller middleware.Identity, reason string) (*CancelResult, error)
	CancelByVenue(ctx context.Context, id uuid.UUID, caller middleware.Identity, reason string) (*CancelResult, error)

	RequestModification(ctx context.Context, id uuid.UUID, caller middleware.Identity, req ModificationRequestDTO) (*ModificationRequest, error)
	DecideModification(ctx context.Context, modID uuid.UUID, caller middleware.Identity, req DecideModificationRequest) (*ModificationRequest, error)
	ListModifications(ctx context.Context, id uuid.UUID, caller middleware.Identity) ([]*ModificationRequest, error)

	GetPolicy(ctx context.Context, venueID uuid.UUID) (*Policy, error)
	UpsertPolicy(ctx context.Context, venueID uuid.UUID, caller middleware.Identity, req PolicyRequest) (*Policy, error)
}

// CancelResult is returned to the caller of a cancellation
type CancelResult struct {
	Reservation   *reservations.Reservation `json:"reservation"`
	Cancellation  *Cancellation             `json:"cancellation"`
	RefundPercent int                       `json:"refund_percent"`
}

type Deps struct {
	Repo         Repository
	Reservations reservations.Repository
	Entries      waitlist.Repository
	Waitlist     *waitlist.Engine
	Slots        slots.Repository
	Venues       venues.Repository
	Accountant   *slots.Accountant
	Guard        *reservations.Guard
	Audit        audit.Repository
	Events       outbox.EventPublisher
	Locker       locks.SlotLocker
	Tx           transaction.Manager
	Trigger      slots.PromotionTrigger
	Cache        cache.Service
	Defaults     config.DefaultPolicyConfig
	Clock        clock.Clock
	Logger       *logger.Logger
}

// service implements the Service interface
type service struct {
	Deps
}

func NewService(deps Deps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	return &service{Deps: deps}
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, caller middleware.Identity, reason string) (*CancelResult, error) {
	return s.cancel(ctx, id, caller, reason, false)
}

func (s *service) CancelByVenue(ctx context.Context, id uuid.UUID, caller middleware.Identity, reason string) (*CancelResult, error) {
	return s.cancel(ctx, id, caller, reason, true)
}

func (s *service) cancel(ctx context.Context, id uuid.UUID, caller middleware.Identity, reason string, byVenue bool) (*CancelResult, error) {
	var (
		result  *CancelResult
		cascade bool
	)
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		res, err := s.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if byVenue && !caller.ManagesVenue(res.VenueID) {
			return apperr.ErrForbidden
		}
		if !byVenue && res.PartyID != caller.PartyID {
			return reservations.ErrReservationNotFound
		}

		policy, err := s.GetPolicy(ctx, res.VenueID)
		if err != nil {
			return err
		}
		now := s.Clock.Now()
		outcome, err := EvaluateCancellation(res, *policy, now, byVenue)
		if err != nil {
			return err
		}

		from := res.Status
		refundAmount := reservations.RefundAmount(res.PaidAmount(), outcome.RefundPercent)
		res.Status = outcome.Status
		res.CancelledAt = &now
		res.Metadata = res.Metadata.Merge(map[string]interface{}{
			reservations.MetaCancelledBy:   caller.PartyID.String(),
			reservations.MetaCancelRole:    caller.Role,
			reservations.MetaReason:        reason,
			reservations.MetaRefundPercent: outcome.RefundPercent,
			reservations.MetaRefundAmount:  refundAmount,
			reservations.MetaHoursToStart:  outcome.HoursToStart,
			reservations.MetaPolicy:        policy.Snapshot(),
		})
		ok, err := s.Reservations.UpdateIfStatus(ctx, res, from)
		if err != nil {
			return err
		}
		if !ok {
			return reservations.ErrStatusConflict
		}

		actor := audit.Party(caller.PartyID, caller.Role)
		heldOffer := false
		if from == reservations.StatusWaitlist {
			heldOffer, err = s.withdrawEntry(ctx, res.ID, actor)
			if err != nil {
				return err
			}
		}

		record := &Cancellation{
			ID:             uuid.New(),
			ReservationID:  res.ID,
			ActorID:        actor.ID,
			ActorRole:      caller.Role,
			Reason:         reason,
			HoursToStart:   outcome.HoursToStart,
			RefundPercent:  outcome.RefundPercent,
			RefundAmount:   refundAmount,
			PolicySnapshot: policy.Snapshot(),
			CreatedAt:      now,
		}
		if err := s.Repo.CreateCancellation(ctx, record); err != nil {
			return err
		}

		if err := s.Audit.Append(ctx, audit.NewEntry(audit.EntityReservation, res.ID, actor,
			"cancel", string(from), string(res.Status), res.Snapshot())); err != nil {
			return err
		}

		event := res.Event(outbox.EventReservationCancelled, now)
		event.Reason = reason
		event.RefundPercent = &outcome.RefundPercent
		event.Amount = refundAmount
		events := []outbox.Event{event}
		if refund, ok := res.RefundEvent(outcome.RefundPercent, now); ok {
			events = append(events, refund)
		}
		if err := s.Events.Publish(ctx, events...); err != nil {
			return err
		}

		cascade = from.IsOccupying() || heldOffer
		result = &CancelResult{Reservation: res, Cancellation: record, RefundPercent: outcome.RefundPercent}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cascade && result.Reservation.SlotID != nil {
		s.Trigger.Trigger(*result.Reservation.SlotID)
	}
	s.Logger.LogReservationCancelled(ctx, id.String(), caller.PartyID.String(), result.RefundPercent)
	return result, nil
}

// withdrawEntry closes the queue entry of a reservation that was cancelled
// while waitlisted and reports whether the entry held an offer
func (s *service) withdrawEntry(ctx context.Context, reservationID uuid.UUID, actor audit.Actor) (bool, error) {
	entry, err := s.Entries.GetLiveByReservation(ctx, reservationID)
	if errors.Is(err, waitlist.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, heldOffer, err := s.Waitlist.Withdraw(ctx, entry, actor)
	return heldOffer, err
}

func (s *service) RequestModification(ctx context.Context, id uuid.UUID, caller middleware.Identity, req ModificationRequestDTO) (*ModificationRequest, error) {
	if req.SlotID == nil && req.PartySize == nil {
		return nil, ErrModificationEmpty
	}
	if req.PartySize != nil && *req.PartySize < 1 {
		return nil, ErrModificationEmpty
	}

	var mod *ModificationRequest
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		res, err := s.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if res.PartyID != caller.PartyID {
			return reservations.ErrReservationNotFound
		}

		policy, err := s.GetPolicy(ctx, res.VenueID)
		if err != nil {
			return err
		}
		now := s.Clock.Now()
		if err := EvaluateModification(res, *policy, now); err != nil {
			return err
		}

		movesSlot := req.SlotID != nil && (res.SlotID == nil || *req.SlotID != *res.SlotID)
		resizes := req.PartySize != nil && *req.PartySize != res.PartySize
		if !movesSlot && !resizes {
			return ErrModificationEmpty
		}
		if movesSlot {
			if err := s.checkTarget(ctx, res, *req.SlotID); err != nil {
				return err
			}
		}

		pending, err := s.Repo.FindPendingModification(ctx, res.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return ErrModificationAlreadyPending
		}

		mod = &ModificationRequest{
			ID:             uuid.New(),
			ReservationID:  res.ID,
			RequestedBy:    caller.PartyID,
			Status:         ModificationPending,
			Reason:         req.Reason,
			PolicySnapshot: policy.Snapshot(),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if movesSlot {
			mod.RequestedSlotID = req.SlotID
		}
		if resizes {
			mod.RequestedPartySize = req.PartySize
		}
		if err := s.Repo.CreateModification(ctx, mod); err != nil {
			return err
		}

		if err := s.Audit.Append(ctx, audit.NewEntry(audit.EntityModification, mod.ID, audit.Party(caller.PartyID, caller.Role),
			"modification_requested", "", string(mod.Status), mod.Snapshot())); err != nil {
			return err
		}
		event := res.Event(outbox.EventModificationRequested, now)
		event.Reason = req.Reason
		return s.Events.Publish(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// checkTarget validates a slot a reservation is asked to move to
func (s *service) checkTarget(ctx context.Context, res *reservations.Reservation, slotID uuid.UUID) error {
	target, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if !target.IsActive || target.VenueID != res.VenueID {
		return slots.ErrSlotNotFound
	}
	if res.Status == reservations.StatusWaitlist {
		return ErrModificationCapacity
	}

	return s.Guard.Check(ctx, reservations.Candidate{
		PartyID:   res.PartyID,
		VenueID:   target.VenueID,
		SlotID:    &target.ID,
		StartTime: target.StartTime,
		EndTime:   target.EndTime,
		ExcludeID: &res.ID,
	})
}

// DecideModification applies or rejects a pending request. Acceptance runs
// under the target slot's lock because it consumes capacity there.
func (s *service) DecideModification(ctx context.Context, modID uuid.UUID, caller middleware.Identity, req DecideModificationRequest) (*ModificationRequest, error) {
	mod, err := s.Repo.GetModification(ctx, modID)
	if err != nil {
		return nil, err
	}
	res, err := s.Reservations.GetByID(ctx, mod.ReservationID)
	if err != nil {
		return nil, err
	}
	if !caller.ManagesVenue(res.VenueID) {
		return nil, apperr.ErrForbidden
	}
	if mod.Status != ModificationPending {
		return nil, ErrModificationNotPending
	}

	if !req.Accept {
		return s.reject(ctx, mod, caller, req.Reason)
	}

	targetID, err := s.targetSlot(ctx, mod, res)
	if err != nil {
		return nil, err
	}

	unlock, err := s.Locker.Lock(ctx, targetID)
	if errors.Is(err, locks.ErrNotAcquired) {
		return nil, apperr.ErrSlotBusy
	}
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		freed  []uuid.UUID
		lapsed int
	)
	err = s.Tx.Run(ctx, func(ctx context.Context) error {
		freed = nil
		lapsed = 0

		mod, err = s.Repo.GetModification(ctx, modID)
		if err != nil {
			return err
		}
		if mod.Status != ModificationPending {
			return ErrModificationNotPending
		}
		res, err = s.Reservations.GetByID(ctx, mod.ReservationID)
		if err != nil {
			return err
		}
		if !res.Status.IsOccupying() && res.Status != reservations.StatusWaitlist {
			return ErrModificationNotAllowed
		}

		target, err := s.Slots.GetForUpdate(ctx, targetID)
		if err != nil {
			return err
		}
		if !target.IsActive {
			return ErrModificationCapacity
		}

		freed, lapsed, err = s.apply(ctx, res, mod, target)
		if err != nil {
			return err
		}

		now := s.Clock.Now()
		decidedBy := caller.PartyID
		mod.Status = ModificationAccepted
		mod.DecidedBy = &decidedBy
		mod.DecidedAt = &now
		if req.Reason != "" {
			mod.Reason = req.Reason
		}
		ok, err := s.Repo.DecideModification(ctx, mod)
		if err != nil {
			return err
		}
		if !ok {
			return ErrModificationNotPending
		}

		actor := audit.Party(caller.PartyID, caller.Role)
		if err := s.Audit.Append(ctx,
			audit.NewEntry(audit.EntityModification, mod.ID, actor, "modification_accepted",
				string(ModificationPending), string(mod.Status), mod.Snapshot()),
			audit.NewEntry(audit.EntityReservation, res.ID, actor, "modification_applied",
				string(res.Status), string(res.Status), res.Snapshot()),
		); err != nil {
			return err
		}

		event := res.Event(outbox.EventModificationDecided, now)
		event.Reason = string(mod.Status)
		return s.Events.Publish(ctx, event)
	})
	if lapsed > 0 {
		s.Trigger.Trigger(targetID)
	}
	if err != nil {
		return nil, err
	}

	for _, slotID := range freed {
		s.Trigger.Trigger(slotID)
	}
	return mod, nil
}

// apply writes the requested change onto res and returns the slots that lost
// seats, plus how many offers on the target lapsed while checking it
func (s *service) apply(ctx context.Context, res *reservations.Reservation, mod *ModificationRequest, target *slots.Slot) ([]uuid.UUID, int, error) {
	newSize := res.PartySize
	if mod.RequestedPartySize != nil {
		newSize = *mod.RequestedPartySize
	}
	sameSlot := res.SlotID != nil && *res.SlotID == target.ID

	if res.Status == reservations.StatusWaitlist {
		if !sameSlot {
			return nil, 0, ErrModificationCapacity
		}
		return nil, 0, s.resizeWaitlisted(ctx, res, newSize)
	}

	queue, lapsed, err := s.Waitlist.ExpireDueOnSlot(ctx, target.ID)
	if err != nil {
		return nil, 0, err
	}

	// extra seats are new demand: a live queue, offers included, goes first
	growing := !sameSlot || newSize > res.PartySize
	if growing && len(queue) > 0 {
		return nil, lapsed, ErrModificationCapacity
	}

	usage, err := s.Accountant.Usage(ctx, target)
	if err != nil {
		return nil, lapsed, err
	}
	if !usage.Unlimited() {
		available := *usage.Remaining
		if sameSlot {
			available += res.PartySize
		}
		if newSize > available {
			return nil, lapsed, ErrModificationCapacity
		}
	}

	var freed []uuid.UUID
	if !sameSlot {
		if err := s.Guard.Check(ctx, reservations.Candidate{
			PartyID:   res.PartyID,
			VenueID:   target.VenueID,
			SlotID:    &target.ID,
			StartTime: target.StartTime,
			EndTime:   target.EndTime,
			ExcludeID: &res.ID,
		}); err != nil {
			return nil, lapsed, err
		}
		if res.SlotID != nil {
			freed = append(freed, *res.SlotID)
		}
	} else if newSize < res.PartySize {
		freed = append(freed, target.ID)
	}

	targetID := target.ID
	res.SlotID = &targetID
	res.StartTime = target.StartTime
	res.EndTime = target.EndTime
	res.PartySize = newSize
	ok, err := s.Reservations.UpdateIfStatus(ctx, res, res.Status)
	if err != nil {
		return nil, lapsed, err
	}
	if !ok {
		return nil, lapsed, reservations.ErrStatusConflict
	}
	return freed, lapsed, nil
}

// resizeWaitlisted changes the party size of a queued reservation. Only a
// waiting entry can change; an open offer was sized for the old party.
func (s *service) resizeWaitlisted(ctx context.Context, res *reservations.Reservation, newSize int) error {
	entry, err := s.Entries.GetLiveByReservation(ctx, res.ID)
	if err != nil {
		return err
	}
	if entry.Status != waitlist.StatusWaiting {
		return ErrModificationCapacity
	}

	entry.PartySize = newSize
	entry.UpdatedAt = s.Clock.Now()
	ok, err := s.Entries.UpdateIfStatus(ctx, entry, waitlist.StatusWaiting)
	if err != nil {
		return err
	}
	if !ok {
		return ErrModificationCapacity
	}

	res.PartySize = newSize
	ok, err = s.Reservations.UpdateIfStatus(ctx, res, reservations.StatusWaitlist)
	if err != nil {
		return err
	}
	if !ok {
		return reservations.ErrStatusConflict
	}
	return nil
}

func (s *service) targetSlot(ctx context.Context, mod *ModificationRequest, res *reservations.Reservation) (uuid.UUID, error) {
	if mod.RequestedSlotID != nil {
		return *mod.RequestedSlotID, nil
	}
	if res.SlotID != nil {
		return *res.SlotID, nil
	}

	// legacy reservation without a slot reference
	slot, err := s.Slots.FindByVenueAndStart(ctx, res.VenueID, res.StartTime)
	if errors.Is(err, slots.ErrSlotNotFound) {
		return uuid.Nil, ErrModificationCapacity
	}
	if err != nil {
		return uuid.Nil, err
	}
	return slot.ID, nil
}

func (s *service) reject(ctx context.Context, mod *ModificationRequest, caller middleware.Identity, reason string) (*ModificationRequest, error) {
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		now := s.Clock.Now()
		decidedBy := caller.PartyID
		mod.Status = ModificationRejected
		mod.DecidedBy = &decidedBy
		mod.DecidedAt = &now
		if reason != "" {
			mod.Reason = reason
		}

		ok, err := s.Repo.DecideModification(ctx, mod)
		if err != nil {
			return err
		}
		if !ok {
			return ErrModificationNotPending
		}

		if err := s.Audit.Append(ctx, audit.NewEntry(audit.EntityModification, mod.ID, audit.Party(caller.PartyID, caller.Role),
			"modification_rejected", string(ModificationPending), string(mod.Status), mod.Snapshot())); err != nil {
			return err
		}

		res, err := s.Reservations.GetByID(ctx, mod.ReservationID)
		if err != nil {
			return err
		}
		event := res.Event(outbox.EventModificationDecided, now)
		event.Reason = string(mod.Status)
		return s.Events.Publish(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func (s *service) ListModifications(ctx context.Context, id uuid.UUID, caller middleware.Identity) ([]*ModificationRequest, error) {
	res, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reservations.CanView(res, caller) {
		return nil, reservations.ErrReservationNotFound
	}
	return s.Repo.ListModifications(ctx, id)
}

// GetPolicy returns the venue's stored policy or the configured default
func (s *service) GetPolicy(ctx context.Context, venueID uuid.UUID) (*Policy, error) {
	load := func() (interface{}, error) {
		policy, err := s.Repo.GetPolicy(ctx, venueID)
		if errors.Is(err, ErrPolicyNotFound) {
			fallback := DefaultPolicy(venueID, s.Defaults)
			return &fallback, nil
		}
		return policy, err
	}

	if s.Cache == nil {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return value.(*Policy), nil
	}

	var policy Policy
	if err := s.Cache.GetOrSet(ctx, constants.CancellationPolicyKey(venueID), constants.TTL_CANCELLATION_POLICY, load, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (s *service) UpsertPolicy(ctx context.Context, venueID uuid.UUID, caller middleware.Identity, req PolicyRequest) (*Policy, error) {
	policy := &Policy{
		VenueID:                   venueID,
		CancellationEnabled:       req.CancellationEnabled,
		FreeCancellationHours:     req.FreeCancellationHours,
		PenaltyPercent:            req.PenaltyPercent,
		ModificationEnabled:       req.ModificationEnabled,
		ModificationDeadlineHours: req.ModificationDeadlineHours,
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		if _, err := s.Venues.GetByID(ctx, venueID); err != nil {
			return err
		}
		if err := s.Repo.UpsertPolicy(ctx, policy); err != nil {
			return err
		}
		return s.Audit.Append(ctx, audit.NewEntry(audit.EntityPolicy, venueID, audit.Party(caller.PartyID, caller.Role),
			"policy_updated", "", "", policy.Snapshot()))
	})
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, constants.CancellationPolicyKey(venueID)); err != nil {
			s.Logger.WarnWithContext(ctx, "failed to invalidate cancellation policy", err, map[string]interface{}{
				"venue_id": venueID.String(),
			})
		}
	}
	return policy, nil
}
