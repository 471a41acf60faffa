package waitlist

import (
	"context"
	"errors"

	"venuebook/internal/audit"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/locks"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

// OfferResult is returned by the offer actions: the entry after the
// transition and the reservation it is linked to
type OfferResult struct {
	Entry       *Entry                    `json:"entry"`
	Reservation *reservations.Reservation `json:"reservation"`
}

// Service is the party-facing and venue-facing side of the waitlist
type Service interface {
	GetEntry(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Entry, error)
	ListMine(ctx context.Context, partyID uuid.UUID) ([]*Entry, error)
	ListSlotQueue(ctx context.Context, slotID uuid.UUID, caller middleware.Identity) ([]*Entry, error)
	QueueLength(ctx context.Context, slotID uuid.UUID) (int, error)

	AcceptOffer(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*OfferResult, error)
	RefuseOffer(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*OfferResult, error)
	Withdraw(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*OfferResult, error)

	PromoteNow(ctx context.Context, slotID uuid.UUID) ([]*Entry, error)
}

type Deps struct {
	Entries      Repository
	Reservations reservations.Repository
	Slots        slots.Repository
	Accountant   *slots.Accountant
	Engine       *Engine
	Promoter     *Promoter
	Locker       locks.SlotLocker
	Tx           transaction.Manager
	Trigger      slots.PromotionTrigger
	Logger       *logger.Logger
}

type service struct {
	Deps
}

func NewService(deps Deps) Service {
	return &service{Deps: deps}
}

// GetEntry returns the entry, expiring its offer first when the deadline has passed
func (s *service) GetEntry(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*Entry, error) {
	var (
		entry   *Entry
		expired bool
	)
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.Entries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.canView(ctx, entry, caller) {
			return ErrEntryNotFound
		}
		expired, err = s.Engine.Expire(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	if expired {
		s.Trigger.Trigger(entry.SlotID)
	}
	return entry, nil
}

func (s *service) ListMine(ctx context.Context, partyID uuid.UUID) ([]*Entry, error) {
	entries, err := s.Entries.ListByParty(ctx, partyID)
	if err != nil {
		return nil, err
	}

	expiredSlots := make(map[uuid.UUID]struct{})
	err = s.Tx.Run(ctx, func(ctx context.Context) error {
		for _, entry := range entries {
			won, err := s.Engine.Expire(ctx, entry)
			if err != nil {
				return err
			}
			if won {
				expiredSlots[entry.SlotID] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for slotID := range expiredSlots {
		s.Trigger.Trigger(slotID)
	}
	return entries, nil
}

func (s *service) ListSlotQueue(ctx context.Context, slotID uuid.UUID, caller middleware.Identity) ([]*Entry, error) {
	slot, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !caller.ManagesVenue(slot.VenueID) {
		return nil, apperr.ErrForbidden
	}
	return s.liveQueue(ctx, slotID)
}

// QueueLength counts the live entries on a slot after lazy expiry
func (s *service) QueueLength(ctx context.Context, slotID uuid.UUID) (int, error) {
	live, err := s.liveQueue(ctx, slotID)
	if err != nil {
		return 0, err
	}
	return len(live), nil
}

func (s *service) liveQueue(ctx context.Context, slotID uuid.UUID) ([]*Entry, error) {
	var (
		live    []*Entry
		expired int
	)
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		var err error
		live, expired, err = s.Engine.ExpireDueOnSlot(ctx, slotID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if expired > 0 {
		s.Trigger.Trigger(slotID)
	}
	return live, nil
}

// AcceptOffer converts an open offer into a confirmed reservation. The slot
// lock is held so the capacity check and the conversion are one decision.
func (s *service) AcceptOffer(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*OfferResult, error) {
	entry, err := s.Entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.PartyID != caller.PartyID {
		return nil, ErrEntryNotFound
	}

	unlock, err := s.Locker.Lock(ctx, entry.SlotID)
	if errors.Is(err, locks.ErrNotAcquired) {
		return nil, apperr.ErrSlotBusy
	}
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		result  *OfferResult
		outcome error
		expired bool
	)
	err = s.Tx.Run(ctx, func(ctx context.Context) error {
		entry, err := s.Entries.GetByID(ctx, id)
		if err != nil {
			return err
		}

		// a lapsed offer is expired and committed before the caller sees the error
		expired, err = s.Engine.Expire(ctx, entry)
		if err != nil {
			return err
		}
		if expired || entry.Status == StatusExpired {
			outcome = ErrOfferExpired
			return nil
		}
		if entry.Status != StatusOfferSent {
			return ErrOfferNotActive
		}

		res, err := s.Reservations.GetByID(ctx, entry.ReservationID)
		if err != nil {
			return err
		}
		if !res.DepositSatisfied() {
			return ErrPaymentRequired
		}

		slot, err := s.Slots.GetForUpdate(ctx, entry.SlotID)
		if err != nil {
			return err
		}
		if !slot.IsActive {
			return ErrOfferNoLongerAvailable
		}
		usage, err := s.Accountant.Usage(ctx, slot)
		if err != nil {
			return err
		}
		if !usage.Fits(entry.PartySize) {
			return ErrOfferNoLongerAvailable
		}

		actor := audit.Party(caller.PartyID, caller.Role)
		if err := s.Engine.Convert(ctx, entry, res, slot.StartTime, slot.EndTime, actor); err != nil {
			return err
		}
		result = &OfferResult{Entry: entry, Reservation: res}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired {
		s.Trigger.Trigger(entry.SlotID)
	}
	if outcome != nil {
		return nil, outcome
	}
	return result, nil
}

func (s *service) RefuseOffer(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*OfferResult, error) {
	return s.closeEntry(ctx, id, caller, func(ctx context.Context, entry *Entry, actor audit.Actor) (*reservations.Reservation, bool, error) {
		if entry.Status != StatusOfferSent {
			return nil, false, ErrOfferNotActive
		}
		res, err := s.Engine.Refuse(ctx, entry, actor)
		return res, true, err
	})
}

// Withdraw takes the caller's entry out of the queue, open offer or not
func (s *service) Withdraw(ctx context.Context, id uuid.UUID, caller middleware.Identity) (*OfferResult, error) {
	return s.closeEntry(ctx, id, caller, func(ctx context.Context, entry *Entry, actor audit.Actor) (*reservations.Reservation, bool, error) {
		if !entry.Status.IsLive() {
			return nil, false, ErrOfferNotActive
		}
		return s.Engine.Withdraw(ctx, entry, actor)
	})
}

// closeFunc performs the transition and reports whether it released offered seats
type closeFunc func(ctx context.Context, entry *Entry, actor audit.Actor) (*reservations.Reservation, bool, error)

func (s *service) closeEntry(ctx context.Context, id uuid.UUID, caller middleware.Identity, fn closeFunc) (*OfferResult, error) {
	var (
		result  *OfferResult
		outcome error
		cascade bool
		slotID  uuid.UUID
	)
	err := s.Tx.Run(ctx, func(ctx context.Context) error {
		entry, err := s.Entries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if entry.PartyID != caller.PartyID {
			return ErrEntryNotFound
		}
		slotID = entry.SlotID

		expired, err := s.Engine.Expire(ctx, entry)
		if err != nil {
			return err
		}
		if expired {
			cascade = true
			outcome = ErrOfferExpired
			return nil
		}

		res, released, err := fn(ctx, entry, audit.Party(caller.PartyID, caller.Role))
		if err != nil {
			return err
		}
		cascade = released
		result = &OfferResult{Entry: entry, Reservation: res}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cascade {
		s.Trigger.Trigger(slotID)
	}
	if outcome != nil {
		return nil, outcome
	}
	return result, nil
}

func (s *service) PromoteNow(ctx context.Context, slotID uuid.UUID) ([]*Entry, error) {
	return s.Promoter.Promote(ctx, slotID)
}

func (s *service) canView(ctx context.Context, entry *Entry, caller middleware.Identity) bool {
	if entry.PartyID == caller.PartyID || caller.IsAdmin() {
		return true
	}
	slot, err := s.Slots.GetByID(ctx, entry.SlotID)
	if err != nil {
		return false
	}
	return caller.ManagesVenue(slot.VenueID)
}
