package waitlist

import (
	"context"
	"time"

	"venuebook/internal/audit"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/clock"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

type EngineDeps struct {
	Entries      Repository
	Reservations reservations.Repository
	Audit        audit.Repository
	Events       outbox.EventPublisher
	Clock        clock.Clock
	OfferTTL     time.Duration
	Logger       *logger.Logger
}

// Engine persists waitlist transitions together with their reservation,
// audit and outbox side effects. Every method expects to run inside the
// caller's transaction and never triggers promotion itself.
type Engine struct {
	EngineDeps
}

func NewEngine(deps EngineDeps) *Engine {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.OfferTTL <= 0 {
		deps.OfferTTL = 30 * time.Minute
	}
	return &Engine{EngineDeps: deps}
}

// Enqueue creates the waiting entry for a reservation admitted to the waitlist
func (e *Engine) Enqueue(ctx context.Context, res *reservations.Reservation, position int, actor audit.Actor) (*Entry, error) {
	now := e.Clock.Now()
	entry := &Entry{
		ID:            NewEntryID(),
		ReservationID: res.ID,
		SlotID:        *res.SlotID,
		PartyID:       res.PartyID,
		PartySize:     res.PartySize,
		Status:        StatusWaiting,
		PositionHint:  position,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.Entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	if err := e.Audit.Append(ctx, audit.NewEntry(audit.EntityWaitlistEntry, entry.ID, actor,
		"enqueue", "", string(StatusWaiting), entry.Snapshot())); err != nil {
		return nil, err
	}
	return entry, nil
}

// Expire lazily expires entry when its offer deadline has passed. It reports
// true only for the call whose conditional update won; entry is refreshed either way.
func (e *Engine) Expire(ctx context.Context, entry *Entry) (bool, error) {
	next, due := ExpireIfDue(*entry, e.Clock.Now())
	if !due {
		return false, nil
	}

	won, err := e.Entries.UpdateIfStatus(ctx, &next, StatusOfferSent)
	if err != nil {
		return false, err
	}
	if !won {
		fresh, err := e.Entries.GetByID(ctx, entry.ID)
		if err != nil {
			return false, err
		}
		*entry = *fresh
		return false, nil
	}
	*entry = next

	res, err := e.closeReservation(ctx, entry, reservations.StatusExpired, reservations.ReasonOfferExpiry, audit.System())
	if err != nil {
		return false, err
	}
	if err := e.record(ctx, entry, StatusOfferSent, audit.System(), "offer_expired"); err != nil {
		return false, err
	}
	if err := e.Events.Publish(ctx, e.event(outbox.EventOfferExpired, entry, res)); err != nil {
		return false, err
	}

	e.Logger.LogOfferExpired(ctx, entry.ID.String(), entry.SlotID.String())
	return true, nil
}

// ExpireDueOnSlot expires every due offer in the slot's queue and returns the
// entries still live, in queue order
func (e *Engine) ExpireDueOnSlot(ctx context.Context, slotID uuid.UUID) ([]*Entry, int, error) {
	queue, err := e.Entries.ListLiveBySlot(ctx, slotID)
	if err != nil {
		return nil, 0, err
	}

	live := make([]*Entry, 0, len(queue))
	expired := 0
	for _, entry := range queue {
		won, err := e.Expire(ctx, entry)
		if err != nil {
			return nil, 0, err
		}
		if won {
			expired++
		}
		if entry.Status.IsLive() {
			live = append(live, entry)
		}
	}
	return live, expired, nil
}

// Offer moves a waiting entry to offer_sent. It reports false when another
// pass already moved the entry.
func (e *Engine) Offer(ctx context.Context, entry *Entry) (bool, error) {
	now := e.Clock.Now()
	next, err := Offer(*entry, now, e.OfferTTL)
	if err != nil {
		return false, nil
	}

	won, err := e.Entries.UpdateIfStatus(ctx, &next, StatusWaiting)
	if err != nil || !won {
		return false, err
	}
	*entry = next

	res, err := e.Reservations.GetByID(ctx, entry.ReservationID)
	if err != nil {
		return false, err
	}
	if err := e.record(ctx, entry, StatusWaiting, audit.System(), "offer_sent"); err != nil {
		return false, err
	}
	if err := e.Events.Publish(ctx, e.event(outbox.EventOfferSent, entry, res)); err != nil {
		return false, err
	}

	e.Logger.LogOfferIssued(ctx, entry.ID.String(), entry.SlotID.String(), *entry.OfferExpiresAt)
	return true, nil
}

// Convert turns an accepted offer into a confirmed reservation adopting the
// slot's authoritative window. Capacity and payment are checked by the caller.
func (e *Engine) Convert(ctx context.Context, entry *Entry, res *reservations.Reservation, start time.Time, end *time.Time, actor audit.Actor) error {
	now := e.Clock.Now()
	next, err := Transition(*entry, StatusConverted, now)
	if err != nil {
		return ErrOfferNotActive
	}
	won, err := e.Entries.UpdateIfStatus(ctx, &next, StatusOfferSent)
	if err != nil {
		return err
	}
	if !won {
		return ErrOfferNotActive
	}
	*entry = next

	res.Status = reservations.StatusConfirmed
	res.StartTime = start
	res.EndTime = end
	ok, err := e.Reservations.UpdateIfStatus(ctx, res, reservations.StatusWaitlist)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOfferNotActive
	}

	if err := e.record(ctx, entry, StatusOfferSent, actor, "offer_accepted"); err != nil {
		return err
	}
	if err := e.Audit.Append(ctx, audit.NewEntry(audit.EntityReservation, res.ID, actor,
		"offer_accepted", string(reservations.StatusWaitlist), string(res.Status), res.Snapshot())); err != nil {
		return err
	}

	events := []outbox.Event{
		e.event(outbox.EventOfferConverted, entry, res),
		res.Event(outbox.EventReservationConfirmed, now),
	}
	if escrow, ok := res.EscrowEvent(now); ok {
		events = append(events, escrow)
	}
	return e.Events.Publish(ctx, events...)
}

// Refuse closes an open offer at the party's request
func (e *Engine) Refuse(ctx context.Context, entry *Entry, actor audit.Actor) (*reservations.Reservation, error) {
	return e.close(ctx, entry, StatusRefused, actor, "offer_refused", outbox.EventOfferRefused)
}

// Withdraw takes a live entry out of the queue. The returned bool reports
// whether the entry held an offer, which means seats were set aside for it.
func (e *Engine) Withdraw(ctx context.Context, entry *Entry, actor audit.Actor) (*reservations.Reservation, bool, error) {
	heldOffer := entry.Status == StatusOfferSent
	res, err := e.close(ctx, entry, StatusCancelled, actor, "withdrawn", outbox.EventEntryWithdrawn)
	return res, heldOffer, err
}

func (e *Engine) close(ctx context.Context, entry *Entry, to Status, actor audit.Actor, action string, eventType outbox.EventType) (*reservations.Reservation, error) {
	from := entry.Status
	next, err := Transition(*entry, to, e.Clock.Now())
	if err != nil {
		return nil, ErrOfferNotActive
	}
	won, err := e.Entries.UpdateIfStatus(ctx, &next, from)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrOfferNotActive
	}
	*entry = next

	res, err := e.closeReservation(ctx, entry, reservations.StatusCancelledUser, action, actor)
	if err != nil {
		return nil, err
	}
	if err := e.record(ctx, entry, from, actor, action); err != nil {
		return nil, err
	}
	if err := e.Events.Publish(ctx, e.event(eventType, entry, res)); err != nil {
		return nil, err
	}
	return res, nil
}

// closeReservation ends the linked reservation when it is still waitlisted
func (e *Engine) closeReservation(ctx context.Context, entry *Entry, to reservations.Status, reason string, actor audit.Actor) (*reservations.Reservation, error) {
	res, err := e.Reservations.GetByID(ctx, entry.ReservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != reservations.StatusWaitlist {
		return res, nil
	}

	now := e.Clock.Now()
	res.Status = to
	res.CancelledAt = &now
	meta := map[string]interface{}{reservations.MetaReason: reason}
	if actor.ID != nil {
		meta[reservations.MetaCancelledBy] = actor.ID.String()
	}
	meta[reservations.MetaCancelRole] = actor.Role
	res.Metadata = res.Metadata.Merge(meta)

	ok, err := e.Reservations.UpdateIfStatus(ctx, res, reservations.StatusWaitlist)
	if err != nil {
		return nil, err
	}
	if !ok {
		return e.Reservations.GetByID(ctx, entry.ReservationID)
	}

	err = e.Audit.Append(ctx, audit.NewEntry(audit.EntityReservation, res.ID, actor,
		reason, string(reservations.StatusWaitlist), string(to), res.Snapshot()))
	return res, err
}

func (e *Engine) record(ctx context.Context, entry *Entry, from Status, actor audit.Actor, action string) error {
	return e.Audit.Append(ctx, audit.NewEntry(audit.EntityWaitlistEntry, entry.ID, actor,
		action, string(from), string(entry.Status), entry.Snapshot()))
}

func (e *Engine) event(eventType outbox.EventType, entry *Entry, res *reservations.Reservation) outbox.Event {
	event := res.Event(eventType, e.Clock.Now())
	id := entry.ID
	event.WaitlistEntryID = &id
	event.OfferExpiresAt = entry.OfferExpiresAt
	return event
}
