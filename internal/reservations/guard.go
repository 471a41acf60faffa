package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActiveReader lists a party's reservations in an active status
type ActiveReader interface {
	ListActiveByParty(ctx context.Context, partyID uuid.UUID) ([]*Reservation, error)
}

// Candidate is a reservation about to be created or moved
type Candidate struct {
	PartyID   uuid.UUID
	VenueID   uuid.UUID
	SlotID    *uuid.UUID
	StartTime time.Time
	EndTime   *time.Time
	// ExcludeID skips the reservation being modified
	ExcludeID *uuid.UUID
}

// Guard rejects duplicate bookings on one slot and overlapping bookings of one party
type Guard struct {
	reader          ActiveReader
	defaultDuration time.Duration
	buffer          time.Duration
}

func NewGuard(reader ActiveReader, defaultDuration, buffer time.Duration) *Guard {
	return &Guard{reader: reader, defaultDuration: defaultDuration, buffer: buffer}
}

func (g *Guard) Check(ctx context.Context, c Candidate) error {
	existing, err := g.reader.ListActiveByParty(ctx, c.PartyID)
	if err != nil {
		return err
	}
	return g.Evaluate(c, existing)
}

// Evaluate runs both rules against the party's active reservations. Duplicates
// are reported ahead of overlaps.
func (g *Guard) Evaluate(c Candidate, existing []*Reservation) error {
	others := make([]*Reservation, 0, len(existing))
	for _, r := range existing {
		if !r.Status.IsActive() {
			continue
		}
		if c.ExcludeID != nil && r.ID == *c.ExcludeID {
			continue
		}
		if g.sameSlot(c, r) {
			return ErrDuplicateSlotBooking
		}
		others = append(others, r)
	}

	newStart, newEnd := g.window(c.StartTime, c.EndTime)
	newStart = newStart.Add(-g.buffer)
	newEnd = newEnd.Add(g.buffer)

	for _, r := range others {
		start, end := r.Window(g.defaultDuration)
		if start.Before(newEnd) && end.After(newStart) {
			return ErrOverlappingReservation
		}
	}
	return nil
}

func (g *Guard) sameSlot(c Candidate, r *Reservation) bool {
	if c.SlotID != nil && r.SlotID != nil {
		return *c.SlotID == *r.SlotID
	}
	// legacy rows carry no slot; the venue and start time identify the slot
	return r.VenueID == c.VenueID && r.StartTime.Equal(c.StartTime)
}

func (g *Guard) window(start time.Time, end *time.Time) (time.Time, time.Time) {
	if end != nil {
		return start, *end
	}
	return start, start.Add(g.defaultDuration)
}
