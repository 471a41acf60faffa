package memstore

import (
	"context"
	"sort"
	"time"

	"venuebook/internal/reservations"

	"github.com/google/uuid"
)

type reservationRepo struct{ s *Store }

func cloneReservation(r *reservations.Reservation) *reservations.Reservation {
	c := *r
	c.SlotID = copyUUID(r.SlotID)
	c.EndTime = copyTime(r.EndTime)
	c.CancelledAt = copyTime(r.CancelledAt)
	if r.Metadata != nil {
		c.Metadata = r.Metadata.Clone()
	}
	return &c
}

func (r *reservationRepo) Create(ctx context.Context, reservation *reservations.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	stamp(&reservation.CreatedAt, &reservation.UpdatedAt)
	r.s.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (r *reservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, reservations.ErrReservationNotFound
	}
	return cloneReservation(res), nil
}

func (r *reservationRepo) UpdateIfStatus(ctx context.Context, reservation *reservations.Reservation, expected ...reservations.Status) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.reservations[reservation.ID]
	if !ok || !containsStatus(expected, stored.Status) {
		return false, nil
	}

	reservation.UpdatedAt = now()
	next := cloneReservation(reservation)
	// identity and amounts are fixed at creation
	next.PartyID = stored.PartyID
	next.VenueID = stored.VenueID
	next.ContactEmail = stored.ContactEmail
	next.DepositAmount = stored.DepositAmount
	next.TotalAmount = stored.TotalAmount
	next.CreatedAt = stored.CreatedAt
	r.s.reservations[reservation.ID] = next
	return true, nil
}

func (r *reservationRepo) ListActiveByParty(ctx context.Context, partyID uuid.UUID) ([]*reservations.Reservation, error) {
	active := reservations.ActiveStatuses()
	return r.filter(func(res *reservations.Reservation) bool {
		return res.PartyID == partyID && containsStatus(active, res.Status)
	}, nil), nil
}

func (r *reservationRepo) ListByParty(ctx context.Context, partyID uuid.UUID) ([]*reservations.Reservation, error) {
	return r.filter(func(res *reservations.Reservation) bool {
		return res.PartyID == partyID
	}, func(a, b *reservations.Reservation) bool {
		return a.StartTime.After(b.StartTime)
	}), nil
}

func (r *reservationRepo) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]*reservations.Reservation, error) {
	return r.filter(func(res *reservations.Reservation) bool {
		return res.SlotID != nil && *res.SlotID == slotID
	}, func(a, b *reservations.Reservation) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	}), nil
}

func (r *reservationRepo) SumOccupying(ctx context.Context, slotID uuid.UUID) (int, error) {
	occupying := reservations.OccupyingStatuses()
	total := 0
	for _, res := range r.filter(func(res *reservations.Reservation) bool {
		return res.SlotID != nil && *res.SlotID == slotID && containsStatus(occupying, res.Status)
	}, nil) {
		total += res.PartySize
	}
	return total, nil
}

func (r *reservationRepo) SumOccupyingLegacy(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int, error) {
	occupying := reservations.OccupyingStatuses()
	total := 0
	for _, res := range r.filter(func(res *reservations.Reservation) bool {
		return res.SlotID == nil && res.VenueID == venueID &&
			!res.StartTime.Before(from) && res.StartTime.Before(to) &&
			containsStatus(occupying, res.Status)
	}, nil) {
		total += res.PartySize
	}
	return total, nil
}

func (r *reservationRepo) filter(keep func(*reservations.Reservation) bool, less func(a, b *reservations.Reservation) bool) []*reservations.Reservation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*reservations.Reservation
	for _, res := range r.s.reservations {
		if keep(res) {
			out = append(out, cloneReservation(res))
		}
	}
	if less != nil {
		sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}
