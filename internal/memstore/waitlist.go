package memstore

import (
	"bytes"
	"context"
	"sort"
	"time"

	"venuebook/internal/reservations"
	"venuebook/internal/waitlist"

	"github.com/google/uuid"
)

type entryRepo struct{ s *Store }

func cloneEntry(e *waitlist.Entry) *waitlist.Entry {
	c := *e
	c.OfferSentAt = copyTime(e.OfferSentAt)
	c.OfferExpiresAt = copyTime(e.OfferExpiresAt)
	return &c
}

func (r *entryRepo) Create(ctx context.Context, entry *waitlist.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = waitlist.NewEntryID()
	}
	// one live entry per party and slot
	if containsStatus(waitlist.LiveStatuses(), entry.Status) {
		for _, e := range r.s.entries {
			if e.PartyID == entry.PartyID && e.SlotID == entry.SlotID &&
				containsStatus(waitlist.LiveStatuses(), e.Status) {
				return reservations.ErrDuplicateSlotBooking
			}
		}
	}
	stamp(&entry.CreatedAt, &entry.UpdatedAt)
	r.s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (r *entryRepo) GetByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.entries[id]
	if !ok {
		return nil, waitlist.ErrEntryNotFound
	}
	return cloneEntry(e), nil
}

func (r *entryRepo) GetLiveByReservation(ctx context.Context, reservationID uuid.UUID) (*waitlist.Entry, error) {
	live := r.filter(func(e *waitlist.Entry) bool {
		return e.ReservationID == reservationID && containsStatus(waitlist.LiveStatuses(), e.Status)
	})
	if len(live) == 0 {
		return nil, waitlist.ErrEntryNotFound
	}
	return live[0], nil
}

func (r *entryRepo) ListLiveBySlot(ctx context.Context, slotID uuid.UUID) ([]*waitlist.Entry, error) {
	out := r.filter(func(e *waitlist.Entry) bool {
		return e.SlotID == slotID && containsStatus(waitlist.LiveStatuses(), e.Status)
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (r *entryRepo) ListByParty(ctx context.Context, partyID uuid.UUID) ([]*waitlist.Entry, error) {
	out := r.filter(func(e *waitlist.Entry) bool { return e.PartyID == partyID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *entryRepo) ListDueOffers(ctx context.Context, at time.Time, limit int) ([]*waitlist.Entry, error) {
	out := r.filter(func(e *waitlist.Entry) bool {
		return e.Status == waitlist.StatusOfferSent && e.OfferExpiresAt != nil && !e.OfferExpiresAt.After(at)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].OfferExpiresAt.Before(*out[j].OfferExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *entryRepo) UpdateIfStatus(ctx context.Context, entry *waitlist.Entry, from waitlist.Status) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.entries[entry.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = entry.Status
	stored.PartySize = entry.PartySize
	stored.OfferSentAt = copyTime(entry.OfferSentAt)
	stored.OfferExpiresAt = copyTime(entry.OfferExpiresAt)
	stored.UpdatedAt = entry.UpdatedAt
	return true, nil
}

func (r *entryRepo) filter(keep func(*waitlist.Entry) bool) []*waitlist.Entry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*waitlist.Entry
	for _, e := range r.s.entries {
		if keep(e) {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}
