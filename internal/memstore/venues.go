package memstore

import (
	"context"
	"sort"

	"venuebook/internal/venues"

	"github.com/google/uuid"
)

type venueRepo struct{ s *Store }

func cloneVenue(v *venues.Venue) *venues.Venue {
	c := *v
	return &c
}

func (r *venueRepo) Create(ctx context.Context, venue *venues.Venue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if venue.ID == uuid.Nil {
		venue.ID = uuid.New()
	}
	stamp(&venue.CreatedAt, &venue.UpdatedAt)
	r.s.venues[venue.ID] = cloneVenue(venue)
	return nil
}

func (r *venueRepo) GetByID(ctx context.Context, id uuid.UUID) (*venues.Venue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.venues[id]
	if !ok {
		return nil, venues.ErrVenueNotFound
	}
	return cloneVenue(v), nil
}

func (r *venueRepo) Update(ctx context.Context, venue *venues.Venue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.venues[venue.ID]
	if !ok {
		return venues.ErrVenueNotFound
	}
	stored.Name = venue.Name
	stored.Address = venue.Address
	stored.ContactEmail = venue.ContactEmail
	stored.RequiresApproval = venue.RequiresApproval
	stored.DepositAmount = venue.DepositAmount
	stored.UpdatedAt = now()
	return nil
}

func (r *venueRepo) List(ctx context.Context) ([]*venues.Venue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*venues.Venue, 0, len(r.s.venues))
	for _, v := range r.s.venues {
		out = append(out, cloneVenue(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
