package memstore

import (
	"context"
	"sort"
	"time"

	"venuebook/internal/slots"

	"github.com/google/uuid"
)

type slotRepo struct{ s *Store }

func cloneSlot(s *slots.Slot) *slots.Slot {
	c := *s
	c.EndTime = copyTime(s.EndTime)
	c.Capacity = copyInt(s.Capacity)
	return &c
}

func (r *slotRepo) Create(ctx context.Context, slot *slots.Slot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	stamp(&slot.CreatedAt, &slot.UpdatedAt)
	r.s.slots[slot.ID] = cloneSlot(slot)
	return nil
}

func (r *slotRepo) GetByID(ctx context.Context, id uuid.UUID) (*slots.Slot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return nil, slots.ErrSlotNotFound
	}
	return cloneSlot(slot), nil
}

// GetForUpdate relies on the slot locker for exclusion
func (r *slotRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*slots.Slot, error) {
	return r.GetByID(ctx, id)
}

func (r *slotRepo) FindByVenueAndStart(ctx context.Context, venueID uuid.UUID, start time.Time) (*slots.Slot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, slot := range r.s.slots {
		if slot.VenueID == venueID && slot.IsActive && slot.StartTime.Equal(start) {
			return cloneSlot(slot), nil
		}
	}
	return nil, slots.ErrSlotNotFound
}

func (r *slotRepo) ListByVenue(ctx context.Context, venueID uuid.UUID, from, to *time.Time) ([]*slots.Slot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*slots.Slot
	for _, slot := range r.s.slots {
		if slot.VenueID != venueID || !slot.IsActive {
			continue
		}
		if from != nil && slot.StartTime.Before(*from) {
			continue
		}
		if to != nil && !slot.StartTime.Before(*to) {
			continue
		}
		out = append(out, cloneSlot(slot))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *slotRepo) UpdateCapacity(ctx context.Context, id uuid.UUID, capacity *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return slots.ErrSlotNotFound
	}
	slot.Capacity = copyInt(capacity)
	slot.UpdatedAt = now()
	return nil
}

func (r *slotRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return slots.ErrSlotNotFound
	}
	slot.IsActive = active
	slot.UpdatedAt = now()
	return nil
}
