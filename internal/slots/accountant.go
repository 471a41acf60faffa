package slots

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Usage is a slot's capacity figure at one instant. It is derived from the
// occupying reservations every time and never stored.
type Usage struct {
	Capacity  *int `json:"capacity"`
	Used      int  `json:"used"`
	Remaining *int `json:"remaining"`
}

func NewUsage(capacity *int, used int) Usage {
	u := Usage{Capacity: capacity, Used: used}
	if capacity != nil {
		remaining := *capacity - used
		if remaining < 0 {
			remaining = 0
		}
		u.Remaining = &remaining
	}
	return u
}

// Unlimited reports whether the slot has no capacity cap
func (u Usage) Unlimited() bool {
	return u.Remaining == nil
}

// Fits reports whether partySize more seats can be committed
func (u Usage) Fits(partySize int) bool {
	return u.Remaining == nil || *u.Remaining >= partySize
}

// OccupancyReader sums party sizes of reservations in an occupying status
type OccupancyReader interface {
	SumOccupying(ctx context.Context, slotID uuid.UUID) (int, error)
	// SumOccupyingLegacy covers reservations with no slot reference, keyed on
	// venue and start time instead.
	SumOccupyingLegacy(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int, error)
}

type Accountant struct {
	occupancy       OccupancyReader
	defaultDuration time.Duration
}

func NewAccountant(occupancy OccupancyReader, defaultDuration time.Duration) *Accountant {
	return &Accountant{occupancy: occupancy, defaultDuration: defaultDuration}
}

// Usage computes the slot's current usage. Callers that decide on the result
// must hold the slot lock and run inside the deciding transaction.
func (a *Accountant) Usage(ctx context.Context, slot *Slot) (Usage, error) {
	used, err := a.occupancy.SumOccupying(ctx, slot.ID)
	if err != nil {
		return Usage{}, err
	}

	from, to := slot.Window(a.defaultDuration)
	legacy, err := a.occupancy.SumOccupyingLegacy(ctx, slot.VenueID, from, to)
	if err != nil {
		return Usage{}, err
	}

	return NewUsage(slot.Capacity, used+legacy), nil
}
