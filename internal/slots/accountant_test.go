package slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOccupancy struct {
	bySlot int
	legacy int
	from   time.Time
	to     time.Time
}

func (f *fakeOccupancy) SumOccupying(ctx context.Context, slotID uuid.UUID) (int, error) {
	return f.bySlot, nil
}

func (f *fakeOccupancy) SumOccupyingLegacy(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int, error) {
	f.from, f.to = from, to
	return f.legacy, nil
}

func intPtr(n int) *int { return &n }

func TestUsage(t *testing.T) {
	tests := []struct {
		name      string
		capacity  *int
		used      int
		party     int
		remaining *int
		fits      bool
	}{
		{"unlimited", nil, 500, 100, nil, true},
		{"exact fit", intPtr(10), 6, 4, intPtr(4), true},
		{"one too many", intPtr(10), 7, 4, intPtr(3), false},
		{"zero capacity", intPtr(0), 0, 1, intPtr(0), false},
		{"overbooked clamps at zero", intPtr(4), 6, 1, intPtr(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUsage(tt.capacity, tt.used)
			assert.Equal(t, tt.remaining, u.Remaining)
			assert.Equal(t, tt.capacity == nil, u.Unlimited())
			assert.Equal(t, tt.fits, u.Fits(tt.party))
		})
	}
}

func TestAccountant_AddsLegacyReservations(t *testing.T) {
	occupancy := &fakeOccupancy{bySlot: 5, legacy: 2}
	accountant := NewAccountant(occupancy, 2*time.Hour)

	start := time.Date(2030, 1, 1, 19, 0, 0, 0, time.UTC)
	slot := &Slot{ID: uuid.New(), VenueID: uuid.New(), StartTime: start, Capacity: intPtr(10)}

	usage, err := accountant.Usage(context.Background(), slot)
	require.NoError(t, err)

	assert.Equal(t, 7, usage.Used)
	assert.Equal(t, 3, *usage.Remaining)
	assert.Equal(t, start, occupancy.from)
	assert.Equal(t, start.Add(2*time.Hour), occupancy.to)
}
