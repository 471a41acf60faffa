package admission

import (
	"context"
	"testing"
	"time"

	"venuebook/internal/memstore"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/locks"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		queue    int
		usage    slots.Usage
		party    int
		approval bool
		want     reservations.Status
	}{
		{"fits", 0, slots.NewUsage(intPtr(4), 0), 2, false, reservations.StatusConfirmed},
		{"fits exactly", 0, slots.NewUsage(intPtr(4), 2), 2, false, reservations.StatusConfirmed},
		{"does not fit", 0, slots.NewUsage(intPtr(4), 3), 2, false, reservations.StatusWaitlist},
		{"queue blocks a request that fits", 1, slots.NewUsage(intPtr(4), 0), 1, false, reservations.StatusWaitlist},
		{"approval required", 0, slots.NewUsage(intPtr(4), 0), 1, true, reservations.StatusPendingProValidation},
		{"queue wins over approval", 2, slots.NewUsage(intPtr(4), 0), 1, true, reservations.StatusWaitlist},
		{"unlimited", 0, slots.NewUsage(nil, 1000), 50, false, reservations.StatusConfirmed},
		{"zero capacity", 0, slots.NewUsage(intPtr(0), 0), 1, false, reservations.StatusWaitlist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.queue, tt.usage, tt.party, tt.approval))
		})
	}
}

type busyLocker struct {
	calls int
}

func (b *busyLocker) Lock(ctx context.Context, slotID uuid.UUID) (func(), error) {
	b.calls++
	return nil, locks.ErrNotAcquired
}

func newTestService(t *testing.T, locker locks.SlotLocker, clk clock.Clock) (Service, *slots.Slot) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	log := logger.NewDiscard()

	venue := &venues.Venue{Name: "Bistro"}
	require.NoError(t, store.Venues().Create(ctx, venue))

	slot := &slots.Slot{
		VenueID:   venue.ID,
		StartTime: clk.Now().Add(48 * time.Hour),
		Capacity:  intPtr(4),
		IsActive:  true,
	}
	require.NoError(t, store.Slots().Create(ctx, slot))

	svc := NewService(Deps{
		Reservations: store.Reservations(),
		Slots:        store.Slots(),
		Venues:       venues.NewService(store.Venues(), nil, log),
		Locker:       locker,
		Tx:           transaction.NoopManager{},
		Clock:        clk,
		Config: config.EngineConfig{
			ClockSkewTolerance:    5 * time.Minute,
			MaxBookingHorizon:     30 * 24 * time.Hour,
			AdmissionMaxAttempts:  3,
			AdmissionRetryBackoff: time.Millisecond,
		},
		Logger: log,
	})
	return svc, slot
}

func TestAdmit_RetriesThenReportsCapacityConflict(t *testing.T) {
	locker := &busyLocker{}
	svc, slot := newTestService(t, locker, clock.NewManual(time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)))

	_, err := svc.Admit(context.Background(), CreateReservationRequest{SlotID: &slot.ID, PartySize: 2},
		middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleUser})

	assert.ErrorIs(t, err, ErrCapacityConflict)
	assert.Equal(t, 3, locker.calls)
}

func TestAdmit_RejectsBeforeLocking(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	caller := middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleUser}

	tests := []struct {
		name    string
		req     func(slot *slots.Slot) CreateReservationRequest
		clock   time.Time
		wantErr error
	}{
		{
			name:    "party size zero",
			req:     func(s *slots.Slot) CreateReservationRequest { return CreateReservationRequest{SlotID: &s.ID} },
			clock:   now,
			wantErr: ErrInvalidPartySize,
		},
		{
			name: "negative deposit",
			req: func(s *slots.Slot) CreateReservationRequest {
				return CreateReservationRequest{SlotID: &s.ID, PartySize: 1, TotalAmount: -1}
			},
			clock:   now,
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "no slot reference",
			req:     func(s *slots.Slot) CreateReservationRequest { return CreateReservationRequest{PartySize: 1} },
			clock:   now,
			wantErr: ErrMissingSlot,
		},
		{
			name:    "slot already started",
			req:     func(s *slots.Slot) CreateReservationRequest { return CreateReservationRequest{SlotID: &s.ID, PartySize: 1} },
			clock:   now.Add(72 * time.Hour),
			wantErr: ErrDateInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.NewManual(now)
			locker := &busyLocker{}
			svc, slot := newTestService(t, locker, clk)
			clk.Set(tt.clock)

			_, err := svc.Admit(context.Background(), tt.req(slot), caller)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, locker.calls)
		})
	}
}
