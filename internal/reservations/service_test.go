package reservations_test

import (
	"context"
	"testing"
	"time"

	"venuebook/api/routes"
	"venuebook/internal/admission"
	"venuebook/internal/memstore"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/internal/waitlist"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type venueFixture struct {
	ctx   context.Context
	c     *routes.Container
	store *memstore.Store
	clock *clock.Manual
	venue *venues.Venue
	slot  *slots.Slot
}

// newVenueFixture builds a one-seat slot starting in two hours at a venue
// that validates every reservation by hand
func newVenueFixture(t *testing.T) *venueFixture {
	t.Helper()
	cfg := &config.Config{
		Engine: config.EngineConfig{
			OfferTTL:              30 * time.Minute,
			ClockSkewTolerance:    5 * time.Minute,
			DefaultDuration:       2 * time.Hour,
			OverlapBuffer:         6 * time.Hour,
			AdmissionMaxAttempts:  3,
			AdmissionRetryBackoff: time.Millisecond,
			LockWait:              time.Second,
		},
		Policy: config.DefaultPolicyConfig{CancellationEnabled: true, FreeCancellationHours: 24},
	}

	ctx := context.Background()
	store := memstore.New()
	clk := clock.NewManual(time.Date(2030, 5, 10, 17, 0, 0, 0, time.UTC))
	c, err := routes.NewContainer(cfg, nil, routes.MemoryRepositories(store), clk, logger.NewDiscard())
	require.NoError(t, err)

	venue, err := c.Venues.CreateVenue(ctx, venues.CreateVenueRequest{Name: "Chef's Table", RequiresApproval: true})
	require.NoError(t, err)
	capacity := 1
	slot, err := c.Slots.CreateSlot(ctx, venue.ID, slots.CreateSlotRequest{StartTime: clk.Now().Add(2 * time.Hour), Capacity: &capacity})
	require.NoError(t, err)

	return &venueFixture{ctx: ctx, c: c, store: store, clock: clk, venue: venue, slot: slot}
}

func (f *venueFixture) admit(t *testing.T, caller middleware.Identity) *admission.Decision {
	t.Helper()
	d, err := f.c.Admission.Admit(f.ctx, admission.CreateReservationRequest{SlotID: &f.slot.ID, PartySize: 1}, caller)
	require.NoError(t, err)
	return d
}

func (f *venueFixture) staff() middleware.Identity {
	venueID := f.venue.ID
	return middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleVenue, VenueID: &venueID}
}

func (f *venueFixture) entryStatus(t *testing.T, d *admission.Decision) waitlist.Status {
	t.Helper()
	entry, err := f.store.Waitlist().GetByID(f.ctx, d.WaitlistEntry.ID)
	require.NoError(t, err)
	return entry.Status
}

func guest() middleware.Identity {
	return middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleUser}
}

func TestAccept_ConfirmsPendingReservation(t *testing.T) {
	f := newVenueFixture(t)
	pending := f.admit(t, guest())
	require.Equal(t, reservations.StatusPendingProValidation, pending.Reservation.Status)

	accepted, err := f.c.Reservations.Accept(f.ctx, pending.Reservation.ID, f.staff())
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusConfirmed, accepted.Status)

	_, err = f.c.Reservations.Accept(f.ctx, pending.Reservation.ID, f.staff())
	assert.ErrorIs(t, err, reservations.ErrStatusConflict)
}

func TestDecline_PromotesQueue(t *testing.T) {
	f := newVenueFixture(t)
	pending := f.admit(t, guest())
	queued := f.admit(t, guest())
	require.True(t, queued.Waitlisted(), "a pending reservation holds its seat")

	declined, err := f.c.Reservations.Decline(f.ctx, pending.Reservation.ID, f.staff(), "private event")
	require.NoError(t, err)
	f.c.Trigger.Wait()

	assert.Equal(t, reservations.StatusDeclined, declined.Status)
	assert.Equal(t, "private event", declined.Metadata[reservations.MetaReason])
	assert.Equal(t, waitlist.StatusOfferSent, f.entryStatus(t, queued))
}

func TestMarkNoShow_PromotesQueue(t *testing.T) {
	f := newVenueFixture(t)
	seated := f.admit(t, guest())
	queued := f.admit(t, guest())
	_, err := f.c.Reservations.Accept(f.ctx, seated.Reservation.ID, f.staff())
	require.NoError(t, err)

	_, err = f.c.Reservations.MarkNoShow(f.ctx, seated.Reservation.ID, f.staff())
	assert.ErrorIs(t, err, reservations.ErrNoShowBeforeStart)

	f.clock.Advance(2*time.Hour + 15*time.Minute)
	marked, err := f.c.Reservations.MarkNoShow(f.ctx, seated.Reservation.ID, f.staff())
	require.NoError(t, err)
	f.c.Trigger.Wait()

	assert.Equal(t, reservations.StatusExpired, marked.Status)
	assert.Equal(t, reservations.ReasonNoShow, marked.Metadata[reservations.MetaReason])
	assert.Equal(t, waitlist.StatusOfferSent, f.entryStatus(t, queued))

	noShows := 0
	for _, msg := range f.store.Messages() {
		if msg.EventType == outbox.EventReservationNoShow {
			noShows++
		}
	}
	assert.Equal(t, 1, noShows)
}

func TestVenueActions_Authorization(t *testing.T) {
	f := newVenueFixture(t)
	owner := guest()
	pending := f.admit(t, owner)

	otherVenue := uuid.New()
	tests := []struct {
		name   string
		caller middleware.Identity
	}{
		{"party", owner},
		{"staff of another venue", middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleVenue, VenueID: &otherVenue}},
		{"staff without venue", middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleVenue}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.c.Reservations.Accept(f.ctx, pending.Reservation.ID, tt.caller)
			assert.ErrorIs(t, err, apperr.ErrForbidden)

			_, err = f.c.Reservations.UpdatePayment(f.ctx, pending.Reservation.ID, tt.caller,
				reservations.UpdatePaymentRequest{PaymentStatus: reservations.PaymentPaid})
			assert.ErrorIs(t, err, apperr.ErrForbidden)
		})
	}
}

func TestUpdatePayment(t *testing.T) {
	f := newVenueFixture(t)
	d := f.admit(t, guest())
	assert.Equal(t, reservations.PaymentNotRequired, d.Reservation.PaymentStatus)

	_, err := f.c.Reservations.UpdatePayment(f.ctx, d.Reservation.ID, f.staff(),
		reservations.UpdatePaymentRequest{PaymentStatus: "settled"})
	assert.ErrorIs(t, err, reservations.ErrInvalidPaymentStatus)

	ref := "pi_77"
	updated, err := f.c.Reservations.UpdatePayment(f.ctx, d.Reservation.ID, f.staff(),
		reservations.UpdatePaymentRequest{PaymentStatus: reservations.PaymentPaid, PaymentReference: &ref})
	require.NoError(t, err)
	assert.Equal(t, reservations.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, "pi_77", updated.PaymentReference)

	trail, err := f.c.Reservations.AuditTrail(f.ctx, d.Reservation.ID, f.staff())
	require.NoError(t, err)
	require.NotEmpty(t, trail)
	assert.Equal(t, "payment_update", trail[len(trail)-1].Action)
}
