package waitlist_test

import (
	"context"
	"testing"
	"time"

	"venuebook/api/routes"
	"venuebook/internal/admission"
	"venuebook/internal/memstore"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
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

type queueFixture struct {
	ctx     context.Context
	c       *routes.Container
	store   *memstore.Store
	clock   *clock.Manual
	slot    *slots.Slot
	owner   middleware.Identity
	seated  *admission.Decision
	waiting []*admission.Decision
	parties []middleware.Identity
}

// newQueueFixture builds a one-seat slot that is taken, with n single-seat
// parties waiting behind it
func newQueueFixture(t *testing.T, n int) *queueFixture {
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
			SweepInterval:         time.Minute,
			SweepBatchSize:        10,
		},
		Policy: config.DefaultPolicyConfig{CancellationEnabled: true, FreeCancellationHours: 24, PenaltyPercent: 50},
	}

	ctx := context.Background()
	store := memstore.New()
	clk := clock.NewManual(time.Date(2030, 2, 1, 18, 0, 0, 0, time.UTC))
	c, err := routes.NewContainer(cfg, nil, routes.MemoryRepositories(store), clk, logger.NewDiscard())
	require.NoError(t, err)

	venue, err := c.Venues.CreateVenue(ctx, venues.CreateVenueRequest{Name: "Counter"})
	require.NoError(t, err)
	capacity := 1
	slot, err := c.Slots.CreateSlot(ctx, venue.ID, slots.CreateSlotRequest{StartTime: clk.Now().Add(48 * time.Hour), Capacity: &capacity})
	require.NoError(t, err)

	f := &queueFixture{ctx: ctx, c: c, store: store, clock: clk, slot: slot}
	f.owner = middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleUser}
	f.seated, err = c.Admission.Admit(ctx, admission.CreateReservationRequest{SlotID: &slot.ID, PartySize: 1}, f.owner)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		p := middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleUser}
		d, err := c.Admission.Admit(ctx, admission.CreateReservationRequest{SlotID: &slot.ID, PartySize: 1}, p)
		require.NoError(t, err)
		require.True(t, d.Waitlisted())
		f.parties = append(f.parties, p)
		f.waiting = append(f.waiting, d)
	}
	return f
}

func (f *queueFixture) freeSeat(t *testing.T) {
	t.Helper()
	_, err := f.c.Cancellation.Cancel(f.ctx, f.seated.Reservation.ID, f.owner, "")
	require.NoError(t, err)
	f.c.Trigger.Wait()
}

func (f *queueFixture) status(t *testing.T, i int) waitlist.Status {
	t.Helper()
	entry, err := f.store.Waitlist().GetByID(f.ctx, f.waiting[i].WaitlistEntry.ID)
	require.NoError(t, err)
	return entry.Status
}

func (f *queueFixture) reservationStatus(t *testing.T, i int) reservations.Status {
	t.Helper()
	res, err := f.store.Reservations().GetByID(f.ctx, f.waiting[i].Reservation.ID)
	require.NoError(t, err)
	return res.Status
}

func TestSweep_ExpiresLapsedOffersAndPromotes(t *testing.T) {
	f := newQueueFixture(t, 2)
	f.freeSeat(t)
	require.Equal(t, waitlist.StatusOfferSent, f.status(t, 0))

	expired, err := f.c.Sweeper.Sweep(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, expired, "offer is still live")

	f.clock.Advance(30 * time.Minute)
	expired, err = f.c.Sweeper.Sweep(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	f.c.Trigger.Wait()

	assert.Equal(t, waitlist.StatusExpired, f.status(t, 0))
	assert.Equal(t, reservations.StatusExpired, f.reservationStatus(t, 0))
	assert.Equal(t, waitlist.StatusOfferSent, f.status(t, 1))

	expired, err = f.c.Sweeper.Sweep(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestRefuseOffer_PromotesNext(t *testing.T) {
	f := newQueueFixture(t, 2)
	f.freeSeat(t)

	result, err := f.c.Waitlist.RefuseOffer(f.ctx, f.waiting[0].WaitlistEntry.ID, f.parties[0])
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusRefused, result.Entry.Status)
	f.c.Trigger.Wait()

	assert.Equal(t, waitlist.StatusOfferSent, f.status(t, 1))

	_, err = f.c.Waitlist.RefuseOffer(f.ctx, f.waiting[0].WaitlistEntry.ID, f.parties[0])
	assert.ErrorIs(t, err, waitlist.ErrOfferNotActive)
}

func TestAcceptOffer_Rules(t *testing.T) {
	f := newQueueFixture(t, 2)

	_, err := f.c.Waitlist.AcceptOffer(f.ctx, f.waiting[0].WaitlistEntry.ID, f.parties[0])
	assert.ErrorIs(t, err, waitlist.ErrOfferNotActive, "no offer yet")

	f.freeSeat(t)

	_, err = f.c.Waitlist.AcceptOffer(f.ctx, f.waiting[0].WaitlistEntry.ID, f.parties[1])
	assert.ErrorIs(t, err, waitlist.ErrEntryNotFound, "only the owner can accept")

	result, err := f.c.Waitlist.AcceptOffer(f.ctx, f.waiting[0].WaitlistEntry.ID, f.parties[0])
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusConfirmed, result.Reservation.Status)

	_, err = f.c.Waitlist.AcceptOffer(f.ctx, f.waiting[0].WaitlistEntry.ID, f.parties[0])
	assert.ErrorIs(t, err, waitlist.ErrOfferNotActive)
}

func TestWithdraw_WaitingEntryKeepsQueueIntact(t *testing.T) {
	f := newQueueFixture(t, 2)

	_, err := f.c.Waitlist.Withdraw(f.ctx, f.waiting[0].WaitlistEntry.ID, f.parties[0])
	require.NoError(t, err)
	f.c.Trigger.Wait()

	assert.Equal(t, waitlist.StatusCancelled, f.status(t, 0))
	assert.Equal(t, waitlist.StatusWaiting, f.status(t, 1))

	length, err := f.c.Waitlist.QueueLength(f.ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, length)
}

func TestListMine_ExpiresLazily(t *testing.T) {
	f := newQueueFixture(t, 2)
	f.freeSeat(t)
	f.clock.Advance(45 * time.Minute)

	entries, err := f.c.Waitlist.ListMine(f.ctx, f.parties[0].PartyID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, waitlist.StatusExpired, entries[0].Status)
	f.c.Trigger.Wait()

	assert.Equal(t, waitlist.StatusOfferSent, f.status(t, 1))
}

func TestAcceptOffer_DepositGate(t *testing.T) {
	f := newQueueFixture(t, 0)
	deposit := int64(5000)
	_, err := f.c.Venues.UpdateVenue(f.ctx, f.slot.VenueID, venues.UpdateVenueRequest{DepositAmount: &deposit})
	require.NoError(t, err)

	party := middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleUser}
	queued, err := f.c.Admission.Admit(f.ctx, admission.CreateReservationRequest{
		SlotID:           &f.slot.ID,
		PartySize:        1,
		PaymentReference: "pi_deposit",
	}, party)
	require.NoError(t, err)
	require.True(t, queued.Waitlisted())
	assert.Equal(t, deposit, queued.Reservation.DepositAmount)
	assert.Equal(t, reservations.PaymentPending, queued.Reservation.PaymentStatus)

	f.freeSeat(t)

	_, err = f.c.Waitlist.AcceptOffer(f.ctx, queued.WaitlistEntry.ID, party)
	assert.ErrorIs(t, err, waitlist.ErrPaymentRequired)
	entry, err := f.store.Waitlist().GetByID(f.ctx, queued.WaitlistEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusOfferSent, entry.Status, "the offer stays open until paid")

	venueID := f.slot.VenueID
	staff := middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleVenue, VenueID: &venueID}
	_, err = f.c.Reservations.UpdatePayment(f.ctx, queued.Reservation.ID, staff,
		reservations.UpdatePaymentRequest{PaymentStatus: reservations.PaymentDepositPaid})
	require.NoError(t, err)

	result, err := f.c.Waitlist.AcceptOffer(f.ctx, queued.WaitlistEntry.ID, party)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusConfirmed, result.Reservation.Status)
	assert.Equal(t, reservations.PaymentDepositPaid, result.Reservation.PaymentStatus)
}

func TestEngineExpire_OnlyFirstCallWins(t *testing.T) {
	f := newQueueFixture(t, 2)
	f.freeSeat(t)
	f.clock.Advance(30 * time.Minute)

	id := f.waiting[0].WaitlistEntry.ID
	first, err := f.store.Waitlist().GetByID(f.ctx, id)
	require.NoError(t, err)
	second, err := f.store.Waitlist().GetByID(f.ctx, id)
	require.NoError(t, err)

	won, err := f.c.Engine.Expire(f.ctx, first)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = f.c.Engine.Expire(f.ctx, second)
	require.NoError(t, err)
	assert.False(t, won, "the stale copy loses the conditional update")
	assert.Equal(t, waitlist.StatusExpired, second.Status, "the loser is refreshed")

	expiredEvents := 0
	for _, msg := range f.store.Messages() {
		if msg.EventType == outbox.EventOfferExpired {
			expiredEvents++
		}
	}
	assert.Equal(t, 1, expiredEvents)
	assert.Equal(t, reservations.StatusExpired, f.reservationStatus(t, 0))
}
