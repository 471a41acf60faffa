package admission_test

import (
	"context"
	"math/rand"
	"sync"
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

type harness struct {
	t     *testing.T
	ctx   context.Context
	c     *routes.Container
	store *memstore.Store
	clock *clock.Manual
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		Engine: config.EngineConfig{
			OfferTTL:              30 * time.Minute,
			ClockSkewTolerance:    5 * time.Minute,
			MaxBookingHorizon:     365 * 24 * time.Hour,
			DefaultDuration:       2 * time.Hour,
			OverlapBuffer:         6 * time.Hour,
			AdmissionMaxAttempts:  5,
			AdmissionRetryBackoff: time.Millisecond,
			LockWait:              5 * time.Second,
			PromotionTimeout:      5 * time.Second,
			SweepInterval:         time.Minute,
			SweepBatchSize:        100,
			OutboxMaxAttempts:     5,
		},
		Policy: config.DefaultPolicyConfig{
			CancellationEnabled:       true,
			FreeCancellationHours:     24,
			PenaltyPercent:            50,
			ModificationEnabled:       true,
			ModificationDeadlineHours: 24,
		},
	}

	store := memstore.New()
	clk := clock.NewManual(time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC))
	c, err := routes.NewContainer(cfg, nil, routes.MemoryRepositories(store), clk, logger.NewDiscard())
	require.NoError(t, err)

	return &harness{t: t, ctx: context.Background(), c: c, store: store, clock: clk}
}

func (h *harness) slot(capacity int) *slots.Slot {
	h.t.Helper()
	venue, err := h.c.Venues.CreateVenue(h.ctx, venues.CreateVenueRequest{Name: "Bistro"})
	require.NoError(h.t, err)

	slot, err := h.c.Slots.CreateSlot(h.ctx, venue.ID, slots.CreateSlotRequest{
		StartTime: h.clock.Now().Add(72 * time.Hour),
		Capacity:  &capacity,
	})
	require.NoError(h.t, err)
	return slot
}

func party() middleware.Identity {
	return middleware.Identity{PartyID: uuid.New(), Role: middleware.RoleUser}
}

func (h *harness) book(slot *slots.Slot, caller middleware.Identity, size int) *admission.Decision {
	h.t.Helper()
	decision, err := h.c.Admission.Admit(h.ctx, admission.CreateReservationRequest{SlotID: &slot.ID, PartySize: size}, caller)
	require.NoError(h.t, err)
	return decision
}

func (h *harness) entry(id uuid.UUID) *waitlist.Entry {
	h.t.Helper()
	entry, err := h.store.Waitlist().GetByID(h.ctx, id)
	require.NoError(h.t, err)
	return entry
}

func (h *harness) occupied(slotID uuid.UUID) int {
	h.t.Helper()
	used, err := h.store.Reservations().SumOccupying(h.ctx, slotID)
	require.NoError(h.t, err)
	return used
}

func (h *harness) offersSent() int {
	count := 0
	for _, msg := range h.store.Messages() {
		if msg.EventType == outbox.EventOfferSent {
			count++
		}
	}
	return count
}

func TestScenario_CancellationPromotesWaitingParty(t *testing.T) {
	h := newHarness(t)
	slot := h.slot(2)
	a, b := party(), party()

	first := h.book(slot, a, 2)
	assert.Equal(t, reservations.StatusConfirmed, first.Reservation.Status)

	second := h.book(slot, b, 1)
	require.True(t, second.Waitlisted())
	assert.Equal(t, 0, *second.Usage.Remaining)
	require.NotNil(t, second.WaitlistEntry)

	_, err := h.c.Cancellation.Cancel(h.ctx, first.Reservation.ID, a, "plans changed")
	require.NoError(t, err)
	h.c.Trigger.Wait()

	offered := h.entry(second.WaitlistEntry.ID)
	require.Equal(t, waitlist.StatusOfferSent, offered.Status)
	assert.Equal(t, h.clock.Now().Add(30*time.Minute), *offered.OfferExpiresAt)

	h.clock.Advance(10 * time.Minute)
	result, err := h.c.Waitlist.AcceptOffer(h.ctx, offered.ID, b)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusConfirmed, result.Reservation.Status)
	assert.Equal(t, waitlist.StatusConverted, result.Entry.Status)

	availability, err := h.c.Slots.Availability(h.ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Used)
	assert.Equal(t, 0, availability.QueueLength)
}

func TestScenario_QueueBlocksRequestThatWouldFit(t *testing.T) {
	h := newHarness(t)
	slot := h.slot(4)

	h.book(slot, party(), 4)
	queued := h.book(slot, party(), 2)
	require.True(t, queued.Waitlisted())

	// free the seats without letting the promotion pass run first
	capacity := 8
	require.NoError(t, h.store.Slots().UpdateCapacity(h.ctx, slot.ID, &capacity))

	late := h.book(slot, party(), 1)
	assert.True(t, late.Waitlisted())
	assert.Equal(t, reservations.StatusWaitlist, late.Reservation.Status)
	assert.Equal(t, 1, late.QueueAhead)
	assert.Equal(t, 4, *late.Usage.Remaining)
}

func TestScenario_LapsedOfferExpiresOnReadAndPromotesNext(t *testing.T) {
	h := newHarness(t)
	slot := h.slot(1)
	a, b, c := party(), party(), party()

	first := h.book(slot, a, 1)
	second := h.book(slot, b, 1)
	third := h.book(slot, c, 1)
	require.True(t, second.Waitlisted())
	require.True(t, third.Waitlisted())

	_, err := h.c.Cancellation.Cancel(h.ctx, first.Reservation.ID, a, "")
	require.NoError(t, err)
	h.c.Trigger.Wait()
	require.Equal(t, waitlist.StatusOfferSent, h.entry(second.WaitlistEntry.ID).Status)
	require.Equal(t, waitlist.StatusWaiting, h.entry(third.WaitlistEntry.ID).Status)

	h.clock.Advance(31 * time.Minute)
	read, err := h.c.Waitlist.GetEntry(h.ctx, second.WaitlistEntry.ID, b)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusExpired, read.Status)
	h.c.Trigger.Wait()

	assert.Equal(t, waitlist.StatusOfferSent, h.entry(third.WaitlistEntry.ID).Status)

	_, err = h.c.Waitlist.AcceptOffer(h.ctx, second.WaitlistEntry.ID, b)
	assert.ErrorIs(t, err, waitlist.ErrOfferExpired)

	// a second read sees the same terminal state and schedules nothing new
	again, err := h.c.Waitlist.GetEntry(h.ctx, second.WaitlistEntry.ID, b)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusExpired, again.Status)
	h.c.Trigger.Wait()
	assert.Equal(t, 2, h.offersSent())
}

func TestPromotion_OffersExactlyOncePerFreedSeat(t *testing.T) {
	h := newHarness(t)
	slot := h.slot(2)
	owner := party()

	first := h.book(slot, owner, 2)
	queued := make([]*admission.Decision, 0, 4)
	for i := 0; i < 4; i++ {
		queued = append(queued, h.book(slot, party(), 1))
	}

	_, err := h.c.Cancellation.Cancel(h.ctx, first.Reservation.ID, owner, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.c.Waitlist.PromoteNow(h.ctx, slot.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	h.c.Trigger.Wait()

	statuses := make([]waitlist.Status, len(queued))
	for i, d := range queued {
		statuses[i] = h.entry(d.WaitlistEntry.ID).Status
	}
	assert.Equal(t, []waitlist.Status{
		waitlist.StatusOfferSent,
		waitlist.StatusOfferSent,
		waitlist.StatusWaiting,
		waitlist.StatusWaiting,
	}, statuses)
	assert.Equal(t, 2, h.offersSent())
}

func TestPromotion_SkipsPartiesThatDoNotFit(t *testing.T) {
	h := newHarness(t)
	slot := h.slot(3)
	owner := party()

	first := h.book(slot, owner, 2)
	h.book(slot, party(), 1)
	large := h.book(slot, party(), 3)
	small := h.book(slot, party(), 1)
	require.True(t, large.Waitlisted())

	_, err := h.c.Cancellation.Cancel(h.ctx, first.Reservation.ID, owner, "")
	require.NoError(t, err)
	h.c.Trigger.Wait()

	assert.Equal(t, waitlist.StatusWaiting, h.entry(large.WaitlistEntry.ID).Status)
	assert.Equal(t, waitlist.StatusOfferSent, h.entry(small.WaitlistEntry.ID).Status)
}

func TestCapacityInvariant_ConcurrentAdmissions(t *testing.T) {
	h := newHarness(t)
	slot := h.slot(10)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			_, err := h.c.Admission.Admit(h.ctx, admission.CreateReservationRequest{SlotID: &slot.ID, PartySize: size}, party())
			assert.NoError(t, err)
		}(1 + i%3)
	}
	wg.Wait()

	assert.LessOrEqual(t, h.occupied(slot.ID), 10)
}

func TestCapacityInvariant_RandomOperations(t *testing.T) {
	const capacity = 6

	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness(t)
		slot := h.slot(capacity)
		rng := rand.New(rand.NewSource(seed))

		parties := make([]middleware.Identity, 12)
		for i := range parties {
			parties[i] = party()
		}
		var booked []*admission.Decision

		for step := 0; step < 60; step++ {
			switch op := rng.Intn(10); {
			case op < 4:
				caller := parties[rng.Intn(len(parties))]
				decision, err := h.c.Admission.Admit(h.ctx, admission.CreateReservationRequest{
					SlotID:    &slot.ID,
					PartySize: 1 + rng.Intn(3),
				}, caller)
				if err == nil {
					booked = append(booked, decision)
				} else {
					assert.ErrorIs(t, err, reservations.ErrDuplicateSlotBooking)
				}
			case op < 6 && len(booked) > 0:
				d := booked[rng.Intn(len(booked))]
				owner := middleware.Identity{PartyID: d.Reservation.PartyID, Role: middleware.RoleUser}
				_, _ = h.c.Cancellation.Cancel(h.ctx, d.Reservation.ID, owner, "")
			case op < 9:
				live, err := h.store.Waitlist().ListLiveBySlot(h.ctx, slot.ID)
				require.NoError(t, err)
				for _, entry := range live {
					if entry.Status != waitlist.StatusOfferSent {
						continue
					}
					owner := middleware.Identity{PartyID: entry.PartyID, Role: middleware.RoleUser}
					if rng.Intn(4) == 0 {
						_, _ = h.c.Waitlist.RefuseOffer(h.ctx, entry.ID, owner)
					} else {
						_, _ = h.c.Waitlist.AcceptOffer(h.ctx, entry.ID, owner)
					}
					break
				}
			default:
				h.clock.Advance(time.Duration(rng.Intn(40)) * time.Minute)
				_, _ = h.c.Waitlist.QueueLength(h.ctx, slot.ID)
			}

			h.c.Trigger.Wait()
			require.LessOrEqual(t, h.occupied(slot.ID), capacity, "seed %d step %d", seed, step)
		}
	}
}

func TestScenario_BookingThatLapsesOffersPromotesQueue(t *testing.T) {
	h := newHarness(t)
	slot := h.slot(2)
	a := party()

	first := h.book(slot, a, 2)
	b := h.book(slot, party(), 1)
	c := h.book(slot, party(), 1)
	e := h.book(slot, party(), 1)
	require.True(t, e.Waitlisted())

	_, err := h.c.Cancellation.Cancel(h.ctx, first.Reservation.ID, a, "")
	require.NoError(t, err)
	h.c.Trigger.Wait()
	require.Equal(t, waitlist.StatusOfferSent, h.entry(b.WaitlistEntry.ID).Status)
	require.Equal(t, waitlist.StatusOfferSent, h.entry(c.WaitlistEntry.ID).Status)
	require.Equal(t, waitlist.StatusWaiting, h.entry(e.WaitlistEntry.ID).Status)

	// the new booking is the first read after both deadlines
	h.clock.Advance(31 * time.Minute)
	d := h.book(slot, party(), 1)
	require.True(t, d.Waitlisted(), "the queue still goes first")
	assert.Equal(t, 1, d.QueueAhead)
	h.c.Trigger.Wait()

	assert.Equal(t, waitlist.StatusExpired, h.entry(b.WaitlistEntry.ID).Status)
	assert.Equal(t, waitlist.StatusExpired, h.entry(c.WaitlistEntry.ID).Status)
	assert.Equal(t, waitlist.StatusOfferSent, h.entry(e.WaitlistEntry.ID).Status)
	assert.Equal(t, waitlist.StatusOfferSent, h.entry(d.WaitlistEntry.ID).Status)
	assert.Equal(t, 0, h.occupied(slot.ID))
}
