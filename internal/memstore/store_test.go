package memstore

import (
	"context"
	"testing"
	"time"

	"venuebook/internal/reservations"
	"venuebook/internal/waitlist"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryRepo_OneLiveEntryPerPartyAndSlot(t *testing.T) {
	ctx := context.Background()
	repo := New().Waitlist()
	partyID, slotID := uuid.New(), uuid.New()

	first := &waitlist.Entry{PartyID: partyID, SlotID: slotID, PartySize: 2, Status: waitlist.StatusWaiting}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &waitlist.Entry{PartyID: partyID, SlotID: slotID, PartySize: 1, Status: waitlist.StatusWaiting})
	assert.ErrorIs(t, err, reservations.ErrDuplicateSlotBooking)

	closed := *first
	closed.Status = waitlist.StatusCancelled
	ok, err := repo.UpdateIfStatus(ctx, &closed, waitlist.StatusWaiting)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NoError(t, repo.Create(ctx, &waitlist.Entry{PartyID: partyID, SlotID: slotID, PartySize: 1, Status: waitlist.StatusWaiting}))
}

func TestEntryRepo_QueueOrder(t *testing.T) {
	ctx := context.Background()
	repo := New().Waitlist()
	slotID := uuid.New()
	base := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	created := []time.Time{base.Add(2 * time.Minute), base, base.Add(time.Minute)}
	ids := make([]uuid.UUID, len(created))
	for i, at := range created {
		e := &waitlist.Entry{PartyID: uuid.New(), SlotID: slotID, PartySize: 1, Status: waitlist.StatusWaiting, CreatedAt: at}
		require.NoError(t, repo.Create(ctx, e))
		ids[i] = e.ID
	}

	live, err := repo.ListLiveBySlot(ctx, slotID)
	require.NoError(t, err)
	require.Len(t, live, 3)
	assert.Equal(t, []uuid.UUID{ids[1], ids[2], ids[0]}, []uuid.UUID{live[0].ID, live[1].ID, live[2].ID})
}

func TestEntryRepo_UpdateIfStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := New().Waitlist()

	e := &waitlist.Entry{PartyID: uuid.New(), SlotID: uuid.New(), PartySize: 1, Status: waitlist.StatusWaiting}
	require.NoError(t, repo.Create(ctx, e))

	offered, err := waitlist.Offer(*e, time.Now(), time.Minute)
	require.NoError(t, err)

	ok, err := repo.UpdateIfStatus(ctx, &offered, waitlist.StatusWaiting)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateIfStatus(ctx, &offered, waitlist.StatusWaiting)
	require.NoError(t, err)
	assert.False(t, ok, "second writer loses")
}

func TestReservationRepo_SumOccupying(t *testing.T) {
	ctx := context.Background()
	repo := New().Reservations()
	slotID := uuid.New()
	start := time.Date(2030, 1, 1, 19, 0, 0, 0, time.UTC)

	for _, r := range []struct {
		status reservations.Status
		size   int
	}{
		{reservations.StatusConfirmed, 2},
		{reservations.StatusPendingProValidation, 3},
		{reservations.StatusRequested, 1},
		{reservations.StatusWaitlist, 4},
		{reservations.StatusCancelledUser, 5},
	} {
		sid := slotID
		require.NoError(t, repo.Create(ctx, &reservations.Reservation{
			PartyID: uuid.New(), VenueID: uuid.New(), SlotID: &sid,
			StartTime: start, PartySize: r.size, Status: r.status,
		}))
	}

	used, err := repo.SumOccupying(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, 6, used)
}
