package reservations

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGuard_Evaluate(t *testing.T) {
	guard := NewGuard(nil, 2*time.Hour, 6*time.Hour)

	partyID := uuid.New()
	venueID := uuid.New()
	slotID := uuid.New()
	start := time.Date(2030, 6, 1, 19, 0, 0, 0, time.UTC)

	existing := func(status Status, slot *uuid.UUID, at time.Time) *Reservation {
		return &Reservation{
			ID:        uuid.New(),
			PartyID:   partyID,
			VenueID:   venueID,
			SlotID:    slot,
			StartTime: at,
			Status:    status,
		}
	}
	otherSlot := uuid.New()

	tests := []struct {
		name     string
		existing []*Reservation
		start    time.Time
		exclude  bool
		wantErr  error
	}{
		{
			name:  "no other reservations",
			start: start,
		},
		{
			name:     "same slot is a duplicate",
			existing: []*Reservation{existing(StatusConfirmed, &slotID, start)},
			start:    start,
			wantErr:  ErrDuplicateSlotBooking,
		},
		{
			name:     "waitlisted reservation on the same slot is a duplicate",
			existing: []*Reservation{existing(StatusWaitlist, &slotID, start)},
			start:    start,
			wantErr:  ErrDuplicateSlotBooking,
		},
		{
			name: "duplicate reported ahead of overlap",
			existing: []*Reservation{
				existing(StatusConfirmed, &otherSlot, start.Add(time.Hour)),
				existing(StatusConfirmed, &slotID, start),
			},
			start:   start,
			wantErr: ErrDuplicateSlotBooking,
		},
		{
			name:     "legacy row matches on venue and start",
			existing: []*Reservation{existing(StatusConfirmed, nil, start)},
			start:    start,
			wantErr:  ErrDuplicateSlotBooking,
		},
		{
			name:     "other slot inside the buffer overlaps",
			existing: []*Reservation{existing(StatusConfirmed, &otherSlot, start.Add(7*time.Hour))},
			start:    start,
			wantErr:  ErrOverlappingReservation,
		},
		{
			name:     "other slot beyond the buffer is fine",
			existing: []*Reservation{existing(StatusConfirmed, &otherSlot, start.Add(8*time.Hour))},
			start:    start,
		},
		{
			name:     "other slot ending exactly at the buffered start is fine",
			existing: []*Reservation{existing(StatusConfirmed, &otherSlot, start.Add(-8*time.Hour))},
			start:    start,
		},
		{
			name:     "terminal reservations are ignored",
			existing: []*Reservation{existing(StatusCancelledUser, &slotID, start)},
			start:    start,
		},
		{
			name:     "the reservation being modified is skipped",
			existing: []*Reservation{existing(StatusConfirmed, &slotID, start)},
			start:    start,
			exclude:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := Candidate{
				PartyID:   partyID,
				VenueID:   venueID,
				SlotID:    &slotID,
				StartTime: tt.start,
			}
			if tt.exclude {
				candidate.ExcludeID = &tt.existing[0].ID
			}

			err := guard.Evaluate(candidate, tt.existing)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
