package waitlist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpireIfDue(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	offered, err := Offer(Entry{ID: uuid.New(), Status: StatusWaiting}, now, 30*time.Minute)
	require.NoError(t, err)

	t.Run("live before the deadline", func(t *testing.T) {
		e, changed := ExpireIfDue(offered, now.Add(29*time.Minute))
		assert.False(t, changed)
		assert.Equal(t, StatusOfferSent, e.Status)
	})

	t.Run("expired at the deadline", func(t *testing.T) {
		e, changed := ExpireIfDue(offered, now.Add(30*time.Minute))
		assert.True(t, changed)
		assert.Equal(t, StatusExpired, e.Status)
	})

	t.Run("idempotent", func(t *testing.T) {
		once, _ := ExpireIfDue(offered, now.Add(time.Hour))
		twice, changed := ExpireIfDue(once, now.Add(2*time.Hour))
		assert.False(t, changed)
		assert.Equal(t, once, twice)
	})

	t.Run("waiting entries never expire", func(t *testing.T) {
		e, changed := ExpireIfDue(Entry{Status: StatusWaiting}, now.Add(time.Hour))
		assert.False(t, changed)
		assert.Equal(t, StatusWaiting, e.Status)
	})
}

func TestOffer(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	e, err := Offer(Entry{Status: StatusWaiting}, now, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StatusOfferSent, e.Status)
	assert.Equal(t, now, *e.OfferSentAt)
	assert.Equal(t, now.Add(15*time.Minute), *e.OfferExpiresAt)

	_, err = Offer(e, now, 15*time.Minute)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition(t *testing.T) {
	now := time.Now()

	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusWaiting, StatusOfferSent, true},
		{StatusWaiting, StatusCancelled, true},
		{StatusWaiting, StatusConverted, false},
		{StatusOfferSent, StatusConverted, true},
		{StatusOfferSent, StatusRefused, true},
		{StatusOfferSent, StatusExpired, true},
		{StatusOfferSent, StatusCancelled, true},
		{StatusExpired, StatusOfferSent, false},
		{StatusConverted, StatusCancelled, false},
		{StatusRefused, StatusWaiting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			e, err := Transition(Entry{Status: tt.from}, tt.to, now)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, e.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, e.Status)
		})
	}
}
