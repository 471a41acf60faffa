package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"venuebook/internal/memstore"
	"venuebook/internal/outbox"
	"venuebook/internal/venues"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	sent []*EmailNotification
	err  error
}

func (f *fakeEmail) SendNotification(ctx context.Context, n *EmailNotification) error {
	f.sent = append(f.sent, n)
	return f.err
}

func newNotifier(t *testing.T, email EmailService) (*Notifier, *venues.Venue) {
	t.Helper()
	store := memstore.New()
	log := logger.NewDiscard()

	venueService := venues.NewService(store.Venues(), nil, log)
	venue, err := venueService.CreateVenue(context.Background(), venues.CreateVenueRequest{
		Name:         "Rooftop",
		ContactEmail: "host@rooftop.test",
	})
	require.NoError(t, err)

	return NewNotifier(email, venueService, log), venue
}

func event(t outbox.EventType, venueID uuid.UUID) outbox.Event {
	e := outbox.NewEvent(t, time.Now())
	e.ReservationID = uuid.New()
	e.VenueID = venueID
	e.PartyID = uuid.New()
	e.ContactEmail = "guest@example.test"
	e.PartySize = 3
	e.StartTime = time.Date(2030, 6, 1, 19, 0, 0, 0, time.UTC)
	return e
}

func TestNotifier_MapsEventsToNotifications(t *testing.T) {
	tests := []struct {
		eventType outbox.EventType
		want      []NotificationType
	}{
		{outbox.EventReservationConfirmed, []NotificationType{NotificationTypeReservationConfirmed}},
		{outbox.EventReservationWaitlisted, []NotificationType{NotificationTypeReservationWaitlist}},
		{outbox.EventReservationPendingValidation, []NotificationType{NotificationTypeReservationPending, NotificationTypeVenueApprovalNeeded}},
		{outbox.EventReservationCancelled, []NotificationType{NotificationTypeReservationCancelled}},
		{outbox.EventOfferSent, []NotificationType{NotificationTypeWaitlistOffer}},
		{outbox.EventOfferExpired, []NotificationType{NotificationTypeWaitlistOfferExpired}},
		{outbox.EventModificationRequested, []NotificationType{NotificationTypeVenueModificationNeeded}},
		{outbox.EventOfferConverted, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			email := &fakeEmail{}
			notifier, venue := newNotifier(t, email)

			require.NoError(t, notifier.Handle(context.Background(), event(tt.eventType, venue.ID)))

			var got []NotificationType
			for _, n := range email.sent {
				got = append(got, n.Type)
				assert.Equal(t, NotificationStatusSent, n.Status)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNotifier_VenueRecipient(t *testing.T) {
	email := &fakeEmail{}
	notifier, venue := newNotifier(t, email)

	require.NoError(t, notifier.Handle(context.Background(), event(outbox.EventModificationRequested, venue.ID)))
	require.Len(t, email.sent, 1)
	assert.Equal(t, "host@rooftop.test", email.sent[0].RecipientEmail)
}

func TestNotifier_OfferCarriesDeadline(t *testing.T) {
	email := &fakeEmail{}
	notifier, venue := newNotifier(t, email)

	e := event(outbox.EventOfferSent, venue.ID)
	expires := e.StartTime.Add(-48 * time.Hour)
	e.OfferExpiresAt = &expires

	require.NoError(t, notifier.Handle(context.Background(), e))
	require.Len(t, email.sent, 1)
	assert.Equal(t, expires.Format(time.RFC1123), email.sent[0].TemplateData["offer_expires_at"])
	assert.Equal(t, 3, email.sent[0].TemplateData["party_size"])
}

func TestNotifier_DeliveryFailureIsSwallowed(t *testing.T) {
	email := &fakeEmail{err: errors.New("smtp down")}
	notifier, venue := newNotifier(t, email)

	err := notifier.Handle(context.Background(), event(outbox.EventReservationConfirmed, venue.ID))
	assert.NoError(t, err)
	require.Len(t, email.sent, 1)
	assert.Equal(t, NotificationStatusFailed, email.sent[0].Status)
}

func TestNotifier_SkipsMissingRecipient(t *testing.T) {
	email := &fakeEmail{}
	notifier, venue := newNotifier(t, email)

	e := event(outbox.EventReservationConfirmed, venue.ID)
	e.ContactEmail = ""
	require.NoError(t, notifier.Handle(context.Background(), e))
	assert.Empty(t, email.sent)
}
