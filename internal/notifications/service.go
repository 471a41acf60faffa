package notifications

import (
	"context"
	"time"

	"venuebook/internal/outbox"
	"venuebook/internal/venues"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

// Notifier turns domain events into e-mails. Delivery is best effort: a
// failed send is logged and never reported back to the event source.
type Notifier struct {
	email  EmailService
	venues venues.Service
	log    *logger.Logger
}

func NewNotifier(email EmailService, venueService venues.Service, log *logger.Logger) *Notifier {
	return &Notifier{email: email, venues: venueService, log: log}
}

// EventTypes lists the events the notifier reacts to
func (n *Notifier) EventTypes() []outbox.EventType {
	return []outbox.EventType{
		outbox.EventReservationConfirmed,
		outbox.EventReservationPendingValidation,
		outbox.EventReservationWaitlisted,
		outbox.EventReservationCancelled,
		outbox.EventReservationDeclined,
		outbox.EventOfferSent,
		outbox.EventOfferExpired,
		outbox.EventModificationRequested,
		outbox.EventModificationDecided,
	}
}

func (n *Notifier) Handle(ctx context.Context, event outbox.Event) error {
	for _, notification := range n.build(ctx, event) {
		if notification.RecipientEmail == "" {
			continue
		}
		if err := n.email.SendNotification(ctx, notification); err != nil {
			notification.MarkFailed(err)
			n.log.WarnWithContext(ctx, "notification delivery failed", err, map[string]interface{}{
				"type":           string(notification.Type),
				"event_id":       event.ID.String(),
				"reservation_id": event.ReservationID.String(),
			})
			continue
		}
		notification.MarkSent()
	}
	return nil
}

// build maps one event to the notifications it causes
func (n *Notifier) build(ctx context.Context, event outbox.Event) []*EmailNotification {
	var out []*EmailNotification
	party := func(t NotificationType) *NotificationBuilder {
		return NewNotificationBuilder().
			WithType(t).
			WithRecipient(event.PartyID, event.ContactEmail).
			WithReservationContext(event.ReservationID, event.SlotID).
			WithWaitlistContext(event.WaitlistEntryID).
			WithTemplateData(templateData(event))
	}

	switch event.Type {
	case outbox.EventReservationConfirmed:
		out = append(out, party(NotificationTypeReservationConfirmed).Build())
	case outbox.EventReservationPendingValidation:
		out = append(out, party(NotificationTypeReservationPending).Build())
		if venue := n.venueNotification(ctx, event, NotificationTypeVenueApprovalNeeded); venue != nil {
			out = append(out, venue)
		}
	case outbox.EventReservationWaitlisted:
		out = append(out, party(NotificationTypeReservationWaitlist).Build())
	case outbox.EventReservationCancelled:
		out = append(out, party(NotificationTypeReservationCancelled).Build())
	case outbox.EventReservationDeclined:
		out = append(out, party(NotificationTypeReservationDeclined).Build())
	case outbox.EventOfferSent:
		out = append(out, party(NotificationTypeWaitlistOffer).Build())
	case outbox.EventOfferExpired:
		out = append(out, party(NotificationTypeWaitlistOfferExpired).Build())
	case outbox.EventModificationRequested:
		if venue := n.venueNotification(ctx, event, NotificationTypeVenueModificationNeeded); venue != nil {
			out = append(out, venue)
		}
	case outbox.EventModificationDecided:
		out = append(out, party(NotificationTypeModificationDecided).
			WithTemplateData(map[string]interface{}{"decision": event.Reason}).Build())
	}
	return out
}

func (n *Notifier) venueNotification(ctx context.Context, event outbox.Event, t NotificationType) *EmailNotification {
	if n.venues == nil {
		return nil
	}
	venue, err := n.venues.GetVenue(ctx, event.VenueID)
	if err != nil {
		n.log.WarnWithContext(ctx, "venue lookup for notification failed", err, map[string]interface{}{
			"venue_id": event.VenueID.String(),
		})
		return nil
	}
	return NewNotificationBuilder().
		WithType(t).
		WithRecipient(uuid.Nil, venue.ContactEmail).
		WithReservationContext(event.ReservationID, event.SlotID).
		WithTemplateData(templateData(event)).
		Build()
}

func templateData(event outbox.Event) map[string]interface{} {
	data := map[string]interface{}{
		"party_size": event.PartySize,
		"start_time": event.StartTime.Format(time.RFC1123),
		"status":     event.Status,
	}
	if event.OfferExpiresAt != nil {
		data["offer_expires_at"] = event.OfferExpiresAt.Format(time.RFC1123)
	}
	if event.RefundPercent != nil {
		data["refund_percent"] = *event.RefundPercent
	}
	return data
}
