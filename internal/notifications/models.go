package notifications

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeReservationConfirmed NotificationType = "RESERVATION_CONFIRMED"
	NotificationTypeReservationPending   NotificationType = "RESERVATION_PENDING"
	NotificationTypeReservationWaitlist  NotificationType = "RESERVATION_WAITLISTED"
	NotificationTypeReservationCancelled NotificationType = "RESERVATION_CANCELLED"
	NotificationTypeReservationDeclined  NotificationType = "RESERVATION_DECLINED"
	NotificationTypeWaitlistOffer        NotificationType = "WAITLIST_OFFER"
	NotificationTypeWaitlistOfferExpired NotificationType = "WAITLIST_OFFER_EXPIRED"
	NotificationTypeModificationDecided  NotificationType = "MODIFICATION_DECIDED"

	// venue-facing
	NotificationTypeVenueApprovalNeeded     NotificationType = "VENUE_APPROVAL_NEEDED"
	NotificationTypeVenueModificationNeeded NotificationType = "VENUE_MODIFICATION_REQUESTED"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

type EmailNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	ReservationID   uuid.UUID  `json:"reservation_id"`
	SlotID          *uuid.UUID `json:"slot_id,omitempty"`
	WaitlistEntryID *uuid.UUID `json:"waitlist_entry_id,omitempty"`

	Status    NotificationStatus `json:"status"`
	LastError *string            `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}

type NotificationBuilder struct {
	notification *EmailNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		notification: &EmailNotification{
			ID:           uuid.New(),
			Status:       NotificationStatusPending,
			CreatedAt:    time.Now().UTC(),
			TemplateData: make(map[string]interface{}),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	nb.notification.Subject = defaultSubjects[notType]
	return nb
}

func (nb *NotificationBuilder) WithRecipient(id uuid.UUID, email string) *NotificationBuilder {
	nb.notification.RecipientID = id
	nb.notification.RecipientEmail = email
	return nb
}

func (nb *NotificationBuilder) WithTemplateData(data map[string]interface{}) *NotificationBuilder {
	for k, v := range data {
		nb.notification.TemplateData[k] = v
	}
	return nb
}

func (nb *NotificationBuilder) WithReservationContext(reservationID uuid.UUID, slotID *uuid.UUID) *NotificationBuilder {
	nb.notification.ReservationID = reservationID
	nb.notification.SlotID = slotID
	return nb
}

func (nb *NotificationBuilder) WithWaitlistContext(entryID *uuid.UUID) *NotificationBuilder {
	nb.notification.WaitlistEntryID = entryID
	return nb
}

func (nb *NotificationBuilder) Build() *EmailNotification {
	return nb.notification
}

var defaultSubjects = map[NotificationType]string{
	NotificationTypeReservationConfirmed:    "Your reservation is confirmed",
	NotificationTypeReservationPending:      "Your reservation is awaiting venue approval",
	NotificationTypeReservationWaitlist:     "You are on the waitlist",
	NotificationTypeReservationCancelled:    "Your reservation was cancelled",
	NotificationTypeReservationDeclined:     "Your reservation was declined",
	NotificationTypeWaitlistOffer:           "A spot is available for you",
	NotificationTypeWaitlistOfferExpired:    "Your waitlist offer expired",
	NotificationTypeModificationDecided:     "Your change request was reviewed",
	NotificationTypeVenueApprovalNeeded:     "A reservation needs your approval",
	NotificationTypeVenueModificationNeeded: "A guest requested a change",
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeWaitlistOffer, NotificationTypeVenueApprovalNeeded:
		return NotificationPriorityHigh
	case NotificationTypeReservationWaitlist, NotificationTypeWaitlistOfferExpired:
		return NotificationPriorityLow
	default:
		return NotificationPriorityMedium
	}
}

func (en *EmailNotification) MarkSent() {
	now := time.Now().UTC()
	en.Status = NotificationStatusSent
	en.SentAt = &now
}

func (en *EmailNotification) MarkFailed(err error) {
	en.Status = NotificationStatusFailed
	errorStr := err.Error()
	en.LastError = &errorStr
}
