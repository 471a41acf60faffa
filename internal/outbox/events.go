package outbox

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventReservationConfirmed         EventType = "reservation.confirmed"
	EventReservationPendingValidation EventType = "reservation.pending_validation"
	EventReservationWaitlisted        EventType = "reservation.waitlisted"
	EventReservationCancelled         EventType = "reservation.cancelled"
	EventReservationDeclined          EventType = "reservation.declined"
	EventReservationNoShow            EventType = "reservation.no_show"
	EventModificationRequested        EventType = "reservation.modification_requested"
	EventModificationDecided          EventType = "reservation.modification_decided"

	EventOfferSent      EventType = "waitlist.offer_sent"
	EventOfferExpired   EventType = "waitlist.offer_expired"
	EventOfferRefused   EventType = "waitlist.offer_refused"
	EventOfferConverted EventType = "waitlist.converted"
	EventEntryWithdrawn EventType = "waitlist.withdrawn"

	EventEscrowRequested EventType = "payment.escrow_requested"
	EventRefundRequested EventType = "payment.refund_requested"
)

// IsPayment reports whether the event is addressed to the escrow collaborator
func (t EventType) IsPayment() bool {
	return t == EventEscrowRequested || t == EventRefundRequested
}

// Event is the single envelope for every domain event the engine emits.
// Fields irrelevant to a type are left empty.
type Event struct {
	ID              uuid.UUID  `json:"id"`
	Type            EventType  `json:"type"`
	OccurredAt      time.Time  `json:"occurred_at"`
	ReservationID   uuid.UUID  `json:"reservation_id"`
	WaitlistEntryID *uuid.UUID `json:"waitlist_entry_id,omitempty"`
	SlotID          *uuid.UUID `json:"slot_id,omitempty"`
	VenueID         uuid.UUID  `json:"venue_id"`
	PartyID         uuid.UUID  `json:"party_id"`
	ContactEmail    string     `json:"contact_email,omitempty"`
	PartySize       int        `json:"party_size"`
	Status          string     `json:"status,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	OfferExpiresAt  *time.Time `json:"offer_expires_at,omitempty"`
	RefundPercent   *int       `json:"refund_percent,omitempty"`
	Amount          int64      `json:"amount,omitempty"`
	PaymentRef      string     `json:"payment_reference,omitempty"`
	Reason          string     `json:"reason,omitempty"`
}

// NewEvent stamps an event with an id and time
func NewEvent(eventType EventType, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: now.UTC(),
	}
}

func (e Event) AggregateType() string {
	if e.WaitlistEntryID != nil && !e.Type.IsPayment() && e.Type != EventReservationWaitlisted {
		return "waitlist_entry"
	}
	return "reservation"
}

// PartitionKey keeps all events of one slot in order on one partition
func (e Event) PartitionKey() string {
	if e.SlotID != nil {
		return e.SlotID.String()
	}
	return e.ReservationID.String()
}
