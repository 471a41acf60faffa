package reservations

import (
	"net/http"
	"time"

	"venuebook/internal/outbox"
	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReservationNotFound    = apperr.New("reservation_not_found", http.StatusNotFound, "reservation not found")
	ErrDuplicateSlotBooking   = apperr.New("duplicate_slot_booking", http.StatusConflict, "an active reservation already exists for this slot")
	ErrOverlappingReservation = apperr.New("overlapping_reservation", http.StatusConflict, "another active reservation overlaps this time window")
	ErrStatusConflict         = apperr.New("reservation_status_conflict", http.StatusConflict, "reservation is not in a status that allows this action")
	ErrNoShowBeforeStart      = apperr.New("no_show_before_start", http.StatusConflict, "a no-show can only be recorded after the reservation starts")
	ErrInvalidPaymentStatus   = apperr.New("invalid_payment_status", http.StatusBadRequest, "unknown payment status")
)

// Metadata keys written on transitions
const (
	MetaCancelledBy   = "cancelled_by"
	MetaCancelRole    = "cancelled_by_role"
	MetaReason        = "reason"
	MetaRefundPercent = "refund_percent"
	MetaRefundAmount  = "refund_amount"
	MetaPolicy        = "policy_snapshot"
	MetaHoursToStart  = "hours_to_start"
	ReasonNoShow      = "no_show"
	ReasonOfferExpiry = "offer_expired"
)

type Reservation struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	PartyID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"party_id"`
	ContactEmail     string        `gorm:"type:varchar(255)" json:"contact_email,omitempty"`
	VenueID          uuid.UUID     `gorm:"type:uuid;not null;index:idx_reservations_venue_start" json:"venue_id"`
	SlotID           *uuid.UUID    `gorm:"type:uuid;index:idx_reservations_slot_status" json:"slot_id,omitempty"`
	StartTime        time.Time     `gorm:"not null;index:idx_reservations_venue_start" json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	PartySize        int           `gorm:"not null" json:"party_size"`
	Status           Status        `gorm:"type:varchar(32);not null;index:idx_reservations_slot_status" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	DepositAmount    int64         `gorm:"not null" json:"deposit_amount"`
	TotalAmount      int64         `gorm:"not null" json:"total_amount"`
	PaymentReference string        `gorm:"type:varchar(255)" json:"payment_reference,omitempty"`
	Metadata         types.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CancelledAt      *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Window returns [start, end), assuming defaultDuration when no end is recorded
func (r *Reservation) Window(defaultDuration time.Duration) (time.Time, time.Time) {
	if r.EndTime != nil {
		return r.StartTime, *r.EndTime
	}
	return r.StartTime, r.StartTime.Add(defaultDuration)
}

// DepositSatisfied reports whether the reservation may be confirmed from a payment standpoint
func (r *Reservation) DepositSatisfied() bool {
	if r.DepositAmount == 0 {
		return true
	}
	return r.PaymentStatus == PaymentDepositPaid || r.PaymentStatus == PaymentPaid
}

// PaidAmount is what has actually been collected, in minor units
func (r *Reservation) PaidAmount() int64 {
	switch r.PaymentStatus {
	case PaymentDepositPaid:
		return r.DepositAmount
	case PaymentPaid:
		return r.TotalAmount
	default:
		return 0
	}
}

// Snapshot is the audit view of the reservation
func (r *Reservation) Snapshot() types.JSONMap {
	snap := types.JSONMap{
		"status":         string(r.Status),
		"party_size":     r.PartySize,
		"start_time":     r.StartTime,
		"payment_status": string(r.PaymentStatus),
	}
	if r.SlotID != nil {
		snap["slot_id"] = r.SlotID.String()
	}
	return snap
}

// Event builds a domain event describing this reservation
func (r *Reservation) Event(eventType outbox.EventType, now time.Time) outbox.Event {
	event := outbox.NewEvent(eventType, now)
	event.ReservationID = r.ID
	event.SlotID = r.SlotID
	event.VenueID = r.VenueID
	event.PartyID = r.PartyID
	event.ContactEmail = r.ContactEmail
	event.PartySize = r.PartySize
	event.Status = string(r.Status)
	event.StartTime = r.StartTime
	event.PaymentRef = r.PaymentReference
	return event
}

// EscrowEvent returns the capture request for a paid confirmation, if any
func (r *Reservation) EscrowEvent(now time.Time) (outbox.Event, bool) {
	if r.PaymentReference == "" || r.TotalAmount == 0 && r.DepositAmount == 0 {
		return outbox.Event{}, false
	}
	event := r.Event(outbox.EventEscrowRequested, now)
	event.Amount = r.DepositAmount
	if event.Amount == 0 {
		event.Amount = r.TotalAmount
	}
	return event, true
}

// RefundEvent returns the refund request for percent of what was paid, if nonzero
func (r *Reservation) RefundEvent(percent int, now time.Time) (outbox.Event, bool) {
	amount := RefundAmount(r.PaidAmount(), percent)
	if amount <= 0 || r.PaymentReference == "" {
		return outbox.Event{}, false
	}
	event := r.Event(outbox.EventRefundRequested, now)
	event.Amount = amount
	event.RefundPercent = &percent
	return event, true
}

// RefundAmount applies percent to paid, rounding down to the minor unit
func RefundAmount(paid int64, percent int) int64 {
	if paid <= 0 || percent <= 0 {
		return 0
	}
	return paid * int64(percent) / 100
}
