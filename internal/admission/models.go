package admission

import (
	"net/http"
	"time"

	"venuebook/internal/reservations"
	"venuebook/internal/shared/apperr"
	"venuebook/internal/slots"
	"venuebook/internal/waitlist"

	"github.com/google/uuid"
)

var (
	ErrInvalidPartySize   = apperr.New("invalid_party_size", http.StatusBadRequest, "party size must be at least 1")
	ErrMissingSlot        = apperr.New("slot_reference_required", http.StatusBadRequest, "slot_id or venue_id with start_time is required")
	ErrDateInPast         = apperr.New("reservation_date_in_past", http.StatusUnprocessableEntity, "the slot has already started")
	ErrDateTooFarInFuture = apperr.New("reservation_date_too_far_future", http.StatusUnprocessableEntity, "the slot is beyond the booking horizon")
	ErrNegativeAmount     = apperr.New("invalid_amount", http.StatusBadRequest, "amounts cannot be negative")
	ErrCapacityConflict   = apperr.New("capacity_conflict", http.StatusConflict, "the slot is under heavy contention, retry shortly")
)

// CreateReservationRequest is a booking request. A slot is named directly or,
// for legacy clients, resolved from venue and start time. The deposit comes
// from the venue and the payment status only moves on a payment update.
type CreateReservationRequest struct {
	SlotID           *uuid.UUID `json:"slot_id"`
	VenueID          *uuid.UUID `json:"venue_id"`
	StartTime        *time.Time `json:"start_time"`
	PartySize        int        `json:"party_size" validate:"gte=0,lte=1000"`
	TotalAmount      int64      `json:"total_amount" validate:"gte=0"`
	PaymentReference string     `json:"payment_reference" validate:"max=255"`
}

// Decision is the outcome of one admission
type Decision struct {
	Reservation   *reservations.Reservation `json:"reservation"`
	WaitlistEntry *waitlist.Entry           `json:"waitlist_entry,omitempty"`
	Usage         slots.Usage               `json:"usage"`
	// QueueAhead is the number of live entries ahead of a waitlisted request
	QueueAhead int `json:"queue_ahead,omitempty"`
}

// Waitlisted reports whether the request was queued instead of seated
func (d *Decision) Waitlisted() bool {
	return d.Reservation.Status == reservations.StatusWaitlist
}
