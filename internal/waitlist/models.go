package waitlist

import (
	"net/http"
	"time"

	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound          = apperr.New("waitlist_entry_not_found", http.StatusNotFound, "waitlist entry not found")
	ErrOfferNotActive         = apperr.New("waitlist_offer_not_active", http.StatusConflict, "no active offer on this waitlist entry")
	ErrOfferExpired           = apperr.New("waitlist_offer_expired", http.StatusGone, "the offer has expired")
	ErrOfferNoLongerAvailable = apperr.New("offer_no_longer_available", http.StatusConflict, "the offered seats are no longer available")
	ErrPaymentRequired        = apperr.New("payment_required", http.StatusPaymentRequired, "the deposit must be paid before accepting the offer")
	ErrInvalidTransition      = apperr.New("waitlist_invalid_transition", http.StatusConflict, "waitlist entry cannot make this transition")
)

// Status represents the status of a waitlist entry
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusOfferSent Status = "offer_sent"
	StatusConverted Status = "converted_to_booking"
	StatusExpired   Status = "offer_expired"
	StatusRefused   Status = "offer_refused"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusWaiting:   {StatusOfferSent, StatusCancelled},
	StatusOfferSent: {StatusConverted, StatusExpired, StatusRefused, StatusCancelled},
}

// CanTransitionTo checks if the status can move to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsLive reports whether the entry still holds a place in the queue
func (s Status) IsLive() bool {
	return s == StatusWaiting || s == StatusOfferSent
}

func (s Status) IsTerminal() bool {
	return !s.IsLive()
}

// LiveStatuses lists the statuses that make up a slot's queue
func LiveStatuses() []Status {
	return []Status{StatusWaiting, StatusOfferSent}
}

// Entry is one outstanding claim on a full slot. Queue order is (CreatedAt, ID);
// IDs are UUIDv7 so the tie-break follows creation order.
type Entry struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"reservation_id"`
	SlotID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_waitlist_slot_queue" json:"slot_id"`
	PartyID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"party_id"`
	PartySize      int        `gorm:"not null" json:"party_size"`
	Status         Status     `gorm:"type:varchar(32);not null;index:idx_waitlist_slot_queue" json:"status"`
	PositionHint   int        `gorm:"not null" json:"position_hint"`
	OfferSentAt    *time.Time `json:"offer_sent_at,omitempty"`
	OfferExpiresAt *time.Time `gorm:"index" json:"offer_expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index:idx_waitlist_slot_queue" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Entry) TableName() string {
	return "waitlist_entries"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = NewEntryID()
	}
	return nil
}

// NewEntryID returns a time-ordered id
func NewEntryID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Before reports whether e is ahead of other in the queue
func (e *Entry) Before(other *Entry) bool {
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.Before(other.CreatedAt)
	}
	return compareIDs(e.ID, other.ID) < 0
}

func compareIDs(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (e *Entry) Snapshot() types.JSONMap {
	snap := types.JSONMap{
		"status":     string(e.Status),
		"party_size": e.PartySize,
		"slot_id":    e.SlotID.String(),
	}
	if e.OfferExpiresAt != nil {
		snap["offer_expires_at"] = *e.OfferExpiresAt
	}
	return snap
}
