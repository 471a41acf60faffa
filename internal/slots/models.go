package slots

import (
	"net/http"
	"time"

	"venuebook/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSlotNotFound    = apperr.New("slot_not_found", http.StatusNotFound, "slot not found or inactive")
	ErrInvalidCapacity = apperr.New("invalid_capacity", http.StatusBadRequest, "capacity must be zero or positive")
	ErrInvalidWindow   = apperr.New("invalid_slot_window", http.StatusBadRequest, "slot end must be after its start")
)

// Slot is a bookable time window at one venue. A nil Capacity means unlimited.
type Slot struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VenueID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_slots_venue_start" json:"venue_id"`
	StartTime time.Time  `gorm:"not null;index:idx_slots_venue_start" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Capacity  *int       `json:"capacity"`
	IsActive  bool       `gorm:"not null" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Window returns [start, end), using defaultDuration when the slot has no end
func (s *Slot) Window(defaultDuration time.Duration) (time.Time, time.Time) {
	if s.EndTime != nil {
		return s.StartTime, *s.EndTime
	}
	return s.StartTime, s.StartTime.Add(defaultDuration)
}

// Availability is the public view of a slot's capacity
type Availability struct {
	SlotID      uuid.UUID `json:"slot_id"`
	Capacity    *int      `json:"capacity"`
	Used        int       `json:"used"`
	Remaining   *int      `json:"remaining"`
	QueueLength int       `json:"queue_length"`
}
