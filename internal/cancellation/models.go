package cancellation

import (
	"net/http"
	"time"

	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCancellationDisabled       = apperr.New("cancellation_disabled", http.StatusUnprocessableEntity, "the venue does not allow cancellations")
	ErrCancellationNotAllowed     = apperr.New("cancellation_not_allowed_for_status", http.StatusConflict, "the reservation cannot be cancelled in its current status")
	ErrAlreadyStarted             = apperr.New("reservation_already_started", http.StatusConflict, "the reservation has already started")
	ErrModificationDisabled       = apperr.New("modification_disabled", http.StatusUnprocessableEntity, "the venue does not allow modifications")
	ErrModificationDeadlinePassed = apperr.New("modification_deadline_passed", http.StatusUnprocessableEntity, "the modification deadline has passed")
	ErrModificationNotAllowed     = apperr.New("modification_not_allowed_for_status", http.StatusConflict, "the reservation cannot be modified in its current status")
	ErrModificationCapacity       = apperr.New("modification_capacity_unavailable", http.StatusConflict, "the requested change does not fit the slot")
	ErrModificationNotFound       = apperr.New("modification_not_found", http.StatusNotFound, "modification request not found")
	ErrModificationNotPending     = apperr.New("modification_not_pending", http.StatusConflict, "the modification request was already decided")
	ErrModificationAlreadyPending = apperr.New("modification_already_pending", http.StatusConflict, "a modification request is already pending for this reservation")
	ErrModificationEmpty          = apperr.New("modification_empty", http.StatusBadRequest, "the request changes neither slot nor party size")
	ErrInvalidPolicy              = apperr.New("invalid_cancellation_policy", http.StatusBadRequest, "penalty must be within 0-100 and hours cannot be negative")
	ErrPolicyNotFound             = apperr.New("cancellation_policy_not_found", http.StatusNotFound, "no policy stored for this venue")
)

// Policy is a venue's cancellation and modification rules. Venues without a
// stored row fall back to the configured defaults.
type Policy struct {
	VenueID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"venue_id"`
	CancellationEnabled       bool      `gorm:"not null" json:"cancellation_enabled"`
	FreeCancellationHours     int       `gorm:"not null" json:"free_cancellation_hours"`
	PenaltyPercent            int       `gorm:"not null" json:"penalty_percent"`
	ModificationEnabled       bool      `gorm:"not null" json:"modification_enabled"`
	ModificationDeadlineHours int       `gorm:"not null" json:"modification_deadline_hours"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func (Policy) TableName() string {
	return "cancellation_policies"
}

// DefaultPolicy builds the fallback policy for venueID
func DefaultPolicy(venueID uuid.UUID, defaults config.DefaultPolicyConfig) Policy {
	return Policy{
		VenueID:                   venueID,
		CancellationEnabled:       defaults.CancellationEnabled,
		FreeCancellationHours:     defaults.FreeCancellationHours,
		PenaltyPercent:            defaults.PenaltyPercent,
		ModificationEnabled:       defaults.ModificationEnabled,
		ModificationDeadlineHours: defaults.ModificationDeadlineHours,
	}
}

func (p Policy) Validate() error {
	if p.PenaltyPercent < 0 || p.PenaltyPercent > 100 || p.FreeCancellationHours < 0 || p.ModificationDeadlineHours < 0 {
		return ErrInvalidPolicy
	}
	return nil
}

// Snapshot is stored with every decision taken under this policy
func (p Policy) Snapshot() types.JSONMap {
	return types.JSONMap{
		"cancellation_enabled":        p.CancellationEnabled,
		"free_cancellation_hours":     p.FreeCancellationHours,
		"penalty_percent":             p.PenaltyPercent,
		"modification_enabled":        p.ModificationEnabled,
		"modification_deadline_hours": p.ModificationDeadlineHours,
	}
}

// Cancellation records one processed cancellation
type Cancellation struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID  uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"reservation_id"`
	ActorID        *uuid.UUID    `gorm:"type:uuid" json:"actor_id,omitempty"`
	ActorRole      string        `gorm:"type:varchar(20);not null" json:"actor_role"`
	Reason         string        `gorm:"type:text" json:"reason,omitempty"`
	HoursToStart   float64       `gorm:"not null" json:"hours_to_start"`
	RefundPercent  int           `gorm:"not null" json:"refund_percent"`
	RefundAmount   int64         `gorm:"not null" json:"refund_amount"`
	PolicySnapshot types.JSONMap `gorm:"type:jsonb" json:"policy_snapshot,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (Cancellation) TableName() string {
	return "cancellations"
}

func (c *Cancellation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ModificationStatus string

const (
	ModificationPending  ModificationStatus = "pending"
	ModificationAccepted ModificationStatus = "accepted"
	ModificationRejected ModificationStatus = "rejected"
)

// ModificationRequest is a requested change of slot and/or party size. The
// reservation is untouched until the venue accepts it.
type ModificationRequest struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"reservation_id"`
	RequestedBy        uuid.UUID          `gorm:"type:uuid;not null" json:"requested_by"`
	RequestedSlotID    *uuid.UUID         `gorm:"type:uuid" json:"requested_slot_id,omitempty"`
	RequestedPartySize *int               `json:"requested_party_size,omitempty"`
	Status             ModificationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Reason             string             `gorm:"type:text" json:"reason,omitempty"`
	PolicySnapshot     types.JSONMap      `gorm:"type:jsonb" json:"policy_snapshot,omitempty"`
	DecidedBy          *uuid.UUID         `gorm:"type:uuid" json:"decided_by,omitempty"`
	DecidedAt          *time.Time         `json:"decided_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (ModificationRequest) TableName() string {
	return "modification_requests"
}

func (m *ModificationRequest) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *ModificationRequest) Snapshot() types.JSONMap {
	snap := types.JSONMap{"status": string(m.Status)}
	if m.RequestedSlotID != nil {
		snap["requested_slot_id"] = m.RequestedSlotID.String()
	}
	if m.RequestedPartySize != nil {
		snap["requested_party_size"] = *m.RequestedPartySize
	}
	return snap
}
