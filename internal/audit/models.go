package audit

import (
	"time"

	"venuebook/internal/shared/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity types recorded in the trail
const (
	EntityReservation   = "reservation"
	EntityWaitlistEntry = "waitlist_entry"
	EntityModification  = "modification_request"
	EntityPolicy        = "cancellation_policy"
)

// RoleSystem marks transitions made by the engine itself (expiry, promotion)
const RoleSystem = "SYSTEM"

// Actor is whoever caused a transition
type Actor struct {
	ID   *uuid.UUID
	Role string
}

// System is the actor for engine-driven transitions
func System() Actor {
	return Actor{Role: RoleSystem}
}

// Party builds an actor from an authenticated caller
func Party(id uuid.UUID, role string) Actor {
	return Actor{ID: &id, Role: role}
}

// Entry is one append-only audit record
type Entry struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	EntityType string        `gorm:"type:varchar(40);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_audit_entity" json:"entity_id"`
	ActorID    *uuid.UUID    `gorm:"type:uuid" json:"actor_id,omitempty"`
	ActorRole  string        `gorm:"type:varchar(20);not null" json:"actor_role"`
	Action     string        `gorm:"type:varchar(60);not null" json:"action"`
	FromStatus string        `gorm:"type:varchar(40)" json:"from_status,omitempty"`
	ToStatus   string        `gorm:"type:varchar(40)" json:"to_status,omitempty"`
	Snapshot   types.JSONMap `gorm:"type:jsonb" json:"snapshot,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;index" json:"created_at"`
}

func (Entry) TableName() string {
	return "audit_entries"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewEntry builds a transition record
func NewEntry(entityType string, entityID uuid.UUID, actor Actor, action, from, to string, snapshot types.JSONMap) *Entry {
	return &Entry{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Snapshot:   snapshot,
		CreatedAt:  time.Now().UTC(),
	}
}
