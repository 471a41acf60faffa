package outbox

import (
	"encoding/json"
	"time"

	"venuebook/internal/shared/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusPublished MessageStatus = "published"
	MessageStatusFailed    MessageStatus = "failed"
)

// OutboxMessage is a domain event waiting to be relayed to its consumers.
// It is written in the same transaction as the state change it describes.
type OutboxMessage struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AggregateType string        `gorm:"type:varchar(40);not null" json:"aggregate_type"`
	AggregateID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	EventType     EventType     `gorm:"type:varchar(60);not null" json:"event_type"`
	PartitionKey  string        `gorm:"type:varchar(64);not null" json:"partition_key"`
	Payload       types.JSONMap `gorm:"type:jsonb;not null" json:"payload"`
	Status        MessageStatus `gorm:"type:varchar(20);not null;index:idx_outbox_status_created" json:"status"`
	Attempts      int           `gorm:"not null" json:"attempts"`
	MaxAttempts   int           `gorm:"not null" json:"max_attempts"`
	LastError     string        `gorm:"type:text" json:"last_error,omitempty"`
	PublishedAt   *time.Time    `json:"published_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;index:idx_outbox_status_created" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

func (m *OutboxMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// NewOutboxMessage wraps an event for persistence
func NewOutboxMessage(event Event, maxAttempts int) (*OutboxMessage, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	payload := types.JSONMap{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &OutboxMessage{
		ID:            event.ID,
		AggregateType: event.AggregateType(),
		AggregateID:   event.ReservationID,
		EventType:     event.Type,
		PartitionKey:  event.PartitionKey(),
		Payload:       payload,
		Status:        MessageStatusPending,
		MaxAttempts:   maxAttempts,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Event decodes the payload back into the event it was built from
func (m *OutboxMessage) Event() (Event, error) {
	var event Event
	raw, err := json.Marshal(m.Payload)
	if err != nil {
		return event, err
	}
	err = json.Unmarshal(raw, &event)
	return event, err
}

// MarkAsPublished marks the message as successfully dispatched
func (m *OutboxMessage) MarkAsPublished(now time.Time) {
	m.Status = MessageStatusPublished
	m.PublishedAt = &now
	m.LastError = ""
}

// MarkAsFailed records a failed dispatch. The message stays pending until it
// runs out of attempts.
func (m *OutboxMessage) MarkAsFailed(err error) {
	m.Attempts++
	m.LastError = err.Error()
	if m.Attempts >= m.MaxAttempts {
		m.Status = MessageStatusFailed
		return
	}
	m.Status = MessageStatusPending
}

// CanRetry reports whether the relay should try the message again
func (m *OutboxMessage) CanRetry() bool {
	return m.Status == MessageStatusPending && m.Attempts < m.MaxAttempts
}
