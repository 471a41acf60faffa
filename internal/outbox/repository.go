package outbox

import (
	"context"
	"fmt"

	"venuebook/internal/shared/transaction"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, messages ...*OutboxMessage) error
	// FetchPending claims up to limit pending messages. Inside a transaction the
	// rows stay locked so concurrent relays skip them.
	FetchPending(ctx context.Context, limit int) ([]*OutboxMessage, error)
	Save(ctx context.Context, message *OutboxMessage) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, messages ...*OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}
	if err := transaction.DB(ctx, r.db).Create(&messages).Error; err != nil {
		return fmt.Errorf("failed to write outbox messages: %w", err)
	}
	return nil
}

func (r *repository) FetchPending(ctx context.Context, limit int) ([]*OutboxMessage, error) {
	var messages []*OutboxMessage
	err := transaction.DB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", MessageStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox messages: %w", err)
	}
	return messages, nil
}

func (r *repository) Save(ctx context.Context, message *OutboxMessage) error {
	err := transaction.DB(ctx, r.db).
		Model(&OutboxMessage{}).
		Where("id = ?", message.ID).
		Updates(map[string]interface{}{
			"status":       message.Status,
			"attempts":     message.Attempts,
			"last_error":   message.LastError,
			"published_at": message.PublishedAt,
			"updated_at":   message.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update outbox message: %w", err)
	}
	return nil
}
