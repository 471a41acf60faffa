package audit

import (
	"context"
	"fmt"

	"venuebook/internal/shared/transaction"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Append(ctx context.Context, entries ...*Entry) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, entries ...*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := transaction.DB(ctx, r.db).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to append audit entries: %w", err)
	}
	return nil
}

func (r *repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Entry, error) {
	var entries []*Entry
	err := transaction.DB(ctx, r.db).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
