package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/shared/transaction"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, slot *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// GetForUpdate reads the slot and, inside a transaction, holds its row lock
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Slot, error)
	FindByVenueAndStart(ctx context.Context, venueID uuid.UUID, start time.Time) (*Slot, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID, from, to *time.Time) ([]*Slot, error)
	UpdateCapacity(ctx context.Context, id uuid.UUID, capacity *int) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, slot *Slot) error {
	if err := transaction.DB(ctx, r.db).Create(slot).Error; err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	var slot Slot
	if err := transaction.DB(ctx, r.db).First(&slot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Slot, error) {
	var slot Slot
	err := transaction.DB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	return &slot, nil
}

func (r *repository) FindByVenueAndStart(ctx context.Context, venueID uuid.UUID, start time.Time) (*Slot, error) {
	var slot Slot
	err := transaction.DB(ctx, r.db).
		Where("venue_id = ? AND start_time = ? AND is_active = ?", venueID, start, true).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return &slot, nil
}

func (r *repository) ListByVenue(ctx context.Context, venueID uuid.UUID, from, to *time.Time) ([]*Slot, error) {
	query := transaction.DB(ctx, r.db).Where("venue_id = ? AND is_active = ?", venueID, true)
	if from != nil {
		query = query.Where("start_time >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_time < ?", *to)
	}

	var slots []*Slot
	if err := query.Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (r *repository) UpdateCapacity(ctx context.Context, id uuid.UUID, capacity *int) error {
	result := transaction.DB(ctx, r.db).Model(&Slot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"capacity": capacity, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("failed to update slot capacity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := transaction.DB(ctx, r.db).Model(&Slot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("failed to update slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}
