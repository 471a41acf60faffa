package venues

import (
	"context"
	"errors"
	"fmt"

	"venuebook/internal/shared/transaction"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	Update(ctx context.Context, venue *Venue) error
	List(ctx context.Context) ([]*Venue, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, venue *Venue) error {
	if err := transaction.DB(ctx, r.db).Create(venue).Error; err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var venue Venue
	if err := transaction.DB(ctx, r.db).First(&venue, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return &venue, nil
}

func (r *repository) Update(ctx context.Context, venue *Venue) error {
	err := transaction.DB(ctx, r.db).Model(venue).
		Select("name", "address", "contact_email", "requires_approval", "deposit_amount", "updated_at").
		Updates(venue).Error
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]*Venue, error) {
	var venues []*Venue
	if err := transaction.DB(ctx, r.db).Order("name ASC").Find(&venues).Error; err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}
