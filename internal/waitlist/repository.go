package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/shared/transaction"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetLiveByReservation(ctx context.Context, reservationID uuid.UUID) (*Entry, error)

	// ListLiveBySlot returns the slot's queue in (created_at, id) order
	ListLiveBySlot(ctx context.Context, slotID uuid.UUID) ([]*Entry, error)
	ListByParty(ctx context.Context, partyID uuid.UUID) ([]*Entry, error)
	ListDueOffers(ctx context.Context, now time.Time, limit int) ([]*Entry, error)

	// UpdateIfStatus writes the entry only while its stored status is still from
	UpdateIfStatus(ctx context.Context, entry *Entry, from Status) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	if err := transaction.DB(ctx, r.db).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	var entry Entry
	if err := transaction.DB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) GetLiveByReservation(ctx context.Context, reservationID uuid.UUID) (*Entry, error) {
	var entry Entry
	err := transaction.DB(ctx, r.db).
		Where("reservation_id = ? AND status IN ?", reservationID, LiveStatuses()).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) ListLiveBySlot(ctx context.Context, slotID uuid.UUID) ([]*Entry, error) {
	var entries []*Entry
	err := transaction.DB(ctx, r.db).
		Where("slot_id = ? AND status IN ?", slotID, LiveStatuses()).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slot queue: %w", err)
	}
	return entries, nil
}

func (r *repository) ListByParty(ctx context.Context, partyID uuid.UUID) ([]*Entry, error) {
	var entries []*Entry
	err := transaction.DB(ctx, r.db).
		Where("party_id = ?", partyID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	return entries, nil
}

func (r *repository) ListDueOffers(ctx context.Context, now time.Time, limit int) ([]*Entry, error) {
	var entries []*Entry
	err := transaction.DB(ctx, r.db).
		Where("status = ? AND offer_expires_at <= ?", StatusOfferSent, now).
		Order("offer_expires_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due offers: %w", err)
	}
	return entries, nil
}

func (r *repository) UpdateIfStatus(ctx context.Context, entry *Entry, from Status) (bool, error) {
	result := transaction.DB(ctx, r.db).Model(&Entry{}).
		Where("id = ? AND status = ?", entry.ID, from).
		Updates(map[string]interface{}{
			"status":           entry.Status,
			"party_size":       entry.PartySize,
			"offer_sent_at":    entry.OfferSentAt,
			"offer_expires_at": entry.OfferExpiresAt,
			"updated_at":       entry.UpdatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update waitlist entry: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
