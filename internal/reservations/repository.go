package reservations

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
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// UpdateIfStatus writes the reservation's mutable fields only while the
	// stored status is one of expected. It reports whether the row was written.
	UpdateIfStatus(ctx context.Context, reservation *Reservation, expected ...Status) (bool, error)

	ListActiveByParty(ctx context.Context, partyID uuid.UUID) ([]*Reservation, error)
	ListByParty(ctx context.Context, partyID uuid.UUID) ([]*Reservation, error)
	ListBySlot(ctx context.Context, slotID uuid.UUID) ([]*Reservation, error)

	SumOccupying(ctx context.Context, slotID uuid.UUID) (int, error)
	SumOccupyingLegacy(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	if err := transaction.DB(ctx, r.db).Create(reservation).Error; err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	if err := transaction.DB(ctx, r.db).First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *repository) UpdateIfStatus(ctx context.Context, reservation *Reservation, expected ...Status) (bool, error) {
	reservation.UpdatedAt = time.Now().UTC()
	result := transaction.DB(ctx, r.db).Model(&Reservation{}).
		Where("id = ? AND status IN ?", reservation.ID, expected).
		Updates(map[string]interface{}{
			"status":            reservation.Status,
			"slot_id":           reservation.SlotID,
			"start_time":        reservation.StartTime,
			"end_time":          reservation.EndTime,
			"party_size":        reservation.PartySize,
			"payment_status":    reservation.PaymentStatus,
			"payment_reference": reservation.PaymentReference,
			"metadata":          reservation.Metadata,
			"cancelled_at":      reservation.CancelledAt,
			"updated_at":        reservation.UpdatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update reservation: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListActiveByParty(ctx context.Context, partyID uuid.UUID) ([]*Reservation, error) {
	var reservations []*Reservation
	err := transaction.DB(ctx, r.db).
		Where("party_id = ? AND status IN ?", partyID, ActiveStatuses()).
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}
	return reservations, nil
}

func (r *repository) ListByParty(ctx context.Context, partyID uuid.UUID) ([]*Reservation, error) {
	var reservations []*Reservation
	err := transaction.DB(ctx, r.db).
		Where("party_id = ?", partyID).
		Order("start_time DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *repository) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]*Reservation, error) {
	var reservations []*Reservation
	err := transaction.DB(ctx, r.db).
		Where("slot_id = ?", slotID).
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slot reservations: %w", err)
	}
	return reservations, nil
}

func (r *repository) SumOccupying(ctx context.Context, slotID uuid.UUID) (int, error) {
	var total int64
	err := transaction.DB(ctx, r.db).Model(&Reservation{}).
		Select("COALESCE(SUM(party_size), 0)").
		Where("slot_id = ? AND status IN ?", slotID, OccupyingStatuses()).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum occupying reservations: %w", err)
	}
	return int(total), nil
}

func (r *repository) SumOccupyingLegacy(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int, error) {
	var total int64
	err := transaction.DB(ctx, r.db).Model(&Reservation{}).
		Select("COALESCE(SUM(party_size), 0)").
		Where("slot_id IS NULL AND venue_id = ? AND start_time >= ? AND start_time < ? AND status IN ?",
			venueID, from, to, OccupyingStatuses()).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum legacy reservations: %w", err)
	}
	return int(total), nil
}
