package cancellation

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

// Repository interface defines the contract for cancellation data operations
type Repository interface {
	// Policy operations
	GetPolicy(ctx context.Context, venueID uuid.UUID) (*Policy, error)
	UpsertPolicy(ctx context.Context, policy *Policy) error

	// Cancellation operations
	CreateCancellation(ctx context.Context, cancellation *Cancellation) error
	GetCancellationByReservation(ctx context.Context, reservationID uuid.UUID) (*Cancellation, error)

	// Modification operations
	CreateModification(ctx context.Context, mod *ModificationRequest) error
	GetModification(ctx context.Context, id uuid.UUID) (*ModificationRequest, error)
	FindPendingModification(ctx context.Context, reservationID uuid.UUID) (*ModificationRequest, error)
	ListModifications(ctx context.Context, reservationID uuid.UUID) ([]*ModificationRequest, error)
	// DecideModification writes the decision only while the request is still pending
	DecideModification(ctx context.Context, mod *ModificationRequest) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new cancellation repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetPolicy(ctx context.Context, venueID uuid.UUID) (*Policy, error) {
	var policy Policy
	err := transaction.DB(ctx, r.db).First(&policy, "venue_id = ?", venueID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get cancellation policy: %w", err)
	}
	return &policy, nil
}

func (r *repository) UpsertPolicy(ctx context.Context, policy *Policy) error {
	now := time.Now().UTC()
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = now
	}
	policy.UpdatedAt = now

	err := transaction.DB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "venue_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cancellation_enabled",
			"free_cancellation_hours",
			"penalty_percent",
			"modification_enabled",
			"modification_deadline_hours",
			"updated_at",
		}),
	}).Create(policy).Error
	if err != nil {
		return fmt.Errorf("failed to save cancellation policy: %w", err)
	}
	return nil
}

func (r *repository) CreateCancellation(ctx context.Context, cancellation *Cancellation) error {
	if err := transaction.DB(ctx, r.db).Create(cancellation).Error; err != nil {
		return fmt.Errorf("failed to create cancellation: %w", err)
	}
	return nil
}

func (r *repository) GetCancellationByReservation(ctx context.Context, reservationID uuid.UUID) (*Cancellation, error) {
	var cancellation Cancellation
	err := transaction.DB(ctx, r.db).First(&cancellation, "reservation_id = ?", reservationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cancellation: %w", err)
	}
	return &cancellation, nil
}

func (r *repository) CreateModification(ctx context.Context, mod *ModificationRequest) error {
	if err := transaction.DB(ctx, r.db).Create(mod).Error; err != nil {
		return fmt.Errorf("failed to create modification request: %w", err)
	}
	return nil
}

func (r *repository) GetModification(ctx context.Context, id uuid.UUID) (*ModificationRequest, error) {
	var mod ModificationRequest
	err := transaction.DB(ctx, r.db).First(&mod, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModificationNotFound
		}
		return nil, fmt.Errorf("failed to get modification request: %w", err)
	}
	return &mod, nil
}

func (r *repository) FindPendingModification(ctx context.Context, reservationID uuid.UUID) (*ModificationRequest, error) {
	var mod ModificationRequest
	err := transaction.DB(ctx, r.db).
		Where("reservation_id = ? AND status = ?", reservationID, ModificationPending).
		First(&mod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending modification: %w", err)
	}
	return &mod, nil
}

func (r *repository) ListModifications(ctx context.Context, reservationID uuid.UUID) ([]*ModificationRequest, error) {
	var mods []*ModificationRequest
	err := transaction.DB(ctx, r.db).
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&mods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modification requests: %w", err)
	}
	return mods, nil
}

func (r *repository) DecideModification(ctx context.Context, mod *ModificationRequest) (bool, error) {
	mod.UpdatedAt = time.Now().UTC()
	result := transaction.DB(ctx, r.db).Model(&ModificationRequest{}).
		Where("id = ? AND status = ?", mod.ID, ModificationPending).
		Updates(map[string]interface{}{
			"status":     mod.Status,
			"reason":     mod.Reason,
			"decided_by": mod.DecidedBy,
			"decided_at": mod.DecidedAt,
			"updated_at": mod.UpdatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to decide modification request: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
