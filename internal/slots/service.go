package slots

import (
	"context"
	"time"

	"venuebook/internal/venues"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

// PromotionTrigger schedules a promotion pass for a slot without waiting for it
type PromotionTrigger interface {
	Trigger(slotID uuid.UUID)
}

// QueueCounter reports how many waitlist entries are still live on a slot
type QueueCounter interface {
	QueueLength(ctx context.Context, slotID uuid.UUID) (int, error)
}

type Service interface {
	CreateSlot(ctx context.Context, venueID uuid.UUID, req CreateSlotRequest) (*Slot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error)
	ListVenueSlots(ctx context.Context, venueID uuid.UUID, query ListSlotsQuery) ([]*Slot, error)
	UpdateCapacity(ctx context.Context, id uuid.UUID, capacity *int) (*Slot, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Availability(ctx context.Context, id uuid.UUID) (*Availability, error)
}

type service struct {
	repo       Repository
	venueRepo  venues.Repository
	accountant *Accountant
	queue      QueueCounter
	trigger    PromotionTrigger
	log        *logger.Logger
}

func NewService(repo Repository, venueRepo venues.Repository, accountant *Accountant, queue QueueCounter, trigger PromotionTrigger, log *logger.Logger) Service {
	return &service{
		repo:       repo,
		venueRepo:  venueRepo,
		accountant: accountant,
		queue:      queue,
		trigger:    trigger,
		log:        log,
	}
}

func (s *service) CreateSlot(ctx context.Context, venueID uuid.UUID, req CreateSlotRequest) (*Slot, error) {
	if _, err := s.venueRepo.GetByID(ctx, venueID); err != nil {
		return nil, err
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidWindow
	}

	slot := &Slot{
		ID:        uuid.New(),
		VenueID:   venueID,
		StartTime: req.StartTime.UTC(),
		Capacity:  req.Capacity,
		IsActive:  true,
	}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		slot.EndTime = &end
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *service) GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slot.IsActive {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

func (s *service) ListVenueSlots(ctx context.Context, venueID uuid.UUID, query ListSlotsQuery) ([]*Slot, error) {
	return s.repo.ListByVenue(ctx, venueID, query.From, query.To)
}

// UpdateCapacity edits the cap. Any increase (or removing the cap) frees
// seats, so the queue gets a promotion pass.
func (s *service) UpdateCapacity(ctx context.Context, id uuid.UUID, capacity *int) (*Slot, error) {
	if capacity != nil && *capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCapacity(ctx, id, capacity); err != nil {
		return nil, err
	}

	increased := capacity == nil && slot.Capacity != nil ||
		capacity != nil && slot.Capacity != nil && *capacity > *slot.Capacity
	slot.Capacity = capacity
	slot.UpdatedAt = time.Now().UTC()

	if increased && slot.IsActive {
		s.trigger.Trigger(id)
	}
	return slot, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *service) Availability(ctx context.Context, id uuid.UUID) (*Availability, error) {
	slot, err := s.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	usage, err := s.accountant.Usage(ctx, slot)
	if err != nil {
		return nil, err
	}

	queueLength, err := s.queue.QueueLength(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Availability{
		SlotID:      slot.ID,
		Capacity:    usage.Capacity,
		Used:        usage.Used,
		Remaining:   usage.Remaining,
		QueueLength: queueLength,
	}, nil
}
