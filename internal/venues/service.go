package venues

import (
	"context"
	"time"

	"venuebook/internal/shared/constants"
	"venuebook/pkg/cache"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	UpdateVenue(ctx context.Context, id uuid.UUID, req UpdateVenueRequest) (*Venue, error)
	GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error)
	ListVenues(ctx context.Context) ([]*Venue, error)

	// GetSettings is read on every admission; served from cache when available
	GetSettings(ctx context.Context, id uuid.UUID) (*Settings, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

// NewService creates the venue service. cacheService may be nil.
func NewService(repo Repository, cacheService cache.Service, log *logger.Logger) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   log,
	}
}

func (s *service) CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	venue := &Venue{
		ID:               uuid.New(),
		Name:             req.Name,
		Address:          req.Address,
		ContactEmail:     req.ContactEmail,
		RequiresApproval: req.RequiresApproval,
		DepositAmount:    req.DepositAmount,
	}
	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

func (s *service) UpdateVenue(ctx context.Context, id uuid.UUID, req UpdateVenueRequest) (*Venue, error) {
	venue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		venue.Name = *req.Name
	}
	if req.Address != nil {
		venue.Address = *req.Address
	}
	if req.ContactEmail != nil {
		venue.ContactEmail = *req.ContactEmail
	}
	if req.RequiresApproval != nil {
		venue.RequiresApproval = *req.RequiresApproval
	}
	if req.DepositAmount != nil {
		venue.DepositAmount = *req.DepositAmount
	}
	venue.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, venue); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return venue, nil
}

func (s *service) GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListVenues(ctx context.Context) ([]*Venue, error) {
	return s.repo.List(ctx)
}

func (s *service) GetSettings(ctx context.Context, id uuid.UUID) (*Settings, error) {
	load := func() (interface{}, error) {
		venue, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		settings := venue.Settings()
		return &settings, nil
	}

	if s.cache == nil {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return value.(*Settings), nil
	}

	var settings Settings
	if err := s.cache.GetOrSet(ctx, constants.VenueSettingsKey(id), constants.TTL_VENUE_SETTINGS, load, &settings); err != nil {
		// not-found comes back wrapped by the cache layer; errors.Is still matches
		return nil, err
	}
	return &settings, nil
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.VenueSettingsKey(id)); err != nil {
		s.log.WarnWithContext(ctx, "failed to invalidate venue settings", err, map[string]interface{}{
			"venue_id": id.String(),
		})
	}
}
