package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuehub/specials-api/internal/models"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
)

type venueRepository interface {
	FindByID(ctx context.Context, id string) (*models.Venue, error)
	Create(ctx context.Context, venue *models.Venue) error
	Update(ctx context.Context, venue *models.Venue) error
	UpdateCoordinates(ctx context.Context, id string, lat, lon float64) error
	Delete(ctx context.Context, id string) error
}

type venueSpecialsLister interface {
	ListByVenue(ctx context.Context, venueID string) ([]models.Special, error)
}

// GeocodeJob asks the backfill worker to resolve a venue's address.
type GeocodeJob struct {
	VenueID string
	Address string
}

type geocodeEnqueuer interface {
	Enqueue(job GeocodeJob) error
}

// VenueService manages venues. Coordinates are not resolved inline on
// writes; address changes enqueue a geocode backfill job so venue CRUD
// never blocks on the provider.
type VenueService struct {
	repo      venueRepository
	specials  venueSpecialsLister
	geocoder  addressResolver
	queue     geocodeEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVenueService constructs the service.
func NewVenueService(repo venueRepository, specials venueSpecialsLister, geocoder addressResolver, queue geocodeEnqueuer, validate *validator.Validate, logger *zap.Logger) *VenueService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VenueService{repo: repo, specials: specials, geocoder: geocoder, queue: queue, validator: validate, logger: logger}
}

// CreateVenueRequest describes the create payload.
type CreateVenueRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Timezone string `json:"timezone" validate:"required"`
}

// UpdateVenueRequest describes the update payload.
type UpdateVenueRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Timezone string `json:"timezone" validate:"required"`
}

// Get returns a venue by id.
func (s *VenueService) Get(ctx context.Context, id string) (*models.Venue, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "malformed venue id: "+id)
	}
	venue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "venue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venue")
	}
	return venue, nil
}

// Create registers a new venue and schedules its address for geocoding.
func (s *VenueService) Create(ctx context.Context, req CreateVenueRequest) (*models.Venue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown timezone: "+req.Timezone)
	}

	venue := &models.Venue{Name: req.Name, Address: req.Address, Timezone: req.Timezone}
	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create venue")
	}

	s.enqueueGeocode(venue)
	return venue, nil
}

// Update modifies a venue. A changed address invalidates the stored
// coordinates until the backfill resolves the new one.
func (s *VenueService) Update(ctx context.Context, id string, req UpdateVenueRequest) (*models.Venue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown timezone: "+req.Timezone)
	}

	venue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	addressChanged := venue.Address != req.Address
	venue.Name = req.Name
	venue.Address = req.Address
	venue.Timezone = req.Timezone
	if addressChanged {
		venue.Latitude = nil
		venue.Longitude = nil
	}

	if err := s.repo.Update(ctx, venue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update venue")
	}

	if addressChanged {
		s.enqueueGeocode(venue)
	}
	return venue, nil
}

// ListSpecials returns a venue's specials.
func (s *VenueService) ListSpecials(ctx context.Context, venueID string) ([]models.Special, error) {
	if _, err := s.Get(ctx, venueID); err != nil {
		return nil, err
	}
	specials, err := s.specials.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list venue specials")
	}
	return specials, nil
}

// HandleGeocodeJob resolves a venue address and stores the coordinates.
// Runs on the backfill queue workers.
func (s *VenueService) HandleGeocodeJob(ctx context.Context, job GeocodeJob) error {
	point, err := s.geocoder.Resolve(ctx, job.Address)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateCoordinates(ctx, job.VenueID, point.Latitude, point.Longitude); err != nil {
		return err
	}
	s.logger.Info("venue geocoded",
		zap.String("venue_id", job.VenueID),
		zap.Float64("latitude", point.Latitude),
		zap.Float64("longitude", point.Longitude),
	)
	return nil
}

func (s *VenueService) enqueueGeocode(venue *models.Venue) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(GeocodeJob{VenueID: venue.ID, Address: venue.Address}); err != nil {
		s.logger.Warn("geocode enqueue failed", zap.String("venue_id", venue.ID), zap.Error(err))
	}
}
