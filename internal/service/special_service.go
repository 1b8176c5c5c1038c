package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuehub/specials-api/internal/dto"
	"github.com/venuehub/specials-api/internal/models"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
)

type specialRepository interface {
	FindByID(ctx context.Context, id string) (*models.SpecialSearchResult, error)
	Create(ctx context.Context, special *models.Special) error
	Update(ctx context.Context, special *models.Special) error
	Delete(ctx context.Context, id string) error
}

type venueFinder interface {
	FindByID(ctx context.Context, id string) (*models.Venue, error)
}

// SpecialService manages the specials lifecycle and single-item reads.
type SpecialService struct {
	repo      specialRepository
	venues    venueFinder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSpecialService constructs the service.
func NewSpecialService(repo specialRepository, venues venueFinder, validate *validator.Validate, logger *zap.Logger) *SpecialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpecialService{repo: repo, venues: venues, validator: validate, logger: logger, now: time.Now}
}

// CreateSpecialRequest describes the create payload. Times are 24-hour
// HH:mm strings, dates are YYYY-MM-DD.
type CreateSpecialRequest struct {
	VenueID        string               `json:"venue_id" validate:"required"`
	Content        string               `json:"content" validate:"required"`
	Type           models.SpecialType   `json:"type" validate:"required"`
	StartDate      string               `json:"start_date" validate:"required"`
	StartTime      string               `json:"start_time" validate:"required"`
	EndTime        string               `json:"end_time"`
	ExpirationDate string               `json:"expiration_date"`
	IsRecurring    bool                 `json:"is_recurring"`
	Schedule       *dto.SchedulePayload `json:"schedule"`
}

// UpdateSpecialRequest describes the update payload.
type UpdateSpecialRequest struct {
	Content        string               `json:"content" validate:"required"`
	Type           models.SpecialType   `json:"type" validate:"required"`
	StartDate      string               `json:"start_date" validate:"required"`
	StartTime      string               `json:"start_time" validate:"required"`
	EndTime        string               `json:"end_time"`
	ExpirationDate string               `json:"expiration_date"`
	IsRecurring    bool                 `json:"is_recurring"`
	Schedule       *dto.SchedulePayload `json:"schedule"`
}

// Get returns a special with its availability evaluated at the current
// instant in the venue's timezone.
func (s *SpecialService) Get(ctx context.Context, id string) (*models.SpecialStatus, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "malformed special id: "+id)
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "special not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load special")
	}

	status := &models.SpecialStatus{
		SpecialSearchResult: *row,
		IsCurrentlyRunning:  IsActiveAt(&row.Special, s.now(), locationFor(row.VenueTimezone)),
	}
	return status, nil
}

// Create registers a new special for a venue.
func (s *SpecialService) Create(ctx context.Context, req CreateSpecialRequest) (*models.Special, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	if _, err := s.venues.FindByID(ctx, req.VenueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "venue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venue")
	}

	special := &models.Special{VenueID: req.VenueID, Content: req.Content, Type: req.Type, IsRecurring: req.IsRecurring}
	if err := s.applySchedule(special, req.StartDate, req.StartTime, req.EndTime, req.ExpirationDate, req.Schedule); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, special); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create special")
	}
	return special, nil
}

// Update modifies an existing special.
func (s *SpecialService) Update(ctx context.Context, id string, req UpdateSpecialRequest) (*models.Special, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "malformed special id: "+id)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "special not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load special")
	}

	special := row.Special
	special.Content = req.Content
	special.Type = req.Type
	special.IsRecurring = req.IsRecurring
	special.RecurrenceDays = nil
	special.RecurrenceInterval = nil
	special.RecurrenceCron = nil
	if err := s.applySchedule(&special, req.StartDate, req.StartTime, req.EndTime, req.ExpirationDate, req.Schedule); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &special); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update special")
	}
	return &special, nil
}

// Delete soft-deletes a special.
func (s *SpecialService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidID, "malformed special id: "+id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete special")
	}
	return nil
}

// applySchedule parses and validates the temporal fields, normalizing the
// external recurrence forms into the stored columns. Malformed recurrence
// data is rejected here so the evaluator never sees it.
func (s *SpecialService) applySchedule(special *models.Special, startDate, startTime, endTime, expirationDate string, schedule *dto.SchedulePayload) error {
	if !special.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown special type: "+string(special.Type))
	}

	parsedDate, err := models.ParseDate(startDate)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	special.StartDate = parsedDate

	parsedStart, err := models.ParseTimeOfDay(startTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:mm")
	}
	special.StartTime = parsedStart

	special.EndTime = nil
	if endTime != "" {
		parsedEnd, err := models.ParseTimeOfDay(endTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:mm")
		}
		special.EndTime = &parsedEnd
	}

	special.ExpirationDate = nil
	if expirationDate != "" {
		parsedExp, err := models.ParseDate(expirationDate)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "expiration_date must be YYYY-MM-DD")
		}
		if parsedExp.Before(special.StartDate) {
			return appErrors.Clone(appErrors.ErrValidation, "expiration_date must not precede start_date")
		}
		special.ExpirationDate = &parsedExp
	}

	if !special.IsRecurring {
		if schedule != nil {
			return appErrors.Clone(appErrors.ErrValidation, "schedule is only allowed on recurring specials")
		}
		return nil
	}

	if schedule == nil {
		return appErrors.Clone(appErrors.ErrValidation, "recurring specials require a schedule")
	}
	if schedule.CronExpr != "" && schedule.DayMask != nil {
		return appErrors.Clone(appErrors.ErrValidation, "schedule must use either day_mask or cron_expr, not both")
	}

	switch {
	case schedule.CronExpr != "":
		rule, err := models.NewCronRule(schedule.CronExpr)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		special.RecurrenceCron = &rule.CronExpr
	case schedule.DayMask != nil:
		rule, err := models.NewWeeklyRule(*schedule.DayMask, schedule.IntervalWeeks)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		days := int16(rule.DayMask)
		interval := rule.IntervalWeeks
		special.RecurrenceDays = &days
		special.RecurrenceInterval = &interval
	default:
		return appErrors.Clone(appErrors.ErrValidation, "schedule requires day_mask or cron_expr")
	}

	return nil
}
