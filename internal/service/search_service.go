package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/specials-api/internal/dto"
	"github.com/venuehub/specials-api/internal/models"
	"github.com/venuehub/specials-api/pkg/config"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
	"github.com/venuehub/specials-api/pkg/geo"
)

type specialSearcher interface {
	Search(ctx context.Context, filter models.SpecialSearchFilter) ([]models.SpecialSearchResult, int, error)
	SearchAll(ctx context.Context, filter models.SpecialSearchFilter) ([]models.SpecialSearchResult, error)
}

type addressResolver interface {
	Resolve(ctx context.Context, address string) (geo.Point, error)
}

// SearchService runs the specials search pipeline: resolve the location,
// query the store with push-down filters, evaluate availability over the
// page, apply the filters the store cannot express, and reconcile the
// pagination totals.
type SearchService struct {
	repo     specialSearcher
	geocoder addressResolver
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      config.SearchConfig
	now      func() time.Time
}

// NewSearchService constructs the pipeline.
func NewSearchService(repo specialSearcher, geocoder addressResolver, metrics *MetricsService, cfg config.SearchConfig, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CountStrategy != config.CountStrategyExact {
		cfg.CountStrategy = config.CountStrategyApproximate
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &SearchService{
		repo:     repo,
		geocoder: geocoder,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Search executes one search request. The returned meta block discloses
// which counting strategy produced the pagination totals; the approximate
// strategy scales the store's candidate count by the page's keep-ratio and
// is flagged as an estimate rather than presented as exact.
func (s *SearchService) Search(ctx context.Context, req dto.SearchSpecialsRequest) ([]models.SpecialStatus, *models.Pagination, map[string]interface{}, error) {
	filter, err := s.buildFilter(ctx, req)
	if err != nil {
		return nil, nil, nil, err
	}

	ref, err := s.referenceInstant(req.SearchDateTime)
	if err != nil {
		return nil, nil, nil, err
	}

	pageItems, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search specials")
	}

	evaluated := EvaluateBatch(pageItems, ref)
	kept := s.applyPostFilters(evaluated, req)

	keepRatio := 1.0
	if len(evaluated) > 0 {
		keepRatio = float64(len(kept)) / float64(len(evaluated))
	}
	if s.metrics != nil {
		s.metrics.ObserveSearchPage(len(evaluated), keepRatio)
	}

	reconciled, meta, err := s.reconcileTotal(ctx, filter, req, ref, total, len(evaluated), len(kept), keepRatio)
	if err != nil {
		return nil, nil, nil, err
	}

	return kept, models.NewPagination(filter.Page, filter.PageSize, reconciled), meta, nil
}

func (s *SearchService) buildFilter(ctx context.Context, req dto.SearchSpecialsRequest) (models.SpecialSearchFilter, error) {
	filter := models.SpecialSearchFilter{
		SearchTerm: req.SearchTerm,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}

	if req.SpecialType != "" {
		st := models.SpecialType(req.SpecialType)
		if !st.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown special type: "+req.SpecialType)
		}
		filter.Type = &st
	}

	// Without an address there is no point to measure distance from, so the
	// radius constraint is simply not pushed down.
	if req.Address != "" {
		point, err := s.geocoder.Resolve(ctx, req.Address)
		if err != nil {
			return filter, err
		}
		radius := req.RadiusMiles
		if radius <= 0 {
			radius = s.cfg.DefaultRadiusMiles
		}
		filter.Latitude = point.Latitude
		filter.Longitude = point.Longitude
		filter.RadiusMeters = geo.MilesToMeters(radius)
	}

	return filter, nil
}

func (s *SearchService) referenceInstant(raw string) (time.Time, error) {
	if raw == "" {
		return s.now(), nil
	}
	ref, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrInvalidTime.Code, appErrors.ErrInvalidTime.Status, "invalid searchDateTime: "+raw)
	}
	return ref, nil
}

func (s *SearchService) applyPostFilters(items []models.SpecialStatus, req dto.SearchSpecialsRequest) []models.SpecialStatus {
	kept := make([]models.SpecialStatus, 0, len(items))
	for _, item := range items {
		if req.CurrentlyRunningOnly && !item.IsCurrentlyRunning {
			continue
		}
		if req.VenueID != "" && item.VenueID != req.VenueID {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// reconcileTotal resolves the tension between the store's candidate count
// and the in-memory drops. The store count is exact only when no in-memory
// filter was requested at all; a page that happens to survive intact says
// nothing about the other pages. Otherwise the configured strategy decides:
// re-running the query unpaged and evaluating the full result set gives an
// exact total at the cost of a full scan, while scaling the candidate count
// by the page's keep-ratio is cheap but statistically unstable on small pages.
func (s *SearchService) reconcileTotal(ctx context.Context, filter models.SpecialSearchFilter, req dto.SearchSpecialsRequest, ref time.Time, storeTotal, evaluated, kept int, keepRatio float64) (int, map[string]interface{}, error) {
	if !req.CurrentlyRunningOnly && req.VenueID == "" {
		return storeTotal, map[string]interface{}{
			"count_strategy": config.CountStrategyExact,
			"total_is_exact": true,
		}, nil
	}

	if s.cfg.CountStrategy == config.CountStrategyExact {
		all, err := s.repo.SearchAll(ctx, filter)
		if err != nil {
			return 0, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count matching specials")
		}
		exact := len(s.applyPostFilters(EvaluateBatch(all, ref), req))
		return exact, map[string]interface{}{
			"count_strategy": config.CountStrategyExact,
			"total_is_exact": true,
		}, nil
	}

	estimated := int(math.Round(float64(storeTotal) * keepRatio))
	if estimated < kept {
		estimated = kept
	}
	return estimated, map[string]interface{}{
		"count_strategy": config.CountStrategyApproximate,
		"total_is_exact": false,
	}, nil
}
