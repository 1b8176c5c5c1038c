package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/specials-api/internal/dto"
	"github.com/venuehub/specials-api/internal/models"
	"github.com/venuehub/specials-api/pkg/config"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
	"github.com/venuehub/specials-api/pkg/geo"
)

type searcherStub struct {
	page       []models.SpecialSearchResult
	total      int
	all        []models.SpecialSearchResult
	lastFilter models.SpecialSearchFilter
	searchErr  error
	allCalls   int
}

func (s *searcherStub) Search(ctx context.Context, filter models.SpecialSearchFilter) ([]models.SpecialSearchResult, int, error) {
	s.lastFilter = filter
	if s.searchErr != nil {
		return nil, 0, s.searchErr
	}
	return s.page, s.total, nil
}

func (s *searcherStub) SearchAll(ctx context.Context, filter models.SpecialSearchFilter) ([]models.SpecialSearchResult, error) {
	s.allCalls++
	return s.all, nil
}

type resolverStub struct {
	point geo.Point
	err   error
	calls int
}

func (s *resolverStub) Resolve(ctx context.Context, address string) (geo.Point, error) {
	s.calls++
	if s.err != nil {
		return geo.Point{}, s.err
	}
	return s.point, nil
}

func searchRow(t *testing.T, id, venueID string, running bool) models.SpecialSearchResult {
	t.Helper()
	startDate := models.NewDate(2024, time.January, 1)
	if !running {
		// One-time special on a different day than the reference instant.
		startDate = models.NewDate(2024, time.March, 1)
	}
	return models.SpecialSearchResult{
		Special: models.Special{
			ID:        id,
			VenueID:   venueID,
			Content:   "Half price wings",
			Type:      models.SpecialTypeFood,
			StartDate: startDate,
			StartTime: mustTime(t, "00:00"),
		},
		VenueName:     "The Spot",
		VenueTimezone: "UTC",
	}
}

const searchRefInstant = "2024-01-01T12:00:00Z"

func newSearchService(repo *searcherStub, geocoder *resolverStub, cfg config.SearchConfig) *SearchService {
	svc := NewSearchService(repo, geocoder, nil, cfg, nil)
	svc.now = func() time.Time {
		ref, _ := time.Parse(time.RFC3339, searchRefInstant)
		return ref
	}
	return svc
}

func TestSearchGeocodesAddressAndPushesRadius(t *testing.T) {
	repo := &searcherStub{
		page:  []models.SpecialSearchResult{searchRow(t, "sp-1", "v-1", true)},
		total: 1,
	}
	geocoder := &resolverStub{point: geo.Point{Latitude: 40.71, Longitude: -74.0}}
	svc := newSearchService(repo, geocoder, config.SearchConfig{DefaultRadiusMiles: 5})

	items, pagination, meta, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{
		Address:        "123 Main St",
		SearchDateTime: searchRefInstant,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsCurrentlyRunning)

	assert.Equal(t, 1, geocoder.calls)
	assert.Equal(t, 40.71, repo.lastFilter.Latitude)
	assert.Equal(t, -74.0, repo.lastFilter.Longitude)
	assert.InDelta(t, 5*geo.MetersPerMile, repo.lastFilter.RadiusMeters, 0.001)

	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, true, meta["total_is_exact"])
}

func TestSearchWithoutAddressSkipsGeocoding(t *testing.T) {
	repo := &searcherStub{}
	geocoder := &resolverStub{}
	svc := newSearchService(repo, geocoder, config.SearchConfig{DefaultRadiusMiles: 5})

	_, _, _, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{SearchTerm: "wings"})
	require.NoError(t, err)

	assert.Equal(t, 0, geocoder.calls)
	assert.Zero(t, repo.lastFilter.RadiusMeters)
	assert.Equal(t, "wings", repo.lastFilter.SearchTerm)
}

func TestSearchGeocodeFailurePropagates(t *testing.T) {
	repo := &searcherStub{}
	geocoder := &resolverStub{err: appErrors.Clone(appErrors.ErrGeocodeFailed, `no results for address "nowhere"`)}
	svc := newSearchService(repo, geocoder, config.SearchConfig{})

	_, _, _, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{Address: "nowhere"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGeocodeFailed.Code, appErrors.FromError(err).Code)
}

func TestSearchInvalidDateTime(t *testing.T) {
	svc := newSearchService(&searcherStub{}, &resolverStub{}, config.SearchConfig{})

	_, _, _, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{SearchDateTime: "2024-01-01 12:00"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTime.Code, appErrors.FromError(err).Code)
}

func TestSearchInvalidSpecialType(t *testing.T) {
	svc := newSearchService(&searcherStub{}, &resolverStub{}, config.SearchConfig{})

	_, _, _, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{SpecialType: "Karaoke"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSearchPageDefaultsAndClamps(t *testing.T) {
	repo := &searcherStub{}
	svc := newSearchService(repo, &resolverStub{}, config.SearchConfig{MaxPageSize: 50})

	_, _, _, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{Page: -3, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 50, repo.lastFilter.PageSize)

	_, _, _, err = svc.Search(context.Background(), dto.SearchSpecialsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastFilter.PageSize)
}

func TestSearchCurrentlyRunningPostFilterApproximate(t *testing.T) {
	repo := &searcherStub{
		page: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-1", false),
			searchRow(t, "sp-3", "v-2", true),
			searchRow(t, "sp-4", "v-2", false),
		},
		total: 40,
	}
	svc := newSearchService(repo, &resolverStub{}, config.SearchConfig{CountStrategy: config.CountStrategyApproximate})

	items, pagination, meta, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{
		SearchDateTime:       searchRefInstant,
		CurrentlyRunningOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "sp-1", items[0].ID)
	assert.Equal(t, "sp-3", items[1].ID)

	// Half the page survived, so the candidate total is scaled by 0.5.
	assert.Equal(t, 20, pagination.TotalCount)
	assert.Equal(t, config.CountStrategyApproximate, meta["count_strategy"])
	assert.Equal(t, false, meta["total_is_exact"])
	assert.Equal(t, 0, repo.allCalls)
}

func TestSearchCurrentlyRunningPostFilterExact(t *testing.T) {
	repo := &searcherStub{
		page: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-1", false),
		},
		total: 6,
		all: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-1", false),
			searchRow(t, "sp-3", "v-2", true),
			searchRow(t, "sp-4", "v-2", false),
			searchRow(t, "sp-5", "v-3", true),
			searchRow(t, "sp-6", "v-3", false),
		},
	}
	svc := newSearchService(repo, &resolverStub{}, config.SearchConfig{CountStrategy: config.CountStrategyExact})

	items, pagination, meta, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{
		SearchDateTime:       searchRefInstant,
		CurrentlyRunningOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, config.CountStrategyExact, meta["count_strategy"])
	assert.Equal(t, true, meta["total_is_exact"])
	assert.Equal(t, 1, repo.allCalls)
}

func TestSearchRunningOnlyIntactPageStillRescansUnderExact(t *testing.T) {
	// The requested page survives post-filtering intact, but an off-page
	// candidate is not running; the store total of 3 is not the filtered
	// total and must not be presented as exact without the full re-scan.
	repo := &searcherStub{
		page: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-2", true),
		},
		total: 3,
		all: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-2", true),
			searchRow(t, "sp-3", "v-3", false),
		},
	}
	svc := newSearchService(repo, &resolverStub{}, config.SearchConfig{CountStrategy: config.CountStrategyExact})

	items, pagination, meta, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{
		SearchDateTime:       searchRefInstant,
		CurrentlyRunningOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 1, repo.allCalls)
	assert.Equal(t, 2, pagination.TotalCount)
	assert.Equal(t, config.CountStrategyExact, meta["count_strategy"])
	assert.Equal(t, true, meta["total_is_exact"])
}

func TestSearchRunningOnlyIntactPageIsEstimateUnderApproximate(t *testing.T) {
	repo := &searcherStub{
		page: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-2", true),
		},
		total: 30,
	}
	svc := newSearchService(repo, &resolverStub{}, config.SearchConfig{CountStrategy: config.CountStrategyApproximate})

	items, pagination, meta, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{
		SearchDateTime:       searchRefInstant,
		CurrentlyRunningOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Keep-ratio 1 scales the candidate count unchanged, but the result is
	// still an estimate; other pages were never evaluated.
	assert.Equal(t, 0, repo.allCalls)
	assert.Equal(t, 30, pagination.TotalCount)
	assert.Equal(t, config.CountStrategyApproximate, meta["count_strategy"])
	assert.Equal(t, false, meta["total_is_exact"])
}

func TestSearchVenuePostFilter(t *testing.T) {
	repo := &searcherStub{
		page: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-2", true),
		},
		total: 2,
	}
	svc := newSearchService(repo, &resolverStub{}, config.SearchConfig{})

	items, _, _, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{
		SearchDateTime: searchRefInstant,
		VenueID:        "v-2",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sp-2", items[0].ID)
}

func TestSearchApproximateTotalNeverBelowKept(t *testing.T) {
	repo := &searcherStub{
		page: []models.SpecialSearchResult{
			searchRow(t, "sp-1", "v-1", true),
			searchRow(t, "sp-2", "v-1", false),
			searchRow(t, "sp-3", "v-1", true),
		},
		total: 3,
	}
	svc := newSearchService(repo, &resolverStub{}, config.SearchConfig{CountStrategy: config.CountStrategyApproximate})

	items, pagination, _, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{
		SearchDateTime:       searchRefInstant,
		CurrentlyRunningOnly: true,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pagination.TotalCount, len(items))
}

func TestSearchEmptyPage(t *testing.T) {
	svc := newSearchService(&searcherStub{}, &resolverStub{}, config.SearchConfig{})

	items, pagination, meta, err := svc.Search(context.Background(), dto.SearchSpecialsRequest{SearchDateTime: searchRefInstant})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, pagination.TotalCount)
	assert.Equal(t, 0, pagination.TotalPages)
	assert.Equal(t, true, meta["total_is_exact"])
}
