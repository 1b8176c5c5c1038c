package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/specials-api/pkg/config"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
	"github.com/venuehub/specials-api/pkg/geo"
)

// GeocodeService resolves free-text addresses to coordinates via an
// external provider, caching successful resolutions.
type GeocodeService struct {
	cfg     config.GeocodingConfig
	client  *http.Client
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewGeocodeService constructs the geocoding client.
func NewGeocodeService(cfg config.GeocodingConfig, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *GeocodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GeocodeService{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve turns a free-text address into a point. A provider error or an
// empty result set both surface as a geocode failure naming the address;
// cache failures degrade to a provider call.
func (s *GeocodeService) Resolve(ctx context.Context, address string) (geo.Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return geo.Point{}, appErrors.Clone(appErrors.ErrValidation, "address must not be empty")
	}

	key := cacheKeyForAddress(address)
	var cached geo.Point
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	point, err := s.lookup(ctx, address)
	if err != nil {
		return geo.Point{}, err
	}

	_ = s.cache.Set(ctx, key, point, s.cfg.CacheTTL)
	return point, nil
}

func (s *GeocodeService) lookup(ctx context.Context, address string) (geo.Point, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	if s.cfg.APIKey != "" {
		params.Set("key", s.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return geo.Point{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build geocode request")
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveGeocode("error", time.Since(start))
		}
		return geo.Point{}, appErrors.Wrap(err, appErrors.ErrGeocodeFailed.Code, appErrors.ErrGeocodeFailed.Status, fmt.Sprintf("could not resolve address %q", address))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if s.metrics != nil {
			s.metrics.ObserveGeocode("error", time.Since(start))
		}
		return geo.Point{}, appErrors.Clone(appErrors.ErrGeocodeFailed, fmt.Sprintf("could not resolve address %q: provider returned %d", address, resp.StatusCode))
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		if s.metrics != nil {
			s.metrics.ObserveGeocode("error", time.Since(start))
		}
		return geo.Point{}, appErrors.Wrap(err, appErrors.ErrGeocodeFailed.Code, appErrors.ErrGeocodeFailed.Status, fmt.Sprintf("could not resolve address %q", address))
	}

	if len(results) == 0 {
		if s.metrics != nil {
			s.metrics.ObserveGeocode("not_found", time.Since(start))
		}
		return geo.Point{}, appErrors.Clone(appErrors.ErrGeocodeFailed, fmt.Sprintf("no results for address %q", address))
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		if s.metrics != nil {
			s.metrics.ObserveGeocode("error", time.Since(start))
		}
		return geo.Point{}, appErrors.Clone(appErrors.ErrGeocodeFailed, fmt.Sprintf("malformed coordinates for address %q", address))
	}

	if s.metrics != nil {
		s.metrics.ObserveGeocode("ok", time.Since(start))
	}
	return geo.Point{Latitude: lat, Longitude: lon}, nil
}

func cacheKeyForAddress(address string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
