package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/venuehub/specials-api/internal/models"
)

const specialColumns = `s.id, s.venue_id, s.content, s.special_type, s.start_date, s.start_time, s.end_time, s.expiration_date, s.is_recurring, s.recurrence_days, s.recurrence_interval, s.recurrence_cron, s.created_at, s.updated_at`

// SpecialRepository provides persistence for specials.
type SpecialRepository struct {
	db *sqlx.DB
}

// NewSpecialRepository creates a new special repository.
func NewSpecialRepository(db *sqlx.DB) *SpecialRepository {
	return &SpecialRepository{db: db}
}

func searchClauses(filter models.SpecialSearchFilter) (string, string, []interface{}) {
	base := "FROM specials s JOIN venues v ON v.id = s.venue_id WHERE s.deleted_at IS NULL AND v.deleted_at IS NULL"
	var conditions []string
	var args []interface{}

	distance := "0::float8 AS distance_meters"
	if filter.RadiusMeters > 0 {
		args = append(args, filter.Longitude, filter.Latitude, filter.RadiusMeters)
		conditions = append(conditions,
			"ST_DWithin(ST_SetSRID(ST_MakePoint(v.longitude, v.latitude), 4326)::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)")
		distance = "ST_Distance(ST_SetSRID(ST_MakePoint(v.longitude, v.latitude), 4326)::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance_meters"
	}

	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		pos := len(args)
		conditions = append(conditions, fmt.Sprintf("(s.content ILIKE $%d OR v.name ILIKE $%d)", pos, pos))
	}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("s.special_type = $%d", len(args)))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	return base, distance, args
}

// Search returns one page of candidate specials within the radius, plus the
// total candidate count. The currently-running predicate is never applied
// here; the store cannot evaluate recurrence or midnight-crossing windows.
func (r *SpecialRepository) Search(ctx context.Context, filter models.SpecialSearchFilter) ([]models.SpecialSearchResult, int, error) {
	base, distance, args := searchClauses(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s, v.name AS venue_name, v.timezone AS venue_timezone, %s %s ORDER BY distance_meters ASC, s.created_at DESC LIMIT %d OFFSET %d",
		specialColumns, distance, base, size, offset)
	var results []models.SpecialSearchResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search specials: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count specials: %w", err)
	}

	return results, total, nil
}

// SearchAll returns every candidate matching the filter, unpaged. Used by
// the exact count strategy to evaluate availability over the full result set.
func (r *SpecialRepository) SearchAll(ctx context.Context, filter models.SpecialSearchFilter) ([]models.SpecialSearchResult, error) {
	base, distance, args := searchClauses(filter)

	query := fmt.Sprintf("SELECT %s, v.name AS venue_name, v.timezone AS venue_timezone, %s %s ORDER BY distance_meters ASC, s.created_at DESC",
		specialColumns, distance, base)
	var results []models.SpecialSearchResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("search all specials: %w", err)
	}
	return results, nil
}

// FindByID loads a special joined with its venue.
func (r *SpecialRepository) FindByID(ctx context.Context, id string) (*models.SpecialSearchResult, error) {
	query := fmt.Sprintf("SELECT %s, v.name AS venue_name, v.timezone AS venue_timezone, 0::float8 AS distance_meters FROM specials s JOIN venues v ON v.id = s.venue_id WHERE s.id = $1 AND s.deleted_at IS NULL", specialColumns)
	var result models.SpecialSearchResult
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByVenue returns a venue's specials ordered by start date.
func (r *SpecialRepository) ListByVenue(ctx context.Context, venueID string) ([]models.Special, error) {
	query := fmt.Sprintf("SELECT %s FROM specials s WHERE s.venue_id = $1 AND s.deleted_at IS NULL ORDER BY s.start_date ASC, s.start_time ASC", specialColumns)
	var specials []models.Special
	if err := r.db.SelectContext(ctx, &specials, query, venueID); err != nil {
		return nil, fmt.Errorf("list specials by venue: %w", err)
	}
	return specials, nil
}

// Create stores a new special record.
func (r *SpecialRepository) Create(ctx context.Context, special *models.Special) error {
	if special.ID == "" {
		special.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if special.CreatedAt.IsZero() {
		special.CreatedAt = now
	}
	special.UpdatedAt = now

	const query = `INSERT INTO specials (id, venue_id, content, special_type, start_date, start_time, end_time, expiration_date, is_recurring, recurrence_days, recurrence_interval, recurrence_cron, created_at, updated_at) VALUES (:id, :venue_id, :content, :special_type, :start_date, :start_time, :end_time, :expiration_date, :is_recurring, :recurrence_days, :recurrence_interval, :recurrence_cron, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, special); err != nil {
		return fmt.Errorf("create special: %w", err)
	}
	return nil
}

// Update modifies a special record.
func (r *SpecialRepository) Update(ctx context.Context, special *models.Special) error {
	special.UpdatedAt = time.Now().UTC()
	const query = `UPDATE specials SET content = :content, special_type = :special_type, start_date = :start_date, start_time = :start_time, end_time = :end_time, expiration_date = :expiration_date, is_recurring = :is_recurring, recurrence_days = :recurrence_days, recurrence_interval = :recurrence_interval, recurrence_cron = :recurrence_cron, updated_at = :updated_at WHERE id = :id AND deleted_at IS NULL`
	if _, err := r.db.NamedExecContext(ctx, query, special); err != nil {
		return fmt.Errorf("update special: %w", err)
	}
	return nil
}

// Delete soft-deletes a special by id.
func (r *SpecialRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE specials SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete special: %w", err)
	}
	return nil
}
