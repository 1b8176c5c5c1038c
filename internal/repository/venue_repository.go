package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/venuehub/specials-api/internal/models"
)

const venueColumns = `id, name, address, latitude, longitude, timezone, created_at, updated_at`

// VenueRepository provides persistence for venues.
type VenueRepository struct {
	db *sqlx.DB
}

// NewVenueRepository creates a new venue repository.
func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// FindByID loads a venue by id.
func (r *VenueRepository) FindByID(ctx context.Context, id string) (*models.Venue, error) {
	query := fmt.Sprintf("SELECT %s FROM venues WHERE id = $1 AND deleted_at IS NULL", venueColumns)
	var venue models.Venue
	if err := r.db.GetContext(ctx, &venue, query, id); err != nil {
		return nil, err
	}
	return &venue, nil
}

// Create stores a new venue record.
func (r *VenueRepository) Create(ctx context.Context, venue *models.Venue) error {
	if venue.ID == "" {
		venue.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if venue.CreatedAt.IsZero() {
		venue.CreatedAt = now
	}
	venue.UpdatedAt = now

	const query = `INSERT INTO venues (id, name, address, latitude, longitude, timezone, created_at, updated_at) VALUES (:id, :name, :address, :latitude, :longitude, :timezone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, venue); err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

// Update modifies a venue record.
func (r *VenueRepository) Update(ctx context.Context, venue *models.Venue) error {
	venue.UpdatedAt = time.Now().UTC()
	const query = `UPDATE venues SET name = :name, address = :address, latitude = :latitude, longitude = :longitude, timezone = :timezone, updated_at = :updated_at WHERE id = :id AND deleted_at IS NULL`
	if _, err := r.db.NamedExecContext(ctx, query, venue); err != nil {
		return fmt.Errorf("update venue: %w", err)
	}
	return nil
}

// UpdateCoordinates stores the resolved location for a venue. Called by the
// geocode backfill worker.
func (r *VenueRepository) UpdateCoordinates(ctx context.Context, id string, lat, lon float64) error {
	const query = `UPDATE venues SET latitude = $2, longitude = $3, updated_at = $4 WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, lat, lon, time.Now().UTC()); err != nil {
		return fmt.Errorf("update venue coordinates: %w", err)
	}
	return nil
}

// Delete soft-deletes a venue by id.
func (r *VenueRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE venues SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}
