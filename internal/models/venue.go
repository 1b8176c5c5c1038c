package models

import "time"

// Venue is the aggregate that owns specials. Coordinates are resolved from
// the street address by the geocode backfill and may be absent until the
// first successful resolution.
type Venue struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Address   string     `db:"address" json:"address"`
	Latitude  *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64   `db:"longitude" json:"longitude,omitempty"`
	Timezone  string     `db:"timezone" json:"timezone"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// Location returns the venue's IANA timezone, defaulting to UTC when the
// stored name is absent or unknown.
func (v *Venue) Location() *time.Location {
	if v == nil || v.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
