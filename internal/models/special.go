package models

import "time"

// SpecialType categorizes a venue special.
type SpecialType string

const (
	SpecialTypeFood          SpecialType = "Food"
	SpecialTypeDrink         SpecialType = "Drink"
	SpecialTypeEntertainment SpecialType = "Entertainment"
)

// Valid reports whether the type is one of the known categories.
func (t SpecialType) Valid() bool {
	switch t {
	case SpecialTypeFood, SpecialTypeDrink, SpecialTypeEntertainment:
		return true
	}
	return false
}

// Special is a time-bound promotion published by a venue. Times are
// venue-local wall-clock values; an end time earlier than the start time
// means the window crosses midnight into the next calendar day.
type Special struct {
	ID             string      `db:"id" json:"id"`
	VenueID        string      `db:"venue_id" json:"venue_id"`
	Content        string      `db:"content" json:"content"`
	Type           SpecialType `db:"special_type" json:"type"`
	StartDate      Date        `db:"start_date" json:"start_date"`
	StartTime      TimeOfDay   `db:"start_time" json:"start_time"`
	EndTime        *TimeOfDay  `db:"end_time" json:"end_time,omitempty"`
	ExpirationDate *Date       `db:"expiration_date" json:"expiration_date,omitempty"`
	IsRecurring    bool        `db:"is_recurring" json:"is_recurring"`

	// Raw recurrence columns; Rule normalizes them into the canonical form.
	RecurrenceDays     *int16  `db:"recurrence_days" json:"-"`
	RecurrenceInterval *int    `db:"recurrence_interval" json:"-"`
	RecurrenceCron     *string `db:"recurrence_cron" json:"-"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// Rule returns the canonical recurrence rule for the special. A recurring
// special with no stored pattern is a data-integrity defect guarded at the
// write boundary; it degrades to the one-time rule here rather than failing.
func (s *Special) Rule() RecurrenceRule {
	if !s.IsRecurring {
		return OneTimeRule()
	}
	if s.RecurrenceCron != nil && *s.RecurrenceCron != "" {
		return RecurrenceRule{Kind: RuleCron, CronExpr: *s.RecurrenceCron}
	}
	if s.RecurrenceDays != nil && *s.RecurrenceDays > 0 {
		interval := 1
		if s.RecurrenceInterval != nil && *s.RecurrenceInterval > 1 {
			interval = *s.RecurrenceInterval
		}
		return RecurrenceRule{Kind: RuleWeekly, DayMask: uint8(*s.RecurrenceDays), IntervalWeeks: interval}
	}
	return OneTimeRule()
}

// SpecialSearchResult is a search row joined with its venue.
type SpecialSearchResult struct {
	Special
	VenueName      string  `db:"venue_name" json:"venue_name"`
	VenueTimezone  string  `db:"venue_timezone" json:"-"`
	DistanceMeters float64 `db:"distance_meters" json:"distance_meters"`
}

// SpecialStatus pairs a search row with its evaluated availability.
type SpecialStatus struct {
	SpecialSearchResult
	IsCurrentlyRunning bool `json:"is_currently_running"`
}

// SpecialSearchFilter carries the constraints the store can evaluate.
// The currently-running predicate is deliberately absent: recurrence and
// midnight-crossing windows are evaluated in application code.
type SpecialSearchFilter struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	SearchTerm   string
	Type         *SpecialType
	Page         int
	PageSize     int
}
